package store

import (
	"context"
	"encoding/json"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/data/redisstore"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/pkg/logkit"
)

type RedisJobStore struct {
	store  *redisstore.Store
	logger *logkit.Logger
}

func GetRedisJobStore(ctx context.Context) *RedisJobStore {
	inner := redisstore.GetRedisStore(ctx, config.RedisJobStore)
	if inner == nil {
		return nil
	}
	return &RedisJobStore{
		store:  inner,
		logger: logkit.NewLogger("JobStore"),
	}
}

func (s *RedisJobStore) SaveJob(ctx context.Context, job jobmodel.Job) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "job Id", job.Id)
	log.Debug("saving job")
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}

	err = s.store.Set(ctx, job.Id, data, config.RedisJobStoreTTL)
	if err == nil {
		log.Debug("Saved job to Redis")
	}
	return err
}

func (s *RedisJobStore) GetJob(ctx context.Context, jobId string) (jobmodel.Job, bool) {
	var job jobmodel.Job
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "job Id", jobId)
	log.Debug("getting job")
	val, err := s.store.Get(ctx, jobId)
	if s.store.IsNil(err) {
		return job, false
	} else if err != nil {
		return job, false
	}

	err = json.Unmarshal([]byte(val), &job)
	if err != nil {
		return job, false
	}

	log.Debug("Job found in Redis")
	return job, true
}

func (s *RedisJobStore) DeleteJob(ctx context.Context, jobID string) {
	err := s.store.Del(ctx, jobID)
	if err != nil {
		s.logger.Error("Error deleting job from Redis", "jobId", jobID)
		return
	}
	s.logger.Debug("Job deleted from Redis", "jobId", jobID)
}

func TestJobStore(store *redisstore.Store) *RedisJobStore {
	return &RedisJobStore{
		store:  store,
		logger: logkit.NewLogger("test redis"),
	}
}
