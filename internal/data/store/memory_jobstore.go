package store

import (
	"context"
	"sync"

	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/pkg/logkit"
)

var inMemLogger = logkit.NewLogger("InMemoryStore")

// InMemoryJobStore is the fallback when Redis is offline.
type InMemoryJobStore struct {
	jobLock *sync.RWMutex
	jobMap  map[string]jobmodel.Job
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobLock: new(sync.RWMutex),
		jobMap:  make(map[string]jobmodel.Job),
	}
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobmodel.Job, bool) {
	store.jobLock.RLock()
	defer store.jobLock.RUnlock()
	job, ok := store.jobMap[jobId]
	return job, ok
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobmodel.Job) error {
	store.jobLock.Lock()
	defer store.jobLock.Unlock()
	store.jobMap[job.Id] = job
	return nil
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobLock.Lock()
	defer store.jobLock.Unlock()
	delete(store.jobMap, jobID)
}
