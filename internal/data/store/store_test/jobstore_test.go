package store_test

import (
	"context"
	"testing"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/data/redisstore"
	"github.com/apatwari/docchat/internal/data/store"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestJobStore(t *testing.T) (*store.RedisJobStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestJobStore(redisstore.NewTestStore(client)), mr
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	jobStore, mr := newTestJobStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobmodel.Job{
		Id:     jobID,
		Status: jobmodel.JobStatusRunning,
		Payload: jobmodel.Payload{
			Question: "How do I mock Redis?",
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		err := jobStore.SaveJob(ctx, testJob)
		if err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}

		if retrievedJob.Payload.Question != testJob.Payload.Question {
			t.Errorf("Data mismatch! Got %s, want %s",
				retrievedJob.Payload.Question, testJob.Payload.Question)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		_, found := jobStore.GetJob(ctx, "ghost-id")
		if found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)

		if mr.Exists(jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	jobStore, _ := newTestJobStore(t)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobmodel.Job{Id: "race-job"}

	const workers = 50
	for i := 0; i < workers; i++ {
		go func() {
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
}

func TestInMemoryJobStore(t *testing.T) {
	jobStore := store.InitInMemoryJobStore()
	ctx := context.Background()

	job := jobmodel.Job{Id: "mem-1", Status: jobmodel.JobStatusQueued}
	if err := jobStore.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}

	got, found := jobStore.GetJob(ctx, "mem-1")
	if !found || got.Status != jobmodel.JobStatusQueued {
		t.Errorf("GetJob = %+v, %v", got, found)
	}

	jobStore.DeleteJob(ctx, "mem-1")
	if _, found := jobStore.GetJob(ctx, "mem-1"); found {
		t.Error("job still present after delete")
	}
}
