package handlers

import (
	"context"
	"testing"

	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/job"
	"github.com/apatwari/docchat/pkg/logkit"
)

type stubJobStore struct{}

func (s *stubJobStore) GetJob(ctx context.Context, jobId string) (jobmodel.Job, bool) {
	return jobmodel.Job{}, false
}
func (s *stubJobStore) SaveJob(ctx context.Context, j jobmodel.Job) error { return nil }
func (s *stubJobStore) DeleteJob(ctx context.Context, jobID string)       {}

type stubSessionStore struct {
	OnInitNewSession func(ctx context.Context, id string, userId string) error
}

func (s *stubSessionStore) ValidateSessionId(ctx context.Context, id string) bool { return true }
func (s *stubSessionStore) InitNewSession(ctx context.Context, id string, userId string) error {
	if s.OnInitNewSession != nil {
		return s.OnInitNewSession(ctx, id, userId)
	}
	return nil
}
func (s *stubSessionStore) AppendChatTurn(ctx context.Context, id string, turn jobmodel.ChatTurn) error {
	return nil
}
func (s *stubSessionStore) GetHistory(ctx context.Context, sessionId string) ([]jobmodel.ChatTurn, error) {
	return nil, nil
}
func (s *stubSessionStore) ListAllowedDocIDs(ctx context.Context, sessionId string) ([]string, error) {
	return nil, nil
}
func (s *stubSessionStore) AttachDoc(ctx context.Context, sessionId string, docId string) error {
	return nil
}
func (s *stubSessionStore) DetachDoc(ctx context.Context, docId string) error { return nil }

func TestCreateNewJob_SessionExistsBeforeJobIsVisible(t *testing.T) {
	jobChannel := make(chan jobmodel.Job, 1)
	sessionInitialized := false

	sessionStore := &stubSessionStore{
		OnInitNewSession: func(ctx context.Context, id string, userId string) error {
			// A worker takes jobs off the channel the moment they land, so
			// the session has to be in place before the job is enqueued.
			if len(jobChannel) != 0 {
				t.Error("job was enqueued before the session was created")
			}
			sessionInitialized = true
			return nil
		},
	}

	handlerInstance = &JobHandler{
		service: &job.Service{
			JobChannel:        jobChannel,
			DispatcherChannel: make(chan bool, 1),
			JobStore:          &stubJobStore{},
			SessionStore:      sessionStore,
		},
	}
	logJH = logkit.NewLogger("TestJobHandler")

	CreateNewJob(newJobData{
		id:           "job-1",
		sessionId:    "sess-1",
		userId:       "user-1",
		question:     "what changed?",
		isNewSession: true,
		traceId:      "trace-1",
		jobType:      jobmodel.JobTypeQuery,
	})

	if !sessionInitialized {
		t.Fatal("session was never created")
	}

	select {
	case queued := <-jobChannel:
		if queued.SessionId != "sess-1" {
			t.Errorf("queued job session = %q, want sess-1", queued.SessionId)
		}
	default:
		t.Fatal("no job was enqueued")
	}
}
