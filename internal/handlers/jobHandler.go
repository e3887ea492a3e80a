package handlers

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/apatwari/docchat/internal/api"
	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/job"
	"github.com/apatwari/docchat/internal/metrics"
	"github.com/apatwari/docchat/internal/rag/vectorstore"
	"github.com/apatwari/docchat/pkg/logkit"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           *logkit.Logger
)

type JobHandler struct {
	service  *job.Service
	vectorDB vectorstore.DataProcessor
}

func InitJobHandler(jobService *job.Service, vectorDB vectorstore.DataProcessor) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, vectorDB: vectorDB}

		logJH = logkit.NewLogger("JobHandler")
		logRH = logkit.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

func CreateNewJob(newJob newJobData) {
	log := logJH.With("traceId", newJob.traceId, "job id", newJob.id)
	log.Info("To create new job")
	// The session must exist before the job is visible to a worker, or the
	// first query's chat turn has nowhere to land.
	if newJob.isNewSession {
		log.Info("Create new session")
		handlerInstance.initNewSession(newJob.sessionId, newJob.userId, newJob.traceId)
	}
	handlerInstance.pushToJobChannel(newJob)
}

func GetJobStatus(id string, traceId string) (result jobmodel.Job, isFound bool) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if handlerInstance != nil {
		return handlerInstance.service.JobStore.GetJob(ctxC, id)
	}
	return result, false
}

func ValidateQueryRequest(queryReq api.QueryRequest) bool {
	if handlerInstance == nil {
		return false
	}
	logJH.Debug(" Validating session id ", "sessionId :", queryReq.SessionID)
	if queryReq.Question == "" {
		return false
	}
	if queryReq.SessionID == "" {
		return true
	}
	return handlerInstance.service.SessionStore.ValidateSessionId(context.Background(), queryReq.SessionID)
}

func ValidateSession(sessionId string) bool {
	if handlerInstance == nil {
		return false
	}
	return handlerInstance.service.SessionStore.ValidateSessionId(context.Background(), sessionId)
}

func InitNewSession(sessionId string, userId string, traceId string) bool {
	if handlerInstance == nil {
		return false
	}
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	if err := handlerInstance.service.SessionStore.InitNewSession(ctxC, sessionId, userId); err != nil {
		logJH.Error("Error initiating new session", sessionId, err)
		return false
	}
	return true
}

func GetSessionHistory(ctx context.Context, sessionId string) ([]jobmodel.ChatTurn, error) {
	if handlerInstance == nil {
		return nil, nil
	}
	return handlerInstance.service.SessionStore.GetHistory(ctx, sessionId)
}

func ListUserDocuments(ctx context.Context, userId string) ([]docmodel.Document, error) {
	if handlerInstance == nil {
		return nil, nil
	}
	return handlerInstance.vectorDB.ListDocuments(ctx, userId)
}

// private methods
func (h *JobHandler) pushToJobChannel(newJob newJobData) {

	_job := jobmodel.Job{}
	_job.Id = newJob.id
	_job.CreatedTime = time.Now()
	_job.TraceId = newJob.traceId
	_job.UserId = newJob.userId
	_job.Status = jobmodel.JobStatusQueued
	_job.JobType = newJob.jobType

	switch newJob.jobType {
	case jobmodel.JobTypeIngest:
		_job.CurrentStep = jobmodel.StepIngestInit
		_job.SessionId = newJob.sessionId
		_job.Payload.IngestFileName = newJob.documentName
		_job.Payload.IngestURL = newJob.documentSource

	case jobmodel.JobTypeDelete:
		_job.CurrentStep = jobmodel.StepDeleteProcessing
		_job.Payload.DeleteDocID = newJob.deleteDocId

	default:
		_job.SessionId = newJob.sessionId
		_job.Payload.Question = newJob.question
		_job.Payload.DocIDs = newJob.docIDs
		_job.Payload.TopK = newJob.topK
		_job.CurrentStep = jobmodel.StepReceived
	}

	//metrics
	metrics.IncrementJobsInQueue()

	h.service.JobChannel <- _job //this is a blocking send to prevent the system from being overwhelmed
	logJH.Info("Created new job")

	//a new worker is signalled every N requests, and always for an
	//ingestion job since batch embedding can hold a worker for a while.
	//idle workers retire on their own, so the pool shrinks back to one.
	accurateCount := atomic.AddInt64(&h.service.RequestCount, 1) //after sending a request increment counter
	if accurateCount%config.RequestsPerNewWorkerCount == 0 || _job.JobType == jobmodel.JobTypeIngest {
		metrics.StartDispatcherSignalCount() //metrics
		logJH.Debug("Worker count ", accurateCount)
		h.service.DispatcherChannel <- true
	}
}

func (h *JobHandler) initNewSession(sessionId string, userId string, traceId string) {
	ctxC := context.WithValue(context.Background(), config.TRACE_ID_KEY, traceId)
	err := h.service.SessionStore.InitNewSession(ctxC, sessionId, userId)
	if err != nil {
		logJH.Error("Error initiating new session", sessionId, err)
		return
	}
}
