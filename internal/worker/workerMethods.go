package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/metrics"
	"github.com/apatwari/docchat/pkg/logkit"
)

func executeJob(job jobmodel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, config.JobTimeout)
	defer cancel()
	log := logger.With("traceId", job.TraceId)
	log.Debug("Processing job:", "job Id:", job.Id)

	saveJobState(ctx, job, jobmodel.JobStatusRunning)

	switch job.JobType {
	case jobmodel.JobTypeIngest:
		job = ingestDocument(ctx, job)
	case jobmodel.JobTypeDelete:
		job = deleteDocument(ctx, job)
	default:
		job = processQuery(ctx, job, log)
	}

	job.EndTime = time.Now()
	if job.Status != jobmodel.JobStatusError {
		job.Status = jobmodel.JobStatusComplete
	}
	saveJobState(ctx, job, job.Status)
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker ", "reason", reason, "workerCount", currentWorkerCount)
	metrics.DecrementActiveWorkerCount()
}

func ingestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	job = _ragService.IngestDocument(ctx, job)
	if job.Status != jobmodel.JobStatusError && job.SessionId != "" {
		// The document only becomes queryable in its session once its
		// chunks are durably stored.
		if err := _jobService.SessionStore.AttachDoc(ctx, job.SessionId, job.Id); err != nil {
			logger.Error("Failed to attach document to session", "err", err)
		}
	}
	return job
}

func deleteDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	job = _ragService.DeleteDocument(ctx, job)
	if job.Status != jobmodel.JobStatusError {
		// Sessions must stop carrying the deleted doc id or every later
		// query drags it back into the retrieval filter.
		if err := _jobService.SessionStore.DetachDoc(ctx, job.Payload.DeleteDocID); err != nil {
			logger.Error("Failed to detach deleted document from sessions", "err", err)
		}
	}
	return job
}

func processQuery(ctx context.Context, job jobmodel.Job, logger *logkit.Logger) jobmodel.Job {
	history, err := _jobService.SessionStore.GetHistory(ctx, job.SessionId)
	if err != nil {
		logger.Error("Failed to get session history", "err", err)
	}

	docIDs, err := _jobService.SessionStore.ListAllowedDocIDs(ctx, job.SessionId)
	if err != nil {
		logger.Error("Failed to list session documents", "err", err)
	}
	if len(job.Payload.DocIDs) == 0 {
		job.Payload.DocIDs = docIDs
	} else {
		job.Payload.DocIDs = intersect(job.Payload.DocIDs, docIDs)
	}

	job = _ragService.ProcessQuery(ctx, job, history)

	// The turn is recorded even when the pipeline failed, so the user's
	// message is never lost from the conversation.
	turn := jobmodel.ChatTurn{Prompt: job.Payload.Question, Response: job.Payload.Answer}
	if err := _jobService.SessionStore.AppendChatTurn(ctx, job.SessionId, turn); err != nil {
		logger.Error("Failed to save chat turn", "err", err)
	}
	return job
}

// intersect keeps only the requested doc ids the session actually owns.
func intersect(requested []string, allowed []string) []string {
	allowedSet := make(map[string]bool, len(allowed))
	for _, id := range allowed {
		allowedSet[id] = true
	}
	var out []string
	for _, id := range requested {
		if allowedSet[id] {
			out = append(out, id)
		}
	}
	return out
}

func saveJobState(ctx context.Context, job jobmodel.Job, jobStatus jobmodel.JobStatus) {
	job.Status = jobStatus
	if err := _jobService.JobStore.SaveJob(ctx, job); err != nil {
		logger.Error("Failed to update status in Redis", "err", err)
	}
}
