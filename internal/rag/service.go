package rag

import (
	"context"
	"errors"
	"time"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/metrics"
	"github.com/apatwari/docchat/internal/rag/embedding"
	"github.com/apatwari/docchat/internal/rag/ingest"
	"github.com/apatwari/docchat/internal/rag/llm"
	"github.com/apatwari/docchat/internal/rag/vectorstore"
	"github.com/apatwari/docchat/pkg/logkit"
)

/*
ARCHITECTURE NOTE: OPAQUE INTERFACE PATTERN
---------------------------------------------------------

1. Service (Interface):
  - The PUBLIC contract the worker calls.
  - It defines the behavior, not the wiring.

2. service (Private Struct):
  - The PRIVATE implementation holding the state (vector store,
    LLM provider, embedder).
  - Lowercase so external packages cannot reach our dependencies
    directly.

3. Pointer Receiver (*service):
  - Methods on (*service) satisfy Service implicitly.

4. Dependency Injection (NewService):
  - Links the private struct to the public interface and lets tests
    swap real clients for mocks without touching the worker.
*/

// Service is all the worker needs - it doesn't know the llm or the vector store
type Service interface {
	ProcessQuery(ctx context.Context, job jobmodel.Job, history []jobmodel.ChatTurn) jobmodel.Job
	IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job
	DeleteDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job
}

type service struct {
	vectorDB    vectorstore.DataProcessor
	llmProvider llm.Provider
	embedder    embedding.Embedder
	auditDir    string
	logger      *logkit.Logger
}

// NewService constructor
func NewService(vector vectorstore.DataProcessor, llm llm.Provider, em embedding.Embedder) Service {
	return &service{
		vectorDB:    vector,
		llmProvider: llm,
		embedder:    em,
		auditDir:    config.PIIAuditDir(),
		logger:      logkit.NewLogger("RAG Service :"),
	}
}

// ProcessQuery runs the query pipeline front to back. Enrichment degrades
// softly; a retrieval or LLM failure ends the job with the failure answer so
// the caller always gets a response to show.
func (s *service) ProcessQuery(ctx context.Context, jobt jobmodel.Job, history []jobmodel.ChatTurn) jobmodel.Job {
	inMethodLogger := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY).(string), "JobId", jobt.Id)

	processContext, cancel := context.WithTimeout(ctx, config.PipelineTimeout)
	defer cancel()

	// Enrichment
	enriched := s.executeEnrichStep(processContext, inMethodLogger, &jobt)

	// Retrieval
	matches, err := s.executeRetrieveStep(processContext, inMethodLogger, &jobt, enriched)
	if err != nil {
		jobt.Payload.Answer = config.FailureAnswer
		jobt.Payload.HadError = true
		return s.jobError(jobt, err, "VECTOR_DB_FAILURE", true)
	}

	// Masking
	maskedContext, mapping := s.executeMaskStep(processContext, inMethodLogger, &jobt, matches)

	// LLM Generation
	answer, err := s.executeAnswerStep(processContext, inMethodLogger, &jobt, maskedContext, history)
	if err != nil {
		jobt.Payload.Answer = config.FailureAnswer
		jobt.Payload.HadError = true
		return s.jobError(jobt, err, "LLM_GENERATION_FAILURE", true)
	}

	// Unmasking and numeric resolution
	final := s.executeUnmaskStep(processContext, inMethodLogger, &jobt, answer, mapping)

	return returnOutput(jobt, final)
}

func (s *service) IngestDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	start := time.Now()
	defer func() { metrics.CaptureStageMetrics("document_ingestion", time.Since(start)) }()
	j := ingest.ProcessDocumentIngestion(ctx, job, s.embedder, s.vectorDB)
	if j.Status != jobmodel.JobStatusComplete {
		return s.jobError(j, errors.New("ingest document failed"), "INGESTION_FAILURE", true)
	}
	return j
}

func (s *service) DeleteDocument(ctx context.Context, job jobmodel.Job) jobmodel.Job {
	start := time.Now()
	defer func() { metrics.CaptureStageMetrics("document_deletion", time.Since(start)) }()
	j := ingest.ProcessDocumentDeletion(ctx, job, s.vectorDB)
	if j.Status != jobmodel.JobStatusComplete {
		return s.jobError(j, errors.New("delete document failed"), "DELETION_FAILURE", true)
	}
	return j
}
