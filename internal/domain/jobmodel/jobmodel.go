package jobmodel

import (
	"context"
	"time"
)

type JobStatus string
type PipelineStep string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusError    JobStatus = "Error"

	// Query pipeline steps, in execution order. No step re-enters a prior one.
	StepReceived   PipelineStep = "Received"
	StepEnriching  PipelineStep = "Enriching"
	StepRetrieving PipelineStep = "Retrieving"
	StepMasking    PipelineStep = "Masking"
	StepAnswering  PipelineStep = "Answering"
	StepUnmasking  PipelineStep = "Unmasking"
	StepDone       PipelineStep = "Done"
	StepError      PipelineStep = "Error"

	StepIngestInit       PipelineStep = "IngestInit"
	StepIngestProcessing PipelineStep = "IngestProcessing"
	StepDeleteProcessing PipelineStep = "DeleteProcessing"

	JobTypeQuery  JobType = "Query"
	JobTypeIngest JobType = "Ingest"
	JobTypeDelete JobType = "Delete"
)

type Job struct {
	Id          string       `json:"id"`
	SessionId   string       `json:"session_id"`
	UserId      string       `json:"user_id"`
	TraceId     string       `json:"trace_id"`
	JobType     JobType      `json:"job_type"`
	Payload     Payload      `json:"payload"`
	Error       JobError     `json:"error,omitempty"`
	CreatedTime time.Time    `json:"created_time"`
	EndTime     time.Time    `json:"end_time,omitempty"`
	Status      JobStatus    `json:"status"`
	CurrentStep PipelineStep `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// Payload carries the query-side request and the full pipeline provenance for
// query jobs, or the file metadata for ingest/delete jobs.
type Payload struct {
	Question string `json:"question,omitempty"`
	Answer   string `json:"answer,omitempty"`

	DocIDs []string `json:"doc_ids,omitempty"`
	TopK   int      `json:"top_k,omitempty"`

	EnrichedQuery   string   `json:"enriched_query,omitempty"`
	EnrichDegraded  bool     `json:"enrich_degraded,omitempty"`
	RetrievedChunks int      `json:"retrieved_chunks"`
	ProcessedDocIDs []string `json:"processed_doc_ids,omitempty"`
	MaskedAnswer    string   `json:"masked_answer,omitempty"`
	UnmaskedAnswer  string   `json:"unmasked_answer,omitempty"`
	Sources         []string `json:"sources,omitempty"`
	HadError        bool     `json:"had_error"`

	IngestFileName string `json:"ingest_file_name,omitempty"`
	IngestURL      string `json:"ingest_url,omitempty"`
	DeleteDocID    string `json:"delete_doc_id,omitempty"`
	ChunkCount     int    `json:"chunk_count,omitempty"`
}

type ChatTurn struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

type SessionStore interface {
	ValidateSessionId(ctx context.Context, id string) bool
	InitNewSession(ctx context.Context, id string, userId string) error
	AppendChatTurn(ctx context.Context, id string, turn ChatTurn) error
	GetHistory(ctx context.Context, sessionId string) ([]ChatTurn, error)
	ListAllowedDocIDs(ctx context.Context, sessionId string) ([]string, error)
	AttachDoc(ctx context.Context, sessionId string, docId string) error
	DetachDoc(ctx context.Context, docId string) error
}
