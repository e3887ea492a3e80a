package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id        string            `json:"id" example:"job_cz109"`
	SessionId string            `json:"session_id" example:"sess_550"`
	Result    Result            `json:"result"`
	Error     *JobOutgoingError `json:"error,omitempty"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type QueryResult struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Sources  []string `json:"sources"`
}

type Result struct {
	Status        string       `json:"status"`
	CurrentStep   string       `json:"current_step,omitempty"`
	QueryResponse *QueryResult `json:"query_response,omitempty"`
	ChunkCount    int          `json:"chunk_count,omitempty"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type SessionResponse struct {
	SessionId string `json:"session_id"`
	UserId    string `json:"user_id"`
}

type HistoryTurn struct {
	Prompt   string `json:"prompt"`
	Response string `json:"response"`
}

type HistoryResponse struct {
	SessionId string        `json:"session_id"`
	Turns     []HistoryTurn `json:"turns"`
}

type DocumentInfo struct {
	DocId      string    `json:"doc_id"`
	Filename   string    `json:"filename"`
	IngestedAt time.Time `json:"ingested_at"`
	ChunkCount int       `json:"chunk_count"`
}

type DocumentListResponse struct {
	UserId    string         `json:"user_id"`
	Documents []DocumentInfo `json:"documents"`
}

// requests---------------------

type QueryRequest struct {
	Question  string   `json:"question" validate:"required"`
	SessionID string   `json:"session_id,omitempty"`
	DocIDs    []string `json:"doc_ids,omitempty"`
	TopK      int      `json:"top_k,omitempty"`
}

type CreateSessionRequest struct {
	UserId string `json:"user_id" validate:"required"`
}

type JobStatusRequest struct {
	JobId string `json:"job_id" validate:"required"`
}
