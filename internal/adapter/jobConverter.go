package adapter

import (
	"fmt"
	"time"

	"github.com/apatwari/docchat/internal/api"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("status/%s", id),
	}
}

func ToAPIResponse(job jobmodel.Job) api.JobResponse {

	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:        string(job.Status),
		CurrentStep:   string(job.CurrentStep),
		QueryResponse: ToQueryResult(job.Payload),
		ChunkCount:    job.Payload.ChunkCount,
	}

	return api.JobResponse{
		Id:        job.Id,
		SessionId: job.SessionId,
		StartTime: job.CreatedTime,
		EndTime:   job.EndTime,
		Error:     errorPtr,
		Result:    result,
	}
}

func ToQueryResult(payload jobmodel.Payload) *api.QueryResult {
	if payload.Answer == "" && len(payload.Sources) == 0 {
		return nil
	}

	return &api.QueryResult{
		Question: payload.Question,
		Answer:   payload.Answer,
		Sources:  payload.Sources,
	}
}

func ToHistoryResponse(sessionId string, turns []jobmodel.ChatTurn) api.HistoryResponse {
	out := make([]api.HistoryTurn, 0, len(turns))
	for _, t := range turns {
		out = append(out, api.HistoryTurn{
			Prompt:   t.Prompt,
			Response: t.Response,
		})
	}
	return api.HistoryResponse{
		SessionId: sessionId,
		Turns:     out,
	}
}

func ToDocumentListResponse(userId string, docs []docmodel.Document) api.DocumentListResponse {
	out := make([]api.DocumentInfo, 0, len(docs))
	for _, d := range docs {
		out = append(out, api.DocumentInfo{
			DocId:      d.Id,
			Filename:   d.Filename,
			IngestedAt: d.IngestedAt,
			ChunkCount: d.ChunkCount,
		})
	}
	return api.DocumentListResponse{
		UserId:    userId,
		Documents: out,
	}
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		SessionId: "",
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status:        string(api.JobStatusError),
			QueryResponse: ToQueryResult(jobmodel.Payload{}),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
