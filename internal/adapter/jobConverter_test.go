package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
)

func TestToAPIResponse(t *testing.T) {
	t.Run("completed query job", func(t *testing.T) {
		job := jobmodel.Job{
			Id:          "job-1",
			SessionId:   "sess-1",
			Status:      jobmodel.JobStatusComplete,
			CurrentStep: jobmodel.StepDone,
			CreatedTime: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC),
			Payload: jobmodel.Payload{
				Question: "what was the revenue?",
				Answer:   "Revenue was $10 million.",
				Sources:  []string{"report.pdf"},
			},
		}

		resp := ToAPIResponse(job)

		assert.Equal(t, "job-1", resp.Id)
		assert.Equal(t, "sess-1", resp.SessionId)
		assert.Equal(t, "COMPLETE", resp.Result.Status)
		assert.Nil(t, resp.Error)
		require.NotNil(t, resp.Result.QueryResponse)
		assert.Equal(t, "Revenue was $10 million.", resp.Result.QueryResponse.Answer)
		assert.Equal(t, []string{"report.pdf"}, resp.Result.QueryResponse.Sources)
	})

	t.Run("failed job carries error", func(t *testing.T) {
		job := jobmodel.Job{
			Id:     "job-2",
			Status: jobmodel.JobStatusError,
			Error:  jobmodel.JobError{Code: 500, Message: "Internal Server Error", Retry: true},
		}

		resp := ToAPIResponse(job)

		require.NotNil(t, resp.Error)
		assert.Equal(t, 500, resp.Error.Code)
		assert.True(t, resp.Error.Retry)
	})

	t.Run("queued job has no query result", func(t *testing.T) {
		resp := ToAPIResponse(jobmodel.Job{Id: "job-3", Status: jobmodel.JobStatusQueued})
		assert.Nil(t, resp.Result.QueryResponse)
		assert.Nil(t, resp.Error)
	})
}

func TestToInitJobResponse(t *testing.T) {
	resp := ToInitJobResponse("abc-123")
	assert.Equal(t, "abc-123", resp.Id)
	assert.Equal(t, "status/abc-123", resp.StatusURL)
}

func TestToHistoryResponse(t *testing.T) {
	turns := []jobmodel.ChatTurn{
		{Prompt: "q1", Response: "a1"},
		{Prompt: "q2", Response: "a2"},
	}

	resp := ToHistoryResponse("sess-1", turns)

	assert.Equal(t, "sess-1", resp.SessionId)
	require.Len(t, resp.Turns, 2)
	assert.Equal(t, "q1", resp.Turns[0].Prompt)
	assert.Equal(t, "a2", resp.Turns[1].Response)
}

func TestToHistoryResponse_Empty(t *testing.T) {
	resp := ToHistoryResponse("sess-1", nil)
	// An empty list, not null, keeps the client parsing simple.
	require.NotNil(t, resp.Turns)
	assert.Len(t, resp.Turns, 0)
}

func TestToDocumentListResponse(t *testing.T) {
	ingested := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	docs := []docmodel.Document{
		{Id: "doc-1", Filename: "report.pdf", IngestedAt: ingested, ChunkCount: 12},
	}

	resp := ToDocumentListResponse("user-1", docs)

	assert.Equal(t, "user-1", resp.UserId)
	require.Len(t, resp.Documents, 1)
	assert.Equal(t, "doc-1", resp.Documents[0].DocId)
	assert.Equal(t, 12, resp.Documents[0].ChunkCount)
	assert.Equal(t, ingested, resp.Documents[0].IngestedAt)
}

func TestBadRequest(t *testing.T) {
	resp := BadRequest("job-1", "question is required", 400)

	require.NotNil(t, resp.Error)
	assert.Equal(t, 400, resp.Error.Code)
	assert.Equal(t, "question is required", resp.Error.Message)
	assert.False(t, resp.Error.Retry)
	assert.Equal(t, "Error", resp.Result.Status)
}
