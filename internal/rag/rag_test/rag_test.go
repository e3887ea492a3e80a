package rag_test

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/rag"
)

func isEnrichPrompt(system string) bool {
	return strings.Contains(system, "query rewriting")
}

func queryJob(docIDs []string) jobmodel.Job {
	return jobmodel.Job{
		Id:      "test-job",
		UserId:  "user-1",
		TraceId: "test-trace",
		JobType: jobmodel.JobTypeQuery,
		Status:  jobmodel.JobStatusQueued,
		Payload: jobmodel.Payload{
			Question: "what was the revenue?",
			DocIDs:   docIDs,
		},
	}
}

func TestProcessQuery_Scenarios(t *testing.T) {
	tests := []struct {
		name           string
		docIDs         []string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB, l *MockLLM)
		expectedStep   jobmodel.PipelineStep
		expectedStatus jobmodel.JobStatus
		expectedAnswer string
		wantDegraded   bool
		wantHadError   bool
	}{
		{
			name:   "Success_Full_Flow_With_Unmasking",
			docIDs: []string{"doc-1"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, userID string, emb []float32, docIDs []string, k int) ([]docmodel.Match, error) {
					return []docmodel.Match{
						{Content: "Revenue was $5 million.", Filename: "report.pdf", DocID: "doc-1"},
					}, nil
				}
				l.OnComplete = func(ctx context.Context, system string, user string) (string, error) {
					if isEnrichPrompt(system) {
						return "annual revenue total", nil
					}
					if !strings.Contains(user, "[MONEY_1]") {
						return "", errors.New("context was not masked")
					}
					return `{"title":"Revenue","answer":"Total revenue was [MONEY_1].","computeNeeded":false}`, nil
				}
			},
			expectedStep:   jobmodel.StepDone,
			expectedStatus: jobmodel.JobStatusQueued,
			expectedAnswer: "Total revenue was $5 million.",
		},
		{
			name:   "No_Documents_Never_Touches_VectorStore",
			docIDs: nil,
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("embedder must not be called")
				}
				v.OnSearch = func(ctx context.Context, userID string, emb []float32, docIDs []string, k int) ([]docmodel.Match, error) {
					return nil, errors.New("vector store must not be called")
				}
				l.OnComplete = func(ctx context.Context, system string, user string) (string, error) {
					if isEnrichPrompt(system) {
						return "annual revenue total", nil
					}
					return `{"title":"n/a","answer":"Cannot answer from the provided documents."}`, nil
				}
			},
			expectedStep:   jobmodel.StepDone,
			expectedStatus: jobmodel.JobStatusQueued,
			expectedAnswer: "Cannot answer from the provided documents.",
		},
		{
			name:   "Enrich_Failure_Degrades_Softly",
			docIDs: []string{"doc-1"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnComplete = func(ctx context.Context, system string, user string) (string, error) {
					if isEnrichPrompt(system) {
						return "", errors.New("model overloaded")
					}
					return `{"title":"t","answer":"still answered"}`, nil
				}
			},
			expectedStep:   jobmodel.StepDone,
			expectedStatus: jobmodel.JobStatusQueued,
			expectedAnswer: "still answered",
			wantDegraded:   true,
		},
		{
			name:   "Failure_Embedding",
			docIDs: []string{"doc-1"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				e.OnGetEmbedding = func(ctx context.Context, text string) ([]float32, error) {
					return nil, errors.New("api limit")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedAnswer: config.FailureAnswer,
			wantHadError:   true,
		},
		{
			name:   "Failure_Vector_Search",
			docIDs: []string{"doc-1"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				v.OnSearch = func(ctx context.Context, userID string, emb []float32, docIDs []string, k int) ([]docmodel.Match, error) {
					return nil, errors.New("db timeout")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedAnswer: config.FailureAnswer,
			wantHadError:   true,
		},
		{
			name:   "Failure_LLM_Sets_Failure_Answer",
			docIDs: []string{"doc-1"},
			setupMocks: func(e *MockEmbedder, v *MockVectorDB, l *MockLLM) {
				l.OnComplete = func(ctx context.Context, system string, user string) (string, error) {
					if isEnrichPrompt(system) {
						return "enriched", nil
					}
					return "", errors.New("provider down")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
			expectedAnswer: config.FailureAnswer,
			wantHadError:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			mLLM := &MockLLM{}

			tt.setupMocks(mEmbed, mVec, mLLM)

			s := rag.NewService(mVec, mLLM, mEmbed)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
			result := s.ProcessQuery(ctx, queryJob(tt.docIDs), nil)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStep != "" && result.CurrentStep != tt.expectedStep {
				t.Errorf("Step got %v, want %v", result.CurrentStep, tt.expectedStep)
			}
			if tt.expectedAnswer != "" && result.Payload.Answer != tt.expectedAnswer {
				t.Errorf("Answer got %q, want %q", result.Payload.Answer, tt.expectedAnswer)
			}
			if result.Payload.EnrichDegraded != tt.wantDegraded {
				t.Errorf("EnrichDegraded got %v, want %v", result.Payload.EnrichDegraded, tt.wantDegraded)
			}
			if result.Payload.HadError != tt.wantHadError {
				t.Errorf("HadError got %v, want %v", result.Payload.HadError, tt.wantHadError)
			}
			if tt.expectedStatus == jobmodel.JobStatusError && result.Error.Code != http.StatusInternalServerError {
				t.Errorf("Error Code got %d, want %d", result.Error.Code, http.StatusInternalServerError)
			}
		})
	}
}

func TestProcessQuery_ComputeFlow(t *testing.T) {
	tests := []struct {
		name       string
		llmAnswer  string
		wantAnswer string
	}{
		{
			// revenue=10M, cost=4M scale to 1 and 0, so a model computing on
			// scaled stand-ins renders 1.000; that gets swapped for the real
			// difference.
			name:       "Scaled_Rendering_Replaced",
			llmAnswer:  "The difference is 1.000.",
			wantAnswer: "The difference is 6,000,000.",
		},
		{
			name:       "No_Rendering_Appends_Result",
			llmAnswer:  "The revenue exceeds the cost.",
			wantAnswer: "The revenue exceeds the cost.\n\nComputed result: 6,000,000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mVec := &MockVectorDB{
				OnSearch: func(ctx context.Context, userID string, emb []float32, docIDs []string, k int) ([]docmodel.Match, error) {
					return []docmodel.Match{
						{Content: "Revenue was $10 million. Cost was $4 million.", Filename: "fin.pdf"},
					}, nil
				},
			}
			mLLM := &MockLLM{
				OnComplete: func(ctx context.Context, system string, user string) (string, error) {
					if isEnrichPrompt(system) {
						return "revenue vs cost", nil
					}
					return `{"title":"Difference",` +
						`"answer":"` + tt.llmAnswer + `",` +
						`"formula":"revenue - cost",` +
						`"variables":{"revenue":"[MONEY_1]","cost":"[MONEY_2]"},` +
						`"computeNeeded":"True"}`, nil
				},
			}

			s := rag.NewService(mVec, mLLM, &MockEmbedder{})
			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "compute-trace")

			result := s.ProcessQuery(ctx, queryJob([]string{"doc-1"}), nil)

			if result.Status == jobmodel.JobStatusError {
				t.Fatalf("pipeline errored: %+v", result.Error)
			}
			if result.Payload.Answer != tt.wantAnswer {
				t.Errorf("Answer got %q, want %q", result.Payload.Answer, tt.wantAnswer)
			}
		})
	}
}

func TestProcessQuery_SourcesAndProvenance(t *testing.T) {
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, userID string, emb []float32, docIDs []string, k int) ([]docmodel.Match, error) {
			return []docmodel.Match{
				{Content: "chunk a", Filename: "a.pdf"},
				{Content: "chunk b", Filename: "b.pdf"},
				{Content: "chunk c", Filename: "a.pdf"},
			}, nil
		},
	}
	s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "prov-trace")

	result := s.ProcessQuery(ctx, queryJob([]string{"doc-1", "doc-2"}), nil)

	if result.Payload.RetrievedChunks != 3 {
		t.Errorf("RetrievedChunks = %d, want 3", result.Payload.RetrievedChunks)
	}
	if len(result.Payload.Sources) != 2 {
		t.Errorf("Sources = %v, want two unique filenames", result.Payload.Sources)
	}
	if len(result.Payload.ProcessedDocIDs) != 2 {
		t.Errorf("ProcessedDocIDs = %v, want the requested ids", result.Payload.ProcessedDocIDs)
	}
}

func TestProcessQuery_TopKLargerThanAvailable(t *testing.T) {
	var requestedK int
	mVec := &MockVectorDB{
		OnSearch: func(ctx context.Context, userID string, emb []float32, docIDs []string, k int) ([]docmodel.Match, error) {
			requestedK = k
			return []docmodel.Match{{Content: "the only chunk", Filename: "a.pdf"}}, nil
		},
	}
	s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "topk-trace")

	job := queryJob([]string{"doc-1"})
	job.Payload.TopK = 50
	result := s.ProcessQuery(ctx, job, nil)

	if requestedK != 50 {
		t.Errorf("search k = %d, want 50", requestedK)
	}
	if result.Payload.HadError {
		t.Error("fewer matches than k should not be an error")
	}
	if result.Payload.RetrievedChunks != 1 {
		t.Errorf("RetrievedChunks = %d, want 1", result.Payload.RetrievedChunks)
	}
}

func TestIngestDocument_Scenarios(t *testing.T) {
	dummyFile := "test_ingest.txt"

	tests := []struct {
		name           string
		setupMocks     func(e *MockEmbedder, v *MockVectorDB)
		expectedStatus jobmodel.JobStatus
	}{
		{
			name:           "Ingestion_Success",
			setupMocks:     func(e *MockEmbedder, v *MockVectorDB) {},
			expectedStatus: jobmodel.JobStatusComplete,
		},
		{
			name: "Failure_Collection_Creation",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnEnsureCollection = func(ctx context.Context, userID string) error {
					return errors.New("connection refused")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
		},
		{
			name: "Failure_Batch_Upsert",
			setupMocks: func(e *MockEmbedder, v *MockVectorDB) {
				v.OnUpsertBatch = func(ctx context.Context, userID string, chunks []docmodel.DocChunk, vectors [][]float32) error {
					return errors.New("disk full")
				}
			},
			expectedStatus: jobmodel.JobStatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.WriteFile(dummyFile, []byte("test content for ingestion"), 0644)
			defer os.Remove(dummyFile)

			mEmbed := &MockEmbedder{}
			mVec := &MockVectorDB{}
			tt.setupMocks(mEmbed, mVec)

			s := rag.NewService(mVec, &MockLLM{}, mEmbed)

			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "ingest-trace")
			job := jobmodel.Job{
				Id:     "ingest-job-1",
				UserId: "user-1",
				Payload: jobmodel.Payload{
					IngestFileName: "test_ingest.txt",
					IngestURL:      dummyFile,
				},
			}

			result := s.IngestDocument(ctx, job)

			if result.Status != tt.expectedStatus {
				t.Errorf("Status got %v, want %v", result.Status, tt.expectedStatus)
			}
			if tt.expectedStatus == jobmodel.JobStatusComplete && result.Payload.ChunkCount == 0 {
				t.Error("expected a chunk count on successful ingestion")
			}
		})
	}
}

func TestDeleteDocument(t *testing.T) {
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "delete-trace")
	job := jobmodel.Job{
		Id:     "delete-job-1",
		UserId: "user-1",
		Payload: jobmodel.Payload{
			DeleteDocID: "doc-9",
		},
	}

	t.Run("Success", func(t *testing.T) {
		var deleted string
		mVec := &MockVectorDB{
			OnDeleteByDoc: func(ctx context.Context, userID string, docID string) error {
				deleted = docID
				return nil
			},
		}
		s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})

		result := s.DeleteDocument(ctx, job)
		if result.Status != jobmodel.JobStatusComplete {
			t.Errorf("Status got %v, want %v", result.Status, jobmodel.JobStatusComplete)
		}
		if deleted != "doc-9" {
			t.Errorf("deleted doc id = %q, want doc-9", deleted)
		}
	})

	t.Run("Failure", func(t *testing.T) {
		mVec := &MockVectorDB{
			OnDeleteByDoc: func(ctx context.Context, userID string, docID string) error {
				return errors.New("unreachable")
			},
		}
		s := rag.NewService(mVec, &MockLLM{}, &MockEmbedder{})

		result := s.DeleteDocument(ctx, job)
		if result.Status != jobmodel.JobStatusError {
			t.Errorf("Status got %v, want %v", result.Status, jobmodel.JobStatusError)
		}
	})
}
