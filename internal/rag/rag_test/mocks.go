package rag_test

import (
	"context"

	"github.com/apatwari/docchat/internal/domain/docmodel"
)

// MockVectorDB implements vectorstore.DataProcessor
type MockVectorDB struct {
	// Control fields to simulate different behaviors
	OnSearch           func(ctx context.Context, userID string, vectorVal []float32, docIDs []string, k int) ([]docmodel.Match, error)
	OnEnsureCollection func(ctx context.Context, userID string) error
	OnUpsertBatch      func(ctx context.Context, userID string, chunks []docmodel.DocChunk, vectors [][]float32) error
	OnDeleteByDoc      func(ctx context.Context, userID string, docID string) error
	OnListDocuments    func(ctx context.Context, userID string) ([]docmodel.Document, error)
}

func (m *MockVectorDB) Search(ctx context.Context, userID string, v []float32, docIDs []string, k int) ([]docmodel.Match, error) {
	if m.OnSearch != nil {
		return m.OnSearch(ctx, userID, v, docIDs, k)
	}
	return []docmodel.Match{{Content: "default context", Filename: "default.pdf"}}, nil
}

func (m *MockVectorDB) EnsureCollection(ctx context.Context, userID string) error {
	if m.OnEnsureCollection != nil {
		return m.OnEnsureCollection(ctx, userID)
	}
	return nil
}

func (m *MockVectorDB) UpsertBatch(ctx context.Context, userID string, chunks []docmodel.DocChunk, vectors [][]float32) error {
	if m.OnUpsertBatch != nil {
		return m.OnUpsertBatch(ctx, userID, chunks, vectors)
	}
	return nil
}

func (m *MockVectorDB) DeleteByDoc(ctx context.Context, userID string, docID string) error {
	if m.OnDeleteByDoc != nil {
		return m.OnDeleteByDoc(ctx, userID, docID)
	}
	return nil
}

func (m *MockVectorDB) ListDocuments(ctx context.Context, userID string) ([]docmodel.Document, error) {
	if m.OnListDocuments != nil {
		return m.OnListDocuments(ctx, userID)
	}
	return nil, nil
}

type MockEmbedder struct {
	OnGetEmbedding   func(ctx context.Context, text string) ([]float32, error)
	OnBatchEmbedding func(ctx context.Context, chunks []string) ([][]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, query)
	}
	return []float32{0.1}, nil
}

func (m *MockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	if m.OnBatchEmbedding != nil {
		return m.OnBatchEmbedding(ctx, chunks)
	}
	// Return dummy vectors matching chunk size
	return make([][]float32, len(chunks)), nil
}

// MockLLM implements llm.Provider. The pipeline calls the same provider for
// enrichment and answering; tests branch on the system prompt.
type MockLLM struct {
	OnComplete func(ctx context.Context, system string, user string) (string, error)
}

func (m *MockLLM) Complete(ctx context.Context, system string, user string) (string, error) {
	if m.OnComplete != nil {
		return m.OnComplete(ctx, system, user)
	}
	return `{"title":"t","answer":"mocked llm response"}`, nil
}
