package vectorstore

import (
	"context"

	"github.com/apatwari/docchat/internal/domain/docmodel"
)

// DataProcessor is the vector collection contract. One logical collection
// exists per user; every chunk carries its owning doc_id in the payload so
// deletion of a document removes all of its chunks.
type DataProcessor interface {
	Search(ctx context.Context, userID string, vectorVal []float32, docIDs []string, k int) ([]docmodel.Match, error)

	// Ingest document calls
	EnsureCollection(ctx context.Context, userID string) error
	UpsertBatch(ctx context.Context, userID string, chunks []docmodel.DocChunk, vectors [][]float32) error

	// Document management
	DeleteByDoc(ctx context.Context, userID string, docID string) error
	ListDocuments(ctx context.Context, userID string) ([]docmodel.Document, error)
}
