package qdrantdb

import (
	"context"
	"fmt"
	"time"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/qdrant/go-client/qdrant"
)

// DeleteByDoc removes every chunk of a document from the user's collection.
// The per-document invariant lives here: after this returns without error,
// a filtered search on that doc_id finds nothing.
func (db *ClientHolder) DeleteByDoc(ctx context.Context, userID string, docID string) error {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	loggr.Debug("Deleting document chunks", "docId", docID)

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: collectionFor(userID),
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("user_id", userID),
				qdrant.NewMatch("doc_id", docID),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("qdrant delete failed: %w", err)
	}
	return nil
}

// ListDocuments folds the user's chunk payloads into one entry per document.
func (db *ClientHolder) ListDocuments(ctx context.Context, userID string) ([]docmodel.Document, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	// A user who never uploaded anything has no collection yet. That is an
	// empty document list, not an error.
	exists, err := db.QObj.CollectionExists(ctx, collectionFor(userID))
	if err != nil {
		loggr.Error("Error checking collection", "error", err)
		return nil, err
	}
	if !exists {
		return []docmodel.Document{}, nil
	}

	points, err := db.QObj.Scroll(ctx, &qdrant.ScrollPoints{
		CollectionName: collectionFor(userID),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("user_id", userID),
			},
		},
		Limit:       qdrant.PtrOf(uint32(10_000)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error scrolling collection", "error", err)
		return nil, err
	}

	return foldDocuments(points, userID), nil
}

// foldDocuments reduces chunk payloads to one entry per document, keeping
// the scroll order of first appearance.
func foldDocuments(points []*qdrant.RetrievedPoint, userID string) []docmodel.Document {
	seen := make(map[string]docmodel.Document)
	var order []string
	for _, p := range points {
		docID := p.Payload["doc_id"].GetStringValue()
		if _, ok := seen[docID]; ok {
			continue
		}
		seen[docID] = docmodel.Document{
			Id:         docID,
			UserId:     userID,
			Filename:   p.Payload["filename"].GetStringValue(),
			IngestedAt: time.Unix(p.Payload["ingested_at"].GetIntegerValue(), 0),
			ChunkCount: int(p.Payload["total_chunks"].GetIntegerValue()),
		}
		order = append(order, docID)
	}

	docs := make([]docmodel.Document, 0, len(order))
	for _, id := range order {
		docs = append(docs, seen[id])
	}
	return docs
}
