package qdrantdb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/pkg/logkit"
	"github.com/cenkalti/backoff/v4"
	"github.com/qdrant/go-client/qdrant"
)

var logger *logkit.Logger
var qdrantInstance *qdrant.Client
var once sync.Once
var dimension = uint64(config.EmbeddingOutputDimensionality)

type ClientHolder struct {
	QObj *qdrant.Client
}

func GetQdrantClient(ctx context.Context) *ClientHolder {

	once.Do(func() {
		logger = logkit.NewLogger("Qdrant")
		res := newClient(ctx)
		if res != nil {
			qdrantInstance = res
			go closeQdrant(ctx, qdrantInstance)
		}
	})

	if qdrantInstance == nil {
		return nil
	}
	return &ClientHolder{
		QObj: qdrantInstance,
	}
}

func newClient(ctx context.Context) *qdrant.Client {

	host := os.Getenv("QDRANT_HOST")
	port, er := strconv.Atoi(os.Getenv("QDRANT_PORT"))

	if host == "" || er != nil {
		host = config.QdrantHost
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil
	}

	if err := healthCheckWithRetry(ctx, client); err != nil {
		logger.Error("Qdrant is unreachable", "error:", err)
		_ = client.Close()
		return nil
	}

	return client
}

func healthCheckWithRetry(ctx context.Context, client *qdrant.Client) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = config.QdrantHealthMaxElapsed

	return backoff.Retry(func() error {
		_, err := client.HealthCheck(ctx)
		return err
	}, backoff.WithContext(exponentialBackoff, ctx))
}

func closeQdrant(ctx context.Context, qi *qdrant.Client) {
	<-ctx.Done()
	logger.Info("Shutting down Qdrant")
	err := qi.Close()
	if err != nil {
		logger.Error("could not close Qdrant: ", "error:", err)
	}
	logger.Info("Closed Qdrant")
}

func collectionFor(userID string) string {
	return config.CollectionPrefix + userID
}

// Search returns the nearest k chunks restricted to the allowed doc ids of
// this user, most similar first. Fewer than k matches is not an error.
func (db *ClientHolder) Search(ctx context.Context, userID string, vectorFloat []float32, docIDs []string, k int) ([]docmodel.Match, error) {
	loggr := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: collectionFor(userID),
		Query:          qdrant.NewQuery(vectorFloat...),
		Limit:          qdrant.PtrOf(uint64(k)),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("user_id", userID),
				qdrant.NewMatchKeywords("doc_id", docIDs...),
			},
		},
		WithPayload: qdrant.NewWithPayload(true),
	})

	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]docmodel.Match, 0, len(result))
	for _, hit := range result {
		matches = append(matches, docmodel.Match{
			Content:    hit.Payload["content"].GetStringValue(),
			DocID:      hit.Payload["doc_id"].GetStringValue(),
			Filename:   hit.Payload["filename"].GetStringValue(),
			ChunkID:    hit.Payload["chunk_id"].GetStringValue(),
			ChunkIndex: int(hit.Payload["chunk_index"].GetIntegerValue()),
			Score:      hit.Score,
		})
	}

	loggr.Debug("Found matches", "count", len(matches))
	return matches, nil
}

func (db *ClientHolder) EnsureCollection(ctx context.Context, userID string) error {
	return createCollection(ctx, db.QObj, collectionFor(userID))
}

func (db *ClientHolder) UpsertBatch(ctx context.Context, userID string, chunks []docmodel.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}

	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(chunk.ChunkId),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"content":      chunk.Content,
				"user_id":      chunk.Doc.UserId,
				"doc_id":       chunk.Doc.Id,
				"filename":     chunk.Doc.Filename,
				"chunk_id":     chunk.ChunkId,
				"chunk_index":  chunk.ChunkIndex,
				"page":         chunk.Page,
				"total_chunks": chunk.Doc.ChunkCount,
				"ingested_at":  chunk.Doc.IngestedAt.Unix(),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: collectionFor(userID),
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})

	if err != nil {
		return fmt.Errorf("qdrant upsert failed: %w", err)
	}

	return nil
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	return err
}
