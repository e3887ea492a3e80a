package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/internal/rag/embedding"
	"github.com/apatwari/docchat/internal/rag/vectorstore"
	"github.com/apatwari/docchat/pkg/logkit"
	"github.com/google/uuid"
)

//splitter

func splitTextIntoChunks(text string, limit int, overlap int) []string {
	var chunks []string

	// If text is already small enough, just return it
	if len(text) <= limit {
		return []string{text}
	}

	// Separators ordered from "best" to "worst" for semantic meaning
	separators := []string{"\n\n", "\n", ". ", " ", ""}

	var splitChar string
	found := false
	for _, s := range separators {
		if strings.Contains(text, s) {
			splitChar = s
			found = true
			break
		}
	}

	if !found {
		// Hard cut if no separator found (rare)
		return []string{text[:limit]}
	}

	parts := strings.Split(text, splitChar)
	var currentChunk strings.Builder

	for _, part := range parts {
		if currentChunk.Len()+len(part)+len(splitChar) > limit {
			if currentChunk.Len() > 0 {
				chunks = append(chunks, currentChunk.String())
			}

			// Overlap: seed the next chunk with the tail of the previous one
			overlapContent := ""
			if currentChunk.Len() > overlap {
				overlapContent = currentChunk.String()[currentChunk.Len()-overlap:]
			}

			currentChunk.Reset()
			currentChunk.WriteString(overlapContent)
		}

		if currentChunk.Len() > 0 && splitChar != "" {
			currentChunk.WriteString(splitChar)
		}
		currentChunk.WriteString(part)
	}

	if currentChunk.Len() > 0 {
		chunks = append(chunks, currentChunk.String())
	}

	return chunks
}

func getDocType(docPath string) docmodel.DocType {
	ext := strings.ToLower(filepath.Ext(docPath))
	switch ext {
	case ".pdf":
		return docmodel.PDF
	case ".docx", ".txt", ".rtf":
		return docmodel.DOCX
	default:
		return docmodel.ERR
	}
}

func extractText(path string, contentType docmodel.DocType) ([]rawPage, error) {
	switch contentType {
	case docmodel.PDF:
		return extractPDF(path)
	case docmodel.DOCX:
		return extractdocxTxtRtf(path)
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// PrepareChunks splits every page and maps the pieces into DocChunks.
// The total chunk count is stamped onto each chunk's Document so the
// vector payloads can report it without a second pass over the store.
func PrepareChunks(pages []rawPage, doc docmodel.Document) []docmodel.DocChunk {
	pageChunks := make([][]string, len(pages))
	total := 0
	for i, page := range pages {
		if strings.TrimSpace(page.Content) == "" {
			continue
		}
		pageChunks[i] = splitTextIntoChunks(page.Content, config.MaxChunkSize, config.ChunkOverlap)
		total += len(pageChunks[i])
	}
	doc.ChunkCount = total

	var allChunks []docmodel.DocChunk
	ordinal := 0
	for i, page := range pages {
		for _, text := range pageChunks[i] {
			allChunks = append(allChunks, docmodel.DocChunk{
				Doc:        doc,
				ChunkId:    chunkID(doc.Id, ordinal),
				Content:    text,
				Page:       page.Number,
				ChunkIndex: ordinal,
			})
			ordinal++
		}
	}

	return allChunks
}

// chunkID derives a stable point id from the document and the chunk ordinal,
// so re-ingesting the same document overwrites its chunks instead of
// duplicating them. Qdrant requires point ids to be UUIDs, hence v5 over the
// doc_id_chunk_i name rather than the name itself.
func chunkID(docID string, ordinal int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s_chunk_%d", docID, ordinal))).String()
}

func BatchIngest(ctx context.Context, userID string, chunks []docmodel.DocChunk, vectorDatabase vectorstore.DataProcessor, embedder embedding.Embedder) error {
	logger = logkit.NewLogger("Batch Ingestion ").With("traceId", ctx.Value(config.TRACE_ID_KEY).(string))

	batchSize := config.IngestBatchSize

	for i := 0; i < len(chunks); i += batchSize {
		end := i + batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		currentBatch := chunks[i:end]

		//TODO: each batch can be its own go routine once memory use is measured

		var texts []string
		for _, c := range currentBatch {
			if c.Content != "" {
				texts = append(texts, c.Content)
			}
		}

		logger.Debug("Starting embedding call", "current batch length ", len(currentBatch), "length of texts", len(texts))
		vectors, err := embedder.BatchEmbedding(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding batch failed: %w", err)
		}

		err = vectorDatabase.UpsertBatch(ctx, userID, currentBatch, vectors)
		if err != nil {
			return fmt.Errorf("upserting to qdrant failed: %w", err)
		}
	}

	return nil
}
