package ingest

import (
	"context"
	"os"
	"time"

	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/docmodel"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/internal/rag/embedding"
	"github.com/apatwari/docchat/internal/rag/vectorstore"
	"github.com/apatwari/docchat/pkg/logkit"
)

type rawPage struct {
	Number  int    `json:"number"`
	Content string `json:"content"`
}

var logger *logkit.Logger

// ProcessDocumentIngestion runs the full ingest path for one uploaded file:
// extract, split, embed in batches, upsert into the user's collection.
// The uploaded temp file is removed once the chunks are durably stored.
func ProcessDocumentIngestion(ctx context.Context, job jobmodel.Job, e embedding.Embedder, vectorDatabase vectorstore.DataProcessor) jobmodel.Job {
	logger = logkit.NewLogger("Document Ingestion ").With("traceId", ctx.Value(config.TRACE_ID_KEY).(string))

	docName := job.Payload.IngestFileName
	docPath := job.Payload.IngestURL

	logger.Debug("Processing document", "filename", docName, "path", docPath)

	job.CurrentStep = jobmodel.StepIngestProcessing
	err := vectorDatabase.EnsureCollection(ctx, job.UserId)
	if err != nil {
		logger.Error("Error creating collection", "error", err)
		return ingestError(job, "Error preparing document collection")
	}

	docType := getDocType(docPath)
	logger.Debug("Processing document", "type", docType)
	if docType == docmodel.ERR {
		logger.Error("Unsupported document type", "filename", docName)
		return ingestError(job, "Unsupported document type")
	}

	doc := docmodel.Document{
		Id:         job.Id,
		UserId:     job.UserId,
		Filename:   docName,
		IngestedAt: time.Now(),
	}

	rawPages, err := extractText(docPath, docType)
	if err != nil {
		logger.Error("Error processing document", "error", err)
		return ingestError(job, "Error extracting document content")
	}

	logger.Debug("Processing document", "Number of raw pages: ", len(rawPages))
	chunks := PrepareChunks(rawPages, doc)
	if len(chunks) == 0 {
		logger.Error("No extractable text in document", "filename", docName)
		return ingestError(job, "No extractable text in document")
	}

	logger.Debug("Processing document", "Number of chunks: ", len(chunks))
	err = BatchIngest(ctx, job.UserId, chunks, vectorDatabase, e)
	if err != nil {
		logger.Error("Error processing document", "error", err)
		return ingestError(job, "Error storing document chunks")
	}

	err = os.Remove(docPath)
	if err != nil {
		logger.Error("Error removing file", "error", err)
	}

	job.Payload.ChunkCount = len(chunks)
	job.Status = jobmodel.JobStatusComplete
	job.CurrentStep = jobmodel.StepDone
	return job
}

// ProcessDocumentDeletion drops every chunk of one document from the
// user's collection.
func ProcessDocumentDeletion(ctx context.Context, job jobmodel.Job, vectorDatabase vectorstore.DataProcessor) jobmodel.Job {
	logger = logkit.NewLogger("Document Deletion ").With("traceId", ctx.Value(config.TRACE_ID_KEY).(string))

	job.CurrentStep = jobmodel.StepDeleteProcessing
	logger.Debug("Deleting document", "docId", job.Payload.DeleteDocID)

	err := vectorDatabase.DeleteByDoc(ctx, job.UserId, job.Payload.DeleteDocID)
	if err != nil {
		logger.Error("Error deleting document", "error", err)
		return ingestError(job, "Error deleting document")
	}

	job.Status = jobmodel.JobStatusComplete
	job.CurrentStep = jobmodel.StepDone
	return job
}

func ingestError(job jobmodel.Job, msg string) jobmodel.Job {
	job.Status = jobmodel.JobStatusError
	job.CurrentStep = jobmodel.StepError
	job.Error.Message = msg
	return job
}
