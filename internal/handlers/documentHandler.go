package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/apatwari/docchat/internal/adapter"
	"github.com/apatwari/docchat/internal/adapter/utils"
	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
)

// PostDocumentHandler handles the uploading of PDF or DOCX documents for ingestion.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data, saves it to a temporary directory, and queues an ingestion job.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Param        document    formData  file    true   "The PDF or DOCX file to upload"
// @Param        session_id  formData  string  false  "Session to attach the document to once ingested"
// @Success      202  {object}  api.InitJobResponse  "Accepted - returns job id"
// @Failure      400  {object}  api.JobResponse      "Bad Request - Missing fields or file too large"
// @Failure      500  {object}  api.JobResponse      "Internal Server Error - Storage or Write Error"
// @Router       /documents [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {

		targetDir, errString := getTargetDirectory()
		if errString != "" {
			logRH.Error("Couldn't get target directory :", "err", errString)
			WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
			return
		}

		const maxUploadSize = 32 << 20 //32mb
		err := r.ParseMultipartForm(maxUploadSize)
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
			return
		}

		sessionId := r.FormValue("session_id")
		if sessionId != "" && !ValidateSession(sessionId) {
			WriteErrorResponse(w, http.StatusBadRequest, sessionId, "Unknown session")
			return
		}

		fileReader, fileMetadata, err := r.FormFile("document")
		if err != nil {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
			return
		}
		defer fileReader.Close()

		filename := fmt.Sprintf("%d-%s", time.Now().UnixNano(), fileMetadata.Filename)
		tempFilePath := filepath.Join(targetDir, filename)
		destinationFileWriter, err := os.Create(tempFilePath)
		if err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Storage error")
			return
		}
		defer destinationFileWriter.Close()

		if _, err := io.Copy(destinationFileWriter, fileReader); err != nil {
			WriteErrorResponse(w, http.StatusInternalServerError, fileMetadata.Filename, "Write error")
			return
		}

		newJob := newJobData{
			id:             utils.GetNewUUID(),
			sessionId:      sessionId,
			userId:         userFrom(r),
			traceId:        r.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:        jobmodel.JobTypeIngest,
			documentName:   fileMetadata.Filename,
			documentSource: tempFilePath,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", r.RemoteAddr)
}

// ListDocumentsHandler godoc
// @Summary      List the caller's ingested documents
// @Description  Folds the caller's stored chunks into one entry per document.
// @Tags         Documents
// @Produce      json
// @Success      200  {object}  api.DocumentListResponse
// @Failure      500  {object}  api.JobResponse
// @Router       /documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		userId := userFrom(r)
		docs, err := ListUserDocuments(r.Context(), userId)
		if err != nil {
			logRH.Error("Failed listing documents", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, "", "Could not list documents")
			return
		}
		writeJsonResponse(w, http.StatusOK, adapter.ToDocumentListResponse(userId, docs))
	}
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document and all of its chunks
// @Description  Queues a deletion job for the document. Every chunk with this doc id is removed.
// @Tags         Documents
// @Produce      json
// @Param        id   path      string  true  "Document ID"
// @Success      202  {object}  api.InitJobResponse
// @Failure      400  {object}  api.JobResponse
// @Router       /documents/{id} [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		docId := utils.GetChiURLParam(r, "id")
		if docId == "" {
			WriteErrorResponse(w, http.StatusBadRequest, "", "Document id is required")
			return
		}

		newJob := newJobData{
			id:          utils.GetNewUUID(),
			userId:      userFrom(r),
			traceId:     r.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:     jobmodel.JobTypeDelete,
			deleteDocId: docId,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
	}
}
