package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/apatwari/docchat/internal/adapter"
	"github.com/apatwari/docchat/internal/adapter/utils"
	"github.com/apatwari/docchat/internal/api"
	"github.com/apatwari/docchat/internal/config"
	"github.com/apatwari/docchat/internal/domain/jobmodel"
	"github.com/apatwari/docchat/pkg/logkit"
)

var logRH *logkit.Logger

// jobs get built from this so the handler surface stays decoupled from the
// job model
type newJobData struct {
	id             string
	sessionId      string
	userId         string
	question       string
	docIDs         []string
	topK           int
	isNewSession   bool
	traceId        string
	jobType        jobmodel.JobType
	documentName   string
	documentSource string
	deleteDocId    string
}

func GetHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// QueryHandler godoc
// @Summary      Ask a question over the session's documents
// @Description  Accepts a question, initializes a background query job, and returns a job ID to track status.
// @Tags         Query
// @Accept       json
// @Produce      json
// @Param        request  body      api.QueryRequest     true  "Question and optional session ID"
// @Success      202      {object}  api.InitJobResponse  "Job successfully created"
// @Failure      400      {object}  api.JobResponse      "Invalid request data or session ID"
// @Router       /query [post]
func QueryHandler(w http.ResponseWriter, request *http.Request) {
	if validateContext(request.Context()) {

		var requestData api.QueryRequest
		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logRH.Error("Couldn't close the query handler reader :", err)
			}
		}(request.Body)
		if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil || !ValidateQueryRequest(requestData) {
			logRH.Warn("Bad Query Request: ", "error:", err, "request data:", requestData)
			WriteErrorResponse(w, http.StatusBadRequest, requestData.SessionID, "Bad Request")
			return
		}

		sessionId := requestData.SessionID
		isNewSession := false
		if sessionId == "" {
			sessionId = utils.GetNewUUID()
			logRH.Debug(" New session : ", "sessionId:", sessionId)
			isNewSession = true
		}

		newJob := newJobData{
			id:           utils.GetNewUUID(),
			sessionId:    sessionId,
			userId:       userFrom(request),
			question:     requestData.Question,
			docIDs:       requestData.DocIDs,
			topK:         requestData.TopK,
			isNewSession: isNewSession,
			traceId:      request.Context().Value(config.TRACE_ID_KEY).(string),
			jobType:      jobmodel.JobTypeQuery,
		}
		CreateNewJob(newJob)
		writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
		return
	}
	logRH.Warn("Invalid Context by request ", request.RemoteAddr)
}

// GetStatusHandler godoc
// @Summary      Get job status
// @Description  Retrieves the current status of a specific job using its ID.
// @Tags         Job Status
// @Accept       json
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse  "The current status of the job"
// @Failure      404  {object}  api.JobResponse  "Job not found (returns Error object within JobResponse)"
// @Router       /status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		idString := utils.GetChiURLParam(r, "id")
		result, isFound := validateId(idString, r.Context().Value(config.TRACE_ID_KEY).(string))

		logRH.Debug("Get Status Request:", "URL path", r.URL.Path)
		if !isFound {
			WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
	}
}
