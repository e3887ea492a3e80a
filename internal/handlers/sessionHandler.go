package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/apatwari/docchat/internal/adapter"
	"github.com/apatwari/docchat/internal/adapter/utils"
	"github.com/apatwari/docchat/internal/api"
	"github.com/apatwari/docchat/internal/config"
)

// CreateSessionHandler godoc
// @Summary      Create a new chat session
// @Description  Creates a session owned by the given user and returns its ID.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Param        request  body      api.CreateSessionRequest  true  "Session owner"
// @Success      200      {object}  api.SessionResponse
// @Failure      400      {object}  api.JobResponse
// @Router       /sessions [post]
func CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		var requestData api.CreateSessionRequest
		if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil {
			logRH.Warn("Bad session request", "error:", err)
			WriteErrorResponse(w, http.StatusBadRequest, "", "Bad Request")
			return
		}
		defer r.Body.Close()

		userId := requestData.UserId
		if userId == "" {
			userId = userFrom(r)
		}

		sessionId := utils.GetNewUUID()
		traceId := r.Context().Value(config.TRACE_ID_KEY).(string)
		if !InitNewSession(sessionId, userId, traceId) {
			WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Could not create session")
			return
		}

		writeJsonResponse(w, http.StatusOK, api.SessionResponse{
			SessionId: sessionId,
			UserId:    userId,
		})
	}
}

// GetHistoryHandler godoc
// @Summary      Get the recent chat turns of a session
// @Description  Returns the last turns of the session, oldest first.
// @Tags         Sessions
// @Produce      json
// @Param        id   path      string  true  "Session ID"
// @Success      200  {object}  api.HistoryResponse
// @Failure      404  {object}  api.JobResponse
// @Router       /sessions/{id}/history [get]
func GetHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if validateContext(r.Context()) {
		sessionId := utils.GetChiURLParam(r, "id")
		if sessionId == "" || !ValidateSession(sessionId) {
			WriteErrorResponse(w, http.StatusNotFound, sessionId, "Session not found")
			return
		}

		turns, err := GetSessionHistory(r.Context(), sessionId)
		if err != nil {
			logRH.Error("Failed to get session history", "err", err)
			WriteErrorResponse(w, http.StatusInternalServerError, sessionId, "Could not load history")
			return
		}

		writeJsonResponse(w, http.StatusOK, adapter.ToHistoryResponse(sessionId, turns))
	}
}
