package middleware

import (
	"net/http"
	"strconv"

	"github.com/apatwari/docchat/internal/handlers"
	"github.com/apatwari/docchat/internal/metrics"
	"github.com/apatwari/docchat/pkg/logkit"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logkit.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var GetHandler = Wrap(handlers.GetHandler)

var QueryHandler = Wrap(handlers.QueryHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var PostDocumentHandler = Wrap(handlers.PostDocumentHandler)
var ListDocumentsHandler = Wrap(handlers.ListDocumentsHandler)
var DeleteDocumentHandler = Wrap(handlers.DeleteDocumentHandler)
var CreateSessionHandler = Wrap(handlers.CreateSessionHandler)
var GetHistoryHandler = Wrap(handlers.GetHistoryHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: 200} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
			return
		}
		next(rec, re.req)

		metrics.HttpRequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logkit.NewLogger("middleware")
	re.logger.Info("New request received")
	re = injectTrace(re)
	re = authenticate(re)
	if re.badRequest.isBadRequest {
		return re //stop if auth fails, Wrap writes the response
	}
	re = rateLimiter(re)
	return re
}
