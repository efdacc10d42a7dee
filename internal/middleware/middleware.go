package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/CommunityRAG/internal/adapter/utils"
	"github.com/akolanti/CommunityRAG/internal/handlers"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
}

type step func(requestResponseStruct) requestResponseStruct

// public surface: trace id and per IP rate limit
var (
	HealthHandler      = Public(handlers.GetHandler)
	ChatHandler        = Public(handlers.ChatHandler)
	GreetingHandler    = Public(handlers.GreetingHandler)
	CommunitiesHandler = Public(handlers.CommunitiesHandler)
)

// admin surface: trace id and bearer or basic auth
var (
	GetStatusHandler       = Admin(handlers.GetStatusHandler)
	PostDocumentHandler    = Admin(handlers.PostDocumentHandler)
	PostBatchHandler       = Admin(handlers.PostBatchHandler)
	ListDocumentsHandler   = Admin(handlers.ListDocumentsHandler)
	DeleteDocumentHandler  = Admin(handlers.DeleteDocumentHandler)
	ListCommunitiesHandler = Admin(handlers.ListCommunitiesHandler)
	CreateCommunityHandler = Admin(handlers.CreateCommunityHandler)
	UpdateCommunityHandler = Admin(handlers.UpdateCommunityHandler)
	DeleteCommunityHandler = Admin(handlers.DeleteCommunityHandler)
)

func Public(next http.HandlerFunc) http.HandlerFunc {
	return Wrap(next, injectTrace, rateLimiter)
}

func Admin(next http.HandlerFunc) http.HandlerFunc {
	return Wrap(next, injectTrace, authenticate)
}

// Wrap runs the steps in order and stops at the first one that marks the request bad.
func Wrap(next http.HandlerFunc, steps ...step) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec}, steps)

		if !handleBadRequest(re) {
			countRequest(re.req, rec.Status)
			return
		}
		next(rec, re.req)

		countRequest(re.req, rec.Status)
	}
}

func processRequest(re requestResponseStruct, steps []step) requestResponseStruct {
	re.logger = logger_i.NewLogger("middleware")
	re.logger.Debug("New request received")
	for _, s := range steps {
		re = s(re)
		if re.badRequest.isBadRequest {
			return re
		}
	}
	return re
}

func countRequest(r *http.Request, status int) {
	metrics.HttpRequestsTotal.WithLabelValues(utils.GetRoutePattern(r), strconv.Itoa(status)).Inc()
}
