package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/akolanti/CommunityRAG/internal/adapter"
	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
)

func writeJsonResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Log the error but can't send a clean status code now
		logRH.Error("Error encoding response", "error", err)
	}
}

func validateContext(ctx context.Context) bool {
	if ctx.Err() != nil {
		logRH.WithTrace(ctx).Warn("context error", "error", ctx.Err())
		return false
	}
	return true
}

func WriteErrorResponse(w http.ResponseWriter, httpCode int, id string, error string) {
	writeJsonResponse(w, httpCode, adapter.BadRequest(id, error, httpCode))
}

// statusFor maps the service sentinels onto HTTP codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, commonModels.ErrValidation), errors.Is(err, commonModels.ErrUnsupportedFormat):
		return http.StatusBadRequest
	case errors.Is(err, commonModels.ErrEmptyExtraction):
		return http.StatusUnprocessableEntity
	case errors.Is(err, commonModels.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, commonModels.ErrRateLimitedUpstream):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, id string, err error) {
	code := statusFor(err)
	log := logRH.WithTrace(r.Context())
	if code >= http.StatusInternalServerError {
		log.Error("request failed", "path", r.URL.Path, "error", err)
		WriteErrorResponse(w, code, id, http.StatusText(code))
		return
	}
	log.Warn("request rejected", "path", r.URL.Path, "error", err)
	WriteErrorResponse(w, code, id, err.Error())
}

func traceOf(r *http.Request) string {
	trace, _ := r.Context().Value(config.TRACE_ID_KEY).(string)
	return trace
}

func getTargetDirectory() (string, string) {
	targetDir := config.Env("UPLOAD_SPOOL_DIR", "temporary_data")
	if !filepath.IsAbs(targetDir) {
		root, err := os.Getwd()
		if err != nil {
			return "", "Storage Error"
		}
		targetDir = filepath.Join(root, targetDir)
	}
	if err := os.MkdirAll(targetDir, 0750); err != nil {
		return "", "Storage Error"
	}
	return targetDir, ""
}
