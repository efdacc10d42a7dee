package middleware

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/adapter/utils"
	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/handlers"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

func injectTrace(re requestResponseStruct) requestResponseStruct {
	req := re.req
	if req == nil {
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusBadRequest, errorMessage: "request is empty"}
		return re
	}
	trace := req.Header.Get("X-Trace-Id")
	if trace == "" {
		trace = utils.GetNewUUID()
	}
	re.logger = re.logger.With("traceId", trace)
	ctx := context.WithValue(req.Context(), config.TRACE_ID_KEY, trace)
	req.Header.Set("X-Trace-Id", trace)
	re.writer.Header().Set("X-Trace-Id", trace)
	re.req = req.WithContext(ctx)

	re.logger.Debug("trace middleware injected")
	return re
}

func authenticate(re requestResponseStruct) requestResponseStruct {
	if !IsAuthorized(re.req, re.logger) {
		re.writer.Header().Set("WWW-Authenticate", `Basic realm="admin"`)
		re.badRequest = failureStruct{isBadRequest: true, httpCode: http.StatusUnauthorized, errorMessage: "Unauthorized"}
		return re
	}
	re.logger.Debug("Authorized")
	return re
}

// IsAuthorized accepts the admin bearer token or the admin basic credentials, whichever is configured.
func IsAuthorized(r *http.Request, log *logger_i.Logger) bool {
	if config.NoAuthBypass {
		log.Warn("auth bypass is on")
		return true
	}
	if user, password, ok := r.BasicAuth(); ok {
		return isValidBasicAuth(user, password, log)
	}
	return IsValidBearerToken(r.Header.Get("Authorization"), log)
}

func IsValidBearerToken(authHeader string, log *logger_i.Logger) bool {
	if config.AuthToken == "" {
		log.Error("ADMIN_TOKEN is not configured")
		return false
	}
	if authHeader == "" {
		log.Warn("Empty authorization header")
		return false
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		log.Warn("No Bearer header")
		return false
	}
	if subtle.ConstantTimeCompare([]byte(strings.TrimPrefix(authHeader, "Bearer ")), []byte(config.AuthToken)) != 1 {
		log.Warn("Invalid authorization header")
		return false
	}
	return true
}

func isValidBasicAuth(user, password string, log *logger_i.Logger) bool {
	if config.AdminUser == "" || config.AdminPassword == "" {
		log.Error("ADMIN_USER / ADMIN_PASSWORD are not configured")
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(config.AdminUser)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(config.AdminPassword)) == 1
	if !userOK || !passOK {
		log.Warn("Invalid basic credentials")
		return false
	}
	return true
}

func rateLimiter(re requestResponseStruct) requestResponseStruct {
	ip, _, err := net.SplitHostPort(re.req.RemoteAddr)
	if err != nil {
		ip = re.req.RemoteAddr
	}

	if !limiterInstance.GetLimiter(ip).Allow() {
		re.logger.Warn("Too many requests", "ip", ip)
		re.badRequest = failureStruct{
			isBadRequest: true,
			httpCode:     http.StatusTooManyRequests,
			errorMessage: "Rate limit exceeded",
		}
		return re
	}
	return re
}

// handleBadRequest writes the rejection, if any, and reports whether the request may go on.
func handleBadRequest(re requestResponseStruct) bool {
	if re.badRequest.isBadRequest {
		re.logger.Warn("Bad request", "httpCode", re.badRequest.httpCode, "errorMessage", re.badRequest.errorMessage, "IP", re.req.RemoteAddr)
		handlers.WriteErrorResponse(re.writer, re.badRequest.httpCode, "", re.badRequest.errorMessage)
		return false
	}
	return true
}
