package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/akolanti/CommunityRAG/internal/adapter"
	"github.com/akolanti/CommunityRAG/internal/adapter/utils"
	"github.com/akolanti/CommunityRAG/internal/api"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

var logRH = logger_i.NewLogger("RequestHandler")

// newJobData is what the upload handler collects before a batch becomes a job.
type newJobData struct {
	id          string
	traceId     string
	communityID int64
	files       []jobModel.IngestFile
}

// GetHandler godoc
// @Summary      Health check
// @Tags         Health
// @Produce      json
// @Success      200  {object}  api.HealthResponse
// @Router       /health [get]
func GetHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.HealthResponse{Status: "ok"})
}

// ChatHandler godoc
// @Summary      Answer a resident message
// @Description  Runs one chat turn. Until the community is known the reply is a follow-up question,
// @Description  afterwards it is answered from that community's documents and the statutes.
// @Tags         Messaging
// @Accept       json
// @Produce      json
// @Param        request  body      api.ChatRequest   true  "Message, optional history, community and chat id"
// @Success      200      {object}  api.ChatResponse
// @Failure      400      {object}  api.JobResponse   "Empty message or unknown community"
// @Failure      500      {object}  api.JobResponse   "Configuration mismatch"
// @Router       /chat [post]
func ChatHandler(w http.ResponseWriter, request *http.Request) {
	if !validateContext(request.Context()) {
		logRH.Warn("Invalid Context by request ", "remote", request.RemoteAddr)
		return
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logRH.Error("Couldn't close the Chat handler reader", "error", err)
		}
	}(request.Body)

	var requestData api.ChatRequest
	if err := json.NewDecoder(request.Body).Decode(&requestData); err != nil {
		logRH.WithTrace(request.Context()).Warn("Bad Chat Request", "error", err)
		WriteErrorResponse(w, http.StatusBadRequest, requestData.ChatID, "Bad Request")
		return
	}

	resp, err := ragService().Answer(request.Context(), adapter.ToChatRequest(requestData))
	if err != nil {
		writeServiceError(w, request, requestData.ChatID, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToChatResponse(resp))
}

// GreetingHandler godoc
// @Summary      Opening message of the chat widget
// @Tags         Messaging
// @Produce      json
// @Success      200  {object}  api.GreetingResponse
// @Router       /chat/greeting [get]
func GreetingHandler(w http.ResponseWriter, r *http.Request) {
	writeJsonResponse(w, http.StatusOK, api.GreetingResponse{Reply: conversation.Greeting()})
}

// CommunitiesHandler godoc
// @Summary      Active community names
// @Description  Names of the communities residents can ask about, sorted. The statutes partition is not listed.
// @Tags         Communities
// @Produce      json
// @Success      200  {object}  api.CommunitiesResponse
// @Failure      500  {object}  api.JobResponse
// @Router       /communities [get]
func CommunitiesHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	names, err := ragService().ListActiveNames(r.Context())
	if err != nil {
		writeServiceError(w, r, "", err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJsonResponse(w, http.StatusOK, api.CommunitiesResponse{Communities: names})
}

// GetStatusHandler godoc
// @Summary      Get batch ingestion status
// @Description  Retrieves the current status and per file results of a batch ingestion job.
// @Tags         Job Status
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  api.JobResponse   "Successful retrieval of job status"
// @Failure      404  {object}  api.JobResponse   "Job not found (returns Error object within JobResponse)"
// @Router       /admin/status/{id} [get]
func GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	idString := utils.GetChiURLParam(r, "id")
	logRH.WithTrace(r.Context()).Debug("Get Status Request", "URL path", r.URL.Path)

	if idString == "" {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	result, isFound := GetJobStatus(r.Context(), idString)
	if !isFound {
		WriteErrorResponse(w, http.StatusNotFound, idString, "Job not found")
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToAPIResponse(result))
}
