package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/internal/rag/ingest"
	"github.com/akolanti/CommunityRAG/internal/rag/retrieval"
	"github.com/akolanti/CommunityRAG/internal/rag/retry"
	"github.com/akolanti/CommunityRAG/internal/rag/synthesis"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/google/uuid"
)

/*
Service is the public contract used by the handlers, the worker pool, the CLI and the MCP
server. The lowercase service struct holds the stores and upstream clients and satisfies it
through its pointer receivers. NewService links the two.
*/

// UpstreamFailureReply replaces any answer that could not be produced because an upstream
// (embeddings, vector store, model) failed.
const UpstreamFailureReply = "I'm having trouble reaching our document service right now. Please try again in a moment."

type Service interface {
	Answer(ctx context.Context, req ChatRequest) (ChatResponse, error)

	IngestDocument(ctx context.Context, req ingest.IngestRequest) (commonModels.IngestResult, error)
	IngestJob(ctx context.Context, job jobModel.Job, progress func(jobModel.Job)) jobModel.Job
	ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error)
	DeleteDocument(ctx context.Context, filter commonModels.DocumentFilter) error

	ListActiveNames(ctx context.Context) ([]string, error)
	ListCommunities(ctx context.Context) ([]communityModel.Community, error)
	CreateCommunity(ctx context.Context, c communityModel.NewCommunity) (communityModel.Community, error)
	RenameCommunity(ctx context.Context, id int64, name string) (communityModel.Community, error)
	SetCommunityActive(ctx context.Context, id int64, active bool) (communityModel.Community, error)
	DeleteCommunity(ctx context.Context, id int64) error
	EnsureGlobalPartition(ctx context.Context) (communityModel.Community, error)
}

// Deps wires a Service. Messages may be nil, chats then rely on the history the caller sends.
type Deps struct {
	Vectors     vectorDB.DataProcessor
	Communities communityModel.CommunityStore
	Messages    jobModel.MessageStore
	Embedder    embedding.Embedder
	Pipeline    *ingest.Pipeline
	Retriever   *retrieval.Engine
	Analyzer    *conversation.Analyzer
	Synthesizer *synthesis.Synthesizer
	Rules       config.Knowledge
}

type service struct {
	vectors     vectorDB.DataProcessor
	communities communityModel.CommunityStore
	messages    jobModel.MessageStore
	embedder    embedding.Embedder
	pipeline    *ingest.Pipeline
	retriever   *retrieval.Engine
	analyzer    *conversation.Analyzer
	synthesizer *synthesis.Synthesizer
	globalName  string
	queryRetry  retry.Policy
	kLocal      int
	kGlobal     int
	logger      *logger_i.Logger
}

type Option func(*service)

func WithQueryRetry(p retry.Policy) Option {
	return func(s *service) { s.queryRetry = p }
}

func WithMatchLimits(local, global int) Option {
	return func(s *service) {
		s.kLocal = local
		s.kGlobal = global
	}
}

func NewService(deps Deps, opts ...Option) Service {
	globalName := deps.Rules.GlobalPartition
	if globalName == "" {
		globalName = config.DefaultGlobalName
	}
	s := &service{
		vectors:     deps.Vectors,
		communities: deps.Communities,
		messages:    deps.Messages,
		embedder:    deps.Embedder,
		pipeline:    deps.Pipeline,
		retriever:   deps.Retriever,
		analyzer:    deps.Analyzer,
		synthesizer: deps.Synthesizer,
		globalName:  globalName,
		queryRetry:  retry.Default("query_embedding", config.EmbeddingTimeout),
		kLocal:      config.EnvInt("LOCAL_MATCH_LIMIT", config.LocalMatchLimit),
		kGlobal:     config.EnvInt("GLOBAL_MATCH_LIMIT", config.GlobalMatchLimit),
		logger:      logger_i.NewLogger("RAG Service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type ChatRequest struct {
	Message   string              `json:"message"`
	History   []commonModels.Turn `json:"history,omitempty"`
	Community string              `json:"community,omitempty"`
	ChatID    string              `json:"chat_id,omitempty"`
}

type ChatResponse struct {
	Reply      string             `json:"reply"`
	State      conversation.State `json:"state"`
	Community  string             `json:"community,omitempty"`
	Role       string             `json:"role,omitempty"`
	Candidates []string           `json:"candidates,omitempty"`
	ChatID     string             `json:"chat_id"`
}

// Answer runs one chat turn: analyze, then embed, retrieve and synthesize once every slot is
// filled. Upstream failures become UpstreamFailureReply, only validation and configuration
// errors are returned.
func (s *service) Answer(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return ChatResponse{}, fmt.Errorf("%w: message is required", commonModels.ErrValidation)
	}

	chatID, history := s.loadHistory(ctx, req)
	log := s.logger.WithTrace(ctx).With("chatId", chatID)
	transcript := appendTurn(history, commonModels.Turn{Role: commonModels.RoleUser, Text: message})

	tenants, err := s.ListActiveNames(ctx)
	if err != nil {
		log.Error("could not read community registry", "error", err)
		return s.reply(ctx, chatID, message, ChatResponse{Reply: UpstreamFailureReply, State: conversation.NeedTenant}), nil
	}

	analysis, err := s.analyzer.Analyze(conversation.Input{Transcript: transcript, ExplicitTenant: req.Community, Tenants: tenants})
	if err != nil {
		return ChatResponse{}, err
	}
	metrics.CountChatTurn(string(analysis.State))
	log.Debug("turn analyzed", "state", analysis.State, "tenant", analysis.Tenant, "role", analysis.Role)

	resp := ChatResponse{State: analysis.State, Community: analysis.Tenant, Role: analysis.Role, Candidates: analysis.Candidates}
	switch {
	case analysis.State != conversation.Ready:
		resp.Reply = analysis.FollowUp
	case analysis.CoreQuestion == "":
		resp.Reply = conversation.ReadyWithoutQuestion(analysis.Tenant)
	default:
		text, err := s.answerQuestion(ctx, log, analysis)
		if err != nil {
			if errors.Is(err, commonModels.ErrConfigurationMismatch) {
				log.Error("configuration mismatch on the chat path", "error", err)
				return ChatResponse{}, err
			}
			if ctx.Err() != nil {
				return ChatResponse{}, ctx.Err()
			}
			log.Error("upstream failure", "error", err)
			text = UpstreamFailureReply
		}
		resp.Reply = text
	}
	return s.reply(ctx, chatID, message, resp), nil
}

func (s *service) answerQuestion(ctx context.Context, log *logger_i.Logger, a conversation.Analysis) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, config.ChatTurnTimeout)
	defer cancel()

	vector, err := s.executeEmbeddingStep(ctx, a.SearchQuery)
	if err != nil {
		return "", err
	}
	matches, err := s.executeRetrievalStep(ctx, vector, a.Tenant)
	if err != nil {
		return "", err
	}
	log.Debug("passages retrieved", "count", len(matches))
	reply, err := s.executeSynthesisStep(ctx, a, matches)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// loadHistory picks the transcript: the caller's history wins, otherwise the stored one.
func (s *service) loadHistory(ctx context.Context, req ChatRequest) (string, []commonModels.Turn) {
	chatID := strings.TrimSpace(req.ChatID)
	if chatID == "" {
		chatID = uuid.NewString()
	}
	if s.messages == nil {
		return chatID, req.History
	}
	if !s.messages.ValidateChatId(ctx, chatID) {
		if err := s.messages.InitNewChat(ctx, chatID); err != nil {
			s.logger.WithTrace(ctx).Warn("could not start transcript", "chatId", chatID, "error", err)
		}
		return chatID, req.History
	}
	if len(req.History) > 0 {
		return chatID, req.History
	}
	stored, err := s.messages.GetMessageHistory(ctx, chatID)
	if err != nil {
		s.logger.WithTrace(ctx).Warn("could not load transcript", "chatId", chatID, "error", err)
	}
	return chatID, stored
}

func (s *service) reply(ctx context.Context, chatID, message string, resp ChatResponse) ChatResponse {
	resp.ChatID = chatID
	if s.messages == nil {
		return resp
	}
	err := s.messages.AppendTurns(ctx, chatID,
		commonModels.Turn{Role: commonModels.RoleUser, Text: message},
		commonModels.Turn{Role: commonModels.RoleAssistant, Text: resp.Reply},
	)
	if err != nil {
		s.logger.WithTrace(ctx).Warn("could not save transcript", "chatId", chatID, "error", err)
	}
	return resp
}

func (s *service) IngestDocument(ctx context.Context, req ingest.IngestRequest) (commonModels.IngestResult, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("document_ingestion", time.Since(start)) }()
	return s.pipeline.Ingest(ctx, req)
}

// IngestJob runs a batch job to completion. progress is called before each file with the job
// as it stands, so pollers can follow along.
func (s *service) IngestJob(ctx context.Context, job jobModel.Job, progress func(jobModel.Job)) jobModel.Job {
	log := s.logger.WithTrace(ctx).With("jobId", job.Id)
	job.CurrentStep = jobModel.IngestProcessing

	files := make([]ingest.FileSource, 0, len(job.JobPayload.Files))
	for _, f := range job.JobPayload.Files {
		files = append(files, ingest.FromDisk(f))
	}
	job.JobPayload.Results = s.pipeline.IngestBatch(ctx, job.JobPayload.CommunityID, files, func(filename string) {
		job.JobPayload.CurrentFile = filename
		if progress != nil {
			progress(job)
		}
	})
	job.JobPayload.CurrentFile = ""

	failed := 0
	for _, r := range job.JobPayload.Results {
		if r.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		job.Status = jobModel.JobStatusComplete
		job.CurrentStep = jobModel.Complete
	case failed < len(job.JobPayload.Results):
		job.Status = jobModel.JobStatusPartial
		job.CurrentStep = jobModel.Complete
	default:
		job = s.jobError(job, fmt.Errorf("all %d files failed", failed), "INGESTION_FAILURE", true)
	}
	log.Info("batch finished", "files", len(files), "failed", failed)
	return job
}

func (s *service) ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error) {
	docs, err := s.vectors.ListDocuments(ctx, communityID)
	if err != nil {
		return nil, err
	}
	all, err := s.communities.List(ctx)
	if err != nil {
		return docs, nil
	}
	names := make(map[int64]string, len(all))
	for _, c := range all {
		names[c.ID] = c.Name
	}
	for i := range docs {
		docs[i].CommunityName = names[docs[i].CommunityID]
	}
	return docs, nil
}

func (s *service) DeleteDocument(ctx context.Context, filter commonModels.DocumentFilter) error {
	if strings.TrimSpace(filter.Filename) == "" {
		return fmt.Errorf("%w: filename is required", commonModels.ErrValidation)
	}
	return s.vectors.DeleteDocument(ctx, filter)
}
