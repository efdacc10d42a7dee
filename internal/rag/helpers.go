package rag

import (
	"context"
	"net/http"
	"time"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/internal/rag/synthesis"
)

func (s *service) jobError(job jobModel.Job, err error, message string, canRetry bool) jobModel.Job {
	s.logger.Error(message, "error", err, "jobId", job.Id)

	job.Error = jobModel.JobError{
		Code:    http.StatusUnprocessableEntity,
		Message: err.Error(),
		Retry:   canRetry,
	}
	job.Status = jobModel.JobStatusError
	job.CurrentStep = jobModel.Error
	return job
}

func (s *service) executeEmbeddingStep(ctx context.Context, query string) ([]float32, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("query_embedding", time.Since(start)) }()

	var vector []float32
	err := s.queryRetry.Do(ctx, func(ctx context.Context) error {
		var err error
		vector, err = s.embedder.GetEmbedding(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err = embedding.CheckDimension(vector, s.vectors.Dimension()); err != nil {
		metrics.CountConfigMismatch()
		return nil, err
	}
	return vector, nil
}

func (s *service) executeRetrievalStep(ctx context.Context, vector []float32, tenant string) ([]commonModels.ChunkMatch, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("vector_search", time.Since(start)) }()

	return s.retriever.Retrieve(ctx, vector, tenant, s.globalName, s.kLocal, s.kGlobal)
}

func (s *service) executeSynthesisStep(ctx context.Context, a conversation.Analysis, matches []commonModels.ChunkMatch) (synthesis.Reply, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("llm_generation", time.Since(start)) }()

	return s.synthesizer.Synthesize(ctx, synthesis.Request{Analysis: a, Matches: matches, GlobalName: s.globalName})
}

// appendTurn adds turn unless the transcript already ends with it. Clients that put the
// current message into history as well would otherwise see it twice.
func appendTurn(history []commonModels.Turn, turn commonModels.Turn) []commonModels.Turn {
	transcript := make([]commonModels.Turn, 0, len(history)+1)
	transcript = append(transcript, history...)
	if n := len(transcript); n > 0 && transcript[n-1].Role == turn.Role && transcript[n-1].Text == turn.Text {
		return transcript
	}
	return append(transcript, turn)
}
