// Package synthesis turns retrieved passages into a grounded reply.
package synthesis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/akolanti/CommunityRAG/internal/rag/llm"
	"github.com/akolanti/CommunityRAG/internal/rag/retry"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("Answer Synthesizer")

type Request struct {
	Analysis   conversation.Analysis
	Matches    []commonModels.ChunkMatch
	GlobalName string
}

type Reply struct {
	Text string `json:"text"`
	// Grounded is false for the fixed not-found reply, which never reaches the model.
	Grounded  bool     `json:"grounded"`
	Notices   []string `json:"notices,omitempty"`
	Escalated bool     `json:"escalated"`
}

type Synthesizer struct {
	provider llm.Provider
	rules    config.Knowledge
	cutoff   float64
	retry    retry.Policy
}

type Option func(*Synthesizer)

// WithRelevanceCutoff drops passages whose cosine distance is above cutoff.
func WithRelevanceCutoff(cutoff float64) Option {
	return func(s *Synthesizer) { s.cutoff = cutoff }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(s *Synthesizer) { s.retry = p }
}

func NewSynthesizer(provider llm.Provider, rules config.Knowledge, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		provider: provider,
		rules:    rules,
		retry:    retry.Default("generation", config.LLMTimeout),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize answers req.Analysis.CoreQuestion from req.Matches. The error is non nil only when
// the model could not be reached.
func (s *Synthesizer) Synthesize(ctx context.Context, req Request) (Reply, error) {
	log := logger.WithTrace(ctx).With("community", req.Analysis.Tenant)
	globalName := req.GlobalName
	if globalName == "" {
		globalName = s.rules.GlobalPartition
	}

	matches := relevant(req.Matches, s.cutoff)
	if len(matches) == 0 {
		log.Info("no relevant passages", "retrieved", len(req.Matches))
		return Reply{Text: NotFoundReply(req.Analysis.Tenant, globalName)}, nil
	}

	question := req.Analysis.CoreQuestion
	var notices []string
	for _, gap := range termGaps(question, matches, s.rules.TermGaps) {
		notices = append(notices, strings.TrimSpace(gap.Notice))
	}

	prompt := buildPrompt(req.Analysis, globalName, renderContext(matches), notices)

	start := time.Now()
	var answer string
	err := s.retry.Do(ctx, func(ctx context.Context) error {
		var err error
		answer, err = s.provider.Generate(ctx, prompt)
		return err
	})
	if err != nil {
		return Reply{}, fmt.Errorf("generating answer: %w", err)
	}
	log.Debug("answer generated", "passages", len(matches), "took", time.Since(start))

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return Reply{Text: NotFoundReply(req.Analysis.Tenant, globalName)}, nil
	}

	reply := Reply{Grounded: true, Notices: notices}
	parts := append(append([]string{}, notices...), answer)
	if escalate(question, matches, s.rules.Emergency) {
		reply.Escalated = true
		parts = append(parts, strings.TrimSpace(s.rules.Emergency.Link))
		log.Info("emergency link attached")
	}
	reply.Text = strings.Join(parts, "\n\n")
	return reply, nil
}
