package rag_test

import (
	"context"

	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/internal/rag/llm"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
)

// MockEmbedder implements embedding.Embedder
type MockEmbedder struct {
	Dim            int
	Calls          int
	OnGetEmbedding func(ctx context.Context, text string) ([]float32, error)
}

func (m *MockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	m.Calls++
	if m.OnGetEmbedding != nil {
		return m.OnGetEmbedding(ctx, text)
	}
	v := make([]float32, m.Dim)
	v[0] = 1
	return v, nil
}

func (m *MockEmbedder) Dimension() int { return m.Dim }

// MockLLM implements llm.Provider
type MockLLM struct {
	Calls      int
	LastPrompt llm.Prompt
	OnGenerate func(ctx context.Context, prompt llm.Prompt) (string, error)
}

func (m *MockLLM) Generate(ctx context.Context, prompt llm.Prompt) (string, error) {
	m.Calls++
	m.LastPrompt = prompt
	if m.OnGenerate != nil {
		return m.OnGenerate(ctx, prompt)
	}
	return "mocked llm response", nil
}

// FailingCommunityStore wraps a registry and fails the calls that have an On func set.
type FailingCommunityStore struct {
	communityModel.CommunityStore
	OnList func(ctx context.Context) ([]communityModel.Community, error)
}

func (m *FailingCommunityStore) List(ctx context.Context) ([]communityModel.Community, error) {
	if m.OnList != nil {
		return m.OnList(ctx)
	}
	return m.CommunityStore.List(ctx)
}

// MockVectorDB wraps a real store and lets a test intercept DeleteCommunity.
type MockVectorDB struct {
	vectorDB.DataProcessor
	DeletedCommunities []int64
	OnDeleteCommunity  func(ctx context.Context, id int64) error
}

func (m *MockVectorDB) DeleteCommunity(ctx context.Context, id int64) error {
	m.DeletedCommunities = append(m.DeletedCommunities, id)
	if m.OnDeleteCommunity != nil {
		return m.OnDeleteCommunity(ctx, id)
	}
	return m.DataProcessor.DeleteCommunity(ctx, id)
}
