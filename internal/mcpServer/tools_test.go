package mcpServer

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockRag embeds the interface so only the methods the tools call need bodies.
type mockRag struct {
	rag.Service
	lastRequest rag.ChatRequest
	answer      rag.ChatResponse
	names       []string
	docs        []commonModels.DocumentSummary
	lastID      int64
	err         error
}

func (m *mockRag) Answer(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error) {
	m.lastRequest = req
	return m.answer, m.err
}

func (m *mockRag) ListActiveNames(ctx context.Context) ([]string, error) {
	return m.names, m.err
}

func (m *mockRag) ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error) {
	m.lastID = communityID
	return m.docs, m.err
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil)
	assert.Error(t, err)

	server, err := NewServer(&mockRag{})
	require.NoError(t, err)
	assert.NotNil(t, server.server)
}

func TestServer_handleAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("forwards history and community", func(t *testing.T) {
		mock := &mockRag{answer: rag.ChatResponse{
			Reply:     "Yes, with approval.",
			State:     conversation.Ready,
			Community: "Oakwood Commons",
			Role:      "Homeowner",
		}}
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, output, err := server.handleAnswer(ctx, nil, AnswerInput{
			Message:   "Can I install solar panels?",
			History:   []TurnInput{{Role: "user", Text: "hi"}, {Role: "assistant", Text: "Which community?"}},
			Community: "Oakwood Commons",
		})

		require.NoError(t, err)
		assert.Equal(t, "Yes, with approval.", output.Reply)
		assert.Equal(t, "ready", output.State)
		assert.Equal(t, "Oakwood Commons", mock.lastRequest.Community)
		require.Len(t, mock.lastRequest.History, 2)
		assert.Equal(t, commonModels.RoleAssistant, mock.lastRequest.History[1].Role)
	})

	t.Run("returns candidates on ambiguity", func(t *testing.T) {
		mock := &mockRag{answer: rag.ChatResponse{
			Reply:      "Which one?",
			State:      conversation.NeedTenant,
			Candidates: []string{"4100 Five Oaks", "Five Oaks Lakeside"},
		}}
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, output, err := server.handleAnswer(ctx, nil, AnswerInput{Message: "Five Oaks fence rules?"})

		require.NoError(t, err)
		assert.Equal(t, []string{"4100 Five Oaks", "Five Oaks Lakeside"}, output.Candidates)
	})

	t.Run("surfaces service errors", func(t *testing.T) {
		server, err := NewServer(&mockRag{err: commonModels.ErrValidation})
		require.NoError(t, err)

		_, _, err = server.handleAnswer(ctx, nil, AnswerInput{})
		assert.ErrorIs(t, err, commonModels.ErrValidation)
	})
}

func TestServer_handleListCommunities(t *testing.T) {
	ctx := context.Background()

	server, err := NewServer(&mockRag{})
	require.NoError(t, err)
	_, output, err := server.handleListCommunities(ctx, nil, ListCommunitiesInput{})
	require.NoError(t, err)
	assert.NotNil(t, output.Communities)
	assert.Empty(t, output.Communities)

	server, err = NewServer(&mockRag{names: []string{"4100 Five Oaks", "Oakwood Commons"}})
	require.NoError(t, err)
	_, output, err = server.handleListCommunities(ctx, nil, ListCommunitiesInput{})
	require.NoError(t, err)
	assert.Equal(t, []string{"4100 Five Oaks", "Oakwood Commons"}, output.Communities)
}

func TestServer_handleListDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("maps summaries", func(t *testing.T) {
		mock := &mockRag{docs: []commonModels.DocumentSummary{
			{Filename: "bylaws.pdf", CommunityID: 3, CommunityName: "Oakwood Commons", ChunkCount: 12},
		}}
		server, err := NewServer(mock)
		require.NoError(t, err)

		_, output, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{CommunityID: 3})

		require.NoError(t, err)
		assert.Equal(t, int64(3), mock.lastID)
		assert.Equal(t, 1, output.Count)
		assert.Equal(t, "bylaws.pdf", output.Documents[0].Filename)
		assert.Equal(t, 12, output.Documents[0].ChunkCount)
	})

	t.Run("store error", func(t *testing.T) {
		server, err := NewServer(&mockRag{err: errors.New("qdrant down")})
		require.NoError(t, err)

		_, _, err = server.handleListDocuments(ctx, nil, ListDocumentsInput{})
		assert.EqualError(t, err, "qdrant down")
	})
}
