package mcpServer

import (
	"context"
	"time"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TurnInput struct {
	Role string `json:"role" jsonschema:"user or assistant"`
	Text string `json:"text" jsonschema:"what was said"`
}

type AnswerInput struct {
	Message   string      `json:"message" jsonschema:"the resident's latest message"`
	History   []TurnInput `json:"history,omitempty" jsonschema:"earlier turns of the conversation, oldest first"`
	Community string      `json:"community,omitempty" jsonschema:"community name when the caller already knows it"`
}

type AnswerOutput struct {
	Reply      string   `json:"reply"`
	State      string   `json:"state"`
	Community  string   `json:"community,omitempty"`
	Role       string   `json:"role,omitempty"`
	Candidates []string `json:"candidates,omitempty"`
}

type ListCommunitiesInput struct{}

type ListCommunitiesOutput struct {
	Communities []string `json:"communities"`
}

type ListDocumentsInput struct {
	CommunityID int64 `json:"community_id,omitempty" jsonschema:"only documents of this community, 0 for all"`
}

type DocumentOutput struct {
	Filename          string    `json:"filename"`
	CommunityID       int64     `json:"community_id"`
	CommunityName     string    `json:"community_name,omitempty"`
	ChunkCount        int       `json:"chunk_count"`
	EarliestCreatedAt time.Time `json:"earliest_created_at"`
}

type ListDocumentsOutput struct {
	Documents []DocumentOutput `json:"documents"`
	Count     int              `json:"count"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "answer_message",
		Description: "Answer a resident's question from their community's governing documents and the state statutes. Asks a follow-up when the community is unclear.",
	}, s.handleAnswer)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_communities",
		Description: "Names of the communities residents can ask about",
	}, s.handleListCommunities)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_documents",
		Description: "Indexed documents with their chunk counts",
	}, s.handleListDocuments)
}

func (s *Server) handleAnswer(ctx context.Context, _ *mcp.CallToolRequest, input AnswerInput) (*mcp.CallToolResult, AnswerOutput, error) {
	history := make([]commonModels.Turn, 0, len(input.History))
	for _, t := range input.History {
		history = append(history, commonModels.Turn{Role: commonModels.Role(t.Role), Text: t.Text})
	}
	resp, err := s.rag.Answer(ctx, rag.ChatRequest{Message: input.Message, History: history, Community: input.Community})
	if err != nil {
		s.logger.WithTrace(ctx).Warn("answer_message failed", "error", err)
		return nil, AnswerOutput{}, err
	}
	return nil, AnswerOutput{
		Reply:      resp.Reply,
		State:      string(resp.State),
		Community:  resp.Community,
		Role:       resp.Role,
		Candidates: resp.Candidates,
	}, nil
}

func (s *Server) handleListCommunities(ctx context.Context, _ *mcp.CallToolRequest, _ ListCommunitiesInput) (*mcp.CallToolResult, ListCommunitiesOutput, error) {
	names, err := s.rag.ListActiveNames(ctx)
	if err != nil {
		return nil, ListCommunitiesOutput{}, err
	}
	if names == nil {
		names = []string{}
	}
	return nil, ListCommunitiesOutput{Communities: names}, nil
}

func (s *Server) handleListDocuments(ctx context.Context, _ *mcp.CallToolRequest, input ListDocumentsInput) (*mcp.CallToolResult, ListDocumentsOutput, error) {
	docs, err := s.rag.ListDocuments(ctx, input.CommunityID)
	if err != nil {
		return nil, ListDocumentsOutput{}, err
	}
	output := ListDocumentsOutput{Documents: make([]DocumentOutput, len(docs)), Count: len(docs)}
	for i, d := range docs {
		output.Documents[i] = DocumentOutput{
			Filename:          d.Filename,
			CommunityID:       d.CommunityID,
			CommunityName:     d.CommunityName,
			ChunkCount:        d.ChunkCount,
			EarliestCreatedAt: d.EarliestCreatedAt,
		}
	}
	return nil, output, nil
}
