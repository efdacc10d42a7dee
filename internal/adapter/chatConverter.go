package adapter

import (
	"github.com/akolanti/CommunityRAG/internal/api"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag"
)

func ToChatRequest(req api.ChatRequest) rag.ChatRequest {
	history := make([]commonModels.Turn, 0, len(req.History))
	for _, t := range req.History {
		history = append(history, commonModels.Turn{Role: commonModels.Role(t.Role), Text: t.Text})
	}
	return rag.ChatRequest{
		Message:   req.Message,
		History:   history,
		Community: req.Community,
		ChatID:    req.ChatID,
	}
}

func ToChatResponse(resp rag.ChatResponse) api.ChatResponse {
	return api.ChatResponse{
		Reply:      resp.Reply,
		State:      string(resp.State),
		Community:  resp.Community,
		Role:       resp.Role,
		Candidates: resp.Candidates,
		ChatID:     resp.ChatID,
	}
}
