package mcpServer

import (
	"context"
	"errors"

	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const Version = "1.0.0"

// Server exposes the chat and the read side of the registry as MCP tools.
type Server struct {
	rag    rag.Service
	server *mcp.Server
	logger *logger_i.Logger
}

func NewServer(ragService rag.Service) (*Server, error) {
	if ragService == nil {
		return nil, errors.New("rag service is required")
	}
	s := &Server{
		rag:    ragService,
		server: mcp.NewServer(&mcp.Implementation{Name: "community-rag", Version: Version}, nil),
		logger: logger_i.NewLogger("MCP"),
	}
	s.registerTools()
	return s, nil
}

// Run serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
