package cli

import (
	"context"
	"errors"

	"github.com/akolanti/CommunityRAG/internal/bootstrap"
	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/spf13/cobra"
)

var (
	ragService rag.Service

	// buildService connects the backends on first use. Tests swap in SetService instead.
	buildService = func(ctx context.Context) (rag.Service, error) {
		app, err := bootstrap.Build(ctx, bootstrap.FromEnv())
		if err != nil {
			return nil, err
		}
		return app.Rag, nil
	}
)

var rootCmd = &cobra.Command{
	Use:   "community-admin",
	Short: "Administer the community knowledge assistant",
	Long: `Manage communities and their documents, ask test questions and run the MCP server.

Backends are chosen with the same environment as the API server:
LLM_PROVIDER, EMBEDDING_PROVIDER, VECTOR_STORE and REGISTRY_STORE.`,
	SilenceUsage:      true,
	PersistentPreRunE: connect,
}

// SetService injects the service used by every command.
func SetService(s rag.Service) {
	ragService = s
}

func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func connect(cmd *cobra.Command, _ []string) error {
	logger_i.InitStderr()
	if ragService != nil {
		return nil
	}
	s, err := buildService(cmd.Context())
	if err != nil {
		return err
	}
	if _, err = s.EnsureGlobalPartition(cmd.Context()); err != nil {
		return err
	}
	ragService = s
	return nil
}

func service() (rag.Service, error) {
	if ragService == nil {
		return nil, errors.New("rag service not configured")
	}
	return ragService, nil
}
