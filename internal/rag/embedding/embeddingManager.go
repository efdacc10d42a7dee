package embedding

import (
	"context"
	"fmt"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
)

// Embedder turns text into a fixed dimension vector. Implementations make exactly one
// upstream call per GetEmbedding, retries belong to the caller's retry.Policy.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// CheckDimension rejects vectors that would not fit the configured store.
func CheckDimension(vector []float32, want int) error {
	if len(vector) != want {
		return fmt.Errorf("%w: embedding has %d dimensions, store expects %d", commonModels.ErrConfigurationMismatch, len(vector), want)
	}
	return nil
}
