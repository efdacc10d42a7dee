package vectorDB

import (
	"context"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
)

// DataProcessor is the vector store contract. Every chunk is scoped by community id,
// Search results come back ordered by ascending cosine distance.
type DataProcessor interface {
	Dimension() int
	InsertChunk(ctx context.Context, chunk commonModels.DocChunk, vector []float32) error
	DeleteDocument(ctx context.Context, filter commonModels.DocumentFilter) error
	DeleteCommunity(ctx context.Context, communityID int64) error
	Search(ctx context.Context, communityID int64, vector []float32, limit int) ([]commonModels.ChunkMatch, error)
	ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error)
}
