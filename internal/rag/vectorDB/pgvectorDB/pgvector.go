package pgvectorDB

import (
	"context"
	"fmt"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Store keeps chunks in the community_docs table and ranks them with the <=> cosine distance operator.
type Store struct {
	pool      *pgxpool.Pool
	dimension int
	logger    *logger_i.Logger
}

var _ vectorDB.DataProcessor = (*Store)(nil)

// New expects a pool opened by postgresStore.Connect so the vector codec is registered.
func New(pool *pgxpool.Pool, dimension int) *Store {
	return &Store{pool: pool, dimension: dimension, logger: logger_i.NewLogger("pgvector")}
}

func (s *Store) Dimension() int {
	return s.dimension
}

func (s *Store) InsertChunk(ctx context.Context, chunk commonModels.DocChunk, vector []float32) error {
	if err := embedding.CheckDimension(vector, s.dimension); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO community_docs (chunk_id, community_id, filename, content, chunk_order, embedding, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		chunk.ChunkId, chunk.Doc.CommunityID, chunk.Doc.Filename, chunk.Content, chunk.ChunkOrder,
		pgvector.NewVector(vector), chunk.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgvector insert failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, filter commonModels.DocumentFilter) error {
	var err error
	if filter.CommunityID == 0 {
		_, err = s.pool.Exec(ctx, `DELETE FROM community_docs WHERE filename = $1`, filter.Filename)
	} else {
		_, err = s.pool.Exec(ctx, `DELETE FROM community_docs WHERE community_id = $1 AND filename = $2`,
			filter.CommunityID, filter.Filename)
	}
	if err != nil {
		return fmt.Errorf("pgvector delete failed: %w", err)
	}
	return nil
}

func (s *Store) DeleteCommunity(ctx context.Context, communityID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM community_docs WHERE community_id = $1`, communityID)
	return err
}

func (s *Store) Search(ctx context.Context, communityID int64, vector []float32, limit int) ([]commonModels.ChunkMatch, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))
	if err := vectorDB.ValidateSearch(vector, s.dimension, limit); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT content, community_id, filename, embedding <=> $1 AS distance
		FROM community_docs
		WHERE community_id = $2
		ORDER BY distance
		LIMIT $3`, pgvector.NewVector(vector), communityID, limit)
	if err != nil {
		log.Error("pgvector search failed", "error", err)
		return nil, err
	}
	defer rows.Close()

	var matches []commonModels.ChunkMatch
	for rows.Next() {
		var m commonModels.ChunkMatch
		if err = rows.Scan(&m.Content, &m.CommunityID, &m.Filename, &m.Distance); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (s *Store) ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT filename, community_id, COUNT(*), MIN(created_at) AS earliest
		FROM community_docs
		WHERE $1::bigint = 0 OR community_id = $1::bigint
		GROUP BY filename, community_id
		ORDER BY earliest DESC, filename`, communityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []commonModels.DocumentSummary
	for rows.Next() {
		var d commonModels.DocumentSummary
		if err = rows.Scan(&d.Filename, &d.CommunityID, &d.ChunkCount, &d.EarliestCreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
