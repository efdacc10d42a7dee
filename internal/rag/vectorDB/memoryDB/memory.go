package memoryDB

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
)

type record struct {
	chunk  commonModels.DocChunk
	vector []float32
}

// Store is a brute force cosine store used in tests and local development.
type Store struct {
	mu        sync.RWMutex
	dimension int
	records   []record
}

func New(dimension int) *Store {
	return &Store{dimension: dimension}
}

var _ vectorDB.DataProcessor = (*Store)(nil)

func (s *Store) Dimension() int {
	return s.dimension
}

func (s *Store) InsertChunk(ctx context.Context, chunk commonModels.DocChunk, vector []float32) error {
	if err := embedding.CheckDimension(vector, s.dimension); err != nil {
		return err
	}
	v := make([]float32, len(vector))
	copy(v, vector)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record{chunk: chunk, vector: v})
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, filter commonModels.DocumentFilter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		sameFile := r.chunk.Doc.Filename == filter.Filename
		sameCommunity := filter.CommunityID == 0 || r.chunk.Doc.CommunityID == filter.CommunityID
		if sameFile && sameCommunity {
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return nil
}

func (s *Store) DeleteCommunity(ctx context.Context, communityID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, r := range s.records {
		if r.chunk.Doc.CommunityID != communityID {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

func (s *Store) Search(ctx context.Context, communityID int64, vector []float32, limit int) ([]commonModels.ChunkMatch, error) {
	if err := vectorDB.ValidateSearch(vector, s.dimension, limit); err != nil {
		return nil, err
	}

	s.mu.RLock()
	var matches []commonModels.ChunkMatch
	for _, r := range s.records {
		if r.chunk.Doc.CommunityID != communityID {
			continue
		}
		matches = append(matches, commonModels.ChunkMatch{
			Content:     r.chunk.Content,
			CommunityID: r.chunk.Doc.CommunityID,
			Filename:    r.chunk.Doc.Filename,
			Distance:    CosineDistance(vector, r.vector),
		})
	}
	s.mu.RUnlock()

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Distance < matches[j].Distance })
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, ctx.Err()
}

func (s *Store) ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b := vectorDB.NewSummaryBuilder()
	for _, r := range s.records {
		if communityID != 0 && r.chunk.Doc.CommunityID != communityID {
			continue
		}
		b.Add(r.chunk.Doc.CommunityID, r.chunk.Doc.Filename, r.chunk.CreatedAt)
	}
	return b.Build(), nil
}

// Count returns the number of stored chunks for one document.
func (s *Store) Count(communityID int64, filename string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.records {
		if r.chunk.Doc.CommunityID == communityID && r.chunk.Doc.Filename == filename {
			n++
		}
	}
	return n
}

// CosineDistance is 1 - cosine similarity, the same scale as pgvector's <=> operator.
func CosineDistance(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
