package vectorDB

import (
	"fmt"
	"sort"
	"time"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
)

// SummaryBuilder groups chunk rows into per (filename, community) summaries for stores
// that cannot aggregate server side.
type SummaryBuilder struct {
	groups map[summaryKey]*commonModels.DocumentSummary
}

type summaryKey struct {
	communityID int64
	filename    string
}

func NewSummaryBuilder() *SummaryBuilder {
	return &SummaryBuilder{groups: make(map[summaryKey]*commonModels.DocumentSummary)}
}

func (b *SummaryBuilder) Add(communityID int64, filename string, createdAt time.Time) {
	key := summaryKey{communityID: communityID, filename: filename}
	s, ok := b.groups[key]
	if !ok {
		b.groups[key] = &commonModels.DocumentSummary{
			Filename:          filename,
			CommunityID:       communityID,
			ChunkCount:        1,
			EarliestCreatedAt: createdAt,
		}
		return
	}
	s.ChunkCount++
	if createdAt.Before(s.EarliestCreatedAt) {
		s.EarliestCreatedAt = createdAt
	}
}

// Build returns summaries newest first, ties broken by filename.
func (b *SummaryBuilder) Build() []commonModels.DocumentSummary {
	out := make([]commonModels.DocumentSummary, 0, len(b.groups))
	for _, s := range b.groups {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EarliestCreatedAt.Equal(out[j].EarliestCreatedAt) {
			return out[i].EarliestCreatedAt.After(out[j].EarliestCreatedAt)
		}
		if out[i].Filename != out[j].Filename {
			return out[i].Filename < out[j].Filename
		}
		return out[i].CommunityID < out[j].CommunityID
	})
	return out
}

func ValidateSearch(vector []float32, dimension int, limit int) error {
	if limit <= 0 {
		return fmt.Errorf("%w: search limit must be positive", commonModels.ErrValidation)
	}
	return embedding.CheckDimension(vector, dimension)
}
