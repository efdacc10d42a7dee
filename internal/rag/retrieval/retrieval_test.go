package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akolanti/CommunityRAG/internal/data/store"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB/memoryDB"
)

const globalName = "North Carolina General Statutes"

type env struct {
	engine  *Engine
	store   *memoryDB.Store
	tenant  communityModel.Community
	statute communityModel.Community
}

func setup(t *testing.T) env {
	t.Helper()
	ctx := context.Background()
	registry := store.InitInMemoryCommunityStore()
	tenant, _ := registry.Create(ctx, communityModel.NewCommunity{Name: "4100 Five Oaks"})
	statute, _ := registry.Create(ctx, communityModel.NewCommunity{Name: globalName})
	vectors := memoryDB.New(2)
	return env{engine: NewEngine(vectors, registry), store: vectors, tenant: tenant, statute: statute}
}

func (e env) insert(t *testing.T, c communityModel.Community, content string, v []float32) {
	t.Helper()
	err := e.store.InsertChunk(context.Background(), commonModels.DocChunk{
		Doc:       commonModels.Document{CommunityID: c.ID, Filename: content + ".txt"},
		Content:   content,
		CreatedAt: time.Now(),
	}, v)
	if err != nil {
		t.Fatal(err)
	}
}

func TestRetrieve_GlobalOnlyWhenTenantEmpty(t *testing.T) {
	e := setup(t)
	e.insert(t, e.statute, "47F-3-102 powers", []float32{0.6, 0.8})
	e.insert(t, e.statute, "47F-3-107 upkeep", []float32{1, 0})
	e.insert(t, e.statute, "47F-3-116 liens", []float32{0, 1})

	matches, err := e.engine.Retrieve(context.Background(), []float32{1, 0}, "4100 Five Oaks", globalName, 10, 5)
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 global matches, got %d", len(matches))
	}
	for i, m := range matches {
		if !m.IsGlobal || m.Partition != globalName {
			t.Errorf("match %d should come from the global partition: %+v", i, m)
		}
		if i > 0 && matches[i-1].Distance > m.Distance {
			t.Errorf("global matches not in ascending distance at %d", i)
		}
	}
	if matches[0].Content != "47F-3-107 upkeep" {
		t.Errorf("closest statute should come first, got %q", matches[0].Content)
	}
}

func TestRetrieve_LocalThenGlobalWithoutReranking(t *testing.T) {
	e := setup(t)
	e.insert(t, e.tenant, "pool hours", []float32{0.6, 0.8})
	e.insert(t, e.tenant, "parking", []float32{0, 1})
	e.insert(t, e.statute, "exact statute", []float32{1, 0})

	matches, err := e.engine.Retrieve(context.Background(), []float32{1, 0}, "4100 five oaks", globalName, 10, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].IsGlobal || matches[1].IsGlobal || !matches[2].IsGlobal {
		t.Errorf("local results must precede global ones: %+v", matches)
	}
	if matches[0].Content != "pool hours" || matches[0].Partition != "4100 Five Oaks" {
		t.Errorf("unexpected first local match %+v", matches[0])
	}
}

func TestRetrieve_LimitsPerPartition(t *testing.T) {
	e := setup(t)
	for i := 0; i < 4; i++ {
		e.insert(t, e.tenant, "local", []float32{1, float32(i)})
		e.insert(t, e.statute, "global", []float32{1, float32(i)})
	}
	matches, err := e.engine.Retrieve(context.Background(), []float32{1, 0}, "4100 Five Oaks", globalName, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 5 {
		t.Errorf("expected 3 local + 2 global, got %d", len(matches))
	}
}

func TestRetrieve_Errors(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	if _, err := e.engine.Retrieve(ctx, []float32{1, 0}, "Nowhere Commons", globalName, 10, 5); !errors.Is(err, commonModels.ErrConfigurationMismatch) {
		t.Errorf("unknown tenant should be a configuration mismatch, got %v", err)
	}
	if _, err := e.engine.Retrieve(ctx, []float32{1, 0}, "4100 Five Oaks", "Wrong Statutes", 10, 5); !errors.Is(err, commonModels.ErrConfigurationMismatch) {
		t.Errorf("unknown global partition should be a configuration mismatch, got %v", err)
	}
	if _, err := e.engine.Retrieve(ctx, []float32{1, 0, 0}, "4100 Five Oaks", globalName, 10, 5); !errors.Is(err, commonModels.ErrConfigurationMismatch) {
		t.Errorf("dimension mismatch should be fatal, got %v", err)
	}
}

func TestRetrieve_EmptyIsValid(t *testing.T) {
	e := setup(t)
	matches, err := e.engine.Retrieve(context.Background(), []float32{1, 0}, "4100 Five Oaks", globalName, 10, 5)
	if err != nil || len(matches) != 0 {
		t.Errorf("expected no matches and no error, got %v %v", matches, err)
	}
}
