package retrieval

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

// NameResolver maps partition names to their stable ids.
type NameResolver interface {
	FindByName(ctx context.Context, name string) (communityModel.Community, bool, error)
}

// Engine runs the two tier search: the caller's community plus the global partition.
type Engine struct {
	store        vectorDB.DataProcessor
	registry     NameResolver
	queryTimeout time.Duration
	logger       *logger_i.Logger
}

func NewEngine(store vectorDB.DataProcessor, registry NameResolver) *Engine {
	return &Engine{
		store:        store,
		registry:     registry,
		queryTimeout: config.VectorQueryTimeout,
		logger:       logger_i.NewLogger("Retrieval"),
	}
}

// Retrieve returns up to kLocal tenant matches followed by up to kGlobal global matches.
// Each group keeps the store's ascending distance order, the groups are never interleaved.
func (e *Engine) Retrieve(ctx context.Context, vector []float32, tenantName, globalName string, kLocal, kGlobal int) ([]commonModels.ChunkMatch, error) {
	log := e.logger.WithTrace(ctx)

	tenant, err := e.resolve(ctx, tenantName)
	if err != nil {
		return nil, err
	}
	global, err := e.resolve(ctx, globalName)
	if err != nil {
		return nil, err
	}

	var local, globalHits []commonModels.ChunkMatch
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		local, err = e.search(gctx, tenant, vector, kLocal, false)
		return err
	})
	g.Go(func() error {
		var err error
		globalHits, err = e.search(gctx, global, vector, kGlobal, true)
		return err
	})
	if err = g.Wait(); err != nil {
		if errors.Is(err, commonModels.ErrConfigurationMismatch) {
			metrics.CountConfigMismatch()
			log.Error("vector search rejected the query vector", "error", err)
		}
		return nil, err
	}

	log.Debug("retrieved context", "tenant", tenant.Name, "local", len(local), "global", len(globalHits))
	return append(local, globalHits...), nil
}

func (e *Engine) resolve(ctx context.Context, name string) (communityModel.Community, error) {
	c, found, err := e.registry.FindByName(ctx, name)
	if err != nil {
		return c, err
	}
	if !found {
		metrics.CountConfigMismatch()
		return c, fmt.Errorf("%w: partition %q is not registered", commonModels.ErrConfigurationMismatch, name)
	}
	return c, nil
}

func (e *Engine) search(ctx context.Context, partition communityModel.Community, vector []float32, k int, isGlobal bool) ([]commonModels.ChunkMatch, error) {
	if k <= 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.queryTimeout)
	defer cancel()

	matches, err := e.store.Search(ctx, partition.ID, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search in %s failed: %w", partition.Name, err)
	}
	for i := range matches {
		matches[i].Partition = partition.Name
		matches[i].IsGlobal = isGlobal
	}
	return matches, nil
}
