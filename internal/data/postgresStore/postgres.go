package postgresStore

import (
	"context"
	"errors"
	"fmt"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
)

var logger = logger_i.NewLogger("Postgres")

func migrations(dimension int) []string {
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS communities (
			id          BIGSERIAL PRIMARY KEY,
			name        TEXT NOT NULL,
			slug        TEXT NOT NULL,
			city        TEXT NOT NULL DEFAULT '',
			portal_url  TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			is_active   BOOLEAN NOT NULL DEFAULT TRUE,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS communities_name_key ON communities (lower(name))`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS community_docs (
			id           BIGSERIAL PRIMARY KEY,
			chunk_id     TEXT NOT NULL DEFAULT '',
			community_id BIGINT NOT NULL,
			filename     TEXT NOT NULL,
			content      TEXT NOT NULL,
			chunk_order  INTEGER NOT NULL DEFAULT 0,
			embedding    vector(%d) NOT NULL,
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS community_docs_file_idx ON community_docs (community_id, filename)`,
	}
}

// Connect migrates the schema on a dedicated connection, then opens the pool. The vector
// type only exists after the extension is created, so codecs are registered per pooled
// connection afterwards.
func Connect(ctx context.Context, dsn string, dimension int) (*pgxpool.Pool, error) {
	migrateCtx, cancel := context.WithTimeout(ctx, config.PostgresMigrationTimeout)
	defer cancel()

	conn, err := pgx.Connect(migrateCtx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres connect failed: %w", err)
	}
	defer conn.Close(context.Background())

	for _, stmt := range migrations(dimension) {
		if _, err = conn.Exec(migrateCtx, stmt); err != nil {
			return nil, fmt.Errorf("postgres migration failed: %w", err)
		}
	}
	if err = verifyDimension(migrateCtx, conn, dimension); err != nil {
		return nil, err
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = int32(config.EnvInt("POSTGRES_MAX_CONNS", config.PostgresMaxConns))
	cfg.ConnConfig.ConnectTimeout = config.PostgresConnectTimeout
	cfg.AfterConnect = func(ctx context.Context, c *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, c)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	logger.Info("Postgres pool ready", "maxConns", cfg.MaxConns, "dimension", dimension)

	go func() {
		<-ctx.Done()
		logger.Info("Closing Postgres pool")
		pool.Close()
	}()
	return pool, nil
}

// verifyDimension compares the declared vector width of an existing table with the embedder.
// pgvector stores the dimension in atttypmod.
func verifyDimension(ctx context.Context, conn *pgx.Conn, dimension int) error {
	var declared int
	err := conn.QueryRow(ctx, `
		SELECT a.atttypmod
		FROM pg_attribute a
		WHERE a.attrelid = 'community_docs'::regclass AND a.attname = 'embedding'`).Scan(&declared)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return err
	}
	if declared > 0 && declared != dimension {
		metrics.CountConfigMismatch()
		return fmt.Errorf("%w: community_docs.embedding is vector(%d), embedder produces %d",
			commonModels.ErrConfigurationMismatch, declared, dimension)
	}
	return nil
}
