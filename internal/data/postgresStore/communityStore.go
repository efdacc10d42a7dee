package postgresStore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

const communityColumns = `id, name, slug, city, portal_url, description, is_active, created_at`

type CommunityStore struct {
	pool *pgxpool.Pool
}

var _ communityModel.CommunityStore = (*CommunityStore)(nil)

func NewCommunityStore(pool *pgxpool.Pool) *CommunityStore {
	return &CommunityStore{pool: pool}
}

func scanCommunity(row pgx.Row) (communityModel.Community, error) {
	var c communityModel.Community
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.City, &c.PortalURL, &c.Description, &c.IsActive, &c.CreatedAt)
	return c, err
}

func (s *CommunityStore) List(ctx context.Context) ([]communityModel.Community, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+communityColumns+` FROM communities ORDER BY lower(name), id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []communityModel.Community
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *CommunityStore) Get(ctx context.Context, id int64) (communityModel.Community, bool, error) {
	c, err := scanCommunity(s.pool.QueryRow(ctx, `SELECT `+communityColumns+` FROM communities WHERE id = $1`, id))
	return found(c, err)
}

func (s *CommunityStore) FindByName(ctx context.Context, name string) (communityModel.Community, bool, error) {
	c, err := scanCommunity(s.pool.QueryRow(ctx,
		`SELECT `+communityColumns+` FROM communities WHERE lower(name) = lower($1)`, strings.TrimSpace(name)))
	return found(c, err)
}

func (s *CommunityStore) Create(ctx context.Context, n communityModel.NewCommunity) (communityModel.Community, error) {
	name := strings.TrimSpace(n.Name)
	if name == "" {
		return communityModel.Community{}, fmt.Errorf("%w: community name is required", commonModels.ErrValidation)
	}
	c, err := scanCommunity(s.pool.QueryRow(ctx, `
		INSERT INTO communities (name, slug, city, portal_url, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+communityColumns,
		name, communityModel.Slugify(name), strings.TrimSpace(n.City), strings.TrimSpace(n.PortalURL), strings.TrimSpace(n.Description)))
	return c, mapWriteError(err, name)
}

func (s *CommunityStore) Rename(ctx context.Context, id int64, name string) (communityModel.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return communityModel.Community{}, fmt.Errorf("%w: community name is required", commonModels.ErrValidation)
	}
	c, err := scanCommunity(s.pool.QueryRow(ctx,
		`UPDATE communities SET name = $2 WHERE id = $1 RETURNING `+communityColumns, id, name))
	if errors.Is(err, pgx.ErrNoRows) {
		return c, fmt.Errorf("%w: community %d", commonModels.ErrNotFound, id)
	}
	return c, mapWriteError(err, name)
}

func (s *CommunityStore) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := s.pool.Exec(ctx, `UPDATE communities SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: community %d", commonModels.ErrNotFound, id)
	}
	return nil
}

func (s *CommunityStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM communities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: community %d", commonModels.ErrNotFound, id)
	}
	return nil
}

func found(c communityModel.Community, err error) (communityModel.Community, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return c, false, nil
	}
	if err != nil {
		return c, false, err
	}
	return c, true, nil
}

func mapWriteError(err error, name string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: a community named %q already exists", commonModels.ErrValidation, name)
	}
	return err
}
