package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
)

// ListActiveNames is what a community picker shows: active tenants only, global excluded.
func (s *service) ListActiveNames(ctx context.Context) ([]string, error) {
	all, err := s.communities.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(all))
	for _, c := range all {
		if c.IsActive && !s.isGlobal(c) {
			names = append(names, c.Name)
		}
	}
	return names, nil
}

func (s *service) ListCommunities(ctx context.Context) ([]communityModel.Community, error) {
	return s.communities.List(ctx)
}

func (s *service) CreateCommunity(ctx context.Context, c communityModel.NewCommunity) (communityModel.Community, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return communityModel.Community{}, fmt.Errorf("%w: name is required", commonModels.ErrValidation)
	}
	created, err := s.communities.Create(ctx, c)
	if err != nil {
		return created, err
	}
	s.logger.WithTrace(ctx).Info("community created", "id", created.ID, "name", created.Name)
	return created, nil
}

// RenameCommunity keeps the id, so every stored chunk follows the new name.
func (s *service) RenameCommunity(ctx context.Context, id int64, name string) (communityModel.Community, error) {
	c, err := s.mustGet(ctx, id)
	if err != nil {
		return c, err
	}
	if s.isGlobal(c) {
		return c, fmt.Errorf("%w: the %s partition cannot be renamed", commonModels.ErrValidation, s.globalName)
	}
	return s.communities.Rename(ctx, id, strings.TrimSpace(name))
}

func (s *service) SetCommunityActive(ctx context.Context, id int64, active bool) (communityModel.Community, error) {
	if err := s.communities.SetActive(ctx, id, active); err != nil {
		return communityModel.Community{}, err
	}
	return s.mustGet(ctx, id)
}

// DeleteCommunity removes the vectors before the registry row. A failure in between leaves a
// registered community with no documents, never orphaned chunks.
func (s *service) DeleteCommunity(ctx context.Context, id int64) error {
	c, err := s.mustGet(ctx, id)
	if err != nil {
		return err
	}
	if s.isGlobal(c) {
		return fmt.Errorf("%w: the %s partition cannot be deleted", commonModels.ErrValidation, s.globalName)
	}
	if err = s.vectors.DeleteCommunity(ctx, id); err != nil {
		return fmt.Errorf("deleting documents of %s: %w", c.Name, err)
	}
	if err = s.communities.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithTrace(ctx).Info("community deleted", "id", id, "name", c.Name)
	return nil
}

func (s *service) EnsureGlobalPartition(ctx context.Context) (communityModel.Community, error) {
	c, found, err := s.communities.FindByName(ctx, s.globalName)
	if err != nil || found {
		return c, err
	}
	c, err = s.communities.Create(ctx, communityModel.NewCommunity{
		Name:        s.globalName,
		Description: "Statutes that apply to every community",
	})
	if err != nil {
		return c, err
	}
	s.logger.Info("global partition created", "id", c.ID, "name", c.Name)
	return c, nil
}

func (s *service) isGlobal(c communityModel.Community) bool {
	return communityModel.SameName(c.Name, s.globalName)
}

func (s *service) mustGet(ctx context.Context, id int64) (communityModel.Community, error) {
	c, found, err := s.communities.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if !found {
		return c, fmt.Errorf("%w: community %d", commonModels.ErrNotFound, id)
	}
	return c, nil
}
