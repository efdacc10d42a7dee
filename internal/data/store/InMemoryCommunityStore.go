package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
)

type InMemoryCommunityStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]communityModel.Community
}

func InitInMemoryCommunityStore() *InMemoryCommunityStore {
	return &InMemoryCommunityStore{byID: make(map[int64]communityModel.Community)}
}

var _ communityModel.CommunityStore = (*InMemoryCommunityStore)(nil)

func (s *InMemoryCommunityStore) List(ctx context.Context) ([]communityModel.Community, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]communityModel.Community, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, c)
	}
	sortByName(out)
	return out, nil
}

func (s *InMemoryCommunityStore) Get(ctx context.Context, id int64) (communityModel.Community, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	return c, ok, nil
}

func (s *InMemoryCommunityStore) FindByName(ctx context.Context, name string) (communityModel.Community, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.findLocked(name)
	return c, ok, nil
}

func (s *InMemoryCommunityStore) findLocked(name string) (communityModel.Community, bool) {
	for _, c := range s.byID {
		if communityModel.SameName(c.Name, name) {
			return c, true
		}
	}
	return communityModel.Community{}, false
}

func (s *InMemoryCommunityStore) Create(ctx context.Context, n communityModel.NewCommunity) (communityModel.Community, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.findLocked(n.Name); exists {
		return communityModel.Community{}, duplicateName(n.Name)
	}
	c, err := newCommunityRecord(s.nextID+1, n, time.Now())
	if err != nil {
		return c, err
	}
	s.nextID++
	s.byID[c.ID] = c
	return c, nil
}

func (s *InMemoryCommunityStore) Rename(ctx context.Context, id int64, name string) (communityModel.Community, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return communityModel.Community{}, fmt.Errorf("%w: community name is required", commonModels.ErrValidation)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return c, missingCommunity(id)
	}
	if other, exists := s.findLocked(name); exists && other.ID != id {
		return c, duplicateName(name)
	}
	c.Name = name
	s.byID[id] = c
	return c, nil
}

func (s *InMemoryCommunityStore) SetActive(ctx context.Context, id int64, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[id]
	if !ok {
		return missingCommunity(id)
	}
	c.IsActive = active
	s.byID[id] = c
	return nil
}

func (s *InMemoryCommunityStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return missingCommunity(id)
	}
	delete(s.byID, id)
	return nil
}
