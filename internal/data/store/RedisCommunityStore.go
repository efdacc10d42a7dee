package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/data/redisStore"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

const (
	communityHashKey = "communities"
	communitySeqKey  = "communities:seq"
)

// RedisCommunityStore keeps every community as a json record in one hash keyed by id.
// Name uniqueness is checked under a process local lock, so only one writer process is supported.
type RedisCommunityStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
	write  sync.Mutex
}

var _ communityModel.CommunityStore = (*RedisCommunityStore)(nil)

func GetRedisCommunityStore(ctx context.Context) *RedisCommunityStore {
	s := redisStore.GetRedisStore(ctx, config.RedisCommunityStore)
	if s == nil {
		return nil
	}
	return &RedisCommunityStore{store: s, logger: logger_i.NewLogger("CommunityStore")}
}

func TestCommunityStore(store *redisStore.Store) *RedisCommunityStore {
	return &RedisCommunityStore{store: store, logger: logger_i.NewLogger("test redis")}
}

func (s *RedisCommunityStore) List(ctx context.Context) ([]communityModel.Community, error) {
	all, err := s.store.HashGetAll(ctx, communityHashKey)
	if err != nil {
		return nil, err
	}
	out := make([]communityModel.Community, 0, len(all))
	for field, raw := range all {
		var c communityModel.Community
		if err = json.Unmarshal([]byte(raw), &c); err != nil {
			s.logger.Warn("skipping malformed community record", "field", field, "error", err)
			continue
		}
		out = append(out, c)
	}
	sortByName(out)
	return out, nil
}

func (s *RedisCommunityStore) Get(ctx context.Context, id int64) (communityModel.Community, bool, error) {
	var c communityModel.Community
	raw, err := s.store.HashGet(ctx, communityHashKey, idField(id))
	if s.store.IsNil(err) {
		return c, false, nil
	}
	if err != nil {
		return c, false, err
	}
	if err = json.Unmarshal([]byte(raw), &c); err != nil {
		return c, false, err
	}
	return c, true, nil
}

func (s *RedisCommunityStore) FindByName(ctx context.Context, name string) (communityModel.Community, bool, error) {
	all, err := s.List(ctx)
	if err != nil {
		return communityModel.Community{}, false, err
	}
	for _, c := range all {
		if communityModel.SameName(c.Name, name) {
			return c, true, nil
		}
	}
	return communityModel.Community{}, false, nil
}

func (s *RedisCommunityStore) Create(ctx context.Context, n communityModel.NewCommunity) (communityModel.Community, error) {
	s.write.Lock()
	defer s.write.Unlock()

	if strings.TrimSpace(n.Name) == "" {
		return communityModel.Community{}, fmt.Errorf("%w: community name is required", commonModels.ErrValidation)
	}
	if _, exists, err := s.FindByName(ctx, n.Name); err != nil {
		return communityModel.Community{}, err
	} else if exists {
		return communityModel.Community{}, duplicateName(n.Name)
	}

	id, err := s.store.Incr(ctx, communitySeqKey)
	if err != nil {
		return communityModel.Community{}, err
	}
	c, err := newCommunityRecord(id, n, time.Now())
	if err != nil {
		return c, err
	}
	return c, s.put(ctx, c)
}

func (s *RedisCommunityStore) Rename(ctx context.Context, id int64, name string) (communityModel.Community, error) {
	s.write.Lock()
	defer s.write.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return communityModel.Community{}, fmt.Errorf("%w: community name is required", commonModels.ErrValidation)
	}
	c, ok, err := s.Get(ctx, id)
	if err != nil {
		return c, err
	}
	if !ok {
		return c, missingCommunity(id)
	}
	if other, exists, err := s.FindByName(ctx, name); err != nil {
		return c, err
	} else if exists && other.ID != id {
		return c, duplicateName(name)
	}
	c.Name = name
	return c, s.put(ctx, c)
}

func (s *RedisCommunityStore) SetActive(ctx context.Context, id int64, active bool) error {
	s.write.Lock()
	defer s.write.Unlock()

	c, ok, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return missingCommunity(id)
	}
	c.IsActive = active
	return s.put(ctx, c)
}

func (s *RedisCommunityStore) Delete(ctx context.Context, id int64) error {
	removed, err := s.store.HashDel(ctx, communityHashKey, idField(id))
	if err != nil {
		return err
	}
	if removed == 0 {
		return missingCommunity(id)
	}
	return nil
}

func (s *RedisCommunityStore) put(ctx context.Context, c communityModel.Community) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.store.HashSet(ctx, communityHashKey, idField(c.ID), data)
}

func idField(id int64) string {
	return strconv.FormatInt(id, 10)
}
