package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/data/redisStore"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

const chatKeyPrefix = "chat:"

// RedisMessageStore keeps each transcript as a capped list of json encoded turns.
// A fresh chat holds a single empty marker entry so the key exists before the first turn.
type RedisMessageStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func GetRedisMessageStore(ctx context.Context) *RedisMessageStore {
	s := redisStore.GetRedisStore(ctx, config.RedisMessageStore)
	if s == nil {
		return nil
	}
	return &RedisMessageStore{
		store:  s,
		logger: logger_i.NewLogger("MessageStore"),
	}
}

func TestMessageStore(store *redisStore.Store) *RedisMessageStore {
	return &RedisMessageStore{
		store:  store,
		logger: logger_i.NewLogger("test redis"),
	}
}

func (s *RedisMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	isFound, err := s.store.Exists(ctx, chatKeyPrefix+chatId)
	if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisMessageStore) InitNewChat(ctx context.Context, id string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	log.Debug("Initializing new chat")
	key := chatKeyPrefix + id
	if err := s.store.Del(ctx, key); err != nil {
		return err
	}
	return s.store.AppendCapped(ctx, key, 0, config.RedisMessageStoreTTL, "")
}

func (s *RedisMessageStore) AppendTurns(ctx context.Context, id string, turns ...commonModels.Turn) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", id)
	if !s.ValidateChatId(ctx, id) {
		return fmt.Errorf("%w: unknown chat id %s", commonModels.ErrNotFound, id)
	}
	if len(turns) == 0 {
		return nil
	}

	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		values = append(values, data)
	}
	err := s.store.AppendCapped(ctx, chatKeyPrefix+id, int64(config.RedisHistoryTurns), config.RedisMessageStoreTTL, values...)
	if err != nil {
		log.Error("error saving chat", "error", err)
		return err
	}
	log.Debug("Saved chat turns", "count", len(turns))
	return nil
}

// GetMessageHistory returns turns oldest first.
func (s *RedisMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.Turn, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	if !s.ValidateChatId(ctx, chatId) {
		return nil, fmt.Errorf("%w: unknown chat id %s", commonModels.ErrNotFound, chatId)
	}

	res, err := s.store.ListGetAll(ctx, chatKeyPrefix+chatId)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	turns := make([]commonModels.Turn, 0, len(res))
	for _, raw := range res {
		if raw == "" {
			continue
		}
		var t commonModels.Turn
		if err = json.Unmarshal([]byte(raw), &t); err != nil {
			log.Warn("skipping malformed turn", "error", err)
			continue
		}
		turns = append(turns, t)
	}
	return turns, nil
}
