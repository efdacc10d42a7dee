package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
)

type InMemoryMessageStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]commonModels.Turn
	maxTurns int
}

func InitMessageStore() *InMemoryMessageStore {
	return &InMemoryMessageStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]commonModels.Turn),
		maxTurns: config.RedisHistoryTurns,
	}
}

func (store *InMemoryMessageStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryMessageStore) InitNewChat(ctx context.Context, id string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[id] = make([]commonModels.Turn, 0)
	return nil
}

func (store *InMemoryMessageStore) AppendTurns(ctx context.Context, id string, turns ...commonModels.Turn) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	history, ok := store.chatMap[id]
	if !ok {
		return fmt.Errorf("%w: unknown chat id %s", commonModels.ErrNotFound, id)
	}
	history = append(history, turns...)
	if len(history) > store.maxTurns {
		history = history[len(history)-store.maxTurns:]
	}
	store.chatMap[id] = history
	return nil
}

func (store *InMemoryMessageStore) GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.Turn, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	history, ok := store.chatMap[chatId]
	if !ok {
		return nil, fmt.Errorf("%w: unknown chat id %s", commonModels.ErrNotFound, chatId)
	}
	out := make([]commonModels.Turn, len(history))
	copy(out, history)
	return out, nil
}
