package store_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/data/store"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
)

func TestMessageStores(t *testing.T) {
	_, internalStore := newTestRedis(t)

	stores := map[string]jobModel.MessageStore{
		"redis":    store.TestMessageStore(internalStore),
		"inMemory": store.InitMessageStore(),
	}

	for name, ms := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "msg-trace")
			chatID := "chat-" + name

			if ms.ValidateChatId(ctx, chatID) {
				t.Fatal("chat should not exist before init")
			}
			if err := ms.AppendTurns(ctx, chatID, commonModels.Turn{Role: commonModels.RoleUser, Text: "hi"}); !errors.Is(err, commonModels.ErrNotFound) {
				t.Fatalf("expected ErrNotFound for unknown chat, got %v", err)
			}

			if err := ms.InitNewChat(ctx, chatID); err != nil {
				t.Fatalf("InitNewChat failed: %v", err)
			}
			if !ms.ValidateChatId(ctx, chatID) {
				t.Fatal("chat should exist after init")
			}
			history, err := ms.GetMessageHistory(ctx, chatID)
			if err != nil || len(history) != 0 {
				t.Fatalf("fresh chat should be empty, got %v err=%v", history, err)
			}

			err = ms.AppendTurns(ctx, chatID,
				commonModels.Turn{Role: commonModels.RoleUser, Text: "Where do I park?"},
				commonModels.Turn{Role: commonModels.RoleAssistant, Text: "Which community do you live in?"},
			)
			if err != nil {
				t.Fatalf("AppendTurns failed: %v", err)
			}
			history, _ = ms.GetMessageHistory(ctx, chatID)
			if len(history) != 2 || history[0].Role != commonModels.RoleUser || history[1].Role != commonModels.RoleAssistant {
				t.Fatalf("unexpected history order: %+v", history)
			}
		})
	}
}

func TestMessageStores_CapHistory(t *testing.T) {
	_, internalStore := newTestRedis(t)
	stores := map[string]jobModel.MessageStore{
		"redis":    store.TestMessageStore(internalStore),
		"inMemory": store.InitMessageStore(),
	}

	for name, ms := range stores {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_ = ms.InitNewChat(ctx, "long")
			for i := 0; i < config.RedisHistoryTurns+5; i++ {
				_ = ms.AppendTurns(ctx, "long", commonModels.Turn{Role: commonModels.RoleUser, Text: fmt.Sprintf("msg %d", i)})
			}
			history, err := ms.GetMessageHistory(ctx, "long")
			if err != nil {
				t.Fatal(err)
			}
			if len(history) != config.RedisHistoryTurns {
				t.Fatalf("expected %d turns, got %d", config.RedisHistoryTurns, len(history))
			}
			want := fmt.Sprintf("msg %d", config.RedisHistoryTurns+4)
			if history[len(history)-1].Text != want {
				t.Errorf("newest turn should be kept, got %q", history[len(history)-1].Text)
			}
		})
	}
}
