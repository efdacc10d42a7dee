package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/data/redisStore"
	"github.com/akolanti/CommunityRAG/internal/data/store"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redisStore.Store) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, redisStore.NewTestStore(client)
}

func TestRedisJobStore_Lifecycle(t *testing.T) {
	mr, internalStore := newTestRedis(t)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "test-trace")
	jobID := "job_abc_123"

	testJob := jobModel.Job{
		Id:     jobID,
		Status: jobModel.JobStatusRunning,
		JobPayload: jobModel.JobPayload{
			CommunityID: 7,
			Files: []jobModel.IngestFile{
				{Filename: "bylaws.pdf", MimeType: "application/pdf", Path: "/tmp/bylaws.pdf"},
			},
		},
	}

	t.Run("Save and Get Roundtrip", func(t *testing.T) {
		if err := jobStore.SaveJob(ctx, testJob); err != nil {
			t.Fatalf("SaveJob failed: %v", err)
		}

		retrievedJob, found := jobStore.GetJob(ctx, jobID)
		if !found {
			t.Fatal("Job was saved but not found in Redis")
		}
		if retrievedJob.JobPayload.CommunityID != 7 || len(retrievedJob.JobPayload.Files) != 1 {
			t.Errorf("payload mismatch: %+v", retrievedJob.JobPayload)
		}
		if ttl := mr.TTL("ingest-job:" + jobID); ttl != config.RedisJobStoreTTL {
			t.Errorf("expected ttl %v, got %v", config.RedisJobStoreTTL, ttl)
		}
	})

	t.Run("Get Non-Existent Job", func(t *testing.T) {
		if _, found := jobStore.GetJob(ctx, "ghost-id"); found {
			t.Error("Expected found=false for non-existent key")
		}
	})

	t.Run("Delete Job", func(t *testing.T) {
		jobStore.DeleteJob(ctx, jobID)
		if mr.Exists("ingest-job:" + jobID) {
			t.Error("Job still exists in Redis after DeleteJob call")
		}
	})
}

func TestRedisJobStore_Race(t *testing.T) {
	_, internalStore := newTestRedis(t)
	jobStore := store.TestJobStore(internalStore)

	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "race-trace")
	job := jobModel.Job{Id: "race-job"}

	const workers = 50
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = jobStore.SaveJob(ctx, job)
			_, _ = jobStore.GetJob(ctx, "race-job")
		}()
	}
	wg.Wait()

	if _, found := jobStore.GetJob(ctx, "race-job"); !found {
		t.Error("job missing after concurrent writes")
	}
}

func TestInMemoryJobStore(t *testing.T) {
	ctx := context.Background()
	s := store.InitInMemoryJobStore()
	_ = s.SaveJob(ctx, jobModel.Job{Id: "a", Status: jobModel.JobStatusQueued})

	got, ok := s.GetJob(ctx, "a")
	if !ok || got.Status != jobModel.JobStatusQueued {
		t.Fatalf("unexpected job %+v found=%v", got, ok)
	}
	s.DeleteJob(ctx, "a")
	if _, ok = s.GetJob(ctx, "a"); ok {
		t.Error("job should be gone")
	}
}

func TestInMemoryJobStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := store.NewInMemoryJobStore(time.Hour, func() time.Time { return now })

	_ = s.SaveJob(ctx, jobModel.Job{Id: "old", Status: jobModel.JobStatusComplete})
	now = now.Add(30 * time.Minute)
	if _, ok := s.GetJob(ctx, "old"); !ok {
		t.Fatal("job expired early")
	}

	now = now.Add(31 * time.Minute)
	if _, ok := s.GetJob(ctx, "old"); ok {
		t.Error("job outlived its ttl")
	}

	// a later save sweeps the expired entry and refreshes its own ttl
	_ = s.SaveJob(ctx, jobModel.Job{Id: "new", Status: jobModel.JobStatusQueued})
	now = now.Add(59 * time.Minute)
	if got, ok := s.GetJob(ctx, "new"); !ok || got.Status != jobModel.JobStatusQueued {
		t.Errorf("new job = %+v found=%v", got, ok)
	}
}
