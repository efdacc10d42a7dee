package store

import (
	"context"
	"sync"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Store")

type storedJob struct {
	job       jobModel.Job
	expiresAt time.Time
}

// InMemoryJobStore keeps ingest jobs for the same TTL as the redis store. Expired jobs are
// dropped when read and swept on every save.
type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]storedJob
	ttl      time.Duration
	now      func() time.Time
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return NewInMemoryJobStore(config.RedisJobStoreTTL, time.Now)
}

func NewInMemoryJobStore(ttl time.Duration, now func() time.Time) *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]storedJob),
		ttl:      ttl,
		now:      now,
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, jobToStored jobModel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()

	now := store.now()
	for id, stored := range store.jobMap {
		if now.After(stored.expiresAt) {
			delete(store.jobMap, id)
		}
	}
	store.jobMap[jobToStored.Id] = storedJob{job: jobToStored, expiresAt: now.Add(store.ttl)}
	inMemLogger.Debug("saved job", "jobId", jobToStored.Id, "status", jobToStored.Status, "files", len(jobToStored.JobPayload.Files))
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobModel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	stored, found := store.jobMap[jobId]
	if !found || store.now().After(stored.expiresAt) {
		return jobModel.Job{}, false
	}
	return stored.job, true
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobID string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobID)
}
