package job

import (
	"context"
	"errors"
	"time"

	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

var logger = logger_i.NewLogger("JobService")

// Service carries the batch ingestion queue shared by the handlers and the worker pool.
type Service struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

type ServiceConfig struct {
	JobChannel        chan jobModel.Job
	DispatcherChannel chan bool
	JobStore          jobModel.JobStore
}

func InitJobService(cfg ServiceConfig) *Service {
	return &Service{
		JobChannel:        cfg.JobChannel,
		DispatcherChannel: cfg.DispatcherChannel,
		JobStore:          cfg.JobStore,
	}
}

// NewIngestJob builds a QUEUED batch for one community.
func NewIngestJob(id, traceId string, communityID int64, files []jobModel.IngestFile) jobModel.Job {
	return jobModel.Job{
		Id:          id,
		TraceId:     traceId,
		JobType:     jobModel.JobTypeIngest,
		CreatedTime: time.Now(),
		Status:      jobModel.JobStatusQueued,
		CurrentStep: jobModel.IngestInit,
		JobPayload: jobModel.JobPayload{
			CommunityID: communityID,
			Files:       files,
		},
	}
}

// Enqueue stores the job first so it can be polled right away, then hands it to the worker
// pool. The send blocks when the queue is full.
func (s *Service) Enqueue(ctx context.Context, j jobModel.Job) error {
	log := logger.WithTrace(ctx).With("jobId", j.Id)
	if s == nil || s.JobStore == nil {
		return errors.New("job service is not initialised")
	}
	if err := s.JobStore.SaveJob(ctx, j); err != nil {
		log.Error("could not store new job", "error", err)
		return err
	}

	metrics.IncrementJobsInQueue()
	select {
	case s.JobChannel <- j:
	case <-ctx.Done():
		metrics.DecrementJobsInQueue()
		s.JobStore.DeleteJob(context.WithoutCancel(ctx), j.Id)
		return ctx.Err()
	}
	log.Info("queued job", "files", len(j.JobPayload.Files))

	// every batch asks for a worker, idle workers retire on their own
	metrics.StartDispatcherSignalCount()
	select {
	case s.DispatcherChannel <- true:
	default:
		log.Debug("dispatcher already signalled")
	}
	return nil
}

func (s *Service) Status(ctx context.Context, id string) (jobModel.Job, bool) {
	if s == nil || s.JobStore == nil {
		return jobModel.Job{}, false
	}
	return s.JobStore.GetJob(ctx, id)
}
