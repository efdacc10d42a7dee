package worker

import (
	"context"
	"os"
	"sync/atomic"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/metrics"
)

func executeJob(job jobModel.Job) {
	start := time.Now()
	defer func() {
		metrics.CaptureJobMetrics(string(job.Status), time.Since(start))
	}()
	ctxTrace := context.WithValue(context.Background(), config.TRACE_ID_KEY, job.TraceId)
	ctx, cancel := context.WithTimeout(ctxTrace, jobTimeout)
	defer cancel()
	log := logger.WithTrace(ctx).With("jobId", job.Id)
	log.Debug("Processing job")

	job.Status = jobModel.JobStatusRunning
	saveJobState(ctx, job)

	if job.JobType == jobModel.JobTypeIngest {
		job = _ingester.IngestJob(ctx, job, func(progress jobModel.Job) {
			progress.Status = jobModel.JobStatusRunning
			saveJobState(ctx, progress)
		})
		removeSpooledFiles(job)
	} else {
		log.Error("Unknown job type", "jobType", job.JobType)
		job.Status = jobModel.JobStatusError
		job.CurrentStep = jobModel.Error
		job.Error = jobModel.JobError{Code: 400, Message: "unknown job type " + string(job.JobType)}
	}

	job.EndTime = time.Now()
	saveJobState(ctx, job)
	log.Info("Job finished", "status", job.Status, "took", time.Since(start))
}

func removeWorker(reason string) {
	workerWaitGroup.Done()
	count := atomic.AddInt64(&currentWorkerCount, -1)
	logger.Info("Removed worker", "reason", reason, "workerCount", count)
	metrics.DecrementActiveWorkerCount()
}

// removeSpooledFiles deletes the uploads the handler wrote to disk for this job.
func removeSpooledFiles(job jobModel.Job) {
	for _, f := range job.JobPayload.Files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Could not remove spooled upload", "path", f.Path, "error", err)
		}
	}
}

func saveJobState(ctx context.Context, job jobModel.Job) {
	// the job context may have expired, the final state must still land
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := _jobService.JobStore.SaveJob(saveCtx, job); err != nil {
		logger.Error("Failed to update job state", "jobId", job.Id, "err", err)
	}
}
