package handlers

import (
	"context"
	"errors"
	"sync"

	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/job"
	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
)

var (
	handlerInstance *JobHandler //private singleton
	once            sync.Once
	logJH           = logger_i.NewLogger("JobHandler")
)

type JobHandler struct {
	service *job.Service
	rag     rag.Service
}

func InitJobHandler(jobService *job.Service, ragService rag.Service) {
	once.Do(func() {
		handlerInstance = &JobHandler{service: jobService, rag: ragService}

		logJH = logger_i.NewLogger("JobHandler")
		logRH = logger_i.NewLogger("RequestHandler")
		logJH.Info("Starting job handler")
	})
}

// CreateNewJob turns an accepted upload batch into a QUEUED ingest job.
func CreateNewJob(ctx context.Context, newJob newJobData) error {
	if handlerInstance == nil {
		return errors.New("job handler is not initialised")
	}
	logJH.WithTrace(ctx).Info("To create new job", "jobId", newJob.id, "files", len(newJob.files))
	return handlerInstance.service.Enqueue(ctx, job.NewIngestJob(newJob.id, newJob.traceId, newJob.communityID, newJob.files))
}

func GetJobStatus(ctx context.Context, id string) (result jobModel.Job, isFound bool) {
	if handlerInstance != nil {
		return handlerInstance.service.Status(ctx, id)
	}
	return result, false
}

func ragService() rag.Service {
	if handlerInstance == nil {
		return nil
	}
	return handlerInstance.rag
}
