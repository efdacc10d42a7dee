package jobModel

import (
	"context"
	"time"

	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
)

type JobStatus string
type InternalStatus string

type JobType string

const (
	JobStatusQueued   JobStatus = "QUEUED"
	JobStatusRunning  JobStatus = "RUNNING"
	JobStatusComplete JobStatus = "COMPLETE"
	JobStatusPartial  JobStatus = "PARTIAL"
	JobStatusError    JobStatus = "Error"

	IngestInit       InternalStatus = "IngestInit"
	IngestProcessing InternalStatus = "IngestProcessing"
	IngestPacing     InternalStatus = "IngestPacing"
	Error            InternalStatus = "Error"

	Complete InternalStatus = "Complete"

	JobTypeIngest JobType = "Ingest"
)

type Job struct {
	Id          string         `json:"id"`
	TraceId     string         `json:"trace_id"`
	JobType     JobType        `json:"job_type"`
	JobPayload  JobPayload     `json:"job_payload"`
	Error       JobError       `json:"error,omitempty"`
	CreatedTime time.Time      `json:"created_time"`
	EndTime     time.Time      `json:"end_time,omitempty"`
	Status      JobStatus      `json:"status"`
	CurrentStep InternalStatus `json:"current_step"`
}

type JobError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Retry   bool   `json:"retry"`
}

// JobPayload is a multi file ingestion batch for one community.
type JobPayload struct {
	CommunityID int64        `json:"community_id"`
	Files       []IngestFile `json:"files"`
	Results     []FileResult `json:"results,omitempty"`
	CurrentFile string       `json:"current_file,omitempty"`
}

// IngestFile points at an upload spooled to local disk by the handler.
type IngestFile struct {
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Path     string `json:"path"`
}

type FileResult struct {
	Filename string                     `json:"filename"`
	Result   *commonModels.IngestResult `json:"result,omitempty"`
	Error    string                     `json:"error,omitempty"`
}

type JobStore interface {
	GetJob(ctx context.Context, jobId string) (Job, bool)
	SaveJob(ctx context.Context, job Job) error
	DeleteJob(ctx context.Context, jobID string)
}

// MessageStore keeps chat transcripts for callers that send a chat id instead of the history.
type MessageStore interface {
	ValidateChatId(ctx context.Context, id string) bool
	InitNewChat(ctx context.Context, id string) error
	AppendTurns(ctx context.Context, id string, turns ...commonModels.Turn) error
	GetMessageHistory(ctx context.Context, chatId string) ([]commonModels.Turn, error)
}
