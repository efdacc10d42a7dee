package api

import "time"

type JobExternalStatus string

const (
	JobStatusError JobExternalStatus = "Error"
)

type JobResponse struct {
	Id          string            `json:"id" example:"job_cz109"`
	CommunityID int64             `json:"community_id,omitempty" example:"3"`
	Result      Result            `json:"result"`
	Error       *JobOutgoingError `json:"error,omitempty"`
	StartTime   time.Time         `json:"start_time"`
	EndTime     time.Time         `json:"end_time,omitempty"`
}

type JobOutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Message string `json:"message" example:"Job not found"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Result struct {
	Status      string       `json:"status" example:"RUNNING"`
	CurrentFile string       `json:"current_file,omitempty" example:"bylaws.pdf"`
	Files       []FileResult `json:"files,omitempty"`
}

type FileResult struct {
	Filename      string       `json:"filename" example:"bylaws.pdf"`
	InsertedCount int          `json:"inserted_count" example:"41"`
	SkippedChunks []ChunkError `json:"skipped_chunk_errors,omitempty"`
	Error         string       `json:"error,omitempty"`
}

type ChunkError struct {
	Index   int    `json:"index" example:"7"`
	Message string `json:"message" example:"embedding: rate limited upstream"`
}

type InitJobResponse struct {
	Id        string `json:"id"`
	StatusURL string `json:"status_url"`
}

type IngestResponse struct {
	CommunityID   int64        `json:"community_id" example:"3"`
	Filename      string       `json:"filename" example:"bylaws.pdf"`
	ChunkCount    int          `json:"chunk_count" example:"42"`
	InsertedCount int          `json:"inserted_count" example:"41"`
	SkippedChunks []ChunkError `json:"skipped_chunk_errors"`
}

type Turn struct {
	Role string `json:"role" example:"user" enums:"user,assistant"`
	Text string `json:"text" example:"Can I install solar panels?"`
}

type ChatResponse struct {
	Reply      string   `json:"reply" example:"Which community do you live in?"`
	State      string   `json:"state" example:"need_tenant" enums:"need_tenant,need_role,ready"`
	Community  string   `json:"community,omitempty" example:"4100 Five Oaks"`
	Role       string   `json:"role,omitempty" example:"Homeowner"`
	Candidates []string `json:"candidates,omitempty"`
	ChatID     string   `json:"chat_id" example:"chat_550"`
}

type GreetingResponse struct {
	Reply string `json:"reply"`
}

type CommunitiesResponse struct {
	Communities []string `json:"communities"`
}

type DocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
}

type DocumentSummary struct {
	Filename          string    `json:"filename" example:"bylaws.pdf"`
	CommunityID       int64     `json:"community_id" example:"3"`
	CommunityName     string    `json:"community_name,omitempty" example:"4100 Five Oaks"`
	ChunkCount        int       `json:"chunk_count" example:"42"`
	EarliestCreatedAt time.Time `json:"earliest_created_at"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}

// requests---------------------

type ChatRequest struct {
	Message   string `json:"message" validate:"required"`
	History   []Turn `json:"history,omitempty"`
	Community string `json:"community,omitempty" example:"4100 Five Oaks"`
	ChatID    string `json:"chat_id,omitempty"`
}

type CreateCommunityRequest struct {
	Name        string `json:"name" validate:"required" example:"Five Oaks Lakeside"`
	City        string `json:"city,omitempty" example:"Durham"`
	PortalURL   string `json:"portal_url,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateCommunityRequest renames and/or toggles a community. Absent fields are left alone.
type UpdateCommunityRequest struct {
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}
