package adapter

import (
	"fmt"
	"time"

	"github.com/akolanti/CommunityRAG/internal/api"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
)

func ToInitJobResponse(id string) api.InitJobResponse {
	return api.InitJobResponse{
		Id:        id,
		StatusURL: fmt.Sprintf("admin/status/%s", id),
	}
}

func ToAPIResponse(job jobModel.Job) api.JobResponse {
	var errorPtr *api.JobOutgoingError
	if job.Error.Message != "" || job.Error.Code != 0 {
		errorPtr = &api.JobOutgoingError{
			Code:    job.Error.Code,
			Message: job.Error.Message,
			Retry:   job.Error.Retry,
		}
	}

	result := api.Result{
		Status:      string(job.Status),
		CurrentFile: job.JobPayload.CurrentFile,
	}
	for _, r := range job.JobPayload.Results {
		result.Files = append(result.Files, ToFileResult(r))
	}

	return api.JobResponse{
		Id:          job.Id,
		CommunityID: job.JobPayload.CommunityID,
		StartTime:   job.CreatedTime,
		EndTime:     job.EndTime,
		Error:       errorPtr,
		Result:      result,
	}
}

func ToFileResult(r jobModel.FileResult) api.FileResult {
	out := api.FileResult{Filename: r.Filename, Error: r.Error}
	if r.Result != nil {
		out.InsertedCount = r.Result.InsertedCount
		out.SkippedChunks = toChunkErrors(r.Result.Errors)
	}
	return out
}

func ToIngestResponse(r commonModels.IngestResult) api.IngestResponse {
	return api.IngestResponse{
		CommunityID:   r.CommunityID,
		Filename:      r.Filename,
		ChunkCount:    r.ChunkCount,
		InsertedCount: r.InsertedCount,
		SkippedChunks: toChunkErrors(r.Errors),
	}
}

func toChunkErrors(errs []commonModels.ChunkError) []api.ChunkError {
	out := make([]api.ChunkError, 0, len(errs))
	for _, e := range errs {
		out = append(out, api.ChunkError{Index: e.Index, Message: e.Message})
	}
	return out
}

func ToDocumentsResponse(docs []commonModels.DocumentSummary) api.DocumentsResponse {
	out := api.DocumentsResponse{Documents: make([]api.DocumentSummary, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, api.DocumentSummary{
			Filename:          d.Filename,
			CommunityID:       d.CommunityID,
			CommunityName:     d.CommunityName,
			ChunkCount:        d.ChunkCount,
			EarliestCreatedAt: d.EarliestCreatedAt,
		})
	}
	return out
}

func BadRequest(id string, error string, code int) api.JobResponse {
	return api.JobResponse{
		Id:        id,
		StartTime: time.Time{},
		EndTime:   time.Time{},
		Result: api.Result{
			Status: string(api.JobStatusError),
		},
		Error: &api.JobOutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}
