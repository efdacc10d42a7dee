package handlers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/akolanti/CommunityRAG/internal/adapter"
	"github.com/akolanti/CommunityRAG/internal/adapter/utils"
	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/rag/ingest"
)

// PostDocumentHandler ingests one uploaded file and answers once it is indexed.
// @Summary      Upload a document for ingestion
// @Description  Receives a file via multipart/form-data and indexes it into the community's partition.
// @Description  Re-uploading a filename replaces its previous chunks.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        community_id  formData  int   true  "Community the document belongs to"
// @Param        file          formData  file  true  "Text, markdown or PDF file"
// @Success      200  {object}  api.IngestResponse
// @Failure      400  {object}  api.JobResponse "Missing fields, unknown community or unsupported format"
// @Failure      422  {object}  api.JobResponse "No text could be extracted"
// @Router       /admin/documents [post]
func PostDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "File too large or bad request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	communityID, ok := formCommunityID(w, r)
	if !ok {
		return
	}
	fileReader, fileMetadata, err := r.FormFile("file")
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Could not retrieve file")
		return
	}
	defer fileReader.Close()

	data, err := io.ReadAll(fileReader)
	if err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, fileMetadata.Filename, "Could not read file")
		return
	}

	result, err := ragService().IngestDocument(r.Context(), ingest.IngestRequest{
		CommunityID: communityID,
		Filename:    filepath.Base(fileMetadata.Filename),
		Data:        data,
		MimeType:    fileMetadata.Header.Get("Content-Type"),
	})
	if err != nil {
		writeServiceError(w, r, fileMetadata.Filename, err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToIngestResponse(result))
}

// PostBatchHandler godoc
// @Summary      Queue several documents for ingestion
// @Description  Spools the uploaded files to disk and queues one ingestion job. Poll the status url for per file results.
// @Tags         Documents
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        community_id  formData  int   true  "Community the documents belong to"
// @Param        files[]       formData  file  true  "Text, markdown or PDF files"
// @Success      202  {object}  api.InitJobResponse "Job successfully created"
// @Failure      400  {object}  api.JobResponse "Missing fields or too many files"
// @Failure      500  {object}  api.JobResponse "Storage or write error"
// @Router       /admin/documents/batch [post]
func PostBatchHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, config.MaxUploadSize*config.MaxBatchFiles)
	if err := r.ParseMultipartForm(config.MaxUploadSize); err != nil {
		WriteErrorResponse(w, http.StatusBadRequest, "", "Files too large or bad request")
		return
	}
	defer r.MultipartForm.RemoveAll()

	communityID, ok := formCommunityID(w, r)
	if !ok {
		return
	}
	headers := r.MultipartForm.File["files[]"]
	if len(headers) == 0 {
		headers = r.MultipartForm.File["files"]
	}
	if len(headers) == 0 {
		WriteErrorResponse(w, http.StatusBadRequest, "", "files[] is required")
		return
	}
	if len(headers) > config.MaxBatchFiles {
		WriteErrorResponse(w, http.StatusBadRequest, "", fmt.Sprintf("at most %d files per batch", config.MaxBatchFiles))
		return
	}
	if err := requireCommunity(r, communityID); err != nil {
		writeServiceError(w, r, "", err)
		return
	}

	targetDir, errString := getTargetDirectory()
	if errString != "" {
		logRH.Error("Couldn't get target directory", "err", errString)
		WriteErrorResponse(w, http.StatusInternalServerError, "", errString)
		return
	}

	files := make([]jobModel.IngestFile, 0, len(headers))
	for _, header := range headers {
		spooled, err := spoolUpload(targetDir, header)
		if err != nil {
			logRH.WithTrace(r.Context()).Error("could not spool upload", "file", header.Filename, "error", err)
			removeSpooled(files)
			WriteErrorResponse(w, http.StatusInternalServerError, header.Filename, "Storage error")
			return
		}
		files = append(files, spooled)
	}

	newJob := newJobData{
		id:          utils.GetNewUUID(),
		traceId:     traceOf(r),
		communityID: communityID,
		files:       files,
	}
	if err := CreateNewJob(r.Context(), newJob); err != nil {
		removeSpooled(files)
		WriteErrorResponse(w, http.StatusInternalServerError, newJob.id, "Could not queue job")
		return
	}
	writeJsonResponse(w, http.StatusAccepted, adapter.ToInitJobResponse(newJob.id))
}

// ListDocumentsHandler godoc
// @Summary      List indexed documents
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        community_id  query     int  false  "Only this community"
// @Success      200  {object}  api.DocumentsResponse
// @Router       /admin/documents [get]
func ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	var communityID int64
	if raw := r.URL.Query().Get("community_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, raw, "community_id must be a positive integer")
			return
		}
		communityID = id
	}
	docs, err := ragService().ListDocuments(r.Context(), communityID)
	if err != nil {
		writeServiceError(w, r, "", err)
		return
	}
	writeJsonResponse(w, http.StatusOK, adapter.ToDocumentsResponse(docs))
}

// DeleteDocumentHandler godoc
// @Summary      Delete a document's chunks
// @Tags         Documents
// @Security     BearerAuth
// @Param        filename      query  string  true   "Filename as uploaded"
// @Param        community_id  query  int     false  "Only in this community"
// @Success      204
// @Failure      400  {object}  api.JobResponse
// @Router       /admin/documents [delete]
func DeleteDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	filter := commonModels.DocumentFilter{Filename: r.URL.Query().Get("filename")}
	if raw := r.URL.Query().Get("community_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			WriteErrorResponse(w, http.StatusBadRequest, raw, "community_id must be a positive integer")
			return
		}
		filter.CommunityID = id
	}
	if err := ragService().DeleteDocument(r.Context(), filter); err != nil {
		writeServiceError(w, r, filter.Filename, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func formCommunityID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.FormValue("community_id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		WriteErrorResponse(w, http.StatusBadRequest, raw, "community_id is required")
		return 0, false
	}
	return id, true
}

func spoolUpload(targetDir string, header *multipart.FileHeader) (jobModel.IngestFile, error) {
	src, err := header.Open()
	if err != nil {
		return jobModel.IngestFile{}, err
	}
	defer src.Close()

	name := filepath.Base(header.Filename)
	path := filepath.Join(targetDir, fmt.Sprintf("%d-%s", time.Now().UnixNano(), name))
	dst, err := os.Create(path)
	if err != nil {
		return jobModel.IngestFile{}, err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return jobModel.IngestFile{}, err
	}
	return jobModel.IngestFile{Filename: name, MimeType: header.Header.Get("Content-Type"), Path: path}, nil
}

func removeSpooled(files []jobModel.IngestFile) {
	for _, f := range files {
		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			logRH.Warn("could not remove spooled upload", "path", f.Path, "error", err)
		}
	}
}
