package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/akolanti/CommunityRAG/internal/api"
	"github.com/akolanti/CommunityRAG/internal/data/store"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
	"github.com/akolanti/CommunityRAG/internal/job"
	"github.com/akolanti/CommunityRAG/internal/rag"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/akolanti/CommunityRAG/internal/rag/ingest"
	"github.com/go-chi/chi/v5"
)

// fakeRag implements rag.Service. Methods without an On func return zero values.
type fakeRag struct {
	OnAnswer          func(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error)
	OnIngestDocument  func(ctx context.Context, req ingest.IngestRequest) (commonModels.IngestResult, error)
	OnListDocuments   func(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error)
	OnDeleteDocument  func(ctx context.Context, filter commonModels.DocumentFilter) error
	OnListActiveNames func(ctx context.Context) ([]string, error)
	OnDeleteCommunity func(ctx context.Context, id int64) error
	OnRename          func(ctx context.Context, id int64, name string) (communityModel.Community, error)
	OnSetActive       func(ctx context.Context, id int64, active bool) (communityModel.Community, error)
	Communities       []communityModel.Community
}

func (f *fakeRag) Answer(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error) {
	return f.OnAnswer(ctx, req)
}

func (f *fakeRag) IngestDocument(ctx context.Context, req ingest.IngestRequest) (commonModels.IngestResult, error) {
	return f.OnIngestDocument(ctx, req)
}

func (f *fakeRag) IngestJob(ctx context.Context, j jobModel.Job, progress func(jobModel.Job)) jobModel.Job {
	return j
}

func (f *fakeRag) ListDocuments(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error) {
	return f.OnListDocuments(ctx, communityID)
}

func (f *fakeRag) DeleteDocument(ctx context.Context, filter commonModels.DocumentFilter) error {
	return f.OnDeleteDocument(ctx, filter)
}

func (f *fakeRag) ListActiveNames(ctx context.Context) ([]string, error) {
	return f.OnListActiveNames(ctx)
}

func (f *fakeRag) ListCommunities(ctx context.Context) ([]communityModel.Community, error) {
	return f.Communities, nil
}

func (f *fakeRag) CreateCommunity(ctx context.Context, c communityModel.NewCommunity) (communityModel.Community, error) {
	if strings.TrimSpace(c.Name) == "" {
		return communityModel.Community{}, fmt.Errorf("%w: name is required", commonModels.ErrValidation)
	}
	created := communityModel.Community{ID: int64(len(f.Communities) + 1), Name: c.Name, Slug: communityModel.Slugify(c.Name), IsActive: true}
	f.Communities = append(f.Communities, created)
	return created, nil
}

func (f *fakeRag) RenameCommunity(ctx context.Context, id int64, name string) (communityModel.Community, error) {
	return f.OnRename(ctx, id, name)
}

func (f *fakeRag) SetCommunityActive(ctx context.Context, id int64, active bool) (communityModel.Community, error) {
	return f.OnSetActive(ctx, id, active)
}

func (f *fakeRag) DeleteCommunity(ctx context.Context, id int64) error {
	return f.OnDeleteCommunity(ctx, id)
}

func (f *fakeRag) EnsureGlobalPartition(ctx context.Context) (communityModel.Community, error) {
	return communityModel.Community{}, nil
}

func newTestRouter(t *testing.T, fake *fakeRag) (*chi.Mux, *job.Service) {
	t.Helper()
	jobSvc := &job.Service{
		JobChannel:        make(chan jobModel.Job, 4),
		DispatcherChannel: make(chan bool, 1),
		JobStore:          store.InitInMemoryJobStore(),
	}
	handlerInstance = &JobHandler{service: jobSvc, rag: fake}
	t.Cleanup(func() { handlerInstance = nil })

	r := chi.NewRouter()
	r.Get("/health", GetHandler)
	r.Post("/chat", ChatHandler)
	r.Get("/chat/greeting", GreetingHandler)
	r.Get("/communities", CommunitiesHandler)
	r.Get("/admin/communities", ListCommunitiesHandler)
	r.Post("/admin/communities", CreateCommunityHandler)
	r.Patch("/admin/communities/{id}", UpdateCommunityHandler)
	r.Delete("/admin/communities/{id}", DeleteCommunityHandler)
	r.Get("/admin/documents", ListDocumentsHandler)
	r.Post("/admin/documents", PostDocumentHandler)
	r.Delete("/admin/documents", DeleteDocumentHandler)
	r.Post("/admin/documents/batch", PostBatchHandler)
	r.Get("/admin/status/{id}", GetStatusHandler)
	return r, jobSvc
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type upload struct {
	field, name, contentType, body string
}

func multipartBody(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.name)}
		h["Content-Type"] = []string{f.contentType}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatal(err)
		}
		part.Write([]byte(f.body))
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestChatHandler(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		answer     func(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error)
		wantStatus int
		wantReply  string
	}{
		{
			name: "Follow_Up",
			body: `{"message":"I'm with Five Oaks. Can I put up a fence?"}`,
			answer: func(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error) {
				return rag.ChatResponse{Reply: "Which one?", State: conversation.NeedTenant, Candidates: []string{"4100 Five Oaks", "Five Oaks Lakeside"}, ChatID: "c1"}, nil
			},
			wantStatus: http.StatusOK,
			wantReply:  "Which one?",
		},
		{
			name: "History_And_Community_Are_Forwarded",
			body: `{"message":"Can I paint my door?","history":[{"role":"user","text":"hi"},{"role":"assistant","text":"hello"}],"community":"Oakwood Commons","chat_id":"c2"}`,
			answer: func(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error) {
				if len(req.History) != 2 || req.History[1].Role != commonModels.RoleAssistant {
					return rag.ChatResponse{}, fmt.Errorf("history not forwarded: %+v", req.History)
				}
				if req.Community != "Oakwood Commons" || req.ChatID != "c2" {
					return rag.ChatResponse{}, fmt.Errorf("fields not forwarded: %+v", req)
				}
				return rag.ChatResponse{Reply: "Yes.", State: conversation.Ready, Community: req.Community, ChatID: req.ChatID}, nil
			},
			wantStatus: http.StatusOK,
			wantReply:  "Yes.",
		},
		{
			name:       "Malformed_Json",
			body:       `{"message":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Validation_Error",
			body: `{"message":"  "}`,
			answer: func(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error) {
				return rag.ChatResponse{}, fmt.Errorf("%w: message is required", commonModels.ErrValidation)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Configuration_Mismatch",
			body: `{"message":"hello"}`,
			answer: func(ctx context.Context, req rag.ChatRequest) (rag.ChatResponse, error) {
				return rag.ChatResponse{}, fmt.Errorf("%w: dimension 3 != 4", commonModels.ErrConfigurationMismatch)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newTestRouter(t, &fakeRag{OnAnswer: tt.answer})
			rec := serve(r, httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantReply == "" {
				return
			}
			var resp api.ChatResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Reply != tt.wantReply {
				t.Errorf("reply = %q, want %q", resp.Reply, tt.wantReply)
			}
		})
	}
}

func TestPublicReads(t *testing.T) {
	fake := &fakeRag{OnListActiveNames: func(ctx context.Context) ([]string, error) {
		return []string{"4100 Five Oaks", "Oakwood Commons"}, nil
	}}
	r, _ := newTestRouter(t, fake)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/communities", nil))
	var names api.CommunitiesResponse
	if err := json.NewDecoder(rec.Body).Decode(&names); err != nil {
		t.Fatal(err)
	}
	if len(names.Communities) != 2 || names.Communities[0] != "4100 Five Oaks" {
		t.Errorf("communities = %v", names.Communities)
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/chat/greeting", nil))
	var greeting api.GreetingResponse
	if err := json.NewDecoder(rec.Body).Decode(&greeting); err != nil {
		t.Fatal(err)
	}
	if greeting.Reply != conversation.Greeting() {
		t.Errorf("greeting = %q", greeting.Reply)
	}

	if rec = serve(r, httptest.NewRequest(http.MethodGet, "/health", nil)); rec.Code != http.StatusOK {
		t.Errorf("health = %d", rec.Code)
	}
}

func TestPostDocumentHandler(t *testing.T) {
	tests := []struct {
		name       string
		fields     map[string]string
		files      []upload
		ingestErr  error
		wantStatus int
	}{
		{
			name:       "Success",
			fields:     map[string]string{"community_id": "3"},
			files:      []upload{{"file", "bylaws.md", "text/markdown", "# Bylaws"}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "Missing_Community",
			files:      []upload{{"file", "bylaws.md", "text/markdown", "# Bylaws"}},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Missing_File",
			fields:     map[string]string{"community_id": "3"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Unsupported_Format",
			fields:     map[string]string{"community_id": "3"},
			files:      []upload{{"file", "notes.docx", "application/octet-stream", "PK"}},
			ingestErr:  commonModels.ErrUnsupportedFormat,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Empty_Extraction",
			fields:     map[string]string{"community_id": "3"},
			files:      []upload{{"file", "scan.pdf", "application/pdf", "%PDF"}},
			ingestErr:  commonModels.ErrEmptyExtraction,
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got ingest.IngestRequest
			fake := &fakeRag{OnIngestDocument: func(ctx context.Context, req ingest.IngestRequest) (commonModels.IngestResult, error) {
				got = req
				if tt.ingestErr != nil {
					return commonModels.IngestResult{}, tt.ingestErr
				}
				return commonModels.IngestResult{CommunityID: req.CommunityID, Filename: req.Filename, ChunkCount: 1, InsertedCount: 1}, nil
			}}
			r, _ := newTestRouter(t, fake)

			body, contentType := multipartBody(t, tt.fields, tt.files...)
			req := httptest.NewRequest(http.MethodPost, "/admin/documents", body)
			req.Header.Set("Content-Type", contentType)
			rec := serve(r, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			if got.CommunityID != 3 || got.Filename != "bylaws.md" || got.MimeType != "text/markdown" || string(got.Data) != "# Bylaws" {
				t.Errorf("ingest request = %+v", got)
			}
			var resp api.IngestResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.InsertedCount != 1 || resp.SkippedChunks == nil {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestPostBatchHandler_QueuesJob(t *testing.T) {
	t.Setenv("UPLOAD_SPOOL_DIR", t.TempDir())
	fake := &fakeRag{Communities: []communityModel.Community{{ID: 3, Name: "Oakwood Commons", IsActive: true}}}
	r, jobSvc := newTestRouter(t, fake)

	body, contentType := multipartBody(t, map[string]string{"community_id": "3"},
		upload{"files[]", "bylaws.md", "text/markdown", "# Bylaws"},
		upload{"files[]", "rules.txt", "text/plain", "No boats."},
	)
	req := httptest.NewRequest(http.MethodPost, "/admin/documents/batch", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(r, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	var created api.InitJobResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatal(err)
	}
	if created.StatusURL != "admin/status/"+created.Id {
		t.Errorf("status url = %q", created.StatusURL)
	}

	queued := <-jobSvc.JobChannel
	if queued.Id != created.Id || queued.JobPayload.CommunityID != 3 || len(queued.JobPayload.Files) != 2 {
		t.Fatalf("queued job = %+v", queued)
	}
	for _, f := range queued.JobPayload.Files {
		if _, err := os.Stat(f.Path); err != nil {
			t.Errorf("spooled file missing for %s: %v", f.Filename, err)
		}
	}
	select {
	case <-jobSvc.DispatcherChannel:
	default:
		t.Error("dispatcher was not signalled")
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/admin/status/"+created.Id, nil))
	var status api.JobResponse
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatal(err)
	}
	if status.Result.Status != string(jobModel.JobStatusQueued) {
		t.Errorf("status = %s, want QUEUED", status.Result.Status)
	}
}

func TestPostBatchHandler_UnknownCommunity(t *testing.T) {
	t.Setenv("UPLOAD_SPOOL_DIR", t.TempDir())
	r, jobSvc := newTestRouter(t, &fakeRag{})

	body, contentType := multipartBody(t, map[string]string{"community_id": "9"}, upload{"files[]", "a.txt", "text/plain", "x"})
	req := httptest.NewRequest(http.MethodPost, "/admin/documents/batch", body)
	req.Header.Set("Content-Type", contentType)

	if rec := serve(r, req); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(jobSvc.JobChannel) != 0 {
		t.Error("job queued for an unknown community")
	}
}

func TestGetStatusHandler_NotFound(t *testing.T) {
	r, _ := newTestRouter(t, &fakeRag{})
	rec := serve(r, httptest.NewRequest(http.MethodGet, "/admin/status/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var resp api.JobResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error == nil || resp.Error.Code != http.StatusNotFound {
		t.Errorf("error = %+v", resp.Error)
	}
}

func TestDocumentsAdmin(t *testing.T) {
	var deleted commonModels.DocumentFilter
	fake := &fakeRag{
		OnListDocuments: func(ctx context.Context, communityID int64) ([]commonModels.DocumentSummary, error) {
			return []commonModels.DocumentSummary{{Filename: "bylaws.md", CommunityID: communityID, ChunkCount: 4}}, nil
		},
		OnDeleteDocument: func(ctx context.Context, filter commonModels.DocumentFilter) error {
			deleted = filter
			if filter.Filename == "" {
				return commonModels.ErrValidation
			}
			return nil
		},
	}
	r, _ := newTestRouter(t, fake)

	rec := serve(r, httptest.NewRequest(http.MethodGet, "/admin/documents?community_id=3", nil))
	var docs api.DocumentsResponse
	if err := json.NewDecoder(rec.Body).Decode(&docs); err != nil {
		t.Fatal(err)
	}
	if len(docs.Documents) != 1 || docs.Documents[0].CommunityID != 3 {
		t.Errorf("documents = %+v", docs.Documents)
	}

	if rec = serve(r, httptest.NewRequest(http.MethodGet, "/admin/documents?community_id=abc", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("bad community id status = %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/documents?filename=bylaws.md&community_id=3", nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
	if deleted.Filename != "bylaws.md" || deleted.CommunityID != 3 {
		t.Errorf("delete filter = %+v", deleted)
	}

	if rec = serve(r, httptest.NewRequest(http.MethodDelete, "/admin/documents", nil)); rec.Code != http.StatusBadRequest {
		t.Errorf("delete without filename status = %d", rec.Code)
	}
}

func TestCommunitiesAdmin(t *testing.T) {
	renamed := false
	fake := &fakeRag{
		OnRename: func(ctx context.Context, id int64, name string) (communityModel.Community, error) {
			if id == 1 {
				return communityModel.Community{}, fmt.Errorf("%w: the global partition cannot be renamed", commonModels.ErrValidation)
			}
			renamed = true
			return communityModel.Community{ID: id, Name: name, IsActive: true}, nil
		},
		OnSetActive: func(ctx context.Context, id int64, active bool) (communityModel.Community, error) {
			return communityModel.Community{ID: id, Name: "Renamed", IsActive: active}, nil
		},
		OnDeleteCommunity: func(ctx context.Context, id int64) error {
			if id == 42 {
				return fmt.Errorf("%w: community 42", commonModels.ErrNotFound)
			}
			return nil
		},
	}
	r, _ := newTestRouter(t, fake)

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/admin/communities", strings.NewReader(`{"name":"Five Oaks Lakeside"}`)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}
	if rec = serve(r, httptest.NewRequest(http.MethodPost, "/admin/communities", strings.NewReader(`{"name":" "}`))); rec.Code != http.StatusBadRequest {
		t.Errorf("blank create status = %d", rec.Code)
	}

	rec = serve(r, httptest.NewRequest(http.MethodPatch, "/admin/communities/2", strings.NewReader(`{"name":"Renamed","is_active":false}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("patch status = %d", rec.Code)
	}
	var updated communityModel.Community
	if err := json.NewDecoder(rec.Body).Decode(&updated); err != nil {
		t.Fatal(err)
	}
	if !renamed || updated.IsActive {
		t.Errorf("updated = %+v, renamed = %v", updated, renamed)
	}

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"Rename_Global", http.MethodPatch, "/admin/communities/1", `{"name":"Statutes"}`, http.StatusBadRequest},
		{"Patch_Empty", http.MethodPatch, "/admin/communities/2", `{}`, http.StatusBadRequest},
		{"Bad_Id", http.MethodDelete, "/admin/communities/x", "", http.StatusBadRequest},
		{"Delete_Missing", http.MethodDelete, "/admin/communities/42", "", http.StatusNotFound},
		{"Delete", http.MethodDelete, "/admin/communities/2", "", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}

	rec = serve(r, httptest.NewRequest(http.MethodGet, "/admin/communities", nil))
	var all []communityModel.Community
	if err := json.NewDecoder(rec.Body).Decode(&all); err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 || all[0].Slug != "five-oaks-lakeside" {
		t.Errorf("communities = %+v", all)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("x: %w", commonModels.ErrValidation), http.StatusBadRequest},
		{commonModels.ErrUnsupportedFormat, http.StatusBadRequest},
		{commonModels.ErrEmptyExtraction, http.StatusUnprocessableEntity},
		{commonModels.ErrNotFound, http.StatusNotFound},
		{commonModels.ErrRateLimitedUpstream, http.StatusServiceUnavailable},
		{commonModels.ErrConfigurationMismatch, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
