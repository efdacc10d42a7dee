package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
	"github.com/akolanti/CommunityRAG/internal/metrics"
	"github.com/akolanti/CommunityRAG/internal/rag/embedding"
	"github.com/akolanti/CommunityRAG/internal/rag/retry"
	"github.com/akolanti/CommunityRAG/internal/rag/vectorDB"
	"github.com/akolanti/CommunityRAG/pkg/logger_i"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

var logger = logger_i.NewLogger("Document Ingestion")

// Registry is the part of the community store the pipeline needs.
type Registry interface {
	Get(ctx context.Context, id int64) (communityModel.Community, bool, error)
}

type IngestRequest struct {
	CommunityID int64
	Filename    string
	Data        []byte
	MimeType    string
}

// Deps are the collaborators of a Pipeline. Transcriber may be nil, PDFs then use the
// embedded text layer only.
type Deps struct {
	Store       vectorDB.DataProcessor
	Embedder    embedding.Embedder
	Registry    Registry
	Transcriber Transcriber
}

type Pipeline struct {
	deps         Deps
	embedRetry   retry.Policy
	ocrRetry     retry.Policy
	chunkLimiter *rate.Limiter
	fileLimiter  *rate.Limiter
	chunkSize    int
	overlap      int
	now          func() time.Time
}

type Option func(*Pipeline)

func WithRetryPolicies(embed, ocr retry.Policy) Option {
	return func(p *Pipeline) {
		p.embedRetry = embed
		p.ocrRetry = ocr
	}
}

// WithPacing replaces the per chunk and per file limiters. rate.Inf disables pacing.
func WithPacing(chunk, file rate.Limit) Option {
	return func(p *Pipeline) {
		p.chunkLimiter = rate.NewLimiter(chunk, 1)
		p.fileLimiter = rate.NewLimiter(file, 1)
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

func NewPipeline(deps Deps, opts ...Option) *Pipeline {
	p := &Pipeline{
		deps:         deps,
		embedRetry:   retry.Default("embedding", config.EmbeddingTimeout),
		ocrRetry:     retry.Default("ocr", config.OCRTimeout),
		chunkLimiter: rate.NewLimiter(rate.Every(config.ChunkPacingDelay), 1),
		fileLimiter:  rate.NewLimiter(rate.Every(config.FilePacingDelay), 1),
		chunkSize:    config.ChunkTargetSize,
		overlap:      config.ChunkOverlap,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Ingest replaces every chunk of (CommunityID, Filename) with the chunks of req.Data.
//
// Text is extracted before anything is deleted, so a broken upload leaves the previous
// version searchable. Once the delete has run the document is absent until the new chunks
// land: cancelling ctx after that point returns the partial result and the document stays
// incomplete until it is ingested again.
//
// Chunk level failures are recorded in IngestResult.Errors and never abort the document.
// A vector of the wrong dimension aborts with ErrConfigurationMismatch.
func (p *Pipeline) Ingest(ctx context.Context, req IngestRequest) (commonModels.IngestResult, error) {
	log := logger.WithTrace(ctx).With("community", req.CommunityID, "filename", req.Filename)
	result := commonModels.IngestResult{CommunityID: req.CommunityID, Filename: req.Filename}

	if err := p.validate(ctx, req); err != nil {
		return result, err
	}

	docType := resolveDocType(req.Filename, req.MimeType)
	if docType == commonModels.ERR {
		return result, fmt.Errorf("%w: %q (%s)", commonModels.ErrUnsupportedFormat, req.Filename, req.MimeType)
	}

	text, err := p.extract(ctx, req, docType)
	if err != nil {
		return result, err
	}
	text = NormalizeWhitespace(text)
	if text == "" {
		return result, fmt.Errorf("%w: %s", commonModels.ErrEmptyExtraction, req.Filename)
	}

	chunks, err := Chunk(text, p.chunkSize, p.overlap)
	if err != nil {
		return result, err
	}
	if len(chunks) == 0 {
		return result, fmt.Errorf("%w: %s has no passage above the minimum chunk length", commonModels.ErrEmptyExtraction, req.Filename)
	}
	result.ChunkCount = len(chunks)

	filter := commonModels.DocumentFilter{CommunityID: req.CommunityID, Filename: req.Filename}
	if err = p.deps.Store.DeleteDocument(ctx, filter); err != nil {
		return result, fmt.Errorf("could not replace previous version: %w", err)
	}
	log.Info("ingesting document", "type", docType, "chunks", len(chunks))

	doc := commonModels.Document{CommunityID: req.CommunityID, Filename: req.Filename, ContentType: docType}
	createdAt := p.now().UTC()

	for i, content := range chunks {
		if err = p.chunkLimiter.Wait(ctx); err != nil {
			log.Warn("ingestion cancelled", "chunk", i, "inserted", result.InsertedCount)
			return result, err
		}

		err = p.ingestChunk(ctx, commonModels.DocChunk{
			Doc:        doc,
			ChunkId:    uuid.NewString(),
			Content:    content,
			ChunkOrder: i,
			CreatedAt:  createdAt,
		})
		switch {
		case err == nil:
			result.InsertedCount++
			metrics.CountChunk("inserted")
		case errors.Is(err, commonModels.ErrConfigurationMismatch):
			metrics.CountConfigMismatch()
			log.Error("embedding dimension does not match the store", "error", err)
			return result, err
		case ctx.Err() != nil:
			log.Warn("ingestion cancelled", "chunk", i, "inserted", result.InsertedCount)
			return result, ctx.Err()
		default:
			metrics.CountChunk("skipped")
			log.Warn("chunk skipped", "chunk", i, "error", err)
			result.Errors = append(result.Errors, commonModels.ChunkError{Index: i, Message: err.Error()})
		}
	}

	log.Info("document ingested", "inserted", result.InsertedCount, "skipped", len(result.Errors))
	return result, nil
}

func (p *Pipeline) validate(ctx context.Context, req IngestRequest) error {
	var missing []string
	if req.CommunityID <= 0 {
		missing = append(missing, "community_id")
	}
	if strings.TrimSpace(req.Filename) == "" {
		missing = append(missing, "filename")
	}
	if len(req.Data) == 0 {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", commonModels.ErrValidation, strings.Join(missing, ", "))
	}

	_, found, err := p.deps.Registry.Get(ctx, req.CommunityID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: community %d does not exist", commonModels.ErrValidation, req.CommunityID)
	}
	return nil
}

func (p *Pipeline) extract(ctx context.Context, req IngestRequest, docType commonModels.DocType) (string, error) {
	if docType != commonModels.PDF {
		return decodeText(req.Data), nil
	}
	if p.deps.Transcriber == nil {
		return extractPDF(req.Data)
	}

	var text string
	err := p.ocrRetry.Do(ctx, func(ctx context.Context) error {
		var err error
		text, err = p.deps.Transcriber.Transcribe(ctx, req.Data, pdfMime)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("transcription of %s failed: %w", req.Filename, err)
	}
	return text, nil
}

func (p *Pipeline) ingestChunk(ctx context.Context, chunk commonModels.DocChunk) error {
	var vector []float32
	err := p.embedRetry.Do(ctx, func(ctx context.Context) error {
		var err error
		vector, err = p.deps.Embedder.GetEmbedding(ctx, chunk.Content)
		return err
	})
	if err != nil {
		return err
	}
	if err = embedding.CheckDimension(vector, p.deps.Store.Dimension()); err != nil {
		return err
	}
	return p.deps.Store.InsertChunk(ctx, chunk, vector)
}
