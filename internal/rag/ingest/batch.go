package ingest

import (
	"context"
	"os"

	"github.com/akolanti/CommunityRAG/internal/domain/jobModel"
)

// FileSource yields the bytes of one batch entry.
type FileSource struct {
	Filename string
	MimeType string
	Load     func() ([]byte, error)
}

// FromDisk reads a file the upload handler spooled to disk.
func FromDisk(f jobModel.IngestFile) FileSource {
	return FileSource{
		Filename: f.Filename,
		MimeType: f.MimeType,
		Load:     func() ([]byte, error) { return os.ReadFile(f.Path) },
	}
}

// IngestBatch ingests files one after another, waiting on the file limiter between them.
// A failing file is reported in its FileResult and the batch moves on. onFile, when set,
// runs before each file starts.
func (p *Pipeline) IngestBatch(ctx context.Context, communityID int64, files []FileSource, onFile func(filename string)) []jobModel.FileResult {
	log := logger.WithTrace(ctx).With("community", communityID, "files", len(files))
	results := make([]jobModel.FileResult, 0, len(files))

	for i, f := range files {
		if i > 0 {
			if err := p.fileLimiter.Wait(ctx); err != nil {
				results = append(results, jobModel.FileResult{Filename: f.Filename, Error: err.Error()})
				continue
			}
		}
		if onFile != nil {
			onFile(f.Filename)
		}

		fr := jobModel.FileResult{Filename: f.Filename}
		data, err := f.Load()
		if err != nil {
			fr.Error = err.Error()
			results = append(results, fr)
			continue
		}

		res, err := p.Ingest(ctx, IngestRequest{
			CommunityID: communityID,
			Filename:    f.Filename,
			Data:        data,
			MimeType:    f.MimeType,
		})
		fr.Result = &res
		if err != nil {
			fr.Error = err.Error()
			log.Warn("file failed", "filename", f.Filename, "error", err)
		}
		results = append(results, fr)
	}
	return results
}
