package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/dslipak/pdf"
)

// Transcriber turns a binary document into text, usually through a vision model.
type Transcriber interface {
	Transcribe(ctx context.Context, data []byte, mimeType string) (string, error)
}

const pdfMime = "application/pdf"

// resolveDocType decides how an upload is read. The mime type wins, the filename extension
// covers clients that send application/octet-stream.
func resolveDocType(filename, mimeType string) commonModels.DocType {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}

	switch {
	case mimeType == "text/markdown" || mimeType == "text/x-markdown":
		return commonModels.MD
	case strings.HasPrefix(mimeType, "text/"):
		return commonModels.TXT
	case mimeType == pdfMime:
		return commonModels.PDF
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".md", ".markdown":
		return commonModels.MD
	case ".txt":
		return commonModels.TXT
	case ".pdf":
		return commonModels.PDF
	default:
		return commonModels.ERR
	}
}

func decodeText(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}

// extractPDF reads the embedded text layer page by page. Pages that fail or hang are skipped.
func extractPDF(data []byte) (string, error) {
	f, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var sb strings.Builder
	numPages := f.NumPage()
	logger.Debug("extractPDF", "number of pages", numPages)
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			logger.Warn("Error parsing page content", "page", i, "error", err)
			continue
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// plainText is swapped in tests to simulate a reader panic.
var plainText = func(page pdf.Page) (string, error) {
	return page.GetPlainText(nil)
}

// protectExtract bounds a single page parse, the pdf reader can spin on malformed streams.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("pdf page: %v", r)}
			}
		}()
		content, err := plainText(page)
		resChan <- result{content, err}
	}()

	timer := time.NewTimer(config.PDFPageTimeout)
	defer timer.Stop()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-timer.C:
		return "", errors.New("page extraction timed out")
	}
}
