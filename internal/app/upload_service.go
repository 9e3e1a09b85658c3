package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
	"greatlibrary/internal/pkg/pdfextract"
)

const previewMetadataKey = "preview"

var (
	ErrNoFiles      = errors.New("no files to upload")
	ErrFileTooLarge = errors.New("file exceeds the size limit")
	ErrUploadFailed = errors.New("remote indexing failed")
)

// FileInput is one file handed to the upload orchestrator.
type FileInput struct {
	Name     string
	Size     int64
	MimeType string
	Content  io.Reader
}

// UploadOptions carries optional per-batch hooks.
type UploadOptions struct {
	// OnProgress is invoked once before each file's upload begins.
	OnProgress func(index int, file FileInput)
}

// UploadResult is the outcome of one upload batch.
type UploadResult struct {
	Store     *filesearch.Store `json:"store"`
	Documents []model.Document  `json:"documents"`
}

// UploadService validates and uploads file batches into the resolved store,
// polling each indexing operation to completion and recording metadata in the
// document cache.
type UploadService struct {
	client   SearchAPI
	resolver *StoreResolver
	cache    DocumentCache
	maxBytes int64
	logger   *zap.Logger
}

func NewUploadService(client SearchAPI, resolver *StoreResolver, cache DocumentCache, maxBytes int64, logger *zap.Logger) *UploadService {
	if maxBytes <= 0 {
		maxBytes = 100 << 20
	}
	return &UploadService{
		client:   client,
		resolver: resolver,
		cache:    cache,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// UploadFiles uploads the batch strictly sequentially. The first failure
// aborts the remaining files, but documents already produced are still merged
// into the cache before returning.
func (s *UploadService) UploadFiles(ctx context.Context, files []FileInput, opts UploadOptions) (result *UploadResult, err error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if oversized := findOversizedFile(files, s.maxBytes); oversized != nil {
		return nil, fmt.Errorf("%w: %s is larger than %d MB",
			ErrFileTooLarge, oversized.Name, s.maxBytes>>20)
	}

	store, err := s.resolver.EnsureStore(ctx)
	if err != nil {
		return nil, err
	}

	var docs []model.Document
	defer func() {
		if len(docs) == 0 {
			return
		}
		if _, mergeErr := s.cache.Upsert(ctx, docs); mergeErr != nil {
			s.logger.Error("merge uploaded documents into cache failed", zap.Error(mergeErr))
			// A batch whose records never reached the cache is not reported
			// as a success.
			if err == nil {
				err = mergeErr
				result = nil
			}
		}
	}()

	for i, file := range files {
		if opts.OnProgress != nil {
			opts.OnProgress(i, file)
		}
		doc, uploadErr := s.uploadOne(ctx, store, file)
		if uploadErr != nil {
			return nil, uploadErr
		}
		docs = append(docs, *doc)
	}

	return &UploadResult{Store: store, Documents: docs}, nil
}

// UploadNote captures a short markdown note as a one-file batch.
func (s *UploadService) UploadNote(ctx context.Context, title, content string) (*UploadResult, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrNoFiles
	}
	if title == "" {
		title = "Quick Note"
	}
	name := title
	if !strings.HasSuffix(name, ".md") {
		name += ".md"
	}
	body := "# " + title + "\n\n" + content + "\n"
	return s.UploadFiles(ctx, []FileInput{{
		Name:     name,
		Size:     int64(len(body)),
		MimeType: "text/markdown",
		Content:  strings.NewReader(body),
	}}, UploadOptions{})
}

func (s *UploadService) uploadOne(ctx context.Context, store *filesearch.Store, file FileInput) (*model.Document, error) {
	data, err := io.ReadAll(file.Content)
	if err != nil {
		return nil, fmt.Errorf("read %s failed: %w", file.Name, err)
	}

	op, err := s.client.UploadDocument(ctx, filesearch.UploadInput{
		StoreName:   store.Name,
		DisplayName: file.Name,
		MimeType:    file.MimeType,
		Content:     bytes.NewReader(data),
	})
	if err != nil {
		return nil, err
	}

	done, err := s.client.WaitForOperation(ctx, op)
	if err != nil {
		return nil, err
	}
	if done.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUploadFailed, file.Name, done.Error.String())
	}

	doc := model.Document{
		ID:         filesearch.ResourceID(done.Response.ResultDocumentName()),
		Name:       file.Name,
		UploadDate: time.Now().UTC().Format(time.RFC3339Nano),
		Size:       file.Size,
		Status:     model.StatusIndexed,
	}
	if preview := s.pdfPreview(file, data); preview != "" {
		doc.Metadata = map[string]string{previewMetadataKey: preview}
	}
	return &doc, nil
}

// pdfPreview extracts a short plain-text preview from PDF uploads; failures
// only cost the preview, never the upload.
func (s *UploadService) pdfPreview(file FileInput, data []byte) string {
	if file.MimeType != "application/pdf" {
		return ""
	}
	preview, err := pdfextract.Preview(bytes.NewReader(data), 200)
	if err != nil {
		s.logger.Warn("extract pdf preview failed", zap.String("file", file.Name), zap.Error(err))
		return ""
	}
	return preview
}

// findOversizedFile returns the first file whose declared size exceeds the
// limit, or nil. Checked before any remote call is attempted.
func findOversizedFile(files []FileInput, maxBytes int64) *FileInput {
	for i := range files {
		if files[i].Size > maxBytes {
			return &files[i]
		}
	}
	return nil
}
