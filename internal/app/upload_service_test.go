package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
)

func newUploadFixture(search *fakeSearch, cache *memDocumentCache, maxBytes int64) *UploadService {
	resolver := NewStoreResolver(search, cache, "Great Library", zap.NewNop())
	return NewUploadService(search, resolver, cache, maxBytes, zap.NewNop())
}

// indexingSearch answers uploads with a pending operation whose poll result
// reports one indexed document per display name.
func indexingSearch() *fakeSearch {
	search := &fakeSearch{}
	search.getStoreFn = func(ctx context.Context, name string) (*filesearch.Store, error) {
		return &filesearch.Store{Name: name, DisplayName: "Great Library"}, nil
	}
	search.uploadFn = func(ctx context.Context, in filesearch.UploadInput) (*filesearch.Operation, error) {
		return &filesearch.Operation{Name: "operations/" + in.DisplayName}, nil
	}
	search.waitFn = func(ctx context.Context, op *filesearch.Operation) (*filesearch.Operation, error) {
		displayName := filesearch.ResourceID(op.Name)
		return &filesearch.Operation{
			Name: op.Name,
			Done: true,
			Response: &filesearch.OperationResponse{
				DocumentName: "fileSearchStores/lib/documents/doc-" + displayName,
			},
		}, nil
	}
	return search
}

func TestUploadFilesRejectsEmptyBatch(t *testing.T) {
	service := newUploadFixture(&fakeSearch{}, &memDocumentCache{}, 0)

	_, err := service.UploadFiles(context.Background(), nil, UploadOptions{})
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestUploadFilesRejectsOversizedFileBeforeAnyRemoteCall(t *testing.T) {
	search := &fakeSearch{}
	cache := &memDocumentCache{storeID: "lib"}
	service := newUploadFixture(search, cache, 100<<20)

	files := []FileInput{
		{Name: "ok.txt", Size: 10, Content: strings.NewReader("ok")},
		{Name: "huge.bin", Size: (100 << 20) + 1, Content: strings.NewReader("")},
	}

	_, err := service.UploadFiles(context.Background(), files, UploadOptions{})
	require.ErrorIs(t, err, ErrFileTooLarge)
	assert.Contains(t, err.Error(), "huge.bin")
	assert.Contains(t, err.Error(), "100 MB")

	assert.Zero(t, search.uploadCalls)
	assert.Zero(t, cache.getStoreIDCalls)
	assert.Empty(t, cache.docs)
}

func TestUploadFilesSequentialBatch(t *testing.T) {
	search := indexingSearch()
	cache := &memDocumentCache{storeID: "lib"}
	service := newUploadFixture(search, cache, 0)

	var progressed []string
	files := []FileInput{
		{Name: "a.txt", Size: 3, MimeType: "text/plain", Content: strings.NewReader("aaa")},
		{Name: "b.txt", Size: 3, MimeType: "text/plain", Content: strings.NewReader("bbb")},
	}
	result, err := service.UploadFiles(context.Background(), files, UploadOptions{
		OnProgress: func(index int, file FileInput) {
			progressed = append(progressed, file.Name)
		},
	})
	require.NoError(t, err)

	require.Len(t, result.Documents, 2)
	assert.Equal(t, "doc-a.txt", result.Documents[0].ID)
	assert.Equal(t, "a.txt", result.Documents[0].Name)
	assert.Equal(t, model.StatusIndexed, result.Documents[0].Status)
	assert.NotEmpty(t, result.Documents[0].UploadDate)
	assert.Equal(t, int64(3), result.Documents[0].Size)

	assert.Equal(t, []string{"a.txt", "b.txt"}, progressed)
	assert.Equal(t, 2, search.uploadCalls)
	assert.Len(t, cache.docs, 2)
}

func TestUploadFilesKeepsEarlierDocumentsOnMidBatchFailure(t *testing.T) {
	search := indexingSearch()
	baseWait := search.waitFn
	search.waitFn = func(ctx context.Context, op *filesearch.Operation) (*filesearch.Operation, error) {
		if op.Name == "operations/bad.txt" {
			return &filesearch.Operation{
				Name:  op.Name,
				Done:  true,
				Error: &filesearch.OperationError{Code: 13, Message: "indexing exploded"},
			}, nil
		}
		return baseWait(ctx, op)
	}
	cache := &memDocumentCache{storeID: "lib"}
	service := newUploadFixture(search, cache, 0)

	files := []FileInput{
		{Name: "good.txt", Size: 4, Content: strings.NewReader("good")},
		{Name: "bad.txt", Size: 3, Content: strings.NewReader("bad")},
		{Name: "never.txt", Size: 5, Content: strings.NewReader("never")},
	}
	_, err := service.UploadFiles(context.Background(), files, UploadOptions{})
	require.ErrorIs(t, err, ErrUploadFailed)
	assert.Contains(t, err.Error(), "bad.txt")
	assert.Contains(t, err.Error(), "indexing exploded")

	// The failure aborted the batch but the first document still landed in
	// the cache.
	assert.Equal(t, 2, search.uploadCalls)
	require.Len(t, cache.docs, 1)
	assert.Equal(t, "doc-good.txt", cache.docs[0].ID)
}

func TestUploadFilesSurfacesCacheMergeFailure(t *testing.T) {
	search := indexingSearch()
	cache := &memDocumentCache{storeID: "lib", upsertErr: errors.New("redis gone")}
	service := newUploadFixture(search, cache, 0)

	files := []FileInput{{Name: "a.txt", Size: 1, Content: strings.NewReader("a")}}
	result, err := service.UploadFiles(context.Background(), files, UploadOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis gone")
	// No half-reported batch: the result is withheld when its records never
	// reached the cache.
	assert.Nil(t, result)
}

func TestUploadNote(t *testing.T) {
	t.Run("empty content rejected", func(t *testing.T) {
		service := newUploadFixture(&fakeSearch{}, &memDocumentCache{}, 0)
		_, err := service.UploadNote(context.Background(), "Title", "   ")
		assert.ErrorIs(t, err, ErrNoFiles)
	})

	t.Run("wraps note as markdown file", func(t *testing.T) {
		search := indexingSearch()
		var uploaded filesearch.UploadInput
		var body []byte
		baseUpload := search.uploadFn
		search.uploadFn = func(ctx context.Context, in filesearch.UploadInput) (*filesearch.Operation, error) {
			uploaded = in
			body, _ = io.ReadAll(in.Content)
			return baseUpload(ctx, in)
		}
		cache := &memDocumentCache{storeID: "lib"}
		service := newUploadFixture(search, cache, 0)

		result, err := service.UploadNote(context.Background(), "Reading List", "Finish the atlas chapter.")
		require.NoError(t, err)

		assert.Equal(t, "Reading List.md", uploaded.DisplayName)
		assert.Equal(t, "text/markdown", uploaded.MimeType)
		assert.Contains(t, string(body), "# Reading List")
		assert.Contains(t, string(body), "Finish the atlas chapter.")
		require.Len(t, result.Documents, 1)
	})

	t.Run("untitled note gets a default name", func(t *testing.T) {
		search := indexingSearch()
		var uploaded filesearch.UploadInput
		baseUpload := search.uploadFn
		search.uploadFn = func(ctx context.Context, in filesearch.UploadInput) (*filesearch.Operation, error) {
			uploaded = in
			return baseUpload(ctx, in)
		}
		service := newUploadFixture(search, &memDocumentCache{storeID: "lib"}, 0)

		_, err := service.UploadNote(context.Background(), "", "content")
		require.NoError(t, err)
		assert.Equal(t, "Quick Note.md", uploaded.DisplayName)
	})
}
