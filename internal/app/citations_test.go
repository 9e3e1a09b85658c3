package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
)

func chunkFor(docName, uri, title, text string) filesearch.GroundingChunk {
	return filesearch.GroundingChunk{
		RetrievedContext: &filesearch.RetrievedContext{
			DocumentName: docName,
			URI:          uri,
			Title:        title,
			Text:         text,
		},
	}
}

func TestExtractCitationsMergesSameDocument(t *testing.T) {
	chunks := []filesearch.GroundingChunk{
		chunkFor("fileSearchStores/s1/documents/doc-1", "", "", "first snippet"),
		chunkFor("fileSearchStores/s1/documents/doc-1", "", "", "second snippet"),
		chunkFor("fileSearchStores/s1/documents/doc-2", "", "", "other doc"),
	}
	docs := []model.Document{
		{ID: "doc-1", Name: "notes.pdf"},
		{ID: "doc-2", Name: "report.md"},
	}

	citations := extractCitations(chunks, docs)
	require.Len(t, citations, 2)

	assert.Equal(t, "doc-1", citations[0].DocumentID)
	assert.Equal(t, "notes.pdf", citations[0].DocumentName)
	assert.Equal(t, "first snippet", citations[0].Snippet)
	assert.Equal(t, "report.md", citations[1].DocumentName)
}

func TestExtractCitationsBackfillsEmptySnippet(t *testing.T) {
	chunks := []filesearch.GroundingChunk{
		chunkFor("fileSearchStores/s1/documents/doc-1", "", "", ""),
		chunkFor("fileSearchStores/s1/documents/doc-1", "", "", "late snippet"),
	}

	citations := extractCitations(chunks, nil)
	require.Len(t, citations, 1)
	assert.Equal(t, "late snippet", citations[0].Snippet)
}

func TestExtractCitationsFallsBackToURIKey(t *testing.T) {
	chunks := []filesearch.GroundingChunk{
		chunkFor("", "https://example.com/a", "Example A", "text a"),
		chunkFor("", "https://example.com/a", "Example A", "text a again"),
		chunkFor("", "https://example.com/b", "Example B", "text b"),
	}

	citations := extractCitations(chunks, nil)
	require.Len(t, citations, 2)
	assert.Equal(t, "https://example.com/a", citations[0].ID)
	assert.Equal(t, "Example A", citations[0].DocumentName)
	assert.Empty(t, citations[0].DocumentID)
}

func TestExtractCitationsNeverMergesAnonymousChunks(t *testing.T) {
	chunks := []filesearch.GroundingChunk{
		chunkFor("", "", "", "anonymous one"),
		chunkFor("", "", "", "anonymous two"),
	}

	citations := extractCitations(chunks, nil)
	require.Len(t, citations, 2)
	assert.NotEqual(t, citations[0].ID, citations[1].ID)
	assert.Equal(t, "Document", citations[0].DocumentName)
	assert.Equal(t, "Document", citations[1].DocumentName)
}

func TestExtractCitationsNameResolutionOrder(t *testing.T) {
	docs := []model.Document{{ID: "known", Name: "cached-name.txt"}}

	cases := []struct {
		name     string
		chunk    filesearch.GroundingChunk
		wantName string
	}{
		{"cached document name wins", chunkFor("stores/s/documents/known", "", "Remote Title", "t"), "cached-name.txt"},
		{"title when unknown id", chunkFor("stores/s/documents/mystery", "", "Remote Title", "t"), "Remote Title"},
		{"id when no title", chunkFor("stores/s/documents/mystery", "", "", "t"), "mystery"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			citations := extractCitations([]filesearch.GroundingChunk{tc.chunk}, docs)
			require.Len(t, citations, 1)
			assert.Equal(t, tc.wantName, citations[0].DocumentName)
		})
	}
}

func TestExtractCitationsSkipsEmptyChunks(t *testing.T) {
	chunks := []filesearch.GroundingChunk{
		{},
		chunkFor("stores/s/documents/doc-1", "", "", "real"),
	}

	citations := extractCitations(chunks, nil)
	require.Len(t, citations, 1)
	assert.Equal(t, "doc-1", citations[0].DocumentID)
}

func TestExtractCitationsKeepsSnippetsWhole(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	chunks := []filesearch.GroundingChunk{
		chunkFor("stores/s/documents/doc-1", "", "", string(long)),
	}

	citations := extractCitations(chunks, nil)
	require.Len(t, citations, 1)
	assert.Len(t, citations[0].Snippet, 500)
}
