package handler

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greatlibrary/internal/app"
	"greatlibrary/internal/model"
)

func TestTruncateSnippet(t *testing.T) {
	t.Run("short snippet unchanged", func(t *testing.T) {
		assert.Equal(t, "short", truncateSnippet("short"))
	})

	t.Run("exactly at limit unchanged", func(t *testing.T) {
		s := strings.Repeat("x", snippetDisplayLimit)
		assert.Equal(t, s, truncateSnippet(s))
	})

	t.Run("over limit gets ellipsis", func(t *testing.T) {
		s := strings.Repeat("x", snippetDisplayLimit+40)
		got := truncateSnippet(s)
		assert.Len(t, got, snippetDisplayLimit+3)
		assert.True(t, strings.HasSuffix(got, "..."))
	})

	t.Run("multi-byte text stays valid utf-8", func(t *testing.T) {
		s := strings.Repeat("日", snippetDisplayLimit+10)
		got := truncateSnippet(s)
		assert.True(t, utf8.ValidString(got))
		assert.Equal(t, snippetDisplayLimit, utf8.RuneCountInString(strings.TrimSuffix(got, "...")))
	})
}

func TestToAskViewTruncatesOnlyForDisplay(t *testing.T) {
	long := strings.Repeat("s", 300)
	result := &app.AskResult{
		Answer: "the answer",
		Citations: []model.Citation{
			{ID: "doc-1", DocumentID: "doc-1", DocumentName: "notes.pdf", Snippet: long},
		},
		Conversation: []model.Turn{{Role: model.RoleUser, Text: "q"}},
	}

	view := toAskView(result)
	require.Len(t, view.Citations, 1)
	assert.Len(t, view.Citations[0].Snippet, snippetDisplayLimit+3)

	// The service-level result is untouched.
	assert.Len(t, result.Citations[0].Snippet, 300)
}
