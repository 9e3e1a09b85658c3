package pdfextract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextEmptyInput(t *testing.T) {
	text, err := ExtractText(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractTextRejectsNonPDF(t *testing.T) {
	_, err := ExtractText(strings.NewReader("this is not a pdf"))
	assert.Error(t, err)
}

func TestPreviewPropagatesParseFailure(t *testing.T) {
	_, err := Preview(strings.NewReader("garbage bytes"), 100)
	assert.Error(t, err)
}

func TestClampBytes(t *testing.T) {
	t.Run("short text unchanged", func(t *testing.T) {
		assert.Equal(t, "short", clampBytes("short", 100))
	})

	t.Run("zero limit disables clamping", func(t *testing.T) {
		assert.Equal(t, "anything", clampBytes("anything", 0))
	})

	t.Run("ascii cut at limit", func(t *testing.T) {
		assert.Equal(t, "abcde", clampBytes("abcdefgh", 5))
	})

	t.Run("never splits a rune", func(t *testing.T) {
		// Each rune is 3 bytes; a 4-byte limit must back off to the first.
		got := clampBytes("日本語", 4)
		assert.Equal(t, "日", got)
		assert.True(t, utf8.ValidString(got))
	})
}
