package pdfextract

import (
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ExtractText extracts plain text from the PDF bytes read off r. A PDF with
// no extractable text yields an empty string and nil error.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	reader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Preview extracts text and collapses it into a single whitespace-normalized
// line of at most maxLen bytes, for display next to cached metadata.
func Preview(r io.Reader, maxLen int) (string, error) {
	text, err := ExtractText(r)
	if err != nil {
		return "", err
	}
	return clampBytes(strings.Join(strings.Fields(text), " "), maxLen), nil
}

// clampBytes cuts s to at most maxLen bytes without splitting a rune.
func clampBytes(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
