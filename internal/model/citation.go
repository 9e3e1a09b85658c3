package model

// Citation is a de-duplicated, user-facing reference to a source document
// backing part of an answer. Derived from grounding metadata, never persisted.
type Citation struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id,omitempty"`
	DocumentName string `json:"document_name"`
	Snippet      string `json:"snippet,omitempty"`
	URI          string `json:"uri,omitempty"`
}
