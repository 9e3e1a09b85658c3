package filesearch

import (
	"encoding/json"
	"strings"
)

// Store is a remote collection of indexed documents that generation requests
// can be grounded against.
type Store struct {
	Name        string `json:"name"` // "fileSearchStores/{id}"
	DisplayName string `json:"displayName,omitempty"`
	CreateTime  string `json:"createTime,omitempty"`
}

// ID returns the last path segment of the store resource name.
func (s Store) ID() string {
	return ResourceID(s.Name)
}

// StoreDocument is one document record as reported by the remote store.
type StoreDocument struct {
	Name           string           `json:"name"` // "fileSearchStores/{id}/documents/{docId}"
	DisplayName    string           `json:"displayName,omitempty"`
	SizeBytes      int64            `json:"sizeBytes,string,omitempty"`
	State          string           `json:"state,omitempty"` // ACTIVE | PENDING | FAILED
	CreateTime     string           `json:"createTime,omitempty"`
	CustomMetadata []CustomMetadata `json:"customMetadata,omitempty"`
}

type CustomMetadata struct {
	Key         string `json:"key"`
	StringValue string `json:"stringValue,omitempty"`
}

// MetadataMap flattens custom metadata into a string map.
func (d StoreDocument) MetadataMap() map[string]string {
	if len(d.CustomMetadata) == 0 {
		return nil
	}
	out := make(map[string]string, len(d.CustomMetadata))
	for _, m := range d.CustomMetadata {
		out[m.Key] = m.StringValue
	}
	return out
}

// Operation is a remote asynchronous task handle (an upload-and-index job)
// polled until Done.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *OperationError    `json:"error,omitempty"`
	Response *OperationResponse `json:"response,omitempty"`
}

// OperationError is the failure payload of a completed operation.
type OperationError struct {
	Code    int             `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Details json.RawMessage `json:"details,omitempty"`
}

func (e *OperationError) String() string {
	b, err := json.Marshal(e)
	if err != nil {
		return e.Message
	}
	return string(b)
}

// OperationResponse carries the result of a finished upload operation.
type OperationResponse struct {
	DocumentName string         `json:"documentName,omitempty"`
	Document     *StoreDocument `json:"document,omitempty"`
}

// ResultDocumentName returns the resource name of the indexed document,
// whichever field the remote chose to populate.
func (r *OperationResponse) ResultDocumentName() string {
	if r == nil {
		return ""
	}
	if r.DocumentName != "" {
		return r.DocumentName
	}
	if r.Document != nil {
		return r.Document.Name
	}
	return ""
}

// Part is one fragment of generated or prompt content.
type Part struct {
	Text string `json:"text,omitempty"`
}

// Content is a single conversation turn on the wire.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts,omitempty"`
}

// GenerateRequest asks the generation model for an answer grounded against
// the named stores.
type GenerateRequest struct {
	Contents   []Content
	StoreNames []string
}

// GenerateResponse is the typed response schema, validated once at the
// boundary; optional fields stay optional instead of being shape-checked at
// every call site.
type GenerateResponse struct {
	Text       string      `json:"text,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

type Candidate struct {
	Content           *Content           `json:"content,omitempty"`
	GroundingMetadata *GroundingMetadata `json:"groundingMetadata,omitempty"`
}

type GroundingMetadata struct {
	GroundingChunks []GroundingChunk `json:"groundingChunks,omitempty"`
}

// GroundingChunk is one piece of retrieved context backing the answer.
type GroundingChunk struct {
	RetrievedContext *RetrievedContext `json:"retrievedContext,omitempty"`
}

type RetrievedContext struct {
	DocumentName string `json:"documentName,omitempty"`
	Title        string `json:"title,omitempty"`
	URI          string `json:"uri,omitempty"`
	Text         string `json:"text,omitempty"`
	ChunkText    string `json:"chunkText,omitempty"`
}

// Snippet returns the chunk text, preferring the dedicated chunk field.
func (rc *RetrievedContext) Snippet() string {
	if rc.ChunkText != "" {
		return rc.ChunkText
	}
	return rc.Text
}

// ResourceID returns the last path segment of a resource name, or the name
// itself when it has no path separators.
func ResourceID(name string) string {
	if name == "" {
		return ""
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
