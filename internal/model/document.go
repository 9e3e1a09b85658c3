package model

type DocumentStatus string

const (
	StatusPending    DocumentStatus = "pending"
	StatusUploading  DocumentStatus = "uploading"
	StatusProcessing DocumentStatus = "processing"
	StatusIndexed    DocumentStatus = "indexed"
	StatusError      DocumentStatus = "error"
)

// Document is one cached metadata record for an indexed file or note.
// ID is the last path segment of the remote document resource name and is
// unique within the cache; upserts overwrite by ID.
type Document struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	UploadDate string            `json:"upload_date"` // RFC 3339, local recording time
	Size       int64             `json:"size"`
	Status     DocumentStatus    `json:"status"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// StatusFromRemote maps a remote document state onto the local status set.
func StatusFromRemote(state string) DocumentStatus {
	switch state {
	case "ACTIVE":
		return StatusIndexed
	case "PENDING":
		return StatusProcessing
	case "FAILED":
		return StatusError
	default:
		return StatusPending
	}
}
