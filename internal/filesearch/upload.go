package filesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
)

// UploadInput describes one file to upload into a store.
type UploadInput struct {
	StoreName   string
	DisplayName string
	MimeType    string
	Content     io.Reader
}

// UploadDocument submits one file to the store's upload endpoint and returns
// the long-running indexing operation. The caller polls it via
// WaitForOperation.
func (c *Client) UploadDocument(ctx context.Context, in UploadInput) (*Operation, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	meta := map[string]string{"displayName": in.DisplayName}
	if in.MimeType != "" {
		meta["mimeType"] = in.MimeType
	}
	metaHeader := textproto.MIMEHeader{}
	metaHeader.Set("Content-Disposition", `form-data; name="metadata"`)
	metaHeader.Set("Content-Type", "application/json")
	metaPart, err := writer.CreatePart(metaHeader)
	if err != nil {
		return nil, fmt.Errorf("build upload metadata part failed: %w", err)
	}
	if err := json.NewEncoder(metaPart).Encode(meta); err != nil {
		return nil, fmt.Errorf("encode upload metadata failed: %w", err)
	}

	filePart, err := writer.CreateFormFile("file", in.DisplayName)
	if err != nil {
		return nil, fmt.Errorf("build upload file part failed: %w", err)
	}
	if _, err := io.Copy(filePart, in.Content); err != nil {
		return nil, fmt.Errorf("copy upload content failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize upload body failed: %w", err)
	}

	url := c.resourceURL(in.StoreName) + ":uploadToFileSearchStore"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("build upload request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read upload response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("upload response status %d: %s", resp.StatusCode, string(raw))
	}

	var op Operation
	if err := json.Unmarshal(raw, &op); err != nil {
		return nil, fmt.Errorf("parse upload operation failed: %w", err)
	}
	return &op, nil
}
