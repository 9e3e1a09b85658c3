package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"greatlibrary/internal/app"
	"greatlibrary/internal/transport/http/response"
)

type DocumentHandler struct {
	uploadService   *app.UploadService
	documentService *app.DocumentService
}

func NewDocumentHandler(uploadService *app.UploadService, documentService *app.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		uploadService:   uploadService,
		documentService: documentService,
	}
}

// Upload accepts a multipart form with one or more "files" parts and uploads
// them sequentially into the library store.
func (h *DocumentHandler) Upload(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid multipart form")
		return
	}
	headers := form.File["files"]

	files := make([]app.FileInput, 0, len(headers))
	var closers []func() error
	defer func() {
		for _, close := range closers {
			_ = close()
		}
	}()
	for _, fh := range headers {
		opened, err := fh.Open()
		if err != nil {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
			return
		}
		closers = append(closers, opened.Close)
		files = append(files, app.FileInput{
			Name:     fh.Filename,
			Size:     fh.Size,
			MimeType: fh.Header.Get("Content-Type"),
			Content:  opened,
		})
	}

	result, err := h.uploadService.UploadFiles(c.Request.Context(), files, app.UploadOptions{})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFiles):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrFileTooLarge):
			response.Error(c, http.StatusBadRequest, response.CodeFileTooLarge, err.Error())
		case errors.Is(err, app.ErrUploadFailed):
			response.Error(c, http.StatusBadGateway, response.CodeRemoteFailure, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload failed: "+err.Error())
		}
		return
	}

	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	docs, err := h.documentService.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

// Sync refreshes the cached metadata from the remote store listing.
func (h *DocumentHandler) Sync(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	docs, err := h.documentService.Sync(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusBadGateway, response.CodeRemoteFailure, "sync documents failed: "+err.Error())
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	documentID := c.Param("id")
	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		switch {
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusBadGateway, response.CodeRemoteFailure, "delete document failed: "+err.Error())
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": documentID})
}
