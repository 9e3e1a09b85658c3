package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"greatlibrary/internal/app"
	"greatlibrary/internal/transport/http/response"
)

type NoteHandler struct {
	uploadService *app.UploadService
}

type CreateNoteRequest struct {
	Title   string `json:"title" binding:"max=128"`
	Content string `json:"content" binding:"required"`
}

func NewNoteHandler(uploadService *app.UploadService) *NoteHandler {
	return &NoteHandler{uploadService: uploadService}
}

// Create captures a short note and indexes it as a markdown document.
func (h *NoteHandler) Create(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.uploadService.UploadNote(c.Request.Context(), req.Title, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoFiles):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "note content is empty")
		case errors.Is(err, app.ErrUploadFailed):
			response.Error(c, http.StatusBadGateway, response.CodeRemoteFailure, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "capture note failed: "+err.Error())
		}
		return
	}

	response.OK(c, result)
}
