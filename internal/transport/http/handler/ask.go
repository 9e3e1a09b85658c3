package handler

import (
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"greatlibrary/internal/app"
	"greatlibrary/internal/model"
	"greatlibrary/internal/repository"
	"greatlibrary/internal/transport/http/response"
)

const snippetDisplayLimit = 80

type AskHandler struct {
	askService *app.AskService
	qaRepo     *repository.QARecordRepository
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
	Session  string `json:"session" binding:"max=64"`
}

type citationView struct {
	ID           string `json:"id"`
	DocumentID   string `json:"document_id,omitempty"`
	DocumentName string `json:"document_name"`
	Snippet      string `json:"snippet,omitempty"`
	URI          string `json:"uri,omitempty"`
}

type askView struct {
	Answer       string         `json:"answer"`
	Citations    []citationView `json:"citations"`
	Conversation []model.Turn   `json:"conversation"`
}

func NewAskHandler(askService *app.AskService, qaRepo *repository.QARecordRepository) *AskHandler {
	return &AskHandler{askService: askService, qaRepo: qaRepo}
}

// Ask answers one question grounded against the library.
func (h *AskHandler) Ask(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.askService.Ask(c.Request.Context(), app.AskInput{
		UserID:   userID,
		Session:  req.Session,
		Question: req.Question,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrQuestionEmpty):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		default:
			response.Error(c, http.StatusBadGateway, response.CodeRemoteFailure, "ask failed: "+err.Error())
		}
		return
	}

	response.OK(c, toAskView(result))
}

// ClearHistory drops the caller's stored conversation for a session.
func (h *AskHandler) ClearHistory(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	session := c.Param("session")
	if err := h.askService.ClearConversation(c.Request.Context(), userID, session); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "clear history failed")
		return
	}
	response.OK(c, gin.H{"cleared_session": session})
}

// History returns the user's persisted Q&A log.
func (h *AskHandler) History(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	records, err := h.qaRepo.ListByUserID(userID, 50)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list qa history failed")
		return
	}
	response.OK(c, records)
}

func toAskView(result *app.AskResult) askView {
	citations := make([]citationView, 0, len(result.Citations))
	for _, cit := range result.Citations {
		citations = append(citations, citationView{
			ID:           cit.ID,
			DocumentID:   cit.DocumentID,
			DocumentName: cit.DocumentName,
			Snippet:      truncateSnippet(cit.Snippet),
			URI:          cit.URI,
		})
	}
	return askView{
		Answer:       result.Answer,
		Citations:    citations,
		Conversation: result.Conversation,
	}
}

// truncateSnippet shortens snippets for display only; extraction keeps them
// whole. Cuts on rune boundaries so multi-byte text stays valid UTF-8.
func truncateSnippet(s string) string {
	if utf8.RuneCountInString(s) <= snippetDisplayLimit {
		return s
	}
	return string([]rune(s)[:snippetDisplayLimit]) + "..."
}
