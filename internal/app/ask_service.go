package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"greatlibrary/internal/filesearch"
	"greatlibrary/internal/model"
)

var ErrQuestionEmpty = errors.New("question is empty")

// AskInput is one grounded question.
type AskInput struct {
	UserID   uint
	Session  string
	Question string
}

// AskResult carries the answer, its citations, and the conversation as
// stored after this turn.
type AskResult struct {
	Answer       string           `json:"answer"`
	Citations    []model.Citation `json:"citations"`
	Conversation []model.Turn     `json:"conversation"`
}

// AskService answers questions grounded against the resolved store, keeping a
// bounded per-session conversation and logging each answered question for
// async persistence.
type AskService struct {
	client        SearchAPI
	resolver      *StoreResolver
	cache         DocumentCache
	conversations ConversationStore
	publisher     AsyncQAPublisher
	maxContext    int
	logger        *zap.Logger
}

func NewAskService(
	client SearchAPI,
	resolver *StoreResolver,
	cache DocumentCache,
	conversations ConversationStore,
	publisher AsyncQAPublisher,
	maxContext int,
	logger *zap.Logger,
) *AskService {
	if maxContext <= 0 {
		maxContext = 10
	}
	return &AskService{
		client:        client,
		resolver:      resolver,
		cache:         cache,
		conversations: conversations,
		publisher:     publisher,
		maxContext:    maxContext,
		logger:        logger,
	}
}

// Ask runs one grounded question-answer turn. Remote failures propagate
// verbatim; no retry is performed.
func (s *AskService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrQuestionEmpty
	}
	session := strings.TrimSpace(input.Session)
	if session == "" {
		session = "default"
	}

	store, err := s.resolver.EnsureStore(ctx)
	if err != nil {
		return nil, err
	}

	history, err := s.conversations.Get(ctx, input.UserID, session)
	if err != nil {
		s.logger.Warn("load conversation failed, starting empty",
			zap.String("session", session), zap.Error(err))
		history = nil
	}
	history = append(history, model.Turn{Role: model.RoleUser, Text: question})

	resp, err := s.client.Generate(ctx, filesearch.GenerateRequest{
		Contents:   toContents(history),
		StoreNames: []string{store.Name},
	})
	if err != nil {
		return nil, err
	}

	answer := answerText(resp)

	cached, err := s.cache.GetAll(ctx)
	if err != nil {
		s.logger.Warn("read document cache for citations failed", zap.Error(err))
		cached = nil
	}
	citations := extractCitations(groundingChunks(resp), cached)

	history = append(history, modelTurn(resp, answer))
	history = trimConversation(history, s.maxContext)
	if err := s.conversations.Set(ctx, input.UserID, session, history); err != nil {
		s.logger.Warn("store conversation failed", zap.String("session", session), zap.Error(err))
	}

	s.logQA(ctx, input.UserID, session, question, answer, len(citations))

	return &AskResult{
		Answer:       answer,
		Citations:    citations,
		Conversation: history,
	}, nil
}

// ClearConversation drops the user's stored history for one session.
func (s *AskService) ClearConversation(ctx context.Context, userID uint, session string) error {
	session = strings.TrimSpace(session)
	if session == "" {
		session = "default"
	}
	return s.conversations.Clear(ctx, userID, session)
}

func (s *AskService) logQA(ctx context.Context, userID uint, session, question, answer string, citationCount int) {
	if s.publisher == nil {
		return
	}
	record := model.QARecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		Session:       session,
		Question:      question,
		Answer:        answer,
		CitationCount: citationCount,
	}
	if err := s.publisher.Publish(ctx, record); err != nil {
		s.logger.Warn("enqueue qa record failed", zap.Error(err))
	}
}

func toContents(turns []model.Turn) []filesearch.Content {
	contents := make([]filesearch.Content, 0, len(turns))
	for _, t := range turns {
		contents = append(contents, filesearch.Content{
			Role:  t.Role,
			Parts: []filesearch.Part{{Text: t.Text}},
		})
	}
	return contents
}

// answerText prefers the response's direct text field and falls back to the
// concatenation of the first candidate's text parts.
func answerText(resp *filesearch.GenerateResponse) string {
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return strings.TrimSpace(b.String())
}

// modelTurn builds the turn appended for the model's reply: the structured
// candidate content when present, else a synthetic text-only turn.
func modelTurn(resp *filesearch.GenerateResponse, answer string) model.Turn {
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		content := resp.Candidates[0].Content
		role := content.Role
		if role == "" {
			role = model.RoleModel
		}
		var b strings.Builder
		for _, part := range content.Parts {
			b.WriteString(part.Text)
		}
		return model.Turn{Role: role, Text: strings.TrimSpace(b.String())}
	}
	return model.Turn{Role: model.RoleModel, Text: answer}
}

func groundingChunks(resp *filesearch.GenerateResponse) []filesearch.GroundingChunk {
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	return resp.Candidates[0].GroundingMetadata.GroundingChunks
}
