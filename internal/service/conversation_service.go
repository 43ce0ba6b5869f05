package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"edubot/internal/models"
	"edubot/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrEmptyFeedback        = errors.New("feedback must not be empty")
)

const (
	defaultConversationLimit = 20
	maxConversationLimit     = 100
)

type ConversationStore interface {
	Create(ctx context.Context, entry *models.ConversationLogEntry) error
}

// ConversationLogger appends unresolved exchanges. Writes are best-effort:
// a failed insert is logged and the caller's answer is unaffected.
type ConversationLogger struct {
	store  ConversationStore
	logger *zap.Logger
}

func NewConversationLogger(store ConversationStore, logger *zap.Logger) *ConversationLogger {
	return &ConversationLogger{
		store:  store,
		logger: logger,
	}
}

func (l *ConversationLogger) Append(ctx context.Context, userInput, botResponse string, at time.Time) {
	entry := &models.ConversationLogEntry{
		ID:          uuid.New(),
		UserInput:   sanitizeUTF8(userInput),
		BotResponse: sanitizeUTF8(botResponse),
		Timestamp:   at,
	}
	if err := l.store.Create(ctx, entry); err != nil {
		l.logger.Error("Failed to log conversation", zap.String("conversation_id", entry.ID.String()), zap.Error(err))
		return
	}
	l.logger.Debug("Conversation logged", zap.String("conversation_id", entry.ID.String()))
}

// ConversationService exposes the conversation log for review.
type ConversationService struct {
	repo   *repository.ConversationRepository
	logger *zap.Logger
}

func NewConversationService(repo *repository.ConversationRepository, logger *zap.Logger) *ConversationService {
	return &ConversationService{
		repo:   repo,
		logger: logger,
	}
}

// List returns logged exchanges newest first. limit is clamped to
// [1, 100] with 20 as the default for non-positive values.
func (s *ConversationService) List(ctx context.Context, limit, offset int) ([]*models.ConversationLogEntry, error) {
	if limit <= 0 {
		limit = defaultConversationLimit
	}
	if limit > maxConversationLimit {
		limit = maxConversationLimit
	}
	if offset < 0 {
		offset = 0
	}
	entries, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return entries, nil
}

func (s *ConversationService) SetFeedback(ctx context.Context, id uuid.UUID, feedback string) error {
	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		return ErrEmptyFeedback
	}
	if err := s.repo.SetFeedback(ctx, id, sanitizeUTF8(feedback)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrConversationNotFound
		}
		return fmt.Errorf("failed to set feedback: %w", err)
	}
	s.logger.Info("Feedback recorded", zap.String("conversation_id", id.String()))
	return nil
}
