package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	SystemInstruction = "You are a helpful assistant specialized in Sri Lankan education system from Grade 1 to Graduate level. Provide concise, accurate answers."
	PromptTemplate    = "Question about Sri Lankan education system: %s"
	FallbackMessage   = "I couldn't find an answer to that question about Sri Lankan education. Could you try rephrasing it?"
)

// Completer returns a remote answer for prompt, or false when none is
// available.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, bool)
}

// CompletionService makes one attempt per prompt. Failures are logged and
// reported as "no answer"; they never reach the caller as errors.
type CompletionService struct {
	model  ChatModel
	logger *zap.Logger
}

func NewCompletionService(model ChatModel, logger *zap.Logger) *CompletionService {
	return &CompletionService{
		model:  model,
		logger: logger,
	}
}

func (s *CompletionService) Complete(ctx context.Context, prompt string) (string, bool) {
	text, err := s.model.Chat(ctx, SystemInstruction, prompt)
	if err != nil {
		s.logger.Warn("Completion request failed", zap.Error(err))
		return "", false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn("Completion returned empty content")
		return "", false
	}
	return text, true
}

// BuildPrompt wraps user input in the remote prompt template.
func BuildPrompt(input string) string {
	return fmt.Sprintf(PromptTemplate, input)
}
