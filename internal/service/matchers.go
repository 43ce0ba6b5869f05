package service

import (
	"context"
	"errors"
	"strings"

	"edubot/internal/models"
	"edubot/internal/repository"

	"go.uber.org/zap"
)

const (
	SourceStatic  = "static"
	SourceTopic   = "topic"
	SourceKeyword = "keyword"
	SourceRemote  = "remote"
)

var (
	topicPhrases  = []string{"what is", "tell me about"}
	levelKeywords = []string{"grade", "o/l", "a/l", "ordinary level", "advanced level", "primary", "secondary", "university"}
)

// StaticAnswerFinder returns repository.ErrNotFound when no canned reply
// exists for question.
type StaticAnswerFinder interface {
	FindAnswer(ctx context.Context, question string) (string, error)
}

type FactFinder interface {
	FindFirst(ctx context.Context, match func(*models.EducationFact) bool) (*models.EducationFact, error)
}

// StaticMatcher answers inputs equal to a canned question, ignoring case and
// surrounding whitespace.
type StaticMatcher struct {
	answers StaticAnswerFinder
	logger  *zap.Logger
}

func NewStaticMatcher(answers StaticAnswerFinder, logger *zap.Logger) *StaticMatcher {
	return &StaticMatcher{answers: answers, logger: logger}
}

func (m *StaticMatcher) Name() string { return SourceStatic }

func (m *StaticMatcher) TryResolve(ctx context.Context, input string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(input))
	if key == "" {
		return "", false
	}
	answer, err := m.answers.FindAnswer(ctx, key)
	if err != nil {
		logLookupError(m.logger, SourceStatic, err)
		return "", false
	}
	return answer, true
}

// TopicPhraseMatcher handles "what is X" and "tell me about X" by looking
// for a fact whose topic contains X.
type TopicPhraseMatcher struct {
	facts  FactFinder
	logger *zap.Logger
}

func NewTopicPhraseMatcher(facts FactFinder, logger *zap.Logger) *TopicPhraseMatcher {
	return &TopicPhraseMatcher{facts: facts, logger: logger}
}

func (m *TopicPhraseMatcher) Name() string { return SourceTopic }

func (m *TopicPhraseMatcher) TryResolve(ctx context.Context, input string) (string, bool) {
	candidate, ok := topicCandidate(input)
	if !ok {
		return "", false
	}
	fact, err := m.facts.FindFirst(ctx, func(f *models.EducationFact) bool {
		return strings.Contains(strings.ToLower(f.Topic), candidate)
	})
	if err != nil {
		logLookupError(m.logger, SourceTopic, err)
		return "", false
	}
	return fact.Information, true
}

// topicCandidate strips every topic phrase from the lowercased input. It
// reports false when no phrase is present or nothing is left.
func topicCandidate(input string) (string, bool) {
	lower := strings.ToLower(input)
	if !containsAny(lower, topicPhrases) {
		return "", false
	}
	for _, phrase := range topicPhrases {
		lower = strings.ReplaceAll(lower, phrase, "")
	}
	candidate := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(lower), "?!."))
	return candidate, candidate != ""
}

// KeywordMatcher handles inputs mentioning a school level: the first fact
// whose level or topic appears inside the input wins.
type KeywordMatcher struct {
	facts  FactFinder
	logger *zap.Logger
}

func NewKeywordMatcher(facts FactFinder, logger *zap.Logger) *KeywordMatcher {
	return &KeywordMatcher{facts: facts, logger: logger}
}

func (m *KeywordMatcher) Name() string { return SourceKeyword }

func (m *KeywordMatcher) TryResolve(ctx context.Context, input string) (string, bool) {
	lower := strings.ToLower(input)
	if !containsAny(lower, levelKeywords) {
		return "", false
	}
	fact, err := m.facts.FindFirst(ctx, func(f *models.EducationFact) bool {
		level := strings.ToLower(strings.TrimSpace(f.Level))
		topic := strings.ToLower(strings.TrimSpace(f.Topic))
		return (level != "" && strings.Contains(lower, level)) ||
			(topic != "" && strings.Contains(lower, topic))
	})
	if err != nil {
		logLookupError(m.logger, SourceKeyword, err)
		return "", false
	}
	return fact.Information, true
}

// RemoteMatcher asks the completion endpoint.
type RemoteMatcher struct {
	completer Completer
}

func NewRemoteMatcher(completer Completer) *RemoteMatcher {
	return &RemoteMatcher{completer: completer}
}

func (m *RemoteMatcher) Name() string { return SourceRemote }

func (m *RemoteMatcher) Escalates() bool { return true }

func (m *RemoteMatcher) TryResolve(ctx context.Context, input string) (string, bool) {
	text, ok := m.completer.Complete(ctx, BuildPrompt(input))
	text = strings.TrimSpace(text)
	if !ok || text == "" {
		return "", false
	}
	return text, true
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func logLookupError(logger *zap.Logger, source string, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		return
	}
	logger.Warn("Knowledge base lookup failed", zap.String("source", source), zap.Error(err))
}
