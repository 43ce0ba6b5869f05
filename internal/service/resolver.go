package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SourceFallback marks a resolution where no matcher produced an answer.
const SourceFallback = "fallback"

// Matcher is one answering strategy. TryResolve reports false on a miss so
// the Resolver moves on to the next matcher.
type Matcher interface {
	Name() string
	TryResolve(ctx context.Context, input string) (string, bool)
}

// Escalating is implemented by matchers that answer from outside the local
// knowledge base. The Resolver logs every exchange they settle.
type Escalating interface {
	Escalates() bool
}

// ExchangeRecorder persists an exchange for later review.
type ExchangeRecorder interface {
	Append(ctx context.Context, userInput, botResponse string, at time.Time)
}

type Resolution struct {
	Response string
	Source   string
}

// Resolver runs matchers in order and returns the first answer. When every
// matcher misses it records the exchange and returns FallbackMessage.
type Resolver struct {
	matchers []Matcher
	recorder ExchangeRecorder
	logger   *zap.Logger
	now      func() time.Time
}

func NewResolver(matchers []Matcher, recorder ExchangeRecorder, logger *zap.Logger) *Resolver {
	return &Resolver{
		matchers: matchers,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

// DefaultMatchers is the standard chain: static replies, topic phrases,
// level keywords, then the remote completion endpoint.
func DefaultMatchers(static StaticAnswerFinder, facts FactFinder, completer Completer, logger *zap.Logger) []Matcher {
	return []Matcher{
		NewStaticMatcher(static, logger),
		NewTopicPhraseMatcher(facts, logger),
		NewKeywordMatcher(facts, logger),
		NewRemoteMatcher(completer),
	}
}

func (r *Resolver) Resolve(ctx context.Context, input string) Resolution {
	for _, m := range r.matchers {
		answer, ok := m.TryResolve(ctx, input)
		if !ok || strings.TrimSpace(answer) == "" {
			continue
		}
		if esc, ok := m.(Escalating); ok && esc.Escalates() {
			r.recorder.Append(ctx, input, answer, r.now())
		}
		r.logger.Debug("Resolved message", zap.String("source", m.Name()))
		return Resolution{Response: answer, Source: m.Name()}
	}

	r.recorder.Append(ctx, input, FallbackMessage, r.now())
	r.logger.Debug("Resolved message", zap.String("source", SourceFallback))
	return Resolution{Response: FallbackMessage, Source: SourceFallback}
}
