package service

import (
	"context"
	"fmt"
	"time"

	"edubot/internal/repository"
	"edubot/internal/seed"

	"go.uber.org/zap"
)

type SeedResult struct {
	StaticInserted int
	FactsInserted  int
}

// SeedService loads seed data into the knowledge base. Rows whose natural
// key already exists are left untouched, so seeding can run on every start.
type SeedService struct {
	static *repository.StaticResponseRepository
	facts  *repository.EducationFactRepository
	logger *zap.Logger
}

func NewSeedService(static *repository.StaticResponseRepository, facts *repository.EducationFactRepository, logger *zap.Logger) *SeedService {
	return &SeedService{
		static: static,
		facts:  facts,
		logger: logger,
	}
}

func (s *SeedService) Seed(ctx context.Context, data *seed.Data) (*SeedResult, error) {
	result := &SeedResult{}
	now := time.Now()

	for i := range data.StaticResponses {
		inserted, err := s.static.InsertIfAbsent(ctx, &data.StaticResponses[i])
		if err != nil {
			return result, fmt.Errorf("seed static response %q: %w", data.StaticResponses[i].Question, err)
		}
		if inserted {
			result.StaticInserted++
		}
	}

	for i := range data.EducationFacts {
		fact := data.EducationFacts[i]
		fact.LastUpdated = now
		inserted, err := s.facts.InsertIfAbsent(ctx, &fact)
		if err != nil {
			return result, fmt.Errorf("seed education fact %q: %w", fact.Topic, err)
		}
		if inserted {
			result.FactsInserted++
		}
	}

	s.logger.Info("Knowledge base seeded",
		zap.Int("static_inserted", result.StaticInserted),
		zap.Int("facts_inserted", result.FactsInserted),
	)
	return result, nil
}
