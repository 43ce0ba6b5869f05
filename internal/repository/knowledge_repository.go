package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"edubot/internal/models"
	"edubot/pkg/database"

	"github.com/Masterminds/squirrel"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("record not found")

// NormalizeQuestion is the canonical form of a static response key.
func NormalizeQuestion(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

type StaticResponseRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewStaticResponseRepository(db *database.DB, logger *zap.Logger) *StaticResponseRepository {
	return &StaticResponseRepository{
		db:     db,
		logger: logger,
	}
}

// FindAnswer returns the answer stored for question, compared
// case-insensitively. ErrNotFound when there is none.
func (r *StaticResponseRepository) FindAnswer(ctx context.Context, question string) (string, error) {
	query, args, err := r.db.Builder.Select("answer").
		From("static_responses").
		Where(squirrel.Expr("LOWER(question) = ?", NormalizeQuestion(question))).
		Limit(1).
		ToSql()
	if err != nil {
		return "", err
	}

	var answer string
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&answer); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to query static response: %w", err)
	}
	return answer, nil
}

// InsertIfAbsent stores resp unless its question already exists. Existing
// rows are never overwritten.
func (r *StaticResponseRepository) InsertIfAbsent(ctx context.Context, resp *models.StaticResponse) (bool, error) {
	query, args, err := r.db.Builder.Insert("static_responses").
		Columns("question", "answer").
		Values(NormalizeQuestion(resp.Question), resp.Answer).
		Suffix("ON CONFLICT (question) DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert static response: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *StaticResponseRepository) List(ctx context.Context) ([]*models.StaticResponse, error) {
	query, args, err := r.db.Builder.Select("question", "answer").
		From("static_responses").
		OrderBy("question ASC").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list static responses: %w", err)
	}
	defer rows.Close()

	var results []*models.StaticResponse
	for rows.Next() {
		var s models.StaticResponse
		if err := rows.Scan(&s.Question, &s.Answer); err != nil {
			return nil, err
		}
		results = append(results, &s)
	}
	return results, rows.Err()
}

type EducationFactRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewEducationFactRepository(db *database.DB, logger *zap.Logger) *EducationFactRepository {
	return &EducationFactRepository{
		db:     db,
		logger: logger,
	}
}

func (r *EducationFactRepository) selectFacts() squirrel.SelectBuilder {
	return r.db.Builder.Select("id", "topic", "level", "information", "last_updated").
		From("education_facts").
		OrderBy("id ASC")
}

// FindFirst walks facts in storage order and returns the first one match
// accepts. ErrNotFound when none does.
func (r *EducationFactRepository) FindFirst(ctx context.Context, match func(*models.EducationFact) bool) (*models.EducationFact, error) {
	query, args, err := r.selectFacts().ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query education facts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var f models.EducationFact
		if err := rows.Scan(&f.ID, &f.Topic, &f.Level, &f.Information, &f.LastUpdated); err != nil {
			return nil, err
		}
		if match(&f) {
			return &f, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNotFound
}

func (r *EducationFactRepository) List(ctx context.Context) ([]*models.EducationFact, error) {
	var results []*models.EducationFact
	_, err := r.FindFirst(ctx, func(f *models.EducationFact) bool {
		results = append(results, f)
		return false
	})
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return results, nil
}

// InsertIfAbsent stores fact unless a fact with the same topic exists.
func (r *EducationFactRepository) InsertIfAbsent(ctx context.Context, fact *models.EducationFact) (bool, error) {
	query, args, err := r.db.Builder.Insert("education_facts").
		Columns("topic", "level", "information", "last_updated").
		Values(fact.Topic, fact.Level, fact.Information, fact.LastUpdated.UTC()).
		Suffix("ON CONFLICT (topic) DO NOTHING").
		ToSql()
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert education fact: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
