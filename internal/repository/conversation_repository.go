package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"edubot/internal/models"
	"edubot/pkg/database"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type ConversationRepository struct {
	db     *database.DB
	logger *zap.Logger
}

func NewConversationRepository(db *database.DB, logger *zap.Logger) *ConversationRepository {
	return &ConversationRepository{
		db:     db,
		logger: logger,
	}
}

func (r *ConversationRepository) Create(ctx context.Context, entry *models.ConversationLogEntry) error {
	query, args, err := r.db.Builder.Insert("conversation_log").
		Columns("id", "user_input", "bot_response", "logged_at", "feedback").
		Values(entry.ID, entry.UserInput, entry.BotResponse, entry.Timestamp.UTC(), entry.Feedback).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert conversation log entry: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ConversationLogEntry, error) {
	query, args, err := r.selectEntries().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}

	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation log entry: %w", err)
	}
	return entry, nil
}

// List returns entries newest first.
func (r *ConversationRepository) List(ctx context.Context, limit, offset int) ([]*models.ConversationLogEntry, error) {
	query, args, err := r.selectEntries().
		OrderBy("logged_at DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation log: %w", err)
	}
	defer rows.Close()

	var results []*models.ConversationLogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entry)
	}
	return results, rows.Err()
}

// SetFeedback attaches reviewer feedback to an existing entry.
func (r *ConversationRepository) SetFeedback(ctx context.Context, id uuid.UUID, feedback string) error {
	query, args, err := r.db.Builder.Update("conversation_log").
		Set("feedback", feedback).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ConversationRepository) selectEntries() squirrel.SelectBuilder {
	return r.db.Builder.Select("id", "user_input", "bot_response", "logged_at", "feedback").
		From("conversation_log")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.ConversationLogEntry, error) {
	var (
		entry    models.ConversationLogEntry
		feedback sql.NullString
	)
	if err := row.Scan(&entry.ID, &entry.UserInput, &entry.BotResponse, &entry.Timestamp, &feedback); err != nil {
		return nil, err
	}
	if feedback.Valid {
		entry.Feedback = &feedback.String
	}
	return &entry, nil
}
