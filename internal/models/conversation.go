package models

import (
	"time"

	"github.com/google/uuid"
)

// ConversationLogEntry records an exchange the local knowledge base could
// not answer. Entries are append-only; only Feedback is set afterwards.
type ConversationLogEntry struct {
	ID          uuid.UUID `db:"id"`
	UserInput   string    `db:"user_input"`
	BotResponse string    `db:"bot_response"`
	Timestamp   time.Time `db:"logged_at"`
	Feedback    *string   `db:"feedback"`
}
