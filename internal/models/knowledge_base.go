package models

import (
	"time"
)

// StaticResponse is a canned reply keyed by a normalized (trimmed,
// lowercased) question.
type StaticResponse struct {
	Question string `db:"question" yaml:"question"`
	Answer   string `db:"answer" yaml:"answer"`
}

// EducationFact is a topic/level tagged snippet of the knowledge base.
// ID order is the storage order used when several facts match.
type EducationFact struct {
	ID          int64     `db:"id" yaml:"-"`
	Topic       string    `db:"topic" yaml:"topic"`
	Level       string    `db:"level" yaml:"level"`
	Information string    `db:"information" yaml:"information"`
	LastUpdated time.Time `db:"last_updated" yaml:"-"`
}
