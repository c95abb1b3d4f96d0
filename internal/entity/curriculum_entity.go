package entity

import (
	"time"

	"github.com/google/uuid"
)

// Chapter is an ordered curriculum unit grouping prompts by theme.
// OrderIndex is the authoritative curriculum sequence; ties break by Id.
type Chapter struct {
	Id          uuid.UUID
	Title       string
	Description string
	OrderIndex  int
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// Prompt is a single curriculum question presented to a storyteller.
type Prompt struct {
	Id         uuid.UUID
	ChapterId  uuid.UUID
	Text       string
	OrderIndex int
	IsActive   bool
	Metadata   map[string]interface{}
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
