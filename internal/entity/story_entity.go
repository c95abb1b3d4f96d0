package entity

import (
	"time"

	"github.com/google/uuid"
)

// Story is a narrated answer recorded against a prompt in a project.
// PromptId / UserPromptId reference whichever source the story answers;
// both may be nil for free-form stories.
type Story struct {
	Id           uuid.UUID
	ProjectId    uuid.UUID
	TellerId     uuid.UUID
	Title        string
	Content      string
	PromptId     *uuid.UUID
	UserPromptId *uuid.UUID
	AudioURL     *string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
