package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectPromptState holds the single curriculum cursor per project.
// The unique index on ProjectId is what makes concurrent lazy inits safe:
// duplicate attempts hit the constraint instead of creating a second row.
type ProjectPromptState struct {
	Id                 uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId          uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_prompt_states_project"`
	CurrentChapterId   uuid.UUID  `gorm:"type:uuid;not null"`
	CurrentPromptIndex int        `gorm:"not null;default:0"`
	LastDeliveredAt    *time.Time `gorm:""`
	CreatedAt          time.Time  `gorm:"autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime"`
}

func (ProjectPromptState) TableName() string {
	return "project_prompt_states"
}

type UserPrompt struct {
	Id            uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId     uuid.UUID  `gorm:"type:uuid;not null;index:idx_user_prompts_project_undelivered,priority:1"`
	Text          string     `gorm:"type:text;not null"`
	Priority      int        `gorm:"not null;default:0"`
	CreatedBy     uuid.UUID  `gorm:"type:uuid;not null"`
	ParentStoryId *uuid.UUID `gorm:"type:uuid"`
	IsDelivered   bool       `gorm:"not null;default:false;index:idx_user_prompts_project_undelivered,priority:2"`
	DeliveredAt   *time.Time `gorm:""`
	CreatedAt     time.Time  `gorm:"autoCreateTime"`
}

func (UserPrompt) TableName() string {
	return "user_prompts"
}
