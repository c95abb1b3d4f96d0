package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Story struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	TellerId     uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title        string         `gorm:"type:varchar(255);not null"`
	Content      string         `gorm:"type:text"`
	PromptId     *uuid.UUID     `gorm:"type:uuid"`
	UserPromptId *uuid.UUID     `gorm:"type:uuid"`
	AudioURL     *string        `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Story) TableName() string {
	return "stories"
}

type Interaction struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StoryId   uuid.UUID `gorm:"type:uuid;not null;index"`
	ProjectId uuid.UUID `gorm:"type:uuid;not null;index"`
	AuthorId  uuid.UUID `gorm:"type:uuid;not null"`
	Kind      string    `gorm:"type:varchar(20);not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Interaction) TableName() string {
	return "interactions"
}
