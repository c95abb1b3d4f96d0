package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Chapter struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text"`
	OrderIndex  int       `gorm:"not null;index:idx_chapters_order"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

func (Chapter) TableName() string {
	return "chapters"
}

type Prompt struct {
	Id         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChapterId  uuid.UUID      `gorm:"type:uuid;not null;index:idx_prompts_chapter_order,priority:1"`
	Text       string         `gorm:"type:text;not null"`
	OrderIndex int            `gorm:"not null;index:idx_prompts_chapter_order,priority:2"`
	IsActive   bool           `gorm:"not null;default:true"`
	Metadata   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt  time.Time      `gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime"`
}

func (Prompt) TableName() string {
	return "prompts"
}
