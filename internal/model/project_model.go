package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	Id          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Description string         `gorm:"type:text"`
	CoverURL    *string        `gorm:"type:text"`
	CreatedBy   uuid.UUID      `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time      `gorm:"autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}

func (Project) TableName() string {
	return "projects"
}

type ProjectMember struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_members_project_user,priority:1"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_project_members_project_user,priority:2"`
	Role      string     `gorm:"type:varchar(20);not null"`
	Status    string     `gorm:"type:varchar(20);not null;default:'active'"`
	InvitedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (ProjectMember) TableName() string {
	return "project_members"
}
