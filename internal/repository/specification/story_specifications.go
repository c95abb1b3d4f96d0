package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByStoryID filters interactions belonging to a story.
type ByStoryID struct {
	StoryID uuid.UUID
}

func (s ByStoryID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("story_id = ?", s.StoryID)
}

// ByTellerID filters stories narrated by a specific member.
type ByTellerID struct {
	TellerID uuid.UUID
}

func (s ByTellerID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("teller_id = ?", s.TellerID)
}

// MemberOfProject filters project_members rows for a user on a project.
type MemberOfProject struct {
	ProjectID uuid.UUID
	UserID    uuid.UUID
}

func (s MemberOfProject) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ? AND user_id = ?", s.ProjectID, s.UserID)
}

// WithMemberStatus filters memberships by status.
type WithMemberStatus struct {
	Status string
}

func (s WithMemberStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
