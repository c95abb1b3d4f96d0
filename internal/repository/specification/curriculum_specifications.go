package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActiveOnly filters curriculum rows that are currently active.
type ActiveOnly struct{}

func (s ActiveOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_active = ?", true)
}

// ByChapterID filters prompts belonging to a chapter.
type ByChapterID struct {
	ChapterID uuid.UUID
}

func (s ByChapterID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chapter_id = ?", s.ChapterID)
}

// CurriculumOrder orders by the authoritative curriculum sequence.
// Ties on order_index break by id so the ordering is total.
type CurriculumOrder struct{}

func (s CurriculumOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("order_index ASC, id ASC")
}
