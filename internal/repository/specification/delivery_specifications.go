package specification

import (
	"gorm.io/gorm"
)

// UndeliveredOnly filters user prompts still waiting in the queue.
type UndeliveredOnly struct{}

func (s UndeliveredOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_delivered = ?", false)
}

// QueueOrder is the queue selection rule: most urgent first, oldest wins
// among equals.
type QueueOrder struct{}

func (s QueueOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("priority DESC, created_at ASC")
}
