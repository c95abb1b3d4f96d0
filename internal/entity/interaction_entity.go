package entity

import (
	"time"

	"github.com/google/uuid"
)

type InteractionKind string

const (
	InteractionKindComment  InteractionKind = "comment"
	InteractionKindFollowUp InteractionKind = "follow_up"
)

// Interaction is a facilitator's comment or follow-up question on a story.
// Follow-ups are converted asynchronously into queued UserPrompts.
type Interaction struct {
	Id        uuid.UUID
	StoryId   uuid.UUID
	ProjectId uuid.UUID
	AuthorId  uuid.UUID
	Kind      InteractionKind
	Content   string
	CreatedAt time.Time
}
