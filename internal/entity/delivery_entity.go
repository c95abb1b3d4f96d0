package entity

import (
	"time"

	"github.com/google/uuid"
)

type PromptSource string

const (
	PromptSourceSystem PromptSource = "system"
	PromptSourceUser   PromptSource = "user"
)

// ProjectPromptState is the single per-project cursor into the curriculum.
// CurrentPromptIndex is the next index to serve within the current chapter's
// active prompts. It may run past the chapter's prompt count, which signals
// exhaustion; it is never clamped.
type ProjectPromptState struct {
	Id                 uuid.UUID
	ProjectId          uuid.UUID
	CurrentChapterId   uuid.UUID
	CurrentPromptIndex int
	LastDeliveredAt    *time.Time
	CreatedAt          time.Time
	UpdatedAt          *time.Time
}

// UserPrompt is an ad hoc follow-up question queued ahead of the system
// curriculum. IsDelivered only ever transitions false -> true.
type UserPrompt struct {
	Id            uuid.UUID
	ProjectId     uuid.UUID
	Text          string
	Priority      int
	CreatedBy     uuid.UUID
	ParentStoryId *uuid.UUID
	IsDelivered   bool
	DeliveredAt   *time.Time
	CreatedAt     time.Time
}

type AckKind string

const (
	AckKindSystem AckKind = "system"
	AckKindUser   AckKind = "user"
)

// Acknowledgement is the tagged variant for delivery acks. A user ack
// identifies the UserPrompt to mark delivered; a system ack advances the
// project cursor and carries no prompt id.
type Acknowledgement struct {
	Kind     AckKind
	PromptId uuid.UUID // only meaningful for AckKindUser
}

func SystemAck() Acknowledgement {
	return Acknowledgement{Kind: AckKindSystem}
}

func UserAck(promptId uuid.UUID) Acknowledgement {
	return Acknowledgement{Kind: AckKindUser, PromptId: promptId}
}

// DeliveredPrompt is what the resolver hands back: either a curriculum
// prompt with its chapter context or a queued user prompt with its parent
// story reference.
type DeliveredPrompt struct {
	Id            uuid.UUID
	Text          string
	Source        PromptSource
	Chapter       *Chapter
	ParentStoryId *uuid.UUID
}
