package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChapterRef is the chapter context attached to a system-sourced prompt.
type ChapterRef struct {
	Id         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	OrderIndex int       `json:"order_index"`
}

// NextPromptResponse wraps the resolver result. Prompt is null when no
// content is available, which renders client-side as "no prompt available
// right now" rather than an error.
type NextPromptResponse struct {
	Prompt *DeliveredPromptResponse `json:"prompt"`
}

type DeliveredPromptResponse struct {
	Id            uuid.UUID   `json:"id"`
	Text          string      `json:"text"`
	Source        string      `json:"source"` // "system" | "user"
	Chapter       *ChapterRef `json:"chapter,omitempty"`
	ParentStoryId *uuid.UUID  `json:"parent_story_id,omitempty"`
}

// AcknowledgeRequest is the wire shape of an ack. The bool discriminator is
// mapped at the controller boundary into the tagged Acknowledgement variant
// so invalid combinations never reach the service.
type AcknowledgeRequest struct {
	PromptId     uuid.UUID `json:"prompt_id"`
	IsUserPrompt bool      `json:"is_user_prompt"`
}

type AcknowledgeResponse struct {
	Ok bool `json:"ok"`
}

type CreateUserPromptRequest struct {
	ProjectId     uuid.UUID
	Text          string     `json:"text" validate:"required"`
	Priority      int        `json:"priority"`
	ParentStoryId *uuid.UUID `json:"parent_story_id"`
}

type CreateUserPromptResponse struct {
	Id uuid.UUID `json:"id"`
}

type UserPromptResponse struct {
	Id            uuid.UUID  `json:"id"`
	Text          string     `json:"text"`
	Priority      int        `json:"priority"`
	ParentStoryId *uuid.UUID `json:"parent_story_id,omitempty"`
	IsDelivered   bool       `json:"is_delivered"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ConvertFollowUpMessage travels over the in-process bus from interaction
// ingestion to the converter worker.
type ConvertFollowUpMessage struct {
	InteractionId uuid.UUID `json:"interaction_id"`
	ProjectId     uuid.UUID `json:"project_id"`
	StoryId       uuid.UUID `json:"story_id"`
	AuthorId      uuid.UUID `json:"author_id"`
	Content       string    `json:"content"`
}
