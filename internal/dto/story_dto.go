package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateStoryRequest struct {
	ProjectId    uuid.UUID  `json:"project_id" validate:"required"`
	Title        string     `json:"title" validate:"required"`
	Content      string     `json:"content"`
	PromptId     *uuid.UUID `json:"prompt_id"`
	UserPromptId *uuid.UUID `json:"user_prompt_id"`
	AudioURL     *string    `json:"audio_url"`
}

type CreateStoryResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowStoryResponse struct {
	Id           uuid.UUID             `json:"id"`
	ProjectId    uuid.UUID             `json:"project_id"`
	TellerId     uuid.UUID             `json:"teller_id"`
	Title        string                `json:"title"`
	Content      string                `json:"content"`
	PromptId     *uuid.UUID            `json:"prompt_id,omitempty"`
	UserPromptId *uuid.UUID            `json:"user_prompt_id,omitempty"`
	AudioURL     *string               `json:"audio_url,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    *time.Time            `json:"updated_at,omitempty"`
	Interactions []InteractionResponse `json:"interactions"`
}

type ListStoriesResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	TellerId  uuid.UUID `json:"teller_id"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateStoryRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type UpdateStoryResponse struct {
	Id uuid.UUID `json:"id"`
}

type CreateInteractionRequest struct {
	StoryId uuid.UUID
	Kind    string `json:"kind" validate:"required,oneof=comment follow_up"`
	Content string `json:"content" validate:"required"`
}

type CreateInteractionResponse struct {
	Id uuid.UUID `json:"id"`
}

type InteractionResponse struct {
	Id        uuid.UUID `json:"id"`
	AuthorId  uuid.UUID `json:"author_id"`
	Kind      string    `json:"kind"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
