package dto

import (
	"github.com/google/uuid"
)

type CatalogPromptResponse struct {
	Id         uuid.UUID `json:"id"`
	Text       string    `json:"text"`
	OrderIndex int       `json:"order_index"`
}

type CatalogChapterResponse struct {
	Id          uuid.UUID               `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	OrderIndex  int                     `json:"order_index"`
	Prompts     []CatalogPromptResponse `json:"prompts"`
}

type CreateChapterRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
	IsActive    *bool  `json:"is_active"`
}

type CreateChapterResponse struct {
	Id uuid.UUID `json:"id"`
}

type CreatePromptRequest struct {
	ChapterId  uuid.UUID              `json:"chapter_id" validate:"required"`
	Text       string                 `json:"text" validate:"required"`
	OrderIndex int                    `json:"order_index"`
	IsActive   *bool                  `json:"is_active"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type CreatePromptResponse struct {
	Id uuid.UUID `json:"id"`
}
