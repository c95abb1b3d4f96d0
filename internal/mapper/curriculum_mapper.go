package mapper

import (
	"encoding/json"
	"time"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/model"

	"gorm.io/datatypes"
)

type CurriculumMapper struct{}

func NewCurriculumMapper() *CurriculumMapper {
	return &CurriculumMapper{}
}

func (m *CurriculumMapper) ChapterToEntity(c *model.Chapter) *entity.Chapter {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Chapter{
		Id:          c.Id,
		Title:       c.Title,
		Description: c.Description,
		OrderIndex:  c.OrderIndex,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *CurriculumMapper) ChapterToModel(c *entity.Chapter) *model.Chapter {
	if c == nil {
		return nil
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Chapter{
		Id:          c.Id,
		Title:       c.Title,
		Description: c.Description,
		OrderIndex:  c.OrderIndex,
		IsActive:    c.IsActive,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   updatedAt,
	}
}

func (m *CurriculumMapper) ChaptersToEntities(chapters []*model.Chapter) []*entity.Chapter {
	entities := make([]*entity.Chapter, len(chapters))
	for i, c := range chapters {
		entities[i] = m.ChapterToEntity(c)
	}
	return entities
}

func (m *CurriculumMapper) PromptToEntity(p *model.Prompt) *entity.Prompt {
	if p == nil {
		return nil
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	var metadata map[string]interface{}
	if len(p.Metadata) > 0 {
		// Ignore malformed metadata rather than failing the read
		_ = json.Unmarshal(p.Metadata, &metadata)
	}

	return &entity.Prompt{
		Id:         p.Id,
		ChapterId:  p.ChapterId,
		Text:       p.Text,
		OrderIndex: p.OrderIndex,
		IsActive:   p.IsActive,
		Metadata:   metadata,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *CurriculumMapper) PromptToModel(p *entity.Prompt) *model.Prompt {
	if p == nil {
		return nil
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	var metadata datatypes.JSON
	if p.Metadata != nil {
		data, err := json.Marshal(p.Metadata)
		if err == nil {
			metadata = data
		}
	}

	return &model.Prompt{
		Id:         p.Id,
		ChapterId:  p.ChapterId,
		Text:       p.Text,
		OrderIndex: p.OrderIndex,
		IsActive:   p.IsActive,
		Metadata:   metadata,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  updatedAt,
	}
}

func (m *CurriculumMapper) PromptsToEntities(prompts []*model.Prompt) []*entity.Prompt {
	entities := make([]*entity.Prompt, len(prompts))
	for i, p := range prompts {
		entities[i] = m.PromptToEntity(p)
	}
	return entities
}
