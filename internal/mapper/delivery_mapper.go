package mapper

import (
	"time"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/model"
)

type DeliveryMapper struct{}

func NewDeliveryMapper() *DeliveryMapper {
	return &DeliveryMapper{}
}

func (m *DeliveryMapper) StateToEntity(s *model.ProjectPromptState) *entity.ProjectPromptState {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.ProjectPromptState{
		Id:                 s.Id,
		ProjectId:          s.ProjectId,
		CurrentChapterId:   s.CurrentChapterId,
		CurrentPromptIndex: s.CurrentPromptIndex,
		LastDeliveredAt:    s.LastDeliveredAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *DeliveryMapper) StateToModel(s *entity.ProjectPromptState) *model.ProjectPromptState {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ProjectPromptState{
		Id:                 s.Id,
		ProjectId:          s.ProjectId,
		CurrentChapterId:   s.CurrentChapterId,
		CurrentPromptIndex: s.CurrentPromptIndex,
		LastDeliveredAt:    s.LastDeliveredAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          updatedAt,
	}
}

func (m *DeliveryMapper) UserPromptToEntity(p *model.UserPrompt) *entity.UserPrompt {
	if p == nil {
		return nil
	}
	return &entity.UserPrompt{
		Id:            p.Id,
		ProjectId:     p.ProjectId,
		Text:          p.Text,
		Priority:      p.Priority,
		CreatedBy:     p.CreatedBy,
		ParentStoryId: p.ParentStoryId,
		IsDelivered:   p.IsDelivered,
		DeliveredAt:   p.DeliveredAt,
		CreatedAt:     p.CreatedAt,
	}
}

func (m *DeliveryMapper) UserPromptToModel(p *entity.UserPrompt) *model.UserPrompt {
	if p == nil {
		return nil
	}
	return &model.UserPrompt{
		Id:            p.Id,
		ProjectId:     p.ProjectId,
		Text:          p.Text,
		Priority:      p.Priority,
		CreatedBy:     p.CreatedBy,
		ParentStoryId: p.ParentStoryId,
		IsDelivered:   p.IsDelivered,
		DeliveredAt:   p.DeliveredAt,
		CreatedAt:     p.CreatedAt,
	}
}

func (m *DeliveryMapper) UserPromptsToEntities(prompts []*model.UserPrompt) []*entity.UserPrompt {
	entities := make([]*entity.UserPrompt, len(prompts))
	for i, p := range prompts {
		entities[i] = m.UserPromptToEntity(p)
	}
	return entities
}
