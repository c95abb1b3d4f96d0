package mapper

import (
	"time"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/model"

	"gorm.io/gorm"
)

type StoryMapper struct{}

func NewStoryMapper() *StoryMapper {
	return &StoryMapper{}
}

func (m *StoryMapper) ToEntity(s *model.Story) *entity.Story {
	if s == nil {
		return nil
	}

	var deletedAt *time.Time
	if s.DeletedAt.Valid {
		t := s.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Story{
		Id:           s.Id,
		ProjectId:    s.ProjectId,
		TellerId:     s.TellerId,
		Title:        s.Title,
		Content:      s.Content,
		PromptId:     s.PromptId,
		UserPromptId: s.UserPromptId,
		AudioURL:     s.AudioURL,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    s.DeletedAt.Valid,
	}
}

func (m *StoryMapper) ToModel(s *entity.Story) *model.Story {
	if s == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if s.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *s.DeletedAt, Valid: true}
	} else if s.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Story{
		Id:           s.Id,
		ProjectId:    s.ProjectId,
		TellerId:     s.TellerId,
		Title:        s.Title,
		Content:      s.Content,
		PromptId:     s.PromptId,
		UserPromptId: s.UserPromptId,
		AudioURL:     s.AudioURL,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}

func (m *StoryMapper) ToEntities(stories []*model.Story) []*entity.Story {
	entities := make([]*entity.Story, len(stories))
	for i, s := range stories {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

func (m *StoryMapper) InteractionToEntity(i *model.Interaction) *entity.Interaction {
	if i == nil {
		return nil
	}
	return &entity.Interaction{
		Id:        i.Id,
		StoryId:   i.StoryId,
		ProjectId: i.ProjectId,
		AuthorId:  i.AuthorId,
		Kind:      entity.InteractionKind(i.Kind),
		Content:   i.Content,
		CreatedAt: i.CreatedAt,
	}
}

func (m *StoryMapper) InteractionToModel(i *entity.Interaction) *model.Interaction {
	if i == nil {
		return nil
	}
	return &model.Interaction{
		Id:        i.Id,
		StoryId:   i.StoryId,
		ProjectId: i.ProjectId,
		AuthorId:  i.AuthorId,
		Kind:      string(i.Kind),
		Content:   i.Content,
		CreatedAt: i.CreatedAt,
	}
}

func (m *StoryMapper) InteractionsToEntities(interactions []*model.Interaction) []*entity.Interaction {
	entities := make([]*entity.Interaction, len(interactions))
	for i, it := range interactions {
		entities[i] = m.InteractionToEntity(it)
	}
	return entities
}
