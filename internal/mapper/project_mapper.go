package mapper

import (
	"time"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/model"

	"gorm.io/gorm"
)

type ProjectMapper struct{}

func NewProjectMapper() *ProjectMapper {
	return &ProjectMapper{}
}

func (m *ProjectMapper) ToEntity(p *model.Project) *entity.Project {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Project{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		CoverURL:    p.CoverURL,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
		IsDeleted:   p.DeletedAt.Valid,
	}
}

func (m *ProjectMapper) ToModel(p *entity.Project) *model.Project {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Project{
		Id:          p.Id,
		Name:        p.Name,
		Description: p.Description,
		CoverURL:    p.CoverURL,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   updatedAt,
		DeletedAt:   deletedAt,
	}
}

func (m *ProjectMapper) ToEntities(projects []*model.Project) []*entity.Project {
	entities := make([]*entity.Project, len(projects))
	for i, p := range projects {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

func (m *ProjectMapper) MemberToEntity(pm *model.ProjectMember) *entity.ProjectMember {
	if pm == nil {
		return nil
	}

	var updatedAt *time.Time
	if !pm.UpdatedAt.IsZero() {
		t := pm.UpdatedAt
		updatedAt = &t
	}

	return &entity.ProjectMember{
		Id:        pm.Id,
		ProjectId: pm.ProjectId,
		UserId:    pm.UserId,
		Role:      entity.MemberRole(pm.Role),
		Status:    entity.MemberStatus(pm.Status),
		InvitedBy: pm.InvitedBy,
		CreatedAt: pm.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ProjectMapper) MemberToModel(pm *entity.ProjectMember) *model.ProjectMember {
	if pm == nil {
		return nil
	}

	var updatedAt time.Time
	if pm.UpdatedAt != nil {
		updatedAt = *pm.UpdatedAt
	}

	return &model.ProjectMember{
		Id:        pm.Id,
		ProjectId: pm.ProjectId,
		UserId:    pm.UserId,
		Role:      string(pm.Role),
		Status:    string(pm.Status),
		InvitedBy: pm.InvitedBy,
		CreatedAt: pm.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ProjectMapper) MembersToEntities(members []*model.ProjectMember) []*entity.ProjectMember {
	entities := make([]*entity.ProjectMember, len(members))
	for i, pm := range members {
		entities[i] = m.MemberToEntity(pm)
	}
	return entities
}
