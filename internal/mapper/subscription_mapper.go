package mapper

import (
	"time"

	"family-stories-be/internal/entity"
	"family-stories-be/internal/model"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) PlanToEntity(p *model.SubscriptionPlan) *entity.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &entity.SubscriptionPlan{
		Id:              p.Id,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		Price:           p.Price,
		TaxRate:         p.TaxRate,
		BillingPeriod:   p.BillingPeriod,
		MaxProjects:     p.MaxProjects,
		MaxStorytellers: p.MaxStorytellers,
		CreatedAt:       p.CreatedAt,
	}
}

func (m *SubscriptionMapper) PlanToModel(p *entity.SubscriptionPlan) *model.SubscriptionPlan {
	if p == nil {
		return nil
	}
	return &model.SubscriptionPlan{
		Id:              p.Id,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		Price:           p.Price,
		TaxRate:         p.TaxRate,
		BillingPeriod:   p.BillingPeriod,
		MaxProjects:     p.MaxProjects,
		MaxStorytellers: p.MaxStorytellers,
		CreatedAt:       p.CreatedAt,
	}
}

func (m *SubscriptionMapper) PlansToEntities(plans []*model.SubscriptionPlan) []*entity.SubscriptionPlan {
	entities := make([]*entity.SubscriptionPlan, len(plans))
	for i, p := range plans {
		entities[i] = m.PlanToEntity(p)
	}
	return entities
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.Subscription{
		Id:              s.Id,
		UserId:          s.UserId,
		PlanId:          s.PlanId,
		Status:          entity.SubscriptionStatus(s.Status),
		MidtransOrderId: s.MidtransOrderId,
		StartsAt:        s.StartsAt,
		EndsAt:          s.EndsAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.Subscription{
		Id:              s.Id,
		UserId:          s.UserId,
		PlanId:          s.PlanId,
		Status:          string(s.Status),
		MidtransOrderId: s.MidtransOrderId,
		StartsAt:        s.StartsAt,
		EndsAt:          s.EndsAt,
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}
