package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
)

type SubscriptionPlan struct {
	Id              uuid.UUID
	Name            string
	Slug            string
	Description     string
	Price           float64
	TaxRate         float64
	BillingPeriod   string // "monthly" | "yearly"
	MaxProjects     int
	MaxStorytellers int
	CreatedAt       time.Time
}

type Subscription struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	PlanId          uuid.UUID
	Status          SubscriptionStatus
	MidtransOrderId *string
	StartsAt        *time.Time
	EndsAt          *time.Time
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
