package model

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionPlan struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name            string    `gorm:"type:varchar(100);not null"`
	Slug            string    `gorm:"type:varchar(100);uniqueIndex;not null"`
	Description     string    `gorm:"type:text"`
	Price           float64   `gorm:"not null;default:0"`
	TaxRate         float64   `gorm:"not null;default:0"`
	BillingPeriod   string    `gorm:"type:varchar(20);not null;default:'monthly'"`
	MaxProjects     int       `gorm:"not null;default:1"`
	MaxStorytellers int       `gorm:"not null;default:5"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
}

func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

type Subscription struct {
	Id              uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID  `gorm:"type:uuid;not null;index"`
	PlanId          uuid.UUID  `gorm:"type:uuid;not null"`
	Status          string     `gorm:"type:varchar(20);not null;default:'pending'"`
	MidtransOrderId *string    `gorm:"type:varchar(100);index"`
	StartsAt        *time.Time `gorm:""`
	EndsAt          *time.Time `gorm:""`
	CreatedAt       time.Time  `gorm:"autoCreateTime"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}
