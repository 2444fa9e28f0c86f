package models

import (
	"time"

	"gorm.io/gorm"
)

// SubscriptionStatus enum values
const (
	SubscriptionActive    = "ACTIVE"
	SubscriptionExpired   = "EXPIRED"
	SubscriptionCancelled = "CANCELLED"
)

// SubscriptionPlan enum values
const (
	PlanMonthly = "MONTHLY"
	PlanYearly  = "YEARLY"
)

// Subscription tracks a user's platform subscription
type Subscription struct {
	gorm.Model
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Plan         string     `gorm:"type:varchar(20);default:'MONTHLY'" json:"plan"` // MONTHLY or YEARLY
	Status       string     `gorm:"not null;type:varchar(20);default:'ACTIVE'" json:"status"`
	SubscribedAt time.Time  `gorm:"not null" json:"subscribed_at"`
	ExpiresAt    *time.Time `json:"expires_at"`
	ReminderSent bool       `gorm:"default:false" json:"reminder_sent"` // Track if expiry reminder was sent
	IsDeleted    bool       `gorm:"default:false" json:"-"`
}
