package models

import (
	"gorm.io/gorm"
)

// PaymentStatus enum values
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

// Payment records a payment intent for a course purchase. CheckoutRef
// correlates the record with the gateway session and the enrollment.
type Payment struct {
	gorm.Model
	UserID      uint   `gorm:"not null;index" json:"user_id"`
	CourseID    uint   `gorm:"not null;index" json:"course_id"`
	CheckoutRef string `gorm:"type:varchar(64);uniqueIndex" json:"checkout_ref"`
	AmountCents uint   `gorm:"not null" json:"amount_cents"`
	Status      string `gorm:"not null;type:varchar(20);default:'PENDING'" json:"status"`
	GatewayID   string `gorm:"type:varchar(100)" json:"gateway_id"` // provider session id
}
