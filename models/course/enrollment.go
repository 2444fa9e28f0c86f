package course

import (
	"time"

	"gorm.io/gorm"
)

// EnrollmentStatus enum values. An enrollment is created PENDING at
// purchase-intent time and moves to ACTIVE or FAILED on payment confirmation.
// ACTIVE enrollments may later be CANCELLED. Records are never hard-deleted.
const (
	EnrollmentPending   = "PENDING"
	EnrollmentActive    = "ACTIVE"
	EnrollmentFailed    = "FAILED"
	EnrollmentCancelled = "CANCELLED"
)

// Enrollment tracks a user's relationship to a course, including payment
// state. One row per (user, course): the composite unique index serializes
// concurrent first purchases, and since rows are never hard-deleted the
// constraint holds across FAILED/CANCELLED revivals too.
type Enrollment struct {
	gorm.Model
	UserID      uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course"`
	CourseID    uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course"`
	Status      string     `json:"status" gorm:"not null;type:varchar(20);default:'PENDING'"`
	CheckoutRef string     `json:"checkout_ref" gorm:"type:varchar(64);uniqueIndex"` // always set, even for free enrollments
	ActivatedAt *time.Time `json:"activated_at"`
	IsDeleted   bool       `gorm:"default:false" json:"-"`

	Course Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
}
