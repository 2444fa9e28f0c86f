package models

import (
	"time"

	"gorm.io/gorm"
)

// Role enum values
const (
	RoleStudent    = "STUDENT"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	Name            string     `gorm:"default:''" json:"name"`
	Email           string     `gorm:"unique;not null" json:"email"`
	Role            string     `gorm:"default:'STUDENT'" json:"role"` // STUDENT, INSTRUCTOR, ADMIN
	Password        string     `gorm:"not null" json:"-"`
	GoogleID        *string    `gorm:"uniqueIndex" json:"-"` // set for OAuth-created accounts
	IsEmailVerified bool       `gorm:"default:false" json:"is_email_verified"`
	LastLogin       *time.Time `json:"last_login"`
	IsDeleted       bool       `gorm:"default:false" json:"-"`
}
