package models

import (
	"gorm.io/gorm"
)

// Feature identifiers. FeatureAll ('*') enables every feature for a role.
const (
	FeatureAll                = "*"
	FeatureViewCourses        = "view-courses"
	FeatureEnrollCourses      = "enroll-courses"
	FeatureCreateCourses      = "create-courses"
	FeatureManageCourses      = "manage-courses"
	FeatureManageFeatureFlags = "manage-feature-flags"
	FeatureManageSubs         = "manage-subscriptions"
)

// FeatureFlag maps a role to a single enabled feature. The set of rows for a
// role is its enabled feature set.
type FeatureFlag struct {
	gorm.Model
	Role    string `gorm:"not null;index:idx_role_feature,unique" json:"role"`
	Feature string `gorm:"not null;index:idx_role_feature,unique" json:"feature"`
}
