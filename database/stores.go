package database

import (
	"errors"

	"lms/guards"
	"lms/models"
	courseModels "lms/models/course"

	"gorm.io/gorm"
)

// Resource kinds understood by the owner store.
const (
	KindCourse = "course"
	KindModule = "module"
	KindLesson = "lesson"
)

// Stores adapts the GORM connection to the lookup interfaces the guard
// chain consumes.
type Stores struct {
	Db *gorm.DB
}

func NewStores(db *gorm.DB) *Stores {
	return &Stores{Db: db}
}

// FindActiveSubscription returns the user's ACTIVE subscription, or nil when
// none exists. Expiry is left to the caller so the decision uses its clock.
func (s *Stores) FindActiveSubscription(userID uint) (*models.Subscription, error) {
	var sub models.Subscription
	err := s.Db.Where("user_id = ? AND status = ? AND is_deleted = false", userID, models.SubscriptionActive).
		Order("created_at desc").First(&sub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ResourceOwner resolves the owning user of a course, module or lesson.
// Modules and lessons are owned through their course.
func (s *Stores) ResourceOwner(kind string, id uint) (uint, error) {
	switch kind {
	case KindCourse:
		var c courseModels.Course
		if err := s.Db.Where("id = ? AND is_deleted = false", id).First(&c).Error; err != nil {
			return 0, ownerLookupErr(err)
		}
		return c.OwnerID, nil
	case KindModule:
		var m courseModels.Module
		if err := s.Db.Where("id = ? AND is_deleted = false", id).First(&m).Error; err != nil {
			return 0, ownerLookupErr(err)
		}
		return s.ResourceOwner(KindCourse, m.CourseID)
	case KindLesson:
		var l courseModels.Lesson
		if err := s.Db.Where("id = ? AND is_deleted = false", id).First(&l).Error; err != nil {
			return 0, ownerLookupErr(err)
		}
		return s.ResourceOwner(KindModule, l.ModuleID)
	default:
		return 0, guards.ErrNotFound
	}
}

func ownerLookupErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return guards.ErrNotFound
	}
	return err
}
