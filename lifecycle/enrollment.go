package lifecycle

import (
	"errors"
	"log"
	"time"

	"lms/models"
	courseModels "lms/models/course"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	// ErrNotFound means the course or checkout reference does not exist.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyEnrolled means a PENDING or ACTIVE enrollment already exists.
	ErrAlreadyEnrolled = errors.New("already enrolled")
	// ErrPaymentMismatch means the confirmed amount does not match the price.
	ErrPaymentMismatch = errors.New("payment amount mismatch")
	// ErrConflictingTransition means the enrollment is in a state the
	// requested transition cannot leave (e.g. confirming a FAILED purchase).
	ErrConflictingTransition = errors.New("conflicting transition")
)

// IntentCreator registers a payment intent with the external provider.
type IntentCreator interface {
	CreateIntent(checkoutRef string, userID, courseID, amountCents uint) (string, error)
}

// Service drives the enrollment/payment state machine:
//
//	NOT_ENROLLED -> PENDING -> {ACTIVE, FAILED}
//	ACTIVE -> CANCELLED
//
// Transitions out of PENDING are conditional updates keyed by checkout
// reference, so a duplicated webhook delivery produces at most one
// transition.
type Service struct {
	db      *gorm.DB
	gateway IntentCreator
}

func NewService(db *gorm.DB, gateway IntentCreator) *Service {
	return &Service{db: db, gateway: gateway}
}

// PurchaseResult is returned by InitiatePurchase.
type PurchaseResult struct {
	Enrollment  *courseModels.Enrollment
	CheckoutRef string
}

// InitiatePurchase creates a PENDING enrollment for a published course and
// requests a payment intent. Free courses activate immediately with no
// intent. A FAILED or CANCELLED enrollment is revived through the same path.
func (s *Service) InitiatePurchase(userID, courseID uint) (*PurchaseResult, error) {
	var c courseModels.Course
	err := s.db.Where("id = ? AND is_deleted = false AND is_published = true", courseID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	checkoutRef := uuid.NewString()
	status := courseModels.EnrollmentPending
	var activatedAt *time.Time
	if c.Free() {
		now := time.Now()
		status = courseModels.EnrollmentActive
		activatedAt = &now
	}

	var existing courseModels.Enrollment
	err = s.db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).First(&existing).Error
	switch {
	case err == nil:
		if existing.Status == courseModels.EnrollmentPending || existing.Status == courseModels.EnrollmentActive {
			return nil, ErrAlreadyEnrolled
		}
		// Revive a FAILED/CANCELLED enrollment under a fresh checkout ref.
		// Conditional on the old status so concurrent revivals race safely.
		res := s.db.Model(&courseModels.Enrollment{}).
			Where("id = ? AND status = ?", existing.ID, existing.Status).
			Updates(map[string]interface{}{
				"status":       status,
				"checkout_ref": checkoutRef,
				"activated_at": activatedAt,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, ErrAlreadyEnrolled
		}
		existing.Status = status
		existing.CheckoutRef = checkoutRef
		existing.ActivatedAt = activatedAt
		if !c.Free() {
			if err := s.createIntent(&existing, &c); err != nil {
				return nil, err
			}
		}
		return &PurchaseResult{Enrollment: &existing, CheckoutRef: checkoutRef}, nil

	case errors.Is(err, gorm.ErrRecordNotFound):
		enrollment := courseModels.Enrollment{
			UserID:      userID,
			CourseID:    courseID,
			Status:      status,
			CheckoutRef: checkoutRef,
			ActivatedAt: activatedAt,
		}
		if err := s.db.Create(&enrollment).Error; err != nil {
			// A concurrent first purchase that won the insert race leaves
			// this one failing the (user_id, course_id) unique index.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, ErrAlreadyEnrolled
			}
			return nil, err
		}
		if !c.Free() {
			if err := s.createIntent(&enrollment, &c); err != nil {
				return nil, err
			}
		}
		return &PurchaseResult{Enrollment: &enrollment, CheckoutRef: checkoutRef}, nil

	default:
		return nil, err
	}
}

// createIntent records the payment row and registers the intent with the
// provider. A gateway failure is logged but leaves the PENDING enrollment in
// place; the provider retries inside its own window.
func (s *Service) createIntent(e *courseModels.Enrollment, c *courseModels.Course) error {
	payment := models.Payment{
		UserID:      e.UserID,
		CourseID:    e.CourseID,
		CheckoutRef: e.CheckoutRef,
		AmountCents: c.PriceCents,
		Status:      models.PaymentPending,
	}
	if err := s.db.Create(&payment).Error; err != nil {
		return err
	}
	if s.gateway == nil {
		return nil
	}
	sessionID, err := s.gateway.CreateIntent(e.CheckoutRef, e.UserID, e.CourseID, c.PriceCents)
	if err != nil {
		log.Printf("[LIFECYCLE] Payment intent for %s not registered: %v", e.CheckoutRef, err)
		return nil
	}
	return s.db.Model(&models.Payment{}).
		Where("checkout_ref = ?", e.CheckoutRef).
		Update("gateway_id", sessionID).Error
}

// ConfirmPayment applies a verified payment confirmation. A matching amount
// moves PENDING -> ACTIVE; a mismatch moves PENDING -> FAILED and returns
// ErrPaymentMismatch. Confirming an already-ACTIVE enrollment is an
// idempotent no-op returning the existing state. The transition out of
// PENDING is a conditional update, so concurrent duplicate deliveries commit
// exactly one transition.
func (s *Service) ConfirmPayment(checkoutRef string, amountCents uint) (*courseModels.Enrollment, error) {
	var e courseModels.Enrollment
	err := s.db.Where("checkout_ref = ? AND is_deleted = false", checkoutRef).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if e.Status == courseModels.EnrollmentActive {
		return &e, nil
	}
	if e.Status != courseModels.EnrollmentPending {
		return &e, ErrConflictingTransition
	}

	var c courseModels.Course
	if err := s.db.Where("id = ?", e.CourseID).First(&c).Error; err != nil {
		return nil, err
	}

	if amountCents != c.PriceCents {
		res := s.db.Model(&courseModels.Enrollment{}).
			Where("checkout_ref = ? AND status = ?", checkoutRef, courseModels.EnrollmentPending).
			Update("status", courseModels.EnrollmentFailed)
		if res.Error != nil {
			return nil, res.Error
		}
		if err := s.db.Model(&models.Payment{}).
			Where("checkout_ref = ? AND status = ?", checkoutRef, models.PaymentPending).
			Update("status", models.PaymentFailed).Error; err != nil {
			log.Printf("[LIFECYCLE] Payment row for %s not marked FAILED: %v", checkoutRef, err)
		}
		if res.RowsAffected == 0 {
			return s.reloadAfterLostRace(checkoutRef)
		}
		e.Status = courseModels.EnrollmentFailed
		return &e, ErrPaymentMismatch
	}

	now := time.Now()
	res := s.db.Model(&courseModels.Enrollment{}).
		Where("checkout_ref = ? AND status = ?", checkoutRef, courseModels.EnrollmentPending).
		Updates(map[string]interface{}{
			"status":       courseModels.EnrollmentActive,
			"activated_at": &now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return s.reloadAfterLostRace(checkoutRef)
	}

	if err := s.db.Model(&models.Payment{}).
		Where("checkout_ref = ? AND status = ?", checkoutRef, models.PaymentPending).
		Update("status", models.PaymentCompleted).Error; err != nil {
		return nil, err
	}

	e.Status = courseModels.EnrollmentActive
	e.ActivatedAt = &now
	return &e, nil
}

// reloadAfterLostRace re-reads an enrollment whose conditional update matched
// no rows. A concurrent delivery won; ACTIVE is the idempotent-success case.
func (s *Service) reloadAfterLostRace(checkoutRef string) (*courseModels.Enrollment, error) {
	var e courseModels.Enrollment
	if err := s.db.Where("checkout_ref = ?", checkoutRef).First(&e).Error; err != nil {
		return nil, err
	}
	if e.Status == courseModels.EnrollmentActive {
		return &e, nil
	}
	return &e, ErrConflictingTransition
}

// CancelEnrollment moves an ACTIVE enrollment to CANCELLED.
func (s *Service) CancelEnrollment(userID, courseID uint) (*courseModels.Enrollment, error) {
	var e courseModels.Enrollment
	err := s.db.Where("user_id = ? AND course_id = ? AND is_deleted = false", userID, courseID).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	res := s.db.Model(&courseModels.Enrollment{}).
		Where("id = ? AND status = ?", e.ID, courseModels.EnrollmentActive).
		Update("status", courseModels.EnrollmentCancelled)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return &e, ErrConflictingTransition
	}
	e.Status = courseModels.EnrollmentCancelled
	return &e, nil
}

// CheckAccess reports whether the user may consume the course's content:
// ACTIVE enrollment, zero price, course ownership, or the ADMIN role.
// Visibility toggles do not revoke existing enrollments.
func (s *Service) CheckAccess(userID, courseID uint) (bool, error) {
	var c courseModels.Course
	err := s.db.Where("id = ? AND is_deleted = false", courseID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, ErrNotFound
	}
	if err != nil {
		return false, err
	}

	if c.Free() || c.OwnerID == userID {
		return true, nil
	}

	var u models.User
	if err := s.db.Where("id = ? AND is_deleted = false", userID).First(&u).Error; err == nil {
		if u.Role == models.RoleAdmin {
			return true, nil
		}
	}

	var count int64
	err = s.db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND status = ? AND is_deleted = false",
			userID, courseID, courseModels.EnrollmentActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
