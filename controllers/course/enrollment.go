package controllers

import (
	"errors"

	"lms/database"
	"lms/lifecycle"
	"lms/middleware"
	courseModels "lms/models/course"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// Lifecycle drives enrollment/payment transitions. Set once from main.
var Lifecycle *lifecycle.Service

// InitLifecycle wires the enrollment state machine into this package
func InitLifecycle(s *lifecycle.Service) {
	Lifecycle = s
}

// EnrollInCourse starts a purchase: creates a PENDING enrollment and a
// payment intent, or activates immediately for free courses.
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	result, err := Lifecycle.InitiatePurchase(userID, uint(courseID))
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
	case errors.Is(err, lifecycle.ErrAlreadyEnrolled):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Already enrolled in this course!", nil)
	case err != nil:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	response := map[string]interface{}{
		"enrollment":   result.Enrollment,
		"checkout_ref": result.CheckoutRef,
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrollment initiated!", response)
}

// CheckCourseAccess reports whether the caller may consume the course
func CheckCourseAccess(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	allowed, err := Lifecycle.CheckAccess(userID, uint(courseID))
	if errors.Is(err, lifecycle.ErrNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to check access!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Access checked!", fiber.Map{"access": allowed})
}

// CancelEnrollment cancels the caller's ACTIVE enrollment
func CancelEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, err := c.ParamsInt("id")
	if err != nil || courseID < 1 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	enrollment, err := Lifecycle.CancelEnrollment(userID, uint(courseID))
	switch {
	case errors.Is(err, lifecycle.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	case errors.Is(err, lifecycle.ErrConflictingTransition):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Enrollment is not active!", nil)
	case err != nil:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment cancelled!", enrollment)
}

// GetEnrollments lists the caller's enrollments with pagination
func GetEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedList").(*courseValidator.ListRequest)
	if !ok {
		reqData = &courseValidator.ListRequest{Page: 1, Limit: 10}
	}
	offset := (reqData.Page - 1) * reqData.Limit

	db := database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND is_deleted = false", userID)
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	db.Count(&total)

	var enrollments []courseModels.Enrollment
	if err := db.Preload("Course").
		Offset(offset).Limit(reqData.Limit).Order("created_at desc").
		Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  reqData.Page,
			"limit": reqData.Limit,
		},
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}
