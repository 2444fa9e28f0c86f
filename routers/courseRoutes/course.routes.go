package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/database"
	"lms/features"
	"lms/guards"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course and enrollment routes.
// Each route declares its guard chain explicitly; evaluation stops at the
// first denial.
func SetupCourseRoutes(app *fiber.App, registry *features.Registry, stores *database.Stores) {
	viewCourses := guards.Chain{
		guards.Authenticated{},
		guards.HasFeature{Registry: registry, Feature: models.FeatureViewCourses},
	}
	enrollCourses := guards.Chain{
		guards.Authenticated{},
		guards.HasFeature{Registry: registry, Feature: models.FeatureEnrollCourses},
	}
	authenticated := guards.Chain{guards.Authenticated{}}

	userGroup := app.Group("/course")

	// Catalog (published courses)
	userGroup.Get("/list", middleware.JWTMiddleware, middleware.Protect(viewCourses), validators.CourseList(), controllers.GetAllCourses)
	userGroup.Get("/:id", middleware.JWTMiddleware, middleware.Protect(viewCourses), controllers.GetCourseDetails)

	// Enrollment lifecycle
	userGroup.Post("/:id/enroll", middleware.JWTMiddleware, middleware.Protect(enrollCourses), controllers.EnrollInCourse)
	userGroup.Get("/:id/access", middleware.JWTMiddleware, middleware.Protect(authenticated), controllers.CheckCourseAccess)
	userGroup.Post("/:id/cancel", middleware.JWTMiddleware, middleware.Protect(authenticated), controllers.CancelEnrollment)

	// User enrollments
	enrollGroup := app.Group("/user")
	enrollGroup.Get("/enrollments", middleware.JWTMiddleware, middleware.Protect(viewCourses), validators.CourseList(), controllers.GetEnrollments)
}
