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

// SetupAdminCourseRoutes sets up course authoring routes for instructors and admins.
func SetupAdminCourseRoutes(app *fiber.App, registry *features.Registry, stores *database.Stores) {
	createChain := guards.Chain{
		guards.Authenticated{},
		guards.HasRole{Allowed: []string{models.RoleInstructor, models.RoleAdmin}},
		guards.HasFeature{Registry: registry, Feature: models.FeatureCreateCourses},
		guards.HasActiveSubscription{Store: stores},
	}
	manageCourse := guards.Chain{
		guards.Authenticated{},
		guards.HasFeature{Registry: registry, Feature: models.FeatureManageCourses},
		guards.IsResourceOwner{Store: stores, Kind: database.KindCourse},
	}
	manageModule := guards.Chain{
		guards.Authenticated{},
		guards.HasFeature{Registry: registry, Feature: models.FeatureManageCourses},
		guards.IsResourceOwner{Store: stores, Kind: database.KindModule},
	}
	manageLesson := guards.Chain{
		guards.Authenticated{},
		guards.HasFeature{Registry: registry, Feature: models.FeatureManageCourses},
		guards.IsResourceOwner{Store: stores, Kind: database.KindLesson},
	}
	listChain := guards.Chain{
		guards.Authenticated{},
		guards.HasRole{Allowed: []string{models.RoleInstructor, models.RoleAdmin}},
	}

	adminGroup := app.Group("/admin/course")

	// Course CRUD
	adminGroup.Post("/create", middleware.JWTMiddleware, middleware.Protect(createChain), validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Get("/list", middleware.JWTMiddleware, middleware.Protect(listChain), validators.CourseList(), controllers.GetOwnedCourses)
	adminGroup.Put("/:id", middleware.JWTMiddleware, middleware.Protect(manageCourse), validators.UpdateCourse(), controllers.UpdateCourse)
	adminGroup.Delete("/:id", middleware.JWTMiddleware, middleware.Protect(manageCourse), controllers.DeleteCourse)
	adminGroup.Post("/:id/publish", middleware.JWTMiddleware, middleware.Protect(manageCourse), controllers.ToggleVisibility)

	// Module management (ownership resolves through the parent course)
	adminGroup.Post("/:id/module", middleware.JWTMiddleware, middleware.Protect(manageCourse), validators.CreateModule(), controllers.CreateModule)

	moduleGroup := app.Group("/admin/module")
	moduleGroup.Put("/:id", middleware.JWTMiddleware, middleware.Protect(manageModule), validators.CreateModule(), controllers.UpdateModule)
	moduleGroup.Delete("/:id", middleware.JWTMiddleware, middleware.Protect(manageModule), controllers.DeleteModule)
	moduleGroup.Post("/:id/lesson", middleware.JWTMiddleware, middleware.Protect(manageModule), validators.CreateLesson(), controllers.CreateLesson)

	// Lesson management
	lessonGroup := app.Group("/admin/lesson")
	lessonGroup.Put("/:id", middleware.JWTMiddleware, middleware.Protect(manageLesson), validators.CreateLesson(), controllers.UpdateLesson)
	lessonGroup.Delete("/:id", middleware.JWTMiddleware, middleware.Protect(manageLesson), controllers.DeleteLesson)
}
