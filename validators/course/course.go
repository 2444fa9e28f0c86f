package courseValidator

import (
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// CreateCourseRequest is the validated course-creation body
type CreateCourseRequest struct {
	Title        string `json:"title" validate:"required,min=3"`
	Description  string `json:"description" validate:"required,min=5"`
	PriceCents   uint   `json:"price_cents"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

// UpdateCourseRequest is the validated course-update body; empty fields are
// left unchanged
type UpdateCourseRequest struct {
	Title        string `json:"title" validate:"omitempty,min=3"`
	Description  string `json:"description" validate:"omitempty,min=5"`
	PriceCents   *uint  `json:"price_cents"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

// ModuleRequest is the validated module create/update body
type ModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

// LessonRequest is the validated lesson create/update body
type LessonRequest struct {
	Title      string `json:"title" validate:"required,min=3"`
	Content    string `json:"content"`
	VideoURL   string `json:"video_url" validate:"omitempty,url"`
	OrderIndex int    `json:"order_index" validate:"gte=0"`
}

// ListRequest is the validated pagination query
type ListRequest struct {
	Page  int `query:"page"`
	Limit int `query:"limit"`
}

// CreateCourse validator middleware
func CreateCourse() fiber.Handler {
	return bodyValidator("validatedCourse", func() interface{} { return new(CreateCourseRequest) })
}

// UpdateCourse validator middleware
func UpdateCourse() fiber.Handler {
	return bodyValidator("validatedCourseUpdate", func() interface{} { return new(UpdateCourseRequest) })
}

// CreateModule validator middleware
func CreateModule() fiber.Handler {
	return bodyValidator("validatedModule", func() interface{} { return new(ModuleRequest) })
}

// CreateLesson validator middleware
func CreateLesson() fiber.Handler {
	return bodyValidator("validatedLesson", func() interface{} { return new(LessonRequest) })
}

// CourseList validates pagination query params
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query params!", nil)
		}
		if reqData.Page < 1 {
			reqData.Page = 1
		}
		if reqData.Limit < 1 || reqData.Limit > 100 {
			reqData.Limit = 10
		}
		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func bodyValidator(key string, build func() interface{}) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := build()
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if errs := fieldErrors(validate.Struct(reqData)); len(errs) > 0 {
			return middleware.ValidationErrorResponse(c, errs)
		}
		c.Locals(key, reqData)
		return c.Next()
	}
}

func fieldErrors(err error) map[string]string {
	if err == nil {
		return nil
	}
	errs := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errs[fe.Field()] = "failed on '" + fe.Tag() + "' validation"
		}
		return errs
	}
	errs["request"] = "invalid request"
	return errs
}
