package main

import (
	"log"

	"lms/config"
	courseControllers "lms/controllers/course"
	featureControllers "lms/controllers/feature"
	paymentControllers "lms/controllers/payment"
	"lms/database"
	"lms/features"
	"lms/lifecycle"
	"lms/payments"
	authRoutes "lms/routers/authRoutes"
	courseRoutes "lms/routers/courseRoutes"
	featureRoutes "lms/routers/featureRoutes"
	paymentRoutes "lms/routers/paymentRoutes"
	subscriptionRoutes "lms/routers/subscriptionRoutes"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func main() {
	config.LoadConfig()
	database.ConnectDb()

	db := database.Database.Db

	registry, err := features.LoadRegistry(db)
	if err != nil {
		log.Fatalf("[FEATURES] Failed to load feature registry: %v", err)
	}

	stores := database.NewStores(db)
	lifecycleService := lifecycle.NewService(db, payments.NewGateway())

	courseControllers.InitLifecycle(lifecycleService)
	paymentControllers.InitLifecycle(lifecycleService)
	featureControllers.InitRegistry(registry)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",        // Allowed HTTP methods
		AllowHeaders: "Content-Type,Authorization", // Allowed headers
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app, registry, stores)
	courseRoutes.SetupAdminCourseRoutes(app, registry, stores)
	paymentRoutes.SetupPaymentRoutes(app)
	featureRoutes.SetupFeatureRoutes(app, registry)
	subscriptionRoutes.SetupSubscriptionRoutes(app)

	utils.InitializeSubscriptionScheduler()

	log.Printf("Server is running on port %s", config.AppConfig.Port)
	log.Fatal(app.Listen(":" + config.AppConfig.Port))
}
