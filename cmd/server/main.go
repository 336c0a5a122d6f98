package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"nutrivida/clinic-app/internal/api"
	"nutrivida/clinic-app/internal/config"
	"nutrivida/clinic-app/internal/repository/mongo"
	"nutrivida/clinic-app/internal/service"
	"nutrivida/clinic-app/internal/storage"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// @title NutriVida Clinic API
// @version 1.0
// @description API for managing patients, meal plans, menus, tracking and appointments.
// @contact.name API Support
// @contact.email support@example.com
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	log.Println("Starting NutriVida Clinic Server...")

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	dbClient, err := mongo.ConnectDB(cfg.Database.URI)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to MongoDB: %v", err)
	}
	defer func() {
		log.Println("Disconnecting MongoDB...")
		if err := mongo.DisconnectDB(dbClient); err != nil {
			log.Printf("ERROR: Failed to disconnect MongoDB: %v", err)
		}
	}()
	appDB := dbClient.Database(cfg.Database.Name)
	log.Println("Database connection established.")

	// --- Ensure Indexes ---
	log.Println("Ensuring database indexes...")
	go func() { // Run index creation concurrently/in background
		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
		defer cancel()
		mongo.EnsureUserIndexes(ctx, appDB.Collection("users"))
		mongo.EnsureAssignmentIndexes(ctx, appDB.Collection("plan_assignments"))
		mongo.EnsureWeeklyMenuIndexes(ctx, appDB.Collection("weekly_menus"))
		mongo.EnsureDailyMealIndexes(ctx, appDB.Collection("daily_meal_assignments"))
		mongo.EnsureTrackingIndexes(ctx, appDB)
		mongo.EnsureProgressIndexes(ctx, appDB)
		mongo.EnsureAppointmentIndexes(ctx, appDB.Collection("appointments"))
		mongo.EnsureWaterIndexes(ctx, appDB.Collection("water_tracking"))
		mongo.EnsureRecipeIndexes(ctx, appDB)
		mongo.EnsureNotificationIndexes(ctx, appDB.Collection("notifications"))
		mongo.EnsureMessageIndexes(ctx, appDB.Collection("messages"))
		log.Println("Index creation process completed.")
	}()

	// --- Initialize Storage ---
	log.Println("Initializing file storage service...")
	fileStorage, err := storage.NewS3Storage(cfg.S3)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize S3 storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := mongo.NewMongoUserRepository(appDB)
	planRepo := mongo.NewMongoMealPlanRepository(appDB)
	weeklyMenuRepo := mongo.NewMongoWeeklyMenuRepository(appDB)
	templateRepo := mongo.NewMongoMenuTemplateRepository(appDB)
	assignmentRepo := mongo.NewMongoAssignmentRepository(appDB)
	dailyMealRepo := mongo.NewMongoDailyMealRepository(appDB)
	trackingRepo := mongo.NewMongoTrackingRepository(appDB)
	waterRepo := mongo.NewMongoWaterRepository(appDB)
	customFoodRepo := mongo.NewMongoCustomFoodRepository(appDB)
	progressRepo := mongo.NewMongoProgressRepository(appDB)
	appointmentRepo := mongo.NewMongoAppointmentRepository(appDB)
	recipeRepo := mongo.NewMongoRecipeRepository(appDB)
	notificationRepo := mongo.NewMongoNotificationRepository(appDB)
	messageRepo := mongo.NewMongoMessageRepository(appDB)
	txRunner := mongo.NewMongoTxRunner(dbClient)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, notificationRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	patientService := service.NewPatientService(userRepo, assignmentRepo, dailyMealRepo, appointmentRepo, messageRepo, fileStorage)
	planService := service.NewPlanService(planRepo, weeklyMenuRepo, templateRepo, assignmentRepo, dailyMealRepo, userRepo, notificationRepo, txRunner)
	mealService := service.NewMealService(dailyMealRepo, trackingRepo, waterRepo, customFoodRepo, assignmentRepo, planRepo)
	progressService := service.NewProgressService(progressRepo, trackingRepo, userRepo, assignmentRepo, waterRepo, appointmentRepo)
	appointmentService := service.NewAppointmentService(appointmentRepo, userRepo, notificationRepo)
	recipeService := service.NewRecipeService(recipeRepo)
	notificationService := service.NewNotificationService(notificationRepo, messageRepo, userRepo)
	superadminService := service.NewSuperadminService(userRepo)

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(
		router,
		cfg.JWT.Secret,
		authService,
		patientService,
		planService,
		mealService,
		progressService,
		appointmentService,
		recipeService,
		notificationService,
		superadminService,
	)

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// The context gives in-flight requests 5 seconds to finish
	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
