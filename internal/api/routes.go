package api

import (
	"net/http"
	"nutrivida/clinic-app/internal/domain" // Needed for RoleMiddleware
	"nutrivida/clinic-app/internal/service"

	"github.com/gin-gonic/gin"
	// swaggerFiles "github.com/swaggo/files"
	// ginSwagger "github.com/swaggo/gin-swagger"
)

func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	patientService service.PatientService,
	planService service.PlanService,
	mealService service.MealService,
	progressService service.ProgressService,
	appointmentService service.AppointmentService,
	recipeService service.RecipeService,
	notificationService service.NotificationService,
	superadminService service.SuperadminService,
) {

	authHandler := NewAuthHandler(authService)
	patientHandler := NewPatientHandler(patientService)
	planHandler := NewPlanHandler(planService)
	menuHandler := NewMenuHandler(planService)
	mealHandler := NewMealHandler(mealService)
	progressHandler := NewProgressHandler(progressService)
	appointmentHandler := NewAppointmentHandler(appointmentService)
	recipeHandler := NewRecipeHandler(recipeService)
	notificationHandler := NewNotificationHandler(notificationService)
	superadminHandler := NewSuperadminHandler(superadminService)

	authMiddleware := AuthMiddleware(jwtSecret)
	staffOnly := RoleMiddleware(domain.RoleAdmin, domain.RoleSuperadmin)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/forgot-password", authHandler.ForgotPassword)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		protected.GET("/dashboard", progressHandler.GetDashboard)

		// --- Patient Routes ---
		patientGroup := protected.Group("/patients")
		{
			patientGroup.GET("", staffOnly, patientHandler.GetPatients)
			patientGroup.POST("", staffOnly, patientHandler.CreatePatient)
			patientGroup.GET("/stats", staffOnly, patientHandler.GetStats)
			patientGroup.GET("/by-email", staffOnly, patientHandler.GetPatientByEmail)
			patientGroup.GET("/:patientId", patientHandler.GetPatient)
			patientGroup.PUT("/:patientId", patientHandler.UpdateProfile)
			patientGroup.DELETE("/:patientId", staffOnly, patientHandler.DeletePatient)
			patientGroup.POST("/:patientId/photo/upload-url", patientHandler.RequestPhotoUpload)
			patientGroup.POST("/:patientId/photo/confirm", patientHandler.ConfirmPhotoUpload)
			patientGroup.GET("/:patientId/photo", patientHandler.GetPhotoURL)
			patientGroup.POST("/:patientId/change-menu", staffOnly, planHandler.ChangeMenu)
			patientGroup.GET("/:patientId/assignments/active", planHandler.GetActiveAssignment)
			patientGroup.GET("/:patientId/assignments/history", planHandler.GetAssignmentHistory)
		}

		// --- Meal Plan Routes (staff manage, patients read) ---
		planGroup := protected.Group("/plans")
		{
			planGroup.GET("", planHandler.GetPlans)
			planGroup.GET("/:planId", planHandler.GetPlan)
			planGroup.POST("", staffOnly, planHandler.CreatePlan)
			planGroup.PUT("/:planId", staffOnly, planHandler.UpdatePlan)
			planGroup.DELETE("/:planId", staffOnly, planHandler.DeletePlan)
			planGroup.POST("/:planId/menus", staffOnly, planHandler.CreateWeeklyMenu)
			planGroup.GET("/:planId/menus", planHandler.GetWeeklyMenus)
		}

		// --- Menu Template Routes ---
		menuGroup := protected.Group("/menus", staffOnly)
		{
			menuGroup.POST("", menuHandler.CreateTemplate)
			menuGroup.GET("", menuHandler.GetTemplates)
			menuGroup.GET("/categories", menuHandler.GetCategories)
			menuGroup.GET("/:menuId", menuHandler.GetTemplate)
			menuGroup.PUT("/:menuId", menuHandler.UpdateTemplate)
			menuGroup.DELETE("/:menuId", menuHandler.DeleteTemplate)
			menuGroup.POST("/:menuId/duplicate", menuHandler.DuplicateTemplate)
			menuGroup.GET("/:menuId/stats", menuHandler.GetTemplateStats)
		}

		// --- Assignment Routes ---
		assignmentGroup := protected.Group("/assignments")
		{
			assignmentGroup.POST("", staffOnly, planHandler.AssignPlan)
			assignmentGroup.PATCH("/:assignmentId/status", staffOnly, planHandler.UpdateAssignmentStatus)
			assignmentGroup.DELETE("/:assignmentId", staffOnly, planHandler.DeleteAssignment)
		}

		// --- Meal Tracking Routes ---
		mealGroup := protected.Group("/meals")
		{
			mealGroup.GET("/water", mealHandler.GetWater)
			mealGroup.PUT("/water", mealHandler.SetWater)
			mealGroup.POST("/foods", mealHandler.AddFood)
			mealGroup.GET("/foods/search", mealHandler.SearchFoods)
			mealGroup.POST("/foods/custom", mealHandler.CreateCustomFood)
			mealGroup.POST("/foods/:foodId/toggle", mealHandler.ToggleFood)
			mealGroup.DELETE("/foods/:foodId", mealHandler.RemoveFood)
			mealGroup.GET("/:patientId", mealHandler.GetDayMeals)
			mealGroup.GET("/:patientId/detailed", mealHandler.GetDetailedMeals)
			mealGroup.POST("/:patientId/initialize", mealHandler.InitializeDay)
		}

		// --- Progress Routes ---
		progressGroup := protected.Group("/progress")
		{
			progressGroup.GET("/patients", staffOnly, progressHandler.GetPatientsProgress)
			progressGroup.DELETE("/notes/:noteId", staffOnly, progressHandler.DeleteNote)
			progressGroup.DELETE("/achievements/:achievementId", staffOnly, progressHandler.DeleteAchievement)
			progressGroup.GET("/:patientId", progressHandler.GetProgressDetails)
			progressGroup.POST("/:patientId/metrics", progressHandler.CreateMetric)
			progressGroup.GET("/:patientId/metrics", progressHandler.GetMetrics)
			progressGroup.DELETE("/:patientId/metrics/:metricId", progressHandler.DeleteMetric)
			progressGroup.POST("/:patientId/achievements", staffOnly, progressHandler.CreateAchievement)
			progressGroup.GET("/:patientId/achievements", progressHandler.GetAchievements)
			progressGroup.POST("/:patientId/notes", staffOnly, progressHandler.CreateNote)
			progressGroup.GET("/:patientId/notes", staffOnly, progressHandler.GetNotes)
		}

		// --- Appointment Routes ---
		appointmentGroup := protected.Group("/appointments")
		{
			appointmentGroup.POST("", appointmentHandler.CreateAppointment)
			appointmentGroup.GET("", staffOnly, appointmentHandler.GetAllAppointments)
			appointmentGroup.GET("/me", appointmentHandler.GetMyAppointments)
			appointmentGroup.GET("/available", appointmentHandler.GetAvailableSlots)
			appointmentGroup.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentGroup.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
			appointmentGroup.DELETE("/:id", staffOnly, appointmentHandler.DeleteAppointment)
		}

		// --- Recipe Routes ---
		recipeGroup := protected.Group("/recipes")
		{
			recipeGroup.GET("", recipeHandler.GetRecipes)
			recipeGroup.GET("/favorites", recipeHandler.GetFavorites)
			recipeGroup.GET("/:id", recipeHandler.GetRecipe)
			recipeGroup.POST("", staffOnly, recipeHandler.CreateRecipe)
			recipeGroup.PUT("/:id", staffOnly, recipeHandler.UpdateRecipe)
			recipeGroup.DELETE("/:id", staffOnly, recipeHandler.DeleteRecipe)
			recipeGroup.POST("/:id/favorite", recipeHandler.ToggleFavorite)
		}

		// --- Notification Routes ---
		notificationGroup := protected.Group("/notifications")
		{
			notificationGroup.GET("", notificationHandler.GetNotifications)
			notificationGroup.GET("/unread-count", notificationHandler.GetUnreadCount)
			notificationGroup.PATCH("/read-all", notificationHandler.MarkAllNotificationsRead)
			notificationGroup.PATCH("/:id/read", notificationHandler.MarkNotificationRead)
			notificationGroup.DELETE("/:id", notificationHandler.DeleteNotification)
		}

		// --- Message Routes ---
		messageGroup := protected.Group("/messages")
		{
			messageGroup.POST("", notificationHandler.SendMessage)
			messageGroup.GET("", notificationHandler.GetConversations)
			messageGroup.GET("/unread-count", notificationHandler.GetUnreadMessageCount)
			messageGroup.GET("/:partnerId", notificationHandler.GetConversation)
		}

		// --- Superadmin Routes ---
		superadminGroup := protected.Group("/superadmin", RoleMiddleware(domain.RoleSuperadmin))
		{
			superadminGroup.GET("/users", superadminHandler.GetUsers)
			superadminGroup.POST("/users", superadminHandler.CreateStaffUser)
			superadminGroup.PATCH("/users/:id/status", superadminHandler.SetUserStatus)
			superadminGroup.PATCH("/users/:id/role", superadminHandler.SetUserRole)
			superadminGroup.DELETE("/users/:id", superadminHandler.DeleteUser)
			superadminGroup.GET("/stats", superadminHandler.GetSystemStats)
		}
	}
}
