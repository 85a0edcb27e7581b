package main

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/astracore/crm-backend/internal/config"
	"github.com/astracore/crm-backend/internal/constants"
	"github.com/astracore/crm-backend/internal/database"
	"github.com/astracore/crm-backend/internal/handlers"
	"github.com/astracore/crm-backend/internal/middleware"
	"github.com/astracore/crm-backend/internal/models"
	"github.com/astracore/crm-backend/internal/repository"
	"github.com/astracore/crm-backend/internal/services"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if cfg.GinMode == "release" {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	gin.SetMode(cfg.GinMode)

	if err := database.Connect(cfg); err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(); err != nil {
		logrus.WithError(err).Fatal("failed to run migrations")
	}

	// Repositories
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	leadRepo := repository.NewLeadRepository(db)
	itemRepo := repository.NewLeadItemRepository(db)
	boardRepo := repository.NewBoardRepository(db)

	// Services
	access := services.NewAccessService(userRepo, deptRepo)
	authService := services.NewAuthService(userRepo, cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	userService := services.NewUserService(userRepo, leadRepo, access)
	deptService := services.NewDepartmentService(deptRepo, userRepo, statusRepo, siteRepo)
	statusService := services.NewStatusService(statusRepo, leadRepo, access)
	siteService := services.NewSiteService(siteRepo, access)
	leadService := services.NewLeadService(leadRepo, itemRepo, userRepo, deptRepo, statusRepo, siteRepo, access)
	boardService := services.NewBoardService(boardRepo, deptRepo, userRepo)
	dashboardService := services.NewDashboardService(leadRepo, itemRepo, userRepo, deptRepo, statusRepo, access)

	if err := bootstrapSuperUser(cfg, userRepo); err != nil {
		logrus.WithError(err).Fatal("failed to bootstrap super user")
	}

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	deptHandler := handlers.NewDepartmentHandler(deptService)
	statusHandler := handlers.NewStatusHandler(statusService)
	siteHandler := handlers.NewSiteHandler(siteService, cfg.PublicBaseURL)
	leadHandler := handlers.NewLeadHandler(leadService)
	itemHandler := handlers.NewLeadItemHandler(leadService)
	boardHandler := handlers.NewBoardHandler(boardService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	requireAuth := middleware.RequireAuth(cfg.JWTSecret)
	superOnly := middleware.RequireRole(constants.RoleSuper)
	superOrManager := middleware.RequireRole(constants.RoleSuper, constants.RoleManager)

	api := r.Group("/api/v1")
	{
		// Public surface: widget script and widget submissions.
		api.GET("/sites/:id/widget.js", siteHandler.WidgetScript)
		api.POST("/leads/from-site", leadHandler.CreateFromSite)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", requireAuth, authHandler.Me)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
			users.PATCH("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
			users.GET("/:id/leads", userHandler.UserLeads)
			users.GET("/:id/lead-stats", userHandler.UserLeadStats)
		}

		departments := api.Group("/departments")
		departments.Use(requireAuth)
		{
			departments.POST("", superOnly, deptHandler.CreateDepartment)
			departments.GET("", deptHandler.ListDepartments)
			departments.GET("/:id", deptHandler.GetDepartment)
			departments.PATCH("/:id", deptHandler.UpdateDepartment)
			departments.DELETE("/:id", superOnly, deptHandler.DeleteDepartment)
		}

		statuses := api.Group("/statuses")
		statuses.Use(requireAuth)
		{
			statuses.POST("", statusHandler.CreateStatus)
			statuses.GET("", statusHandler.ListStatuses)
			statuses.GET("/:id", statusHandler.GetStatus)
			statuses.PATCH("/:id", statusHandler.UpdateStatus)
			statuses.DELETE("/:id", statusHandler.DeleteStatus)
		}

		sites := api.Group("/sites")
		sites.Use(requireAuth)
		{
			sites.POST("", siteHandler.CreateSite)
			sites.GET("", siteHandler.ListSites)
			sites.GET("/:id", siteHandler.GetSite)
			sites.PATCH("/:id", siteHandler.UpdateSite)
			sites.DELETE("/:id", siteHandler.DeleteSite)
		}

		leads := api.Group("/leads")
		leads.Use(requireAuth)
		{
			leads.POST("", leadHandler.CreateLead)
			leads.GET("", leadHandler.ListLeads)
			leads.POST("/bulk", superOrManager, leadHandler.BulkCreate)
			leads.PATCH("/bulk", superOrManager, leadHandler.BulkUpdate)
			leads.POST("/bulk-delete", superOrManager, leadHandler.BulkDelete)
			leads.GET("/stats", leadHandler.LeadStats)
			leads.GET("/export", leadHandler.ExportLeads)
			leads.GET("/reminders/upcoming", leadHandler.UpcomingReminders)
			leads.GET("/:id", leadHandler.GetLead)
			leads.PATCH("/:id", leadHandler.UpdateLead)
			leads.DELETE("/:id", leadHandler.DeleteLead)

			leads.GET("/:id/notes", itemHandler.ListNotes)
			leads.POST("/:id/notes", itemHandler.AddNote)
			leads.PATCH("/:id/notes/:noteId", itemHandler.UpdateNote)
			leads.DELETE("/:id/notes/:noteId", itemHandler.DeleteNote)

			leads.GET("/:id/tasks", itemHandler.ListLeadTasks)
			leads.POST("/:id/tasks", itemHandler.AddLeadTask)
			leads.PATCH("/:id/tasks/:taskId", itemHandler.UpdateLeadTask)
			leads.DELETE("/:id/tasks/:taskId", itemHandler.DeleteLeadTask)

			leads.GET("/:id/reminders", itemHandler.ListReminders)
			leads.POST("/:id/reminders", itemHandler.AddReminder)
			leads.POST("/:id/reminders/:reminderId/done", itemHandler.MarkReminderDone)
			leads.DELETE("/:id/reminders/:reminderId", itemHandler.DeleteReminder)

			leads.GET("/:id/history", itemHandler.ListHistory)
		}

		// The internal task board is super-only end to end, reads included.
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth, superOnly)
		{
			tasks.POST("", boardHandler.CreateTask)
			tasks.GET("", boardHandler.ListTasks)
			tasks.POST("/reorder", boardHandler.ReorderTasks)
			tasks.GET("/:id", boardHandler.GetTask)
			tasks.PATCH("/:id", boardHandler.UpdateTask)
			tasks.DELETE("/:id", boardHandler.DeleteTask)
		}

		taskStatuses := api.Group("/task-statuses")
		taskStatuses.Use(requireAuth, superOnly)
		{
			taskStatuses.POST("", boardHandler.CreateStatus)
			taskStatuses.GET("", boardHandler.ListStatuses)
			taskStatuses.PATCH("/:id", boardHandler.UpdateStatus)
			taskStatuses.DELETE("/:id", boardHandler.DeleteStatus)
		}

		taskPriorities := api.Group("/task-priorities")
		taskPriorities.Use(requireAuth, superOnly)
		{
			taskPriorities.POST("", boardHandler.CreatePriority)
			taskPriorities.GET("", boardHandler.ListPriorities)
			taskPriorities.PATCH("/:id", boardHandler.UpdatePriority)
			taskPriorities.DELETE("/:id", boardHandler.DeletePriority)
		}

		dashboard := api.Group("/dashboard")
		dashboard.Use(requireAuth)
		{
			dashboard.GET("/summary", dashboardHandler.Summary)
			dashboard.GET("/leads-by-status", dashboardHandler.LeadsByStatus)
			dashboard.GET("/leads-over-time", dashboardHandler.LeadsOverTime)
			dashboard.GET("/recent-leads", dashboardHandler.RecentLeads)
			dashboard.GET("/departments-summary", dashboardHandler.DepartmentsSummary)
			dashboard.GET("/top-assignees", dashboardHandler.TopAssignees)
			dashboard.GET("/attention", dashboardHandler.Attention)
			dashboard.GET("/week-events", dashboardHandler.WeekEvents)
		}
	}

	logrus.WithField("port", cfg.ServerPort).Info("server starting")
	if err := r.Run(":" + cfg.ServerPort); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

// bootstrapSuperUser idempotently creates the initial super account from the
// environment. Nothing happens when the email already exists or the
// credentials are not configured.
func bootstrapSuperUser(cfg *config.Config, userRepo repository.UserRepository) error {
	if cfg.SuperUserEmail == "" || cfg.SuperUserPassword == "" {
		return nil
	}

	email := strings.ToLower(strings.TrimSpace(cfg.SuperUserEmail))
	if _, err := userRepo.FindByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    cfg.SuperUserName,
		Role:         constants.RoleSuper,
		IsActive:     true,
	}
	if err := userRepo.Create(user); err != nil {
		return err
	}
	logrus.WithField("email", email).Info("super user created")
	return nil
}
