package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/bellastudio/booking-api/internal/audit"
	"github.com/bellastudio/booking-api/internal/config"
	"github.com/bellastudio/booking-api/internal/handlers"
	infraRepo "github.com/bellastudio/booking-api/internal/infra/repository"
	"github.com/bellastudio/booking-api/internal/logging"
	"github.com/bellastudio/booking-api/internal/middleware"
	"github.com/bellastudio/booking-api/internal/retry"
	"github.com/bellastudio/booking-api/internal/trust"
	ucBooking "github.com/bellastudio/booking-api/internal/usecase/booking"
	ucTrust "github.com/bellastudio/booking-api/internal/usecase/trust"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestIDMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)
	trustRepo := infraRepo.NewTrustGormRepository(db)

	executor := retry.NewExecutor(logging.Log)
	executor.MaxAttempts = cfg.RetryMaxAttempts
	executor.BaseDelay = time.Duration(cfg.RetryBaseDelayMs) * time.Millisecond
	executor.MaxDelay = time.Duration(cfg.RetryMaxDelayMs) * time.Millisecond
	executor.AttemptTimeout = time.Duration(cfg.StorageTimeoutMs) * time.Millisecond

	engine := trust.NewEngine(trustRepo, executor, trust.Config{
		BanThreshold: cfg.TrustBanThreshold,
		Window:       time.Duration(cfg.TrustWindowHours) * time.Hour,
		MaxInWindow:  cfg.TrustMaxInWindow,
		ContactBurst: cfg.TrustContactPerHour,
	}, logging.Log)

	trustDispatcher := trust.NewDispatcher(engine, rdb, logging.Log)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	scheduleUC := ucBooking.NewScheduleAppointment(
		bookingRepo,
		executor,
		trustDispatcher,
	)

	listFlagsUC := ucTrust.NewListFlags(trustRepo)
	approveFlagUC := ucTrust.NewApproveFlag(trustRepo, executor, auditDispatcher)
	rejectFlagUC := ucTrust.NewRejectFlag(trustRepo, executor, auditDispatcher)
	banClientUC := ucTrust.NewBanClient(trustRepo, executor, auditDispatcher)
	unbanClientUC := ucTrust.NewUnbanClient(trustRepo, executor, auditDispatcher)
	bulkReviewUC := ucTrust.NewBulkReview(approveFlagUC, rejectFlagUC)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	serviceHandler := handlers.NewServiceHandler(db)
	contactHandler := handlers.NewContactHandler(db, trustDispatcher)
	clientHandler := handlers.NewClientHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(scheduleUC, bookingRepo)

	flagHandler := handlers.NewFlagHandler(
		listFlagsUC,
		approveFlagUC,
		rejectFlagUC,
		banClientUC,
		unbanClientUC,
		bulkReviewUC,
	)

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 PUBLIC
		// ------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/services", serviceHandler.List)
			publicAPI.POST("/appointments", appointmentHandler.Create)
			publicAPI.POST("/contact", contactHandler.Create)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// 🔐 ADMIN (flag review)
		// ------------------------------
		admin := api.Group("/admin")
		admin.Use(middleware.AuthMiddleware(cfg))
		{
			admin.GET("/client-review-flags", flagHandler.List)
			admin.POST("/client-review-flags/:id/approve", flagHandler.Approve)
			admin.POST("/client-review-flags/:id/reject", flagHandler.Reject)
			admin.POST("/client-review-flags/bulk-approve", flagHandler.BulkApprove)
			admin.POST("/client-review-flags/bulk-reject", flagHandler.BulkReject)

			admin.GET("/appointments", appointmentHandler.ListForDay)
			admin.GET("/appointments/:id", appointmentHandler.Get)

			admin.GET("/clients", clientHandler.List)
			admin.POST("/clients/:id/ban", flagHandler.BanClient)
			admin.POST("/clients/:id/unban", flagHandler.UnbanClient)

			admin.GET("/audit-logs", auditLogsHandler.List)
		}
	}
}
