// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/Mohit-R-04/FarmToMarket/internal/config"
	"github.com/Mohit-R-04/FarmToMarket/internal/events"
	"github.com/Mohit-R-04/FarmToMarket/internal/handlers"
	"github.com/Mohit-R-04/FarmToMarket/internal/middleware"
	"github.com/Mohit-R-04/FarmToMarket/internal/models"
	"github.com/Mohit-R-04/FarmToMarket/internal/services"
)

// Dependencies are the long-lived resources the routes are built on.
// Idempotency may be nil to disable replay protection.
type Dependencies struct {
	DB          *gorm.DB
	Emitter     *events.Emitter
	Idempotency middleware.IdempotencyStore
	RateLimiter *middleware.RateLimiter
	Log         logrus.FieldLogger
}

func NewRateLimiter(cfg config.RateLimitConfig) *middleware.RateLimiter {
	return middleware.NewRateLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)
}

func Initialize(cfg *config.Config, deps Dependencies) *gin.Engine {
	db := deps.DB

	// Initialize services
	notificationService := services.NewNotificationService(db)
	productService := services.NewProductService(db, deps.Emitter, cfg.Frontend.BaseURL)
	sellerRequestService := services.NewSellerRequestService(db, deps.Emitter)
	transporterRequestService := services.NewTransporterRequestService(db, deps.Emitter)
	bookingService := services.NewBookingService(db, deps.Emitter)
	userService := services.NewUserService(db)
	revenueService := services.NewRevenueService(db)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService)
	sellerRequestHandler := handlers.NewSellerRequestHandler(sellerRequestService)
	transporterRequestHandler := handlers.NewTransporterRequestHandler(transporterRequestService)
	bookingHandler := handlers.NewBookingHandler(bookingService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	userHandler := handlers.NewUserHandler(userService, revenueService)
	adminHandler := handlers.NewAdminHandler(adminService)

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = NewRateLimiter(cfg.RateLimit)
	}
	log := deps.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(limiter.Middleware())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "healthy", "version": "1.0.0"}
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	})

	api := r.Group("/api")
	api.Use(middleware.AuthRequired())
	api.Use(middleware.Idempotency(deps.Idempotency, cfg.Redis.IdempotencyTTL))
	api.Use(middleware.AuditLogMiddleware(db))

	farmer := middleware.RoleRequired(models.RoleFarmer)
	seller := middleware.RoleRequired(models.RoleSeller)
	transporter := middleware.RoleRequired(models.RoleTransporter)
	{
		products := api.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/:id", productHandler.GetProduct)
			products.GET("/:id/journey", productHandler.GetJourney)
			products.POST("", farmer, productHandler.CreateProduct)
			products.PUT("/:id", farmer, productHandler.UpdateProduct)
			products.DELETE("/:id", farmer, productHandler.DeleteProduct)
			products.POST("/:id/sales", seller, productHandler.RecordSale)
		}

		sellerRequests := api.Group("/seller-requests")
		{
			sellerRequests.GET("", sellerRequestHandler.List)
			sellerRequests.GET("/:id", sellerRequestHandler.Get)
			sellerRequests.POST("", farmer, sellerRequestHandler.Create)
			sellerRequests.PUT("/:id", seller, sellerRequestHandler.Update)
		}

		transporterRequests := api.Group("/transporter-requests")
		{
			transporterRequests.GET("", transporterRequestHandler.List)
			transporterRequests.GET("/:id", transporterRequestHandler.Get)
			transporterRequests.POST("", farmer, transporterRequestHandler.Create)
			transporterRequests.PUT("/:id", transporter, transporterRequestHandler.Update)
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", bookingHandler.List)
			bookings.GET("/:id", bookingHandler.Get)
			bookings.POST("", farmer, bookingHandler.Create)
			bookings.PUT("/:id", transporter, bookingHandler.Update)
			bookings.PUT("/:id/picked-up", transporter, bookingHandler.PickedUp)
			bookings.PUT("/:id/request-cancellation", transporter, bookingHandler.RequestCancellation)
			bookings.PUT("/:id/respond-cancellation", farmer, bookingHandler.RespondCancellation)
			bookings.PUT("/:id/transported", transporter, bookingHandler.Transported)
			bookings.PUT("/:id/kilometers", transporter, bookingHandler.UpdateKilometers)
		}

		roles := api.Group("/roles")
		{
			roles.GET("/user/:userId", userHandler.GetUserRole)
			roles.GET("/:role", userHandler.ListByRole)
			roles.POST("/:role", userHandler.SaveRole)
			roles.PUT("/:role/:userId", userHandler.UpdateRole)
		}

		api.GET("/users/:id", userHandler.GetUser)
		api.GET("/revenue/:role/:userId", userHandler.GetRevenue)

		notifications := api.Group("/notifications")
		{
			notifications.GET("/user/:id", notificationHandler.ListForUser)
			notifications.GET("/user/:id/unread-count", notificationHandler.UnreadCount)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
			notifications.POST("/create", middleware.RoleRequired(models.RoleAdmin), notificationHandler.Create)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.RoleRequired(models.RoleAdmin))
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
			admin.POST("/clear-all-data", adminHandler.ClearAllData)
			admin.POST("/cleanup-orphaned-data", adminHandler.CleanupOrphanedData)
		}
	}

	return r
}
