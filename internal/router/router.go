package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "regnify/docs" // registers the generated OpenAPI document

	"regnify/internal/domain"
	"regnify/internal/handler"
	"regnify/internal/metrics"
	"regnify/internal/middleware"
	"regnify/internal/service"
)

// Handlers groups the HTTP handlers mounted by Setup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Invoice   *handler.InvoiceHandler
	User      *handler.UserHandler
	Dashboard *handler.DashboardHandler
	Rules     *handler.RulesHandler
	Health    *handler.HealthHandler

	Integration  *handler.IntegrationHandler
	SystemUpdate *handler.SystemUpdateHandler
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	authSvc service.AuthService,
	h Handlers,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
	allowedOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.RefreshToken)

	// Protected routes - require valid JWT
	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(authSvc))

	protected.POST("/auth/logout", h.Auth.Logout)

	writers := middleware.RequireRole(domain.RoleSuperUser, domain.RoleAdminModerator)

	// Invoice routes
	invoices := protected.Group("/invoices")
	invoices.POST("", h.Invoice.Upload)
	invoices.GET("", h.Invoice.List)
	invoices.GET("/search", h.Invoice.Search)
	invoices.GET("/export", h.Invoice.Export)
	invoices.GET("/:id", h.Invoice.GetByID)
	invoices.GET("/:id/download", h.Invoice.Download)
	invoices.GET("/:id/audit", h.Invoice.AuditTrail)
	invoices.PUT("/:id", writers, h.Invoice.Update)
	invoices.DELETE("/:id", writers, h.Invoice.Delete)
	invoices.POST("/:id/process", writers, h.Invoice.Process)

	protected.GET("/dashboard/stats", h.Dashboard.GetStats)
	protected.GET("/dashboard/quick-stats", h.Dashboard.GetQuickStats)
	protected.GET("/rules", h.Rules.List)

	// User management
	users := protected.Group("/users")
	users.GET("/me", h.User.Me)
	admin := users.Group("")
	admin.Use(writers)
	admin.POST("", h.User.Create)
	admin.GET("", h.User.List)
	admin.GET("/search", h.User.Search)
	admin.GET("/active", h.User.Active)
	admin.GET("/count", h.User.Count)
	admin.GET("/active-count", h.User.ActiveCount)
	admin.GET("/username/:username", h.User.GetByUsername)
	admin.GET("/:id", h.User.GetByID)
	admin.PUT("/:id", h.User.Update)
	admin.DELETE("/:id", h.User.Delete)
	admin.PATCH("/:id/toggle-status", h.User.ToggleStatus)
	admin.PATCH("/:id/change-role", middleware.RequireRole(domain.RoleAdminModerator), h.User.ChangeRole)
	admin.PUT("/:id/password", h.User.ResetPassword)
	admin.POST("/:id/unlock", h.User.Unlock)

	// Service provider integrations
	integration := protected.Group("/integration/configs")
	integration.Use(writers)
	integration.GET("", h.Integration.List)
	integration.POST("", h.Integration.Create)
	integration.GET("/provider/:name", h.Integration.GetByProvider)
	integration.GET("/:id", h.Integration.GetByID)
	integration.PUT("/:id", h.Integration.Update)
	integration.DELETE("/:id", h.Integration.Delete)
	integration.PATCH("/:id/toggle-status", h.Integration.ToggleStatus)
	integration.POST("/:id/generate-credentials", h.Integration.GenerateCredentials)
	integration.POST("/:id/test-connection", h.Integration.TestConnection)
	integration.POST("/:id/fetch-status", h.Integration.FetchStatus)

	// Release notes
	moderators := middleware.RequireRole(domain.RoleAdminModerator)
	updates := protected.Group("/updates")
	updates.GET("", h.SystemUpdate.List)
	updates.GET("/type/:type", h.SystemUpdate.ListByType)
	updates.GET("/date-range", h.SystemUpdate.ListByDateRange)
	updates.GET("/version/:version", h.SystemUpdate.ListByVersion)
	updates.POST("", moderators, h.SystemUpdate.Create)
	updates.PUT("/:id", moderators, h.SystemUpdate.Update)
	updates.DELETE("/:id", moderators, h.SystemUpdate.Delete)

	return r
}
