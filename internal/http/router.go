package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(auth.SecurityHeadersMiddleware())
	if cfg.SecureCookies {
		router.Use(auth.StrictTransportSecurityMiddleware())
	}

	// Session must load before anything reads the signed-in account
	router.Use(cfg.SessionManager.SessionLoadSave())
	router.Use(auth.NewMiddleware(cfg.AuthService, cfg.SessionManager).LoadAccount())

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)

	landing := NewLandingController(cfg.SessionManager)
	router.GET("/", landing.Index)

	cfg.AuthController.RegisterRoutes(router)

	if cfg.AuditEvents != nil {
		events := NewAuditController(cfg.AuditEvents)
		router.GET("/account/events", auth.RequireAccount(), events.ListOwnEvents)
	}

	if cfg.AdminToken != "" {
		if cfg.AdminController != nil {
			cfg.AdminController.RegisterRoutes(router)
		}
		admin := router.Group("/admin", auth.RequireAdminToken(cfg.AdminToken))
		if cfg.AuditEvents != nil {
			admin.GET("/audit/events", NewAuditController(cfg.AuditEvents).ListEventsByAction)
		}
		if cfg.TaskQueue != nil {
			tasks := NewTasksController(cfg.TaskQueue)
			admin.POST("/audit/cleanup", tasks.RunAuditCleanup)
			admin.GET("/tasks/:id", tasks.GetTaskStatus)
		}
	}

	return router
}
