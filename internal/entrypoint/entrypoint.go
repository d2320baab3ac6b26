package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/audit"
	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/config"
	"github.com/mrlokans/accounts/internal/database"
	"github.com/mrlokans/accounts/internal/database/accounts"
	auditRepo "github.com/mrlokans/accounts/internal/database/audit"
	http_controllers "github.com/mrlokans/accounts/internal/http"
	"github.com/mrlokans/accounts/internal/scheduler"
	"github.com/mrlokans/accounts/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after in-flight requests are drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

// csrfSecret decodes AUTH_SESSION_SECRET, or generates a key for this process.
func csrfSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil && len(secret) == 32 {
			return secret, nil
		}
		if len(configured) != 32 {
			return nil, fmt.Errorf("AUTH_SESSION_SECRET must be 32 bytes or 64 hex characters")
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, err
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting accounts service v%s", version)

	if err := auth.ValidateBcryptCost(cfg.Auth.BcryptCost); err != nil {
		log.Fatalf("Invalid AUTH_BCRYPT_COST: %v", err)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	authService := auth.NewService(accounts.NewRepository(db.DB), cfg.Auth)

	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	secret, err := csrfSecret(cfg.Auth.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to prepare CSRF secret: %v", err)
	}

	authController := auth.NewAuthController(
		authService,
		sessionManager,
		auditService,
		auth.CSRFMiddleware(secret, cfg.Auth.SecureCookies),
		cfg.Auth,
	)

	var adminController *auth.AdminController
	if cfg.Auth.AdminToken != "" {
		adminController = auth.NewAdminController(authService, auditService, cfg.Auth.AdminToken)
		log.Printf("Admin endpoints enabled under /admin")
	}

	if cfg.Auth.LockoutThreshold > 0 {
		log.Printf("Account lockout after %d failed logins", cfg.Auth.LockoutThreshold)
	}

	// Task queue and the cron trigger for audit retention
	var taskClient *tasks.Client
	var taskQueue http_controllers.TaskQueue
	var cleanupScheduler *scheduler.AuditCleanupScheduler
	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, cfg.Tasks)
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(tasks.NewCleanupAuditEventsQueue(auditService))
		taskClient.Start(bgCtx)
		taskQueue = taskClient

		cleanupScheduler = scheduler.NewAuditCleanupScheduler(taskClient, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := cleanupScheduler.Start(bgCtx); err != nil {
			log.Fatalf("Failed to start audit cleanup scheduler: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:        db,
		AuthService:     authService,
		SessionManager:  sessionManager,
		AuthController:  authController,
		AdminController: adminController,
		AuditEvents:     auditService,
		TaskQueue:       taskQueue,
		AdminToken:      cfg.Auth.AdminToken,
		SecureCookies:   cfg.Auth.SecureCookies,
		Version:         version,
	})

	onShutdown := func(ctx context.Context) {
		authController.Stop()
		if cleanupScheduler != nil {
			cleanupScheduler.Stop()
		}
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		bgCancel()
		auditService.Wait()
	}

	Serve(router, cfg, onShutdown)
}
