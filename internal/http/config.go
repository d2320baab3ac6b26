package http

import (
	"github.com/mrlokans/accounts/internal/auth"
)

// RouterConfig contains all dependencies needed to build the HTTP router.
type RouterConfig struct {
	// Core dependencies
	Database       Pinger
	AuthService    *auth.Service
	SessionManager *auth.SessionManager

	// Controllers owned by the caller so it can stop their background work
	AuthController  *auth.AuthController
	AdminController *auth.AdminController

	// Audit trail for the signed-in account (optional)
	AuditEvents AuditEventReader

	// Task queue for admin-triggered maintenance (optional)
	TaskQueue TaskQueue

	// AdminToken protects /admin; empty disables it
	AdminToken string

	// Sends HSTS when the server sits behind TLS
	SecureCookies bool

	// Application info
	Version string
}
