package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/accounts/internal/audit"
	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/client"
	"github.com/mrlokans/accounts/internal/database"
	"github.com/mrlokans/accounts/internal/database/accounts"
	"github.com/mrlokans/accounts/internal/forms"
	"github.com/mrlokans/accounts/internal/http"
	"github.com/mrlokans/accounts/internal/scheduler"
	"github.com/mrlokans/accounts/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// AccountStore implementations
var _ auth.AccountStore = (*accounts.Repository)(nil)

// Pinger implementations
var _ http.Pinger = (*database.Database)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ auth.Auditor = (*audit.Service)(nil)
var _ http.AuditEventReader = (*audit.Service)(nil)
var _ tasks.AuditEventCleaner = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ http.TaskQueue = (*tasks.Client)(nil)
var _ scheduler.AuditCleanupEnqueuer = (*tasks.Client)(nil)

// =============================================================================
// Sessions
// =============================================================================

var _ http.FlashStore = (*auth.SessionManager)(nil)

// =============================================================================
// Client
// =============================================================================

var _ forms.API = (*client.Client)(nil)
