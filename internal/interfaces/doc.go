// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - AccountStore: Account persistence and the duplicate-email signal (internal/auth/service.go)
//   - Pinger: Database liveness for /health (internal/http/health.go)
//
// ## Audit Interfaces
//
//   - Auditor: Records auth and account events (internal/auth/handlers.go)
//   - AuditEventReader: Lists an account's own events and events by action (internal/http/audit.go)
//   - AuditEventCleaner: Deletes events past retention (internal/tasks/cleanup_audit.go)
//
// ## Background Work Interfaces
//
//   - TaskQueue: Enqueue and inspect tasks from admin routes (internal/http/tasks.go)
//   - AuditCleanupEnqueuer: What the cron scheduler submits to (internal/scheduler/audit_cleanup.go)
//
// ## Client Interfaces
//
//   - FlashStore: One-shot landing notifications (internal/http/landing.go)
//   - API: Server surface the form controllers submit to (internal/forms/forms.go)
//
// # Adding a New Account Store
//
// To back accounts with another database:
//
//  1. Implement AccountStore in internal/database/<name>/
//
//     type Repository struct { db *gorm.DB }
//
//     func (r *Repository) Create(ctx context.Context, account *entities.Account) error
//
//  2. Translate the unique-constraint violation to accounts.ErrDuplicateEmail
//     so registration reports a conflict instead of a generic failure.
//
//  3. Add a compile-time check to checks.go:
//
//     var _ auth.AccountStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
