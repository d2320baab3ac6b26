// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup and migrations
//	├── accounts/        # Account CRUD and the duplicate-email signal
//	└── audit/           # Audit event storage and retention
//
// # Using Sub-packages
//
//	db, err := database.NewDatabase("./accounts.db")
//
//	accountsRepo := accounts.NewRepository(db.DB)
//	auditRepo := audit.NewRepository(db.DB)
//
//	account, err := accountsRepo.FindByEmail(ctx, "someone@example.com")
//
// # Interface Implementations
//
//   - accounts.Repository: implements auth.AccountStore
//   - audit.Repository: backs audit.Service, which implements tasks.AuditEventCleaner
package database
