// Package auth implements account registration, credential login and
// session sign-in for the HTTP API.
//
// Passwords are checked against the policy package, hashed with bcrypt at
// AUTH_BCRYPT_COST and compared in constant time. Emails are lowercased
// before they are stored or looked up.
//
// # Configuration
//
//	AUTH_BCRYPT_COST=12          # bcrypt cost for registration and admin upserts
//	AUTH_SESSION_SECRET=<hex>    # CSRF key for the session routes; generated if empty
//	AUTH_SESSION_LIFETIME=24h    # Session duration
//	AUTH_SECURE_COOKIES=true     # HTTPS-only cookies
//	AUTH_LOCKOUT_THRESHOLD=0     # Failed logins before an account locks; 0 disables
//	AUTH_ADMIN_TOKEN=<token>     # Enables /admin/accounts behind a bearer token
//
// # Usage
//
//	svc := auth.NewService(accounts.NewRepository(db), cfg.Auth)
//	sm, _ := auth.NewSessionManager(sqlDB, cfg.Auth)
//	router.Use(sm.SessionLoadSave(), auth.NewMiddleware(svc, sm).LoadAccount())
//	auth.NewAuthController(svc, sm, auditor, csrfMiddleware, cfg.Auth).RegisterRoutes(router)
//
// Handlers read the signed-in account with auth.GetAccount(c).
package auth
