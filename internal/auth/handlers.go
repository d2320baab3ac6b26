package auth

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/audit"
	"github.com/mrlokans/accounts/internal/config"
	"github.com/mrlokans/accounts/internal/entities"
)

// ErrRateLimited is returned while an IP+email pair is throttled.
var ErrRateLimited = errors.New("too many login attempts")

// Auditor records auth and account events. *audit.Service implements it.
type Auditor interface {
	RecordAuth(accountID, action, ipAddr, userAgent string, err error)
	RecordAccount(accountID, action, description string, err error)
}

type noopAuditor struct{}

func (noopAuditor) RecordAuth(string, string, string, string, error) {}
func (noopAuditor) RecordAccount(string, string, string, error)      {}

// Credentials is the payload of a login or sign-in request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthController serves registration, login and the session endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	rateLimiter    *RateLimiter
	auditor        Auditor
	csrf           gin.HandlerFunc
}

// NewAuthController creates a new authentication controller. csrfMiddleware
// may be nil, in which case the session routes are not CSRF-protected.
func NewAuthController(service *Service, sessionManager *SessionManager, auditor Auditor, csrfMiddleware gin.HandlerFunc, cfg config.Auth) *AuthController {
	if auditor == nil {
		auditor = noopAuditor{}
	}

	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
		auditor: auditor,
		csrf:    csrfMiddleware,
	}
}

// RegisterRoutes registers authentication routes on the router.
func (ac *AuthController) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/auth")
	group.POST("/register", ac.Register)
	group.POST("/login", ac.Login)

	session := group.Group("")
	if ac.csrf != nil {
		session.Use(ac.csrf)
	}
	session.GET("/csrf", ac.CSRFToken)
	session.POST("/session", ac.SignIn)
	session.GET("/session", ac.CurrentSession)
	session.DELETE("/session", ac.SignOut)
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// Register handles POST /auth/register.
func (ac *AuthController) Register(c *gin.Context) {
	var in RegisterInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(MsgInvalidBody))
		return
	}

	account, err := ac.service.Register(c.Request.Context(), in)
	if err != nil {
		ac.auditor.RecordAuth("", audit.ActionRegister, c.ClientIP(), c.Request.UserAgent(), err)
		respondError(c, err)
		return
	}

	ac.auditor.RecordAuth(account.ID, audit.ActionRegister, c.ClientIP(), c.Request.UserAgent(), nil)
	c.JSON(http.StatusCreated, AccountResponse{User: account.Summary()})
}

// Login handles POST /auth/login. It verifies credentials without issuing a session.
func (ac *AuthController) Login(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(MsgInvalidBody))
		return
	}

	account, err := ac.authenticate(c, creds, audit.ActionLogin)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AccountResponse{User: account.Summary()})
}

// SignIn handles POST /auth/session: the credentials provider. It answers
// with a SignInResult whose Status matches the HTTP status.
func (ac *AuthController) SignIn(c *gin.Context) {
	var creds Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, SignInResult{Status: http.StatusBadRequest, Message: MsgInvalidBody})
		return
	}

	account, err := ac.authenticate(c, creds, audit.ActionSignIn)
	if err != nil {
		status, resp := ResolveError(err)
		if status == http.StatusInternalServerError {
			log.Printf("Sign-in failed: %v", err)
		}
		c.JSON(status, SignInResult{Status: status, Message: resp.Message})
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request, account); err != nil {
		log.Printf("Failed to create session for %s: %v", account.ID, err)
		c.JSON(http.StatusInternalServerError, SignInResult{Status: http.StatusInternalServerError, Message: MsgUnexpected})
		return
	}

	summary := account.Summary()
	c.JSON(http.StatusOK, SignInResult{Status: http.StatusOK, User: &summary})
}

// CurrentSession handles GET /auth/session.
func (ac *AuthController) CurrentSession(c *gin.Context) {
	account := GetAccount(c)
	if account == nil {
		c.JSON(http.StatusUnauthorized, newErrorResponse(MsgAuthRequired))
		return
	}
	c.JSON(http.StatusOK, AccountResponse{User: account.Summary()})
}

// SignOut handles DELETE /auth/session.
func (ac *AuthController) SignOut(c *gin.Context) {
	accountID := ac.sessionManager.GetAccountID(c.Request)
	if err := ac.sessionManager.DestroySession(c.Request); err != nil {
		respondError(c, err)
		return
	}
	if accountID != "" {
		ac.auditor.RecordAuth(accountID, audit.ActionSignOut, c.ClientIP(), c.Request.UserAgent(), nil)
	}
	c.Status(http.StatusNoContent)
}

// CSRFToken handles GET /auth/csrf by exposing the token in a response header.
func (ac *AuthController) CSRFToken(c *gin.Context) {
	c.Header(CSRFTokenHeader, GetCSRFToken(c))
	c.Status(http.StatusNoContent)
}

// authenticate runs the login workflow behind the rate limiter and records the outcome.
func (ac *AuthController) authenticate(c *gin.Context, creds Credentials, action string) (*entities.Account, error) {
	ip := c.ClientIP()

	if allowed, retryAfter := ac.rateLimiter.Allow(ip, creds.Email); !allowed {
		if retryAfter > 0 {
			c.Header("Retry-After", retryAfterSeconds(retryAfter))
		}
		ac.auditor.RecordAuth("", action, ip, c.Request.UserAgent(), ErrRateLimited)
		return nil, ErrRateLimited
	}

	account, err := ac.service.Login(c.Request.Context(), creds.Email, creds.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			if locked, retryAfter := ac.rateLimiter.RecordFailure(ip, creds.Email); locked {
				log.Printf("Login throttled for %s from %s for %s", NormalizeEmail(creds.Email), ip, retryAfter.Round(time.Second))
			}
		}
		ac.auditor.RecordAuth("", action, ip, c.Request.UserAgent(), err)
		return nil, err
	}

	ac.rateLimiter.RecordSuccess(ip, creds.Email)
	ac.auditor.RecordAuth(account.ID, action, ip, c.Request.UserAgent(), nil)
	return account, nil
}
