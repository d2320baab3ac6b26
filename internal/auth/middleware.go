package auth

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/entities"
)

const contextKeyAccount = "auth_account"

// Middleware resolves the signed-in account from the session.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
}

// NewMiddleware creates a new authentication middleware.
func NewMiddleware(service *Service, sessionManager *SessionManager) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
	}
}

// LoadAccount attaches the session's account to the context when there is one.
// Requests without a session pass through untouched.
func (m *Middleware) LoadAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := m.sessionManager.GetAccountID(c.Request)
		if accountID == "" {
			c.Next()
			return
		}

		account, err := m.service.GetAccountByID(c.Request.Context(), accountID)
		switch {
		case err == nil:
			c.Set(contextKeyAccount, account)
		case errors.Is(err, ErrAccountNotFound):
			// Account deleted while the session was alive
			if err := m.sessionManager.DestroySession(c.Request); err != nil {
				log.Printf("Failed to destroy stale session: %v", err)
			}
		default:
			log.Printf("Failed to load session account %s: %v", accountID, err)
		}

		c.Next()
	}
}

// RequireAccount rejects requests that have no signed-in account.
func RequireAccount() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetAccount(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(MsgAuthRequired))
			return
		}
		c.Next()
	}
}

// GetAccount returns the signed-in account, or nil.
func GetAccount(c *gin.Context) *entities.Account {
	if v, exists := c.Get(contextKeyAccount); exists {
		if account, ok := v.(*entities.Account); ok {
			return account
		}
	}
	return nil
}
