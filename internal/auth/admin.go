package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/audit"
)

// AdminController exposes maintenance endpoints for account records.
type AdminController struct {
	service *Service
	auditor Auditor
	token   string
}

// NewAdminController creates the admin controller. An empty token leaves the
// routes unregistered.
func NewAdminController(service *Service, auditor Auditor, token string) *AdminController {
	if auditor == nil {
		auditor = noopAuditor{}
	}
	return &AdminController{service: service, auditor: auditor, token: token}
}

// Enabled reports whether an admin token is configured.
func (ac *AdminController) Enabled() bool {
	return ac.token != ""
}

// RegisterRoutes registers the admin routes when an admin token is configured.
func (ac *AdminController) RegisterRoutes(router gin.IRouter) {
	if !ac.Enabled() {
		return
	}

	group := router.Group("/admin/accounts", RequireAdminToken(ac.token))
	group.GET("/:email", ac.Get)
	group.PUT("/:email", ac.Upsert)
	group.DELETE("/:email", ac.Delete)
}

// RequireAdminToken checks the Authorization bearer token in constant time.
func RequireAdminToken(token string) gin.HandlerFunc {
	expected := []byte(token)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") ||
			subtle.ConstantTimeCompare([]byte(parts[1]), expected) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, newErrorResponse(MsgAuthRequired))
			return
		}
		c.Next()
	}
}

// Get handles GET /admin/accounts/:email. A missing account yields {"user":null}.
func (ac *AdminController) Get(c *gin.Context) {
	account, err := ac.service.GetAccount(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": account})
}

// Upsert handles PUT /admin/accounts/:email.
func (ac *AdminController) Upsert(c *gin.Context) {
	var in UpsertInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(MsgInvalidBody))
		return
	}

	email := NormalizeEmail(c.Param("email"))
	account, err := ac.service.UpsertAccount(c.Request.Context(), email, in)
	if err != nil {
		ac.auditor.RecordAccount("", audit.ActionAdminUpsert, "Upsert of "+email, err)
		respondError(c, err)
		return
	}

	ac.auditor.RecordAccount(account.ID, audit.ActionAdminUpsert, "Upsert of "+email, nil)
	c.JSON(http.StatusCreated, AccountResponse{User: account.Summary()})
}

// Delete handles DELETE /admin/accounts/:email. Deleting a missing account succeeds.
func (ac *AdminController) Delete(c *gin.Context) {
	email := NormalizeEmail(c.Param("email"))
	if err := ac.service.DeleteAccount(c.Request.Context(), email); err != nil {
		respondError(c, err)
		return
	}

	ac.auditor.RecordAccount("", audit.ActionAdminDelete, "Deleted "+email, nil)
	c.Status(http.StatusNoContent)
}
