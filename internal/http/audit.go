package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/entities"
)

// AuditEventReader lists stored events. *audit.Service implements it.
type AuditEventReader interface {
	GetEvents(accountID string, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsByAction(action string, limit int) ([]entities.AuditEvent, error)
}

type AuditController struct {
	events AuditEventReader
}

func NewAuditController(events AuditEventReader) *AuditController {
	return &AuditController{events: events}
}

// ListOwnEvents returns the signed-in account's audit trail, newest first.
// GET /account/events?limit=25&offset=0
func (ac *AuditController) ListOwnEvents(c *gin.Context) {
	account := auth.GetAccount(c)
	limit, offset := parsePagination(c, 25, 100)

	events, total, err := ac.events.GetEvents(account.ID, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list audit events")
		return
	}

	c.JSON(http.StatusOK, newPaginatedResponse(events, total, limit, offset))
}

// ListEventsByAction returns the latest events of one action across all accounts.
// GET /admin/audit/events?action=sign_in&limit=50
func (ac *AuditController) ListEventsByAction(c *gin.Context) {
	action := c.Query("action")
	if action == "" {
		respondBadRequest(c, "action is required")
		return
	}
	limit, _ := parsePagination(c, 50, 200)

	events, err := ac.events.GetEventsByAction(action, limit)
	if err != nil {
		respondInternalError(c, err, "list audit events by action")
		return
	}

	c.JSON(http.StatusOK, gin.H{"action": action, "data": events})
}
