package audit

import (
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/mrlokans/accounts/internal/database/audit"
	"github.com/mrlokans/accounts/internal/entities"
)

// Actions recorded by the HTTP layer.
const (
	ActionRegister    = "register"
	ActionLogin       = "login"
	ActionSignIn      = "sign_in"
	ActionSignOut     = "sign_out"
	ActionAdminUpsert = "admin_upsert"
	ActionAdminDelete = "admin_delete"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo    *audit.Repository
	pending sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// Wait blocks until every event handed to LogAsync has been written.
func (s *Service) Wait() {
	s.pending.Wait()
}

// RecordAuth records a registration, login or session event.
// A nil err marks the event successful.
func (s *Service) RecordAuth(accountID, action, ipAddr, userAgent string, err error) {
	s.LogAsync(newEvent(entities.AuditEventAuth, accountID, action, ipAddr, userAgent, err))
}

// RecordAccount records an administrative change to an account.
func (s *Service) RecordAccount(accountID, action, description string, err error) {
	event := newEvent(entities.AuditEventAccount, accountID, action, "", "", err)
	event.Description = truncate(description, 500)
	s.LogAsync(event)
}

func newEvent(eventType entities.AuditEventType, accountID, action, ipAddr, userAgent string, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		AccountID: accountID,
		EventType: eventType,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

// GetEvents retrieves paginated audit events.
func (s *Service) GetEvents(accountID string, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(accountID, limit, offset)
}

// GetEventsByAction retrieves the latest events with the given action.
func (s *Service) GetEventsByAction(action string, limit int) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsByAction(action, limit)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to at most maxLen bytes without splitting a rune.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
