package audit

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/accounts/internal/database/audit"
	"github.com/mrlokans/accounts/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	path := filepath.Join(t.TempDir(), "audit.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return NewService(auditRepo.NewRepository(db)), db
}

func TestService_Log(t *testing.T) {
	svc, db := setupTestService(t)

	event := &entities.AuditEvent{
		AccountID: "acc-1",
		EventType: entities.AuditEventAuth,
		Action:    "test_action",
		Status:    entities.AuditStatusSuccess,
	}

	require.NoError(t, svc.Log(event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "test_action", saved.Action)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestService_RecordAuth(t *testing.T) {
	svc, db := setupTestService(t)

	t.Run("successful login", func(t *testing.T) {
		svc.RecordAuth("acc-1", ActionLogin, "10.0.0.1", "curl/8.0", nil)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", ActionLogin).First(&event).Error)
		assert.Equal(t, entities.AuditEventAuth, event.EventType)
		assert.Equal(t, entities.AuditStatusSuccess, event.Status)
		assert.Equal(t, "acc-1", event.AccountID)
		assert.Equal(t, "10.0.0.1", event.IPAddress)
		assert.Empty(t, event.ErrorMsg)
	})

	t.Run("failed registration", func(t *testing.T) {
		svc.RecordAuth("", ActionRegister, "10.0.0.2", "", errors.New("email address already exists"))
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", ActionRegister).First(&event).Error)
		assert.Equal(t, entities.AuditStatusFailed, event.Status)
		assert.Equal(t, "email address already exists", event.ErrorMsg)
	})

	t.Run("long user agent is truncated", func(t *testing.T) {
		svc.RecordAuth("acc-2", ActionSignOut, "", strings.Repeat("a", 800), nil)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("action = ?", ActionSignOut).First(&event).Error)
		assert.Len(t, event.UserAgent, 500)
		assert.True(t, strings.HasSuffix(event.UserAgent, "..."))
	})

	t.Run("multi-byte user agent stays valid UTF-8", func(t *testing.T) {
		svc.RecordAuth("acc-3", ActionLogin, "", strings.Repeat("é", 300), nil)
		svc.Wait()

		var event entities.AuditEvent
		require.NoError(t, db.Where("account_id = ? AND action = ?", "acc-3", ActionLogin).First(&event).Error)
		assert.True(t, utf8.ValidString(event.UserAgent))
		assert.LessOrEqual(t, len(event.UserAgent), 500)
		assert.True(t, strings.HasSuffix(event.UserAgent, "..."))
	})
}

func TestService_RecordAccount(t *testing.T) {
	svc, db := setupTestService(t)

	svc.RecordAccount("acc-1", ActionAdminDelete, "Deleted account foo@bar.com", nil)
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", ActionAdminDelete).First(&event).Error)
	assert.Equal(t, entities.AuditEventAccount, event.EventType)
	assert.Equal(t, "Deleted account foo@bar.com", event.Description)
}

func TestService_GetEvents(t *testing.T) {
	svc, _ := setupTestService(t)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.Log(&entities.AuditEvent{
			AccountID: "acc-1",
			EventType: entities.AuditEventAuth,
			Action:    ActionLogin,
			Status:    entities.AuditStatusSuccess,
		}))
	}
	require.NoError(t, svc.Log(&entities.AuditEvent{
		AccountID: "acc-2",
		EventType: entities.AuditEventAuth,
		Action:    ActionRegister,
		Status:    entities.AuditStatusSuccess,
	}))

	events, total, err := svc.GetEvents("acc-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, events, 2)

	_, total, err = svc.GetEvents("", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	byAction, err := svc.GetEventsByAction(ActionRegister, 10)
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, "acc-2", byAction[0].AccountID)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, db := setupTestService(t)

	old := &entities.AuditEvent{
		Action:    "old",
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-48 * time.Hour),
	}
	fresh := &entities.AuditEvent{
		Action: "fresh",
		Status: entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(old))
	require.NoError(t, svc.Log(fresh))

	deleted, err := svc.DeleteOldEvents(24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var count int64
	db.Model(&entities.AuditEvent{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
	}{
		{"ascii under limit", "Mozilla/5.0", 500},
		{"ascii over limit", strings.Repeat("a", 600), 500},
		{"two-byte runes", strings.Repeat("é", 300), 500},
		{"three-byte runes", strings.Repeat("€", 200), 500},
		{"four-byte runes", strings.Repeat("😀", 150), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxLen)
			assert.LessOrEqual(t, len(got), tt.maxLen)
			assert.True(t, utf8.ValidString(got), "truncated value must stay valid UTF-8")
			if len(tt.input) > tt.maxLen {
				assert.True(t, strings.HasSuffix(got, "..."))
				assert.True(t, strings.HasPrefix(tt.input, strings.TrimSuffix(got, "...")))
			} else {
				assert.Equal(t, tt.input, got)
			}
		})
	}
}
