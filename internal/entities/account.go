package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Account is a registered user. Email is stored lowercased and is unique.
type Account struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	Name                string    `gorm:"size:255;not null" json:"name"`
	Email               string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash        string    `gorm:"size:255;not null" json:"-"`
	FailedLoginAttempts int       `gorm:"not null;default:0" json:"failedLoginAttempts"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (Account) TableName() string {
	return "accounts"
}

// BeforeCreate assigns the opaque identifier.
func (a *Account) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Summary is the client-facing view of an account.
type Summary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (a *Account) Summary() Summary {
	return Summary{ID: a.ID, Name: a.Name, Email: a.Email}
}
