// Package accounts provides database operations for account records.
//
// # Usage
//
//	repo := accounts.NewRepository(db)
//	account, err := repo.FindByEmail(ctx, "someone@example.com")
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
	"gorm.io/gorm"

	"github.com/mrlokans/accounts/internal/entities"
)

var (
	ErrNotFound       = errors.New("account not found")
	ErrDuplicateEmail = errors.New("email address already exists")
)

// Repository handles all account database operations.
// Callers are expected to pass emails already lowercased.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new accounts repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new account. A duplicate email yields ErrDuplicateEmail.
func (r *Repository) Create(ctx context.Context, account *entities.Account) error {
	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		return translate(err)
	}
	return nil
}

// FindByEmail retrieves an account by its exact (lowercased) email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*entities.Account, error) {
	var account entities.Account
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// FindByID retrieves an account by its identifier.
func (r *Repository) FindByID(ctx context.Context, id string) (*entities.Account, error) {
	var account entities.Account
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &account, nil
}

// Upsert updates the account currently stored under lookupEmail with the
// fields of account, or creates it when no such account exists.
func (r *Repository) Upsert(ctx context.Context, lookupEmail string, account *entities.Account) (*entities.Account, error) {
	var result entities.Account
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("email = ?", lookupEmail).First(&result).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result = *account
			return tx.Create(&result).Error
		}
		if err != nil {
			return err
		}

		err = tx.Model(&entities.Account{}).Where("id = ?", result.ID).Updates(map[string]any{
			"name":                  account.Name,
			"email":                 account.Email,
			"password_hash":         account.PasswordHash,
			"failed_login_attempts": account.FailedLoginAttempts,
		}).Error
		if err != nil {
			return err
		}
		return tx.Where("id = ?", result.ID).First(&result).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &result, nil
}

// DeleteByEmail removes every account with the given email.
// Deleting a missing account is not an error.
func (r *Repository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	result := r.db.WithContext(ctx).Where("email = ?", email).Delete(&entities.Account{})
	return result.RowsAffected, result.Error
}

// IncrementFailedLogins bumps the failed-login counter and returns the new value.
func (r *Repository) IncrementFailedLogins(ctx context.Context, id string) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&entities.Account{}).
			Where("id = ?", id).
			UpdateColumn("failed_login_attempts", gorm.Expr("failed_login_attempts + 1")).Error
		if err != nil {
			return err
		}
		return tx.Model(&entities.Account{}).
			Where("id = ?", id).
			Select("failed_login_attempts").
			Row().Scan(&attempts)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to record failed login: %w", err)
	}
	return attempts, nil
}

// ResetFailedLogins clears the failed-login counter.
func (r *Repository) ResetFailedLogins(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&entities.Account{}).
		Where("id = ? AND failed_login_attempts <> 0", id).
		UpdateColumn("failed_login_attempts", 0).Error
}

// Count returns the number of stored accounts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Account{}).Count(&count).Error
	return count, err
}

// translate maps unique-constraint failures to ErrDuplicateEmail. The only
// unique key besides the primary key is the email.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateEmail
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) &&
		(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique || sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
		return ErrDuplicateEmail
	}
	return err
}
