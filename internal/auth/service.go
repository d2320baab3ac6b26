package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/mrlokans/accounts/internal/config"
	"github.com/mrlokans/accounts/internal/database/accounts"
	"github.com/mrlokans/accounts/internal/entities"
	"github.com/mrlokans/accounts/internal/policy"
)

var (
	ErrEmailExists        = accounts.ErrDuplicateEmail
	ErrAccountNotFound    = accounts.ErrNotFound
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is locked due to too many failed login attempts")
)

// AccountStore defines the storage operations the workflows need.
type AccountStore interface {
	Create(ctx context.Context, account *entities.Account) error
	FindByEmail(ctx context.Context, email string) (*entities.Account, error)
	FindByID(ctx context.Context, id string) (*entities.Account, error)
	Upsert(ctx context.Context, lookupEmail string, account *entities.Account) (*entities.Account, error)
	DeleteByEmail(ctx context.Context, email string) (int64, error)
	IncrementFailedLogins(ctx context.Context, id string) (int, error)
	ResetFailedLogins(ctx context.Context, id string) error
}

// Service implements the registration and login workflows.
type Service struct {
	store  AccountStore
	config config.Auth

	dummyOnce sync.Once
	dummyHash string
}

// NewService creates a new authentication service.
func NewService(store AccountStore, cfg config.Auth) *Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = config.DefaultBcryptCost
	}
	return &Service{
		store:  store,
		config: cfg,
	}
}

// NormalizeEmail returns the form emails are stored and compared in.
func NormalizeEmail(email string) string {
	return strings.ToLower(email)
}

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register validates the input, hashes the password and creates the account.
// A duplicate email yields ErrEmailExists; invalid input a *policy.ValidationError.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entities.Account, error) {
	if verr := policy.ValidateRegistration(policy.Registration{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
	}); verr != nil {
		return nil, verr
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &entities.Account{
		Name:         in.Name,
		Email:        NormalizeEmail(in.Email),
		PasswordHash: passwordHash,
	}

	if err := s.store.Create(ctx, account); err != nil {
		if errors.Is(err, accounts.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, nil
}

// Login verifies the credentials and returns the account.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*entities.Account, error) {
	account, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, accounts.ErrNotFound) {
			// Spend the same bcrypt work as a real comparison.
			_ = CheckPassword(password, s.dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find account: %w", err)
	}

	if s.isLocked(account) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, account.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			s.recordFailedLogin(ctx, account)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	if account.FailedLoginAttempts != 0 {
		if err := s.store.ResetFailedLogins(ctx, account.ID); err != nil {
			log.Printf("Failed to reset failed login counter for %s: %v", account.ID, err)
		} else {
			account.FailedLoginAttempts = 0
		}
	}

	return account, nil
}

// isLocked reports whether the failed-login counter reached the configured threshold.
func (s *Service) isLocked(account *entities.Account) bool {
	return s.config.LockoutThreshold > 0 && account.FailedLoginAttempts >= s.config.LockoutThreshold
}

// recordFailedLogin increments the counter. A storage failure here must not
// change the outcome the caller sees.
func (s *Service) recordFailedLogin(ctx context.Context, account *entities.Account) {
	attempts, err := s.store.IncrementFailedLogins(ctx, account.ID)
	if err != nil {
		log.Printf("Failed to record failed login for %s: %v", account.ID, err)
		return
	}
	account.FailedLoginAttempts = attempts
}

func (s *Service) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		hash, err := HashPassword("not-a-real-password", s.config.BcryptCost)
		if err != nil {
			log.Printf("Failed to prepare dummy password hash: %v", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

// GetAccountByID retrieves an account by its identifier.
func (s *Service) GetAccountByID(ctx context.Context, id string) (*entities.Account, error) {
	return s.store.FindByID(ctx, id)
}

// GetAccount retrieves an account by email. A missing account returns (nil, nil).
func (s *Service) GetAccount(ctx context.Context, email string) (*entities.Account, error) {
	account, err := s.store.FindByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, accounts.ErrNotFound) {
		return nil, nil
	}
	return account, err
}

// DeleteAccount removes the account with the given email, if any.
func (s *Service) DeleteAccount(ctx context.Context, email string) error {
	_, err := s.store.DeleteByEmail(ctx, NormalizeEmail(email))
	return err
}

// UpsertInput is the payload of an administrative upsert.
type UpsertInput struct {
	Name                string `json:"name"`
	Email               string `json:"email"`
	Password            string `json:"password"`
	FailedLoginAttempts int    `json:"failedLoginAttempts"`
}

// UpsertAccount replaces or creates the account stored under lookupEmail.
// The password is re-hashed with the same cost as registration.
func (s *Service) UpsertAccount(ctx context.Context, lookupEmail string, in UpsertInput) (*entities.Account, error) {
	fields := policy.FieldErrors{}
	if in.Name == "" {
		fields.Add(policy.FieldName, policy.MsgNameTooShort)
	}
	if !policy.ValidEmail(in.Email) {
		fields.Add(policy.FieldEmail, policy.MsgEmailInvalid)
	}
	if in.FailedLoginAttempts < 0 {
		fields.Add("failedLoginAttempts", "Failed login attempts cannot be negative")
	}
	if len(fields) > 0 {
		return nil, &policy.ValidationError{Fields: fields}
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		if errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrPasswordTooLong) {
			fields.Add(policy.FieldPassword, err.Error())
			return nil, &policy.ValidationError{Fields: fields}
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.store.Upsert(ctx, NormalizeEmail(lookupEmail), &entities.Account{
		Name:                in.Name,
		Email:               NormalizeEmail(in.Email),
		PasswordHash:        passwordHash,
		FailedLoginAttempts: in.FailedLoginAttempts,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("failed to upsert account: %w", err)
	}
	return account, nil
}
