package auth

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "valid password",
			password: "P@ssword01",
			wantErr:  nil,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  ErrPasswordRequired,
		},
		{
			name:     "password too long",
			password: strings.Repeat("a", 73),
			wantErr:  ErrPasswordTooLong,
		},
		{
			name:     "password at maximum length",
			password: strings.Repeat("a", 72),
			wantErr:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := HashPassword(tt.password, bcrypt.MinCost)
			if err != tt.wantErr {
				t.Errorf("HashPassword() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil && hash == "" {
				t.Error("HashPassword() returned empty hash for valid password")
			}
		})
	}
}

func TestHashPassword_EmbedsCost(t *testing.T) {
	hash, err := HashPassword("P@ssword01", 5)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		t.Fatalf("bcrypt.Cost() error = %v", err)
	}
	if cost != 5 {
		t.Errorf("cost = %d, want 5", cost)
	}

	// Salted: the same password never hashes to the same value
	other, _ := HashPassword("P@ssword01", 5)
	if hash == other {
		t.Error("two hashes of the same password should differ")
	}
}

func TestCheckPassword(t *testing.T) {
	password := "P@ssword01"
	hash, err := HashPassword(password, bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	tests := []struct {
		name     string
		password string
		wantErr  error
	}{
		{
			name:     "correct password",
			password: password,
			wantErr:  nil,
		},
		{
			name:     "incorrect password",
			password: "wrong",
			wantErr:  ErrInvalidPassword,
		},
		{
			name:     "different case",
			password: "p@ssword01",
			wantErr:  ErrInvalidPassword,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  ErrInvalidPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckPassword(tt.password, hash)
			if err != tt.wantErr {
				t.Errorf("CheckPassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	err := CheckPassword("P@ssword01", "not-a-bcrypt-hash")
	if err == nil {
		t.Fatal("expected an error for a malformed hash")
	}
	if err == ErrInvalidPassword {
		t.Error("a malformed hash must not be reported as a wrong password")
	}
}

func TestGenerateSessionSecret(t *testing.T) {
	secret, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("GenerateSessionSecret() error = %v", err)
	}

	// Secret should be 64 hex characters (32 bytes)
	if len(secret) != 64 {
		t.Errorf("Secret length = %d, want 64", len(secret))
	}

	secret2, err := GenerateSessionSecret()
	if err != nil {
		t.Fatalf("Second GenerateSessionSecret() error = %v", err)
	}
	if secret == secret2 {
		t.Error("Generated secrets should be unique")
	}
}

func TestValidateBcryptCost(t *testing.T) {
	tests := []struct {
		name    string
		cost    int
		wantErr bool
	}{
		{"zero", 0, true},
		{"below minimum", bcrypt.MinCost - 1, true},
		{"minimum", bcrypt.MinCost, false},
		{"default", 12, false},
		{"maximum", bcrypt.MaxCost, false},
		{"above maximum", bcrypt.MaxCost + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBcryptCost(tt.cost)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBcryptCost(%d) error = %v, wantErr %v", tt.cost, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBcryptCost) {
				t.Errorf("ValidateBcryptCost(%d) error = %v, want ErrInvalidBcryptCost", tt.cost, err)
			}
		})
	}
}

func TestHashPassword_RejectsOutOfRangeCost(t *testing.T) {
	for _, cost := range []int{3, bcrypt.MaxCost + 1} {
		hash, err := HashPassword("P@ssword01", cost)
		if !errors.Is(err, ErrInvalidBcryptCost) {
			t.Errorf("HashPassword(cost=%d) error = %v, want ErrInvalidBcryptCost", cost, err)
		}
		if hash != "" {
			t.Errorf("HashPassword(cost=%d) returned a hash", cost)
		}
	}
}
