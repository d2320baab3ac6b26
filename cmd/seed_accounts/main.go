// Command seed_accounts fills a database with demo accounts for local testing.
// Usage: go run cmd/seed_accounts/main.go [-db path/to/accounts.db] [-password P@ssword01]
package main

import (
	"context"
	"flag"
	"log"

	"github.com/mrlokans/accounts/internal/audit"
	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/config"
	"github.com/mrlokans/accounts/internal/database"
	"github.com/mrlokans/accounts/internal/database/accounts"
	auditRepo "github.com/mrlokans/accounts/internal/database/audit"
	"github.com/mrlokans/accounts/internal/entities"
)

const defaultSeedPassword = "P@ssword01"

type seedAccount struct {
	Name  string
	Email string
	// FailedLoginAttempts lets a seeded account start close to lockout.
	FailedLoginAttempts int
}

var seedAccounts = []seedAccount{
	{Name: "randomuser", Email: "randomuser@gmail.com"},
	{Name: "Ada Lovelace", Email: "ada@example.com"},
	{Name: "Grace Hopper", Email: "grace@example.com"},
	{Name: "Locked Out", Email: "locked@example.com", FailedLoginAttempts: 5},
}

func main() {
	dbPath := flag.String("db", config.DefaultDatabasePath, "path to the accounts database file")
	password := flag.String("password", defaultSeedPassword, "password given to every seeded account")
	flag.Parse()

	log.Printf("Seeding accounts into %s...", *dbPath)

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	auditService := audit.NewService(auditRepo.NewRepository(db.DB))
	service := auth.NewService(accounts.NewRepository(db.DB), config.Auth{})

	ctx := context.Background()
	seeded := 0
	for _, s := range seedAccounts {
		account, err := service.UpsertAccount(ctx, s.Email, auth.UpsertInput{
			Name:                s.Name,
			Email:               s.Email,
			Password:            *password,
			FailedLoginAttempts: s.FailedLoginAttempts,
		})
		auditService.RecordAccount(accountID(account), audit.ActionAdminUpsert, "seeded "+s.Email, err)
		if err != nil {
			log.Printf("Failed to seed %s: %v", s.Email, err)
			continue
		}
		seeded++
		log.Printf("Seeded: %s <%s>", account.Name, account.Email)
	}

	auditService.Wait()
	log.Printf("Seeded %d of %d accounts", seeded, len(seedAccounts))
}

func accountID(a *entities.Account) string {
	if a == nil {
		return ""
	}
	return a.ID
}
