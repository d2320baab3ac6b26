package config

const (
	// DefaultDatabasePath is the default path for the accounts database
	DefaultDatabasePath = "./accounts.db"

	// DefaultBcryptCost is shared by registration and the admin upsert path.
	// The cost is embedded in each hash, so lowering it only affects new hashes.
	DefaultBcryptCost = 12

	// DefaultServerURL is where the CLI expects a running server.
	DefaultServerURL = "http://localhost:8188"
)
