package configs

import "cpop-ledger/internal/core/domain"

// Demo controls startup seeding of demo campaigns.
type Demo struct {
	Enabled bool `env:"ENABLED" envDefault:"false"`
	// OrganizerKey is a base58 ed25519 seed. A random key is used when empty.
	OrganizerKey string          `env:"ORGANIZER_KEY"`
	Mint         domain.Identity `env:"MINT" envDefault:"So11111111111111111111111111111111111111112"`
}
