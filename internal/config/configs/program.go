package configs

import "cpop-ledger/internal/core/domain"

// Program configures the ledger rules. ID is the program identity campaign
// addresses are derived under; changing it moves every address.
type Program struct {
	ID domain.Identity `env:"ID" envDefault:"J1LhfXskL8XwGUpa5jpenWg7mXEKE9TdYJLxYTbu8LAz"`
	// DistributionPolicy is one of "organizer", "open" or "allowlist".
	DistributionPolicy string `env:"DISTRIBUTION_POLICY" envDefault:"organizer"`
	// Allowlist holds the extra identities allowed to distribute under the
	// "allowlist" policy, comma separated.
	Allowlist []domain.Identity `env:"ALLOWLIST" envSeparator:","`
}
