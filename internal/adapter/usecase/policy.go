package usecase

import (
	"fmt"
	"slices"
	"strings"

	"cpop-ledger/internal/core/domain"
)

// DistributionPolicy decides who may trigger a distribution from a
// campaign pool.
type DistributionPolicy int

const (
	// PolicyOrganizer allows the campaign organizer only.
	PolicyOrganizer DistributionPolicy = iota
	// PolicyOpen allows any verified signer.
	PolicyOpen
	// PolicyAllowlist allows the organizer and a configured set of identities.
	PolicyAllowlist
)

func (p DistributionPolicy) String() string {
	switch p {
	case PolicyOpen:
		return "open"
	case PolicyAllowlist:
		return "allowlist"
	default:
		return "organizer"
	}
}

// ParseDistributionPolicy maps a config value to a policy. Empty means
// PolicyOrganizer.
func ParseDistributionPolicy(s string) (DistributionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "organizer":
		return PolicyOrganizer, nil
	case "open":
		return PolicyOpen, nil
	case "allowlist":
		return PolicyAllowlist, nil
	default:
		return PolicyOrganizer, fmt.Errorf("unknown distribution policy %q", s)
	}
}

func (u *CampaignUseCase) canDistribute(caller domain.Identity, c *domain.Campaign) bool {
	switch u.policy {
	case PolicyOpen:
		return true
	case PolicyAllowlist:
		return caller == c.Organizer || slices.Contains(u.allowlist, caller)
	default:
		return caller == c.Organizer
	}
}
