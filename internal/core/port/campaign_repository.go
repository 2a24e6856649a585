package port

import (
	"context"

	"cpop-ledger/internal/core/domain"
)

// CampaignRepository is the authoritative campaign store. It is an outbound
// port. Mutations are compare-and-swap on Campaign.Version: the caller passes
// the updated record and the store commits it only if the stored version is
// still updated.Version-1, otherwise domain.ErrStaleSnapshot is returned and
// nothing changes.
type CampaignRepository interface {
	// CreateCampaign stores a new record. It returns domain.ErrDuplicateCampaign
	// when the address is taken.
	CreateCampaign(ctx context.Context, c domain.Campaign) error
	// GetCampaign returns nil, nil when the address is unknown.
	GetCampaign(ctx context.Context, addr domain.Address) (*domain.Campaign, error)
	// ListCampaigns returns campaigns matching the filter, newest first.
	ListCampaigns(ctx context.Context, filter CampaignFilter) ([]domain.Campaign, error)
	// UpdateStatus persists a status transition.
	UpdateStatus(ctx context.Context, updated domain.Campaign) error
	// ApplyDistribution persists the incremented counter and the distribution
	// row, calling transfer before committing. If transfer returns an error
	// nothing is persisted and the error is returned as is.
	ApplyDistribution(ctx context.Context, updated domain.Campaign, d *domain.Distribution, transfer TransferFunc) error
	// ListRewards returns distributions received by recipient, newest first.
	ListRewards(ctx context.Context, recipient domain.Identity) ([]domain.Reward, error)
}

// TransferFunc moves tokens and returns the primitive's reference for the
// transfer (e.g. a transaction signature).
type TransferFunc func(ctx context.Context) (string, error)

// CampaignFilter narrows ListCampaigns. Zero values match everything.
type CampaignFilter struct {
	Organizer *domain.Identity
	Status    domain.Status
	Limit     int
}

type freshReadKey struct{}

// WithFreshRead marks ctx so that caching repositories serve GetCampaign
// from the authoritative store.
func WithFreshRead(ctx context.Context) context.Context {
	return context.WithValue(ctx, freshReadKey{}, true)
}

// IsFreshRead reports whether ctx was marked by WithFreshRead.
func IsFreshRead(ctx context.Context) bool {
	v, _ := ctx.Value(freshReadKey{}).(bool)
	return v
}
