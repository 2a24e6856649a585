package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

// CampaignRepository implements port.CampaignRepository in process memory.
// A single lock serializes writers, including the transfer call made by
// ApplyDistribution, so the store behaves like one sequencer.
type CampaignRepository struct {
	mu            sync.RWMutex
	campaigns     map[domain.Address]domain.Campaign
	distributions []domain.Distribution
	seen          map[string]struct{}
}

// NewCampaignRepository returns an empty store.
func NewCampaignRepository() *CampaignRepository {
	return &CampaignRepository{
		campaigns: make(map[domain.Address]domain.Campaign),
		seen:      make(map[string]struct{}),
	}
}

// CreateCampaign stores c unless its address is taken.
func (r *CampaignRepository) CreateCampaign(_ context.Context, c domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.Address]; ok {
		return domain.ErrDuplicateCampaign
	}
	r.campaigns[c.Address] = clone(c)
	return nil
}

// GetCampaign returns a copy of the stored record or nil.
func (r *CampaignRepository) GetCampaign(_ context.Context, addr domain.Address) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.campaigns[addr]
	if !ok {
		return nil, nil
	}
	c = clone(c)
	return &c, nil
}

// ListCampaigns returns matching campaigns, newest first.
func (r *CampaignRepository) ListCampaigns(_ context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	r.mu.RLock()
	out := make([]domain.Campaign, 0, len(r.campaigns))
	for _, c := range r.campaigns {
		if filter.Organizer != nil && c.Organizer != *filter.Organizer {
			continue
		}
		if filter.Status != domain.StatusUnspecified && c.Status != filter.Status {
			continue
		}
		out = append(out, clone(c))
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Campaign) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.Address.String(), b.Address.String())
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// UpdateStatus commits updated if the stored version is its predecessor.
func (r *CampaignRepository) UpdateStatus(_ context.Context, updated domain.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkVersion(updated); err != nil {
		return err
	}
	r.campaigns[updated.Address] = clone(updated)
	return nil
}

// ApplyDistribution commits the counter and the distribution after a
// successful transfer.
func (r *CampaignRepository) ApplyDistribution(ctx context.Context, updated domain.Campaign, d *domain.Distribution, transfer port.TransferFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.checkVersion(updated); err != nil {
		return err
	}
	if _, ok := r.seen[d.ID]; ok {
		return fmt.Errorf("%w: request %s already processed", domain.ErrInvalidParameters, d.ID)
	}
	ref, err := transfer(ctx)
	if err != nil {
		return err
	}
	d.TransferRef = ref
	r.campaigns[updated.Address] = clone(updated)
	r.distributions = append(r.distributions, *d)
	r.seen[d.ID] = struct{}{}
	return nil
}

// ListRewards returns distributions to recipient, newest first.
func (r *CampaignRepository) ListRewards(_ context.Context, recipient domain.Identity) ([]domain.Reward, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Reward
	for i := len(r.distributions) - 1; i >= 0; i-- {
		d := r.distributions[i]
		if d.Recipient != recipient {
			continue
		}
		c := r.campaigns[d.Campaign]
		out = append(out, domain.Reward{
			Distribution:  d,
			CampaignTitle: c.Title,
			TokenSymbol:   c.TokenSymbol,
			Decimals:      c.Decimals,
		})
	}
	return out, nil
}

func (r *CampaignRepository) checkVersion(updated domain.Campaign) error {
	cur, ok := r.campaigns[updated.Address]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	if cur.Version+1 != updated.Version {
		return fmt.Errorf("%w: stored version %d, update built on %d", domain.ErrStaleSnapshot, cur.Version, updated.Version-1)
	}
	return nil
}

func clone(c domain.Campaign) domain.Campaign {
	c.Benefits = append([]string(nil), c.Benefits...)
	return c
}
