package cache

import (
	"context"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

// CampaignRepository is a read-through cache in front of the authoritative
// repository. Only GetCampaign is served from the cache; every write goes to
// the underlying store and then drops the cached record, whatever the
// outcome, so the cache never holds a version the store has moved past
// because of this process.
//
// A fill races with writes to the same key: the load may return a record
// that a write replaces before the fill is stored. Writes bump a generation
// counter for the key and fills taken under an older generation are
// dropped. Counters are striped by the first address byte, so a write may
// also drop an unrelated fill, which only costs a later reload.
type CampaignRepository struct {
	next  port.CampaignRepository
	cache *ristretto.Cache[string, domain.Campaign]
	ttl   time.Duration

	mu   sync.Mutex
	gens [256]uint64
}

// NewCampaignRepository wraps next with a cache holding up to maxItems
// records for at most ttl each. Writes made by other processes become
// visible once the entry expires or a local write invalidates it.
func NewCampaignRepository(next port.CampaignRepository, maxItems int64, ttl time.Duration) (*CampaignRepository, error) {
	if maxItems <= 0 {
		maxItems = 10_000
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, domain.Campaign]{
		NumCounters: maxItems * 10,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CampaignRepository{next: next, cache: c, ttl: ttl}, nil
}

// Close stops the cache's background goroutines.
func (r *CampaignRepository) Close() {
	r.cache.Close()
}

func (r *CampaignRepository) CreateCampaign(ctx context.Context, c domain.Campaign) error {
	defer r.invalidate(c.Address)
	return r.next.CreateCampaign(ctx, c)
}

// GetCampaign returns the cached record or loads it from the store.
// Missing campaigns are not cached. Contexts marked with port.WithFreshRead
// always load from the store.
func (r *CampaignRepository) GetCampaign(ctx context.Context, addr domain.Address) (*domain.Campaign, error) {
	key := addr.String()
	if !port.IsFreshRead(ctx) {
		if c, ok := r.cache.Get(key); ok {
			c.Benefits = append([]string(nil), c.Benefits...)
			return &c, nil
		}
	}
	gen := r.generation(addr)
	c, err := r.next.GetCampaign(ctx, addr)
	if err != nil || c == nil {
		return c, err
	}
	stored := *c
	stored.Benefits = append([]string(nil), c.Benefits...)
	r.fill(addr, gen, stored)
	return c, nil
}

func (r *CampaignRepository) ListCampaigns(ctx context.Context, filter port.CampaignFilter) ([]domain.Campaign, error) {
	return r.next.ListCampaigns(ctx, filter)
}

func (r *CampaignRepository) UpdateStatus(ctx context.Context, updated domain.Campaign) error {
	defer r.invalidate(updated.Address)
	return r.next.UpdateStatus(ctx, updated)
}

func (r *CampaignRepository) ApplyDistribution(ctx context.Context, updated domain.Campaign, d *domain.Distribution, transfer port.TransferFunc) error {
	defer r.invalidate(updated.Address)
	return r.next.ApplyDistribution(ctx, updated, d, transfer)
}

func (r *CampaignRepository) ListRewards(ctx context.Context, recipient domain.Identity) ([]domain.Reward, error) {
	return r.next.ListRewards(ctx, recipient)
}

func (r *CampaignRepository) generation(addr domain.Address) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.gens[addr[0]]
}

// fill stores c unless a write to its stripe happened since gen was read.
func (r *CampaignRepository) fill(addr domain.Address, gen uint64, c domain.Campaign) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gens[addr[0]] != gen {
		return
	}
	r.cache.SetWithTTL(addr.String(), c, 1, r.ttl)
}

func (r *CampaignRepository) invalidate(addr domain.Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gens[addr[0]]++
	r.cache.Del(addr.String())
}

// wait blocks until pending sets are applied. Tests use it to make the
// cache deterministic.
func (r *CampaignRepository) wait() {
	r.cache.Wait()
}
