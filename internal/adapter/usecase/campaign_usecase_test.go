package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cpop-ledger/internal/adapter/auth"
	"cpop-ledger/internal/adapter/memory"
	"cpop-ledger/internal/adapter/transfer"
	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
	"cpop-ledger/internal/core/port/mocks"
	"cpop-ledger/internal/metrics"
)

var (
	program = domain.MustParseIdentity("J1LhfXskL8XwGUpa5jpenWg7mXEKE9TdYJLxYTbu8LAz")
	mint    = domain.Identity{0x4d, 0x01}
	clock   = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

type fixture struct {
	svc     *CampaignUseCase
	repo    *memory.CampaignRepository
	ledger  *transfer.LedgerTransfer
	metrics *metrics.Ledger
	org     auth.Keypair
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	org, err := auth.NewKeypair()
	require.NoError(t, err)

	f := &fixture{
		repo:    memory.NewCampaignRepository(),
		ledger:  transfer.NewLedgerTransfer(),
		metrics: metrics.NewLedger(prometheus.NewRegistry()),
		org:     org,
	}
	cfg.Program = program
	cfg.Metrics = f.metrics
	cfg.Now = func() time.Time { return clock }
	f.svc = NewCampaignUseCase(f.repo, f.ledger, auth.NewEd25519Verifier(), cfg)
	return f
}

func createReq(t *testing.T, k auth.Keypair, seed string) port.CreateCampaignRequest {
	t.Helper()
	req := port.CreateCampaignRequest{
		Seed:        seed,
		Title:       "Launch party",
		TokenSymbol: "POP",
		Mint:        mint,
		TotalTokens: 1000,
		EndDate:     clock.Add(24 * time.Hour),
		Benefits:    []string{"early access"},
	}
	req.Signed = sign(t, k, req)
	return req
}

func distributeReq(t *testing.T, k auth.Keypair, addr domain.Address, to domain.Identity, amount uint64) port.DistributeRequest {
	t.Helper()
	req := port.DistributeRequest{
		RequestID: uuid.NewString(),
		Campaign:  addr,
		Recipient: to,
		Amount:    amount,
	}
	req.Signed = sign(t, k, req)
	return req
}

func statusReq(t *testing.T, k auth.Keypair, addr domain.Address, s domain.Status) port.UpdateStatusRequest {
	t.Helper()
	req := port.UpdateStatusRequest{Campaign: addr, Status: s}
	req.Signed = sign(t, k, req)
	return req
}

func sign(t *testing.T, k auth.Keypair, req signable) port.Signed {
	t.Helper()
	payload, err := req.SigningPayload()
	require.NoError(t, err)
	return port.Signed{Signer: k.Identity(), Signature: k.Sign(payload)}
}

// create stores the "abc" campaign and funds its pool.
func (f *fixture) create(t *testing.T) domain.Address {
	t.Helper()
	resp, err := f.svc.CreateCampaign(context.Background(), createReq(t, f.org, "abc"))
	require.NoError(t, err)
	f.ledger.Fund(mint, resp.Address, 1000)
	return resp.Address
}

func (f *fixture) get(t *testing.T, addr domain.Address) *domain.Campaign {
	t.Helper()
	c, err := f.svc.GetCampaign(context.Background(), addr)
	require.NoError(t, err)
	return c
}

func newWallet(t *testing.T) auth.Keypair {
	t.Helper()
	k, err := auth.NewKeypair()
	require.NoError(t, err)
	return k
}

func TestCampaignLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})
	recipient := newWallet(t).Identity()

	// 1. create
	resp, err := f.svc.CreateCampaign(ctx, createReq(t, f.org, "abc"))
	require.NoError(t, err)
	addr, bump, err := domain.DeriveAddress(program, f.org.Identity(), "abc")
	require.NoError(t, err)
	require.Equal(t, addr, resp.Address)
	require.Equal(t, bump, resp.Bump)
	f.ledger.Fund(mint, addr, 1000)

	c := f.get(t, addr)
	require.Zero(t, c.DistributedTokens)
	require.Equal(t, domain.StatusActive, c.Status)
	require.Equal(t, f.org.Identity(), c.Organizer)

	// 2. duplicate
	_, err = f.svc.CreateCampaign(ctx, createReq(t, f.org, "abc"))
	require.ErrorIs(t, err, domain.ErrDuplicateCampaign)

	// 3. distribute 100
	d, err := f.svc.DistributeTokens(ctx, distributeReq(t, f.org, addr, recipient, 100))
	require.NoError(t, err)
	require.NotEmpty(t, d.TransferRef)
	require.EqualValues(t, 100, f.get(t, addr).DistributedTokens)
	require.EqualValues(t, 100, f.ledger.Balance(mint, recipient))

	// 4. 950 more exceeds supply
	_, err = f.svc.DistributeTokens(ctx, distributeReq(t, f.org, addr, recipient, 950))
	require.ErrorIs(t, err, domain.ErrExceedsSupply)
	require.EqualValues(t, 100, f.get(t, addr).DistributedTokens)
	require.EqualValues(t, 100, f.ledger.Balance(mint, recipient))

	// 6. a stranger cannot change status
	stranger := newWallet(t)
	err = f.svc.UpdateCampaignStatus(ctx, statusReq(t, stranger, addr, domain.StatusCompleted))
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Equal(t, domain.StatusActive, f.get(t, addr).Status)

	// 5. complete, then distribution is refused
	require.NoError(t, f.svc.UpdateCampaignStatus(ctx, statusReq(t, f.org, addr, domain.StatusCompleted)))
	require.Equal(t, domain.StatusCompleted, f.get(t, addr).Status)
	_, err = f.svc.DistributeTokens(ctx, distributeReq(t, f.org, addr, recipient, 1))
	require.ErrorIs(t, err, domain.ErrCampaignNotActive)

	// completed -> active is never allowed
	err = f.svc.UpdateCampaignStatus(ctx, statusReq(t, f.org, addr, domain.StatusActive))
	require.ErrorIs(t, err, domain.ErrInvalidTransition)

	err = f.svc.UpdateCampaignStatus(ctx, statusReq(t, stranger, addr, domain.StatusActive))
	require.ErrorIs(t, err, domain.ErrUnauthorized)
	require.Equal(t, domain.StatusCompleted, f.get(t, addr).Status)

	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.CampaignsCreated))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Distributions))
	require.Equal(t, 100.0, testutil.ToFloat64(f.metrics.TokensDistributed))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.StatusChanges.WithLabelValues("completed")))
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("create", string(domain.CodeDuplicateCampaign))))
	require.Equal(t, 2.0, testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("update_status", string(domain.CodeUnauthorized))))
}

func TestGetCampaignIsIdempotent(t *testing.T) {
	f := newFixture(t, Config{})
	addr := f.create(t)

	first := f.get(t, addr)
	second := f.get(t, addr)
	require.Equal(t, first, second)

	_, err := f.svc.GetCampaign(context.Background(), domain.Address{0x01})
	require.ErrorIs(t, err, domain.ErrCampaignNotFound)
}

func TestDistributedNeverDecreases(t *testing.T) {
	f := newFixture(t, Config{})
	addr := f.create(t)
	recipient := newWallet(t).Identity()

	var last uint64
	for _, amount := range []uint64{1, 250, 999, 300, 449, 1, 1} {
		_, err := f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, addr, recipient, amount))
		c := f.get(t, addr)
		if err != nil {
			require.ErrorIs(t, err, domain.ErrExceedsSupply)
		}
		require.GreaterOrEqual(t, c.DistributedTokens, last)
		require.LessOrEqual(t, c.DistributedTokens, c.TotalTokens)
		last = c.DistributedTokens
	}
	require.EqualValues(t, 1000, last)
}

func TestCreateCampaignRequiresSeed(t *testing.T) {
	f := newFixture(t, Config{})
	req := createReq(t, f.org, "")

	for i := 0; i < 3; i++ {
		_, err := f.svc.CreateCampaign(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrInvalidParameters)
		later := clock.Add(time.Duration(i+1) * time.Millisecond)
		f.svc.now = func() time.Time { return later }
	}

	list, err := f.svc.ListCampaigns(context.Background(), port.CampaignFilter{})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateCampaignReplayIsDuplicate(t *testing.T) {
	f := newFixture(t, Config{})
	req := createReq(t, f.org, "campaign-1740830400000")

	resp, err := f.svc.CreateCampaign(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, "campaign-1740830400000", resp.Seed)

	f.svc.now = func() time.Time { return clock.Add(time.Second) }
	_, err = f.svc.CreateCampaign(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrDuplicateCampaign)

	org := f.org.Identity()
	list, err := f.svc.ListCampaigns(context.Background(), port.CampaignFilter{Organizer: &org})
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, resp.Address, list[0].Address)
}

func TestCreateCampaignRejectsBadSignature(t *testing.T) {
	f := newFixture(t, Config{})
	req := createReq(t, f.org, "abc")
	req.TotalTokens = 5000

	_, err := f.svc.CreateCampaign(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrUnauthorized)

	list, err := f.svc.ListCampaigns(context.Background(), port.CampaignFilter{})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestCreateCampaignRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, Config{})
	req := port.CreateCampaignRequest{
		Seed:        "abc",
		Title:       "x",
		TokenSymbol: "POP",
		Mint:        mint,
		TotalTokens: 1000,
		EndDate:     clock.Add(-time.Hour),
	}
	req.Signed = sign(t, f.org, req)

	_, err := f.svc.CreateCampaign(context.Background(), req)
	require.ErrorIs(t, err, domain.ErrInvalidParameters)
	require.Equal(t, domain.CodeInvalidParameters, domain.CodeOf(err))
}

func TestDistributeRequestValidation(t *testing.T) {
	f := newFixture(t, Config{})
	addr := f.create(t)
	recipient := newWallet(t).Identity()

	t.Run("request id must be a uuid", func(t *testing.T) {
		req := port.DistributeRequest{RequestID: "nope", Campaign: addr, Recipient: recipient, Amount: 1}
		req.Signed = sign(t, f.org, req)
		_, err := f.svc.DistributeTokens(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrInvalidParameters)
	})

	t.Run("recipient required", func(t *testing.T) {
		_, err := f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, addr, domain.Identity{}, 1))
		require.ErrorIs(t, err, domain.ErrInvalidParameters)
	})

	t.Run("zero amount", func(t *testing.T) {
		_, err := f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, addr, recipient, 0))
		require.ErrorIs(t, err, domain.ErrInvalidParameters)
	})

	t.Run("unknown campaign", func(t *testing.T) {
		_, err := f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, domain.Address{0x02}, recipient, 1))
		require.ErrorIs(t, err, domain.ErrCampaignNotFound)
	})

	t.Run("replayed request", func(t *testing.T) {
		req := distributeReq(t, f.org, addr, recipient, 5)
		_, err := f.svc.DistributeTokens(context.Background(), req)
		require.NoError(t, err)
		_, err = f.svc.DistributeTokens(context.Background(), req)
		require.ErrorIs(t, err, domain.ErrInvalidParameters)
		require.EqualValues(t, 5, f.get(t, addr).DistributedTokens)
	})

	require.Zero(t, testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("distribute", string(domain.CodeUnknown))))
}

func TestDistributionPolicy(t *testing.T) {
	outsider := func(t *testing.T) auth.Keypair { return newWallet(t) }

	t.Run("organizer only by default", func(t *testing.T) {
		f := newFixture(t, Config{})
		addr := f.create(t)
		caller := outsider(t)
		_, err := f.svc.DistributeTokens(context.Background(), distributeReq(t, caller, addr, caller.Identity(), 1))
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		require.Zero(t, f.get(t, addr).DistributedTokens)
	})

	t.Run("open", func(t *testing.T) {
		f := newFixture(t, Config{Policy: PolicyOpen})
		addr := f.create(t)
		caller := outsider(t)
		_, err := f.svc.DistributeTokens(context.Background(), distributeReq(t, caller, addr, caller.Identity(), 1))
		require.NoError(t, err)
	})

	t.Run("allowlist", func(t *testing.T) {
		listed, unlisted := outsider(t), outsider(t)
		f := newFixture(t, Config{Policy: PolicyAllowlist, Allowlist: []domain.Identity{listed.Identity()}})
		addr := f.create(t)

		_, err := f.svc.DistributeTokens(context.Background(), distributeReq(t, listed, addr, listed.Identity(), 1))
		require.NoError(t, err)
		_, err = f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, addr, listed.Identity(), 1))
		require.NoError(t, err)
		_, err = f.svc.DistributeTokens(context.Background(), distributeReq(t, unlisted, addr, unlisted.Identity(), 1))
		require.ErrorIs(t, err, domain.ErrUnauthorized)
		require.EqualValues(t, 2, f.get(t, addr).DistributedTokens)
	})

	t.Run("status changes stay organizer only", func(t *testing.T) {
		f := newFixture(t, Config{Policy: PolicyOpen})
		addr := f.create(t)
		err := f.svc.UpdateCampaignStatus(context.Background(), statusReq(t, outsider(t), addr, domain.StatusCompleted))
		require.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestParseDistributionPolicy(t *testing.T) {
	for in, want := range map[string]DistributionPolicy{
		"":          PolicyOrganizer,
		"organizer": PolicyOrganizer,
		"OPEN":      PolicyOpen,
		"Allowlist": PolicyAllowlist,
	} {
		got, err := ParseDistributionPolicy(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseDistributionPolicy("anyone")
	require.Error(t, err)
}

func TestTransferFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t, Config{})
	resp, err := f.svc.CreateCampaign(context.Background(), createReq(t, f.org, "abc"))
	require.NoError(t, err)
	f.ledger.Fund(mint, resp.Address, 10)
	recipient := newWallet(t).Identity()

	// the pool holds less than the campaign supply
	_, err = f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, resp.Address, recipient, 50))
	require.ErrorIs(t, err, domain.ErrTransferFailed)
	require.ErrorIs(t, err, transfer.ErrInsufficientBalance)

	c := f.get(t, resp.Address)
	require.Zero(t, c.DistributedTokens)
	require.EqualValues(t, 1, c.Version)

	rewards, err := f.svc.ListRewards(context.Background(), recipient)
	require.NoError(t, err)
	require.Empty(t, rewards)
	require.Equal(t, 1.0, testutil.ToFloat64(f.metrics.Rejections.WithLabelValues("distribute", string(domain.CodeTransferFailed))))
}

func TestDistributeSurfacesStaleSnapshot(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	xfer := mocks.NewMockTokenTransfer(t)
	org := newWallet(t)
	snapshot := &domain.Campaign{
		Address:     domain.Address{0x07},
		Organizer:   org.Identity(),
		Mint:        mint,
		TotalTokens: 100,
		Status:      domain.StatusActive,
		Version:     3,
	}

	repo.EXPECT().GetCampaign(mock.Anything, snapshot.Address).Return(snapshot, nil)
	repo.EXPECT().
		ApplyDistribution(mock.Anything, mock.MatchedBy(func(c domain.Campaign) bool {
			return c.Version == 4 && c.DistributedTokens == 10
		}), mock.AnythingOfType("*domain.Distribution"), mock.Anything).
		Return(domain.ErrStaleSnapshot)

	svc := NewCampaignUseCase(repo, xfer, auth.NewEd25519Verifier(), Config{Program: program})
	_, err := svc.DistributeTokens(context.Background(), distributeReq(t, org, snapshot.Address, domain.Identity{9}, 10))
	require.ErrorIs(t, err, domain.ErrStaleSnapshot)
	require.Equal(t, domain.CodeStaleSnapshot, domain.CodeOf(err))
	xfer.AssertNotCalled(t, "Transfer", mock.Anything, mock.Anything)
}

func TestDistributeTransferUsesRequestID(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	xfer := mocks.NewMockTokenTransfer(t)
	org := newWallet(t)
	to := domain.Identity{9}
	snapshot := &domain.Campaign{
		Address:     domain.Address{0x07},
		Organizer:   org.Identity(),
		Mint:        mint,
		TotalTokens: 100,
		Status:      domain.StatusActive,
		Version:     1,
	}
	req := distributeReq(t, org, snapshot.Address, to, 10)

	repo.EXPECT().GetCampaign(mock.Anything, snapshot.Address).Return(snapshot, nil)
	repo.EXPECT().
		ApplyDistribution(mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, _ domain.Campaign, d *domain.Distribution, fn port.TransferFunc) error {
			ref, err := fn(ctx)
			d.TransferRef = ref
			return err
		})
	xfer.EXPECT().
		Transfer(mock.Anything, port.TransferRequest{
			IdempotencyKey: req.RequestID,
			Mint:           mint,
			Pool:           snapshot.Address,
			Recipient:      to,
			Amount:         10,
		}).
		Return(port.TransferReceipt{Reference: "tx-1"}, nil)

	svc := NewCampaignUseCase(repo, xfer, auth.NewEd25519Verifier(), Config{Program: program})
	d, err := svc.DistributeTokens(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, req.RequestID, d.ID)
	require.Equal(t, "tx-1", d.TransferRef)
}

func TestMutationsLoadFreshSnapshots(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	org := newWallet(t)
	snapshot := &domain.Campaign{
		Address:     domain.Address{0x07},
		Organizer:   org.Identity(),
		Mint:        mint,
		TotalTokens: 100,
		Status:      domain.StatusActive,
		Version:     1,
	}
	fresh := mock.MatchedBy(func(ctx context.Context) bool { return port.IsFreshRead(ctx) })
	cached := mock.MatchedBy(func(ctx context.Context) bool { return !port.IsFreshRead(ctx) })

	repo.EXPECT().GetCampaign(fresh, snapshot.Address).Return(snapshot, nil).Once()
	repo.EXPECT().UpdateStatus(mock.Anything, mock.MatchedBy(func(c domain.Campaign) bool {
		return c.Version == 2 && c.Status == domain.StatusCompleted
	})).Return(nil).Once()
	repo.EXPECT().GetCampaign(cached, snapshot.Address).Return(snapshot, nil).Once()

	svc := NewCampaignUseCase(repo, mocks.NewMockTokenTransfer(t), auth.NewEd25519Verifier(), Config{Program: program})
	require.NoError(t, svc.UpdateCampaignStatus(context.Background(), statusReq(t, org, snapshot.Address, domain.StatusCompleted)))

	_, err := svc.GetCampaign(context.Background(), snapshot.Address)
	require.NoError(t, err)
}

func TestUpdateStatusFromUpcoming(t *testing.T) {
	f := newFixture(t, Config{})
	req := createReq(t, f.org, "later")
	req.Status = domain.StatusUpcoming
	req.Signed = sign(t, f.org, req)
	resp, err := f.svc.CreateCampaign(context.Background(), req)
	require.NoError(t, err)
	f.ledger.Fund(mint, resp.Address, 1000)

	_, err = f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, resp.Address, domain.Identity{9}, 1))
	require.ErrorIs(t, err, domain.ErrCampaignNotActive)

	require.NoError(t, f.svc.UpdateCampaignStatus(context.Background(), statusReq(t, f.org, resp.Address, domain.StatusActive)))
	_, err = f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, resp.Address, domain.Identity{9}, 1))
	require.NoError(t, err)

	c := f.get(t, resp.Address)
	require.Equal(t, domain.StatusActive, c.Status)
	require.EqualValues(t, 3, c.Version)
}

func TestListCampaignsAndRewards(t *testing.T) {
	f := newFixture(t, Config{})
	addr := f.create(t)
	other := newWallet(t)
	_, err := f.svc.CreateCampaign(context.Background(), createReq(t, other, "abc"))
	require.NoError(t, err)

	org := f.org.Identity()
	mine, err := f.svc.ListCampaigns(context.Background(), port.CampaignFilter{Organizer: &org})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Equal(t, addr, mine[0].Address)

	recipient := newWallet(t).Identity()
	_, err = f.svc.DistributeTokens(context.Background(), distributeReq(t, f.org, addr, recipient, 7))
	require.NoError(t, err)

	rewards, err := f.svc.ListRewards(context.Background(), recipient)
	require.NoError(t, err)
	require.Len(t, rewards, 1)
	require.EqualValues(t, 7, rewards[0].Amount)
	require.Equal(t, "POP", rewards[0].TokenSymbol)
	require.Equal(t, "Launch party", rewards[0].CampaignTitle)

	_, err = f.svc.ListRewards(context.Background(), domain.Identity{})
	require.ErrorIs(t, err, domain.ErrInvalidParameters)
}

func TestListCampaignsClampsLimit(t *testing.T) {
	repo := mocks.NewMockCampaignRepository(t)
	repo.EXPECT().ListCampaigns(mock.Anything, port.CampaignFilter{Limit: defaultListLimit}).Return(nil, nil).Once()
	repo.EXPECT().ListCampaigns(mock.Anything, port.CampaignFilter{Limit: maxListLimit}).Return(nil, nil).Once()

	svc := NewCampaignUseCase(repo, nil, auth.NewEd25519Verifier(), Config{})
	_, err := svc.ListCampaigns(context.Background(), port.CampaignFilter{})
	require.NoError(t, err)
	_, err = svc.ListCampaigns(context.Background(), port.CampaignFilter{Limit: 5000})
	require.NoError(t, err)
}

// TestConcurrentDistribution ensures concurrent distributions never push
// the counter past the supply and never lose an update.
func TestConcurrentDistribution(t *testing.T) {
	f := newFixture(t, Config{})
	addr := f.create(t)
	recipient := newWallet(t).Identity()

	const workers = 40
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		ok  uint64
		bad []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := port.DistributeRequest{RequestID: uuid.NewString(), Campaign: addr, Recipient: recipient, Amount: 50}
			payload, err := req.SigningPayload()
			if err != nil {
				panic(err)
			}
			req.Signed = port.Signed{Signer: f.org.Identity(), Signature: f.org.Sign(payload)}

			_, err = f.svc.DistributeTokens(context.Background(), req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok += 50
			case errors.Is(err, domain.ErrStaleSnapshot), errors.Is(err, domain.ErrExceedsSupply):
			default:
				bad = append(bad, err)
			}
		}()
	}
	wg.Wait()

	require.Empty(t, bad)
	c := f.get(t, addr)
	require.Equal(t, ok, c.DistributedTokens)
	require.LessOrEqual(t, c.DistributedTokens, c.TotalTokens)
	require.Equal(t, ok, f.ledger.Balance(mint, recipient))
}
