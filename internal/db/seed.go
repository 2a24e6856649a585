package db

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

// Signer signs requests on behalf of the demo organizer.
type Signer interface {
	Identity() domain.Identity
	Sign(message []byte) []byte
}

// Funder credits a campaign pool. Only in-process ledgers can do this.
type Funder interface {
	Fund(mint domain.Identity, pool domain.Address, amount uint64)
}

type signable interface {
	SigningPayload() ([]byte, error)
}

func signed(s Signer, req signable) (port.Signed, error) {
	payload, err := req.SigningPayload()
	if err != nil {
		return port.Signed{}, err
	}
	return port.Signed{Signer: s.Identity(), Signature: s.Sign(payload)}, nil
}

// Seed creates demo campaigns owned by organizer through the regular use
// case. When funder is not nil the pools are funded and a few
// distributions are made to random recipients. Campaigns that already
// exist are skipped, so Seed can run on every start.
func Seed(ctx context.Context, svc port.CampaignUseCase, organizer Signer, mint domain.Identity, funder Funder) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i := 1; i <= 5; i++ {
		total := uint64(1_000_000) * uint64(i)
		status := domain.StatusActive
		if i == 5 {
			status = domain.StatusUpcoming
		}
		req := port.CreateCampaignRequest{
			Seed:        fmt.Sprintf("demo-%d", i),
			Title:       fmt.Sprintf("Demo campaign %d", i),
			Description: "Proof of participation tokens for attendees",
			ImageURL:    fmt.Sprintf("https://example.com/campaign/%d.png", i),
			TokenSymbol: fmt.Sprintf("DEMO%d", i),
			Mint:        mint,
			TotalTokens: total,
			EndDate:     time.Now().AddDate(0, 1, 0).Truncate(time.Second),
			Status:      status,
			Benefits:    []string{"early access", "community role"},
		}
		var err error
		if req.Signed, err = signed(organizer, req); err != nil {
			return err
		}
		resp, err := svc.CreateCampaign(ctx, req)
		if errors.Is(err, domain.ErrDuplicateCampaign) {
			continue
		}
		if err != nil {
			return fmt.Errorf("seed campaign %d: %w", i, err)
		}
		if funder == nil || status != domain.StatusActive {
			continue
		}
		funder.Fund(mint, resp.Address, total)

		// distribute to a handful of random wallets
		for j := 0; j < 10; j++ {
			var recipient domain.Identity
			r.Read(recipient[:])
			dreq := port.DistributeRequest{
				RequestID: uuid.NewString(),
				Campaign:  resp.Address,
				Recipient: recipient,
				Amount:    uint64(r.Intn(1000) + 1),
			}
			if dreq.Signed, err = signed(organizer, dreq); err != nil {
				return err
			}
			if _, err = svc.DistributeTokens(ctx, dreq); err != nil {
				return fmt.Errorf("seed distribution for %s: %w", resp.Address, err)
			}
		}
	}
	return nil
}
