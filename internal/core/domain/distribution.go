package domain

import "time"

// Distribution records one committed transfer out of a campaign pool.
// ID doubles as the idempotency key handed to the transfer primitive.
type Distribution struct {
	ID          string
	Campaign    Address
	Caller      Identity
	Recipient   Identity
	Mint        Identity
	Amount      uint64
	TransferRef string
	CreatedAt   time.Time
}

// Reward is a distribution seen from the recipient's side, enriched with
// the campaign's display fields.
type Reward struct {
	Distribution
	CampaignTitle string
	TokenSymbol   string
	Decimals      uint8
}
