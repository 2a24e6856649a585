package port

import (
	"context"

	"cpop-ledger/internal/core/domain"
)

// TokenTransfer is the fungible-unit transfer primitive. Implementations
// must treat IdempotencyKey as a dedupe key so a retried request moves
// funds at most once.
type TokenTransfer interface {
	Transfer(ctx context.Context, req TransferRequest) (TransferReceipt, error)
}

// TransferRequest moves Amount units of Mint from the campaign pool (the
// campaign's derived address) to Recipient.
type TransferRequest struct {
	IdempotencyKey string
	Mint           domain.Identity
	Pool           domain.Address
	Recipient      domain.Identity
	Amount         uint64
}

// TransferReceipt identifies a completed transfer.
type TransferReceipt struct {
	Reference string
}
