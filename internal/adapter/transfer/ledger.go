package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"cpop-ledger/internal/core/domain"
	"cpop-ledger/internal/core/port"
)

// ErrInsufficientBalance is returned when a pool cannot cover a transfer.
var ErrInsufficientBalance = errors.New("insufficient pool balance")

type account struct {
	mint  domain.Identity
	owner [domain.KeySize]byte
}

// LedgerTransfer keeps token balances in memory. It backs the memory
// storage driver and tests.
type LedgerTransfer struct {
	mu       sync.Mutex
	balances map[account]uint64
	receipts map[string]port.TransferReceipt
}

func NewLedgerTransfer() *LedgerTransfer {
	return &LedgerTransfer{
		balances: make(map[account]uint64),
		receipts: make(map[string]port.TransferReceipt),
	}
}

// Fund credits amount of mint to pool.
func (l *LedgerTransfer) Fund(mint domain.Identity, pool domain.Address, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[account{mint: mint, owner: pool}] += amount
}

// Balance returns the amount of mint held by owner.
func (l *LedgerTransfer) Balance(mint domain.Identity, owner [domain.KeySize]byte) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account{mint: mint, owner: owner}]
}

// Transfer moves funds from the pool to the recipient. A repeated
// idempotency key returns the first receipt without moving funds again.
func (l *LedgerTransfer) Transfer(_ context.Context, req port.TransferRequest) (port.TransferReceipt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r, ok := l.receipts[req.IdempotencyKey]; ok {
		return r, nil
	}
	from := account{mint: req.Mint, owner: req.Pool}
	if l.balances[from] < req.Amount {
		return port.TransferReceipt{}, fmt.Errorf("%w: pool %s holds %d, %d requested",
			ErrInsufficientBalance, req.Pool, l.balances[from], req.Amount)
	}
	l.balances[from] -= req.Amount
	l.balances[account{mint: req.Mint, owner: req.Recipient}] += req.Amount

	r := port.TransferReceipt{Reference: uuid.NewString()}
	l.receipts[req.IdempotencyKey] = r
	return r, nil
}
