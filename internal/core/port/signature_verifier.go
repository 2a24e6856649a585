package port

import "cpop-ledger/internal/core/domain"

// SignatureVerifier checks that signer controls the key that produced sig
// over message.
type SignatureVerifier interface {
	Verify(signer domain.Identity, message, sig []byte) error
}
