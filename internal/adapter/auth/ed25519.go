package auth

import (
	"crypto/ed25519"
	"fmt"

	"cpop-ledger/internal/core/domain"
)

// Ed25519Verifier checks detached ed25519 signatures, the scheme wallet
// keys sign with.
type Ed25519Verifier struct{}

// NewEd25519Verifier returns a verifier. It holds no state.
func NewEd25519Verifier() Ed25519Verifier {
	return Ed25519Verifier{}
}

// Verify returns domain.ErrUnauthorized when sig is not a valid signature
// of message by signer.
func (Ed25519Verifier) Verify(signer domain.Identity, message, sig []byte) error {
	if signer.IsZero() {
		return fmt.Errorf("%w: missing signer", domain.ErrUnauthorized)
	}
	if len(sig) != ed25519.SignatureSize {
		return fmt.Errorf("%w: signature must be %d bytes", domain.ErrUnauthorized, ed25519.SignatureSize)
	}
	if !ed25519.Verify(ed25519.PublicKey(signer[:]), message, sig) {
		return fmt.Errorf("%w: bad signature for %s", domain.ErrUnauthorized, signer)
	}
	return nil
}

// Keypair is a local signing key. It stands in for a wallet in tests and
// in the cpopctl tool.
type Keypair struct {
	private ed25519.PrivateKey
}

// NewKeypair generates a fresh random key.
func NewKeypair() (Keypair, error) {
	_, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		return Keypair{}, err
	}
	return Keypair{private: priv}, nil
}

// KeypairFromSeed rebuilds a key from its 32 byte seed.
func KeypairFromSeed(seed []byte) (Keypair, error) {
	if len(seed) != ed25519.SeedSize {
		return Keypair{}, fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return Keypair{private: ed25519.NewKeyFromSeed(seed)}, nil
}

// Identity returns the public half of the key.
func (k Keypair) Identity() domain.Identity {
	var id domain.Identity
	copy(id[:], k.private.Public().(ed25519.PublicKey))
	return id
}

// Seed returns the private seed.
func (k Keypair) Seed() []byte {
	return k.private.Seed()
}

// Sign signs message.
func (k Keypair) Sign(message []byte) []byte {
	return ed25519.Sign(k.private, message)
}
