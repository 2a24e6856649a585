package domain

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/btcsuite/btcd/btcutil/base58"
)

// KeySize is the length of identities and derived addresses in bytes.
const KeySize = 32

// MaxSeedLen bounds every individual seed fed into address derivation.
const MaxSeedLen = 32

const (
	campaignSeedTag = "campaign"
	pdaMarker       = "ProgramDerivedAddress"
)

// Identity is the public key of a principal (organizer, recipient, program).
// Its text form is base58.
type Identity [KeySize]byte

// Address is the storage key of a campaign record.
type Address [KeySize]byte

// ParseIdentity decodes a base58 identity.
func ParseIdentity(s string) (Identity, error) {
	var id Identity
	b := base58.Decode(s)
	if len(b) != KeySize {
		return id, fmt.Errorf("%w: identity %q is not a %d byte base58 key", ErrInvalidParameters, s, KeySize)
	}
	copy(id[:], b)
	return id, nil
}

// MustParseIdentity is ParseIdentity for constants and tests.
func MustParseIdentity(s string) Identity {
	id, err := ParseIdentity(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id Identity) String() string { return base58.Encode(id[:]) }

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool { return id == Identity{} }

func (id Identity) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *Identity) UnmarshalText(b []byte) error {
	parsed, err := ParseIdentity(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseAddress decodes a base58 campaign address.
func ParseAddress(s string) (Address, error) {
	var a Address
	b := base58.Decode(s)
	if len(b) != KeySize {
		return a, fmt.Errorf("%w: address %q is not a %d byte base58 key", ErrInvalidParameters, s, KeySize)
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string { return base58.Encode(a[:]) }

func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// DeriveAddress computes the program-derived address of a campaign from
// the organizer and seed. Candidates are tried from bump 255 down to 1 and
// the first hash that does not decode to an ed25519 point wins, so nobody
// can hold a private key for the result. The bump is returned alongside.
func DeriveAddress(program, organizer Identity, seed string) (Address, uint8, error) {
	if len(seed) > MaxSeedLen {
		return Address{}, 0, fmt.Errorf("%w: seed exceeds %d bytes", ErrInvalidParameters, MaxSeedLen)
	}
	seeds := [][]byte{[]byte(campaignSeedTag), organizer[:], []byte(seed)}
	addr, bump, ok := findProgramAddress(program, seeds, onCurve)
	if !ok {
		return Address{}, 0, fmt.Errorf("%w: no viable bump for seed %q", ErrInvalidParameters, seed)
	}
	return addr, bump, nil
}

// findProgramAddress tries bumps 255 down to 1 and returns the first
// candidate for which isOnCurve is false.
func findProgramAddress(program Identity, seeds [][]byte, isOnCurve func([]byte) bool) (Address, uint8, bool) {
	for bump := 255; bump >= 1; bump-- {
		addr := createProgramAddress(program, append(seeds, []byte{byte(bump)}))
		if !isOnCurve(addr[:]) {
			return addr, uint8(bump), true
		}
	}
	return Address{}, 0, false
}

// VerifyAddress reports whether addr is the derivation of (organizer, seed, bump).
func VerifyAddress(program, organizer Identity, seed string, bump uint8, addr Address) bool {
	seeds := [][]byte{[]byte(campaignSeedTag), organizer[:], []byte(seed), {bump}}
	got := createProgramAddress(program, seeds)
	return bytes.Equal(got[:], addr[:]) && !onCurve(got[:])
}

func createProgramAddress(program Identity, seeds [][]byte) Address {
	h := sha256.New()
	for _, s := range seeds {
		h.Write(s)
	}
	h.Write(program[:])
	h.Write([]byte(pdaMarker))
	var out Address
	copy(out[:], h.Sum(nil))
	return out
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}
