package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	testProgram   = MustParseIdentity("J1LhfXskL8XwGUpa5jpenWg7mXEKE9TdYJLxYTbu8LAz")
	testOrganizer = Identity{0xaa, 0x01}
)

func TestDeriveAddressIsDeterministic(t *testing.T) {
	a1, b1, err := DeriveAddress(testProgram, testOrganizer, "abc")
	require.NoError(t, err)
	a2, b2, err := DeriveAddress(testProgram, testOrganizer, "abc")
	require.NoError(t, err)
	require.Equal(t, a1, a2)
	require.Equal(t, b1, b2)
	require.True(t, VerifyAddress(testProgram, testOrganizer, "abc", b1, a1))
}

func TestDeriveAddressSeparatesInputs(t *testing.T) {
	seen := map[Address]string{}
	for _, seed := range []string{"abc", "abd", "", "campaign-1700000000000", strings.Repeat("x", MaxSeedLen)} {
		a, _, err := DeriveAddress(testProgram, testOrganizer, seed)
		require.NoError(t, err)
		_, dup := seen[a]
		require.False(t, dup, "seed %q collides with %q", seed, seen[a])
		seen[a] = seed
	}

	other, _, err := DeriveAddress(testProgram, Identity{0xbb}, "abc")
	require.NoError(t, err)
	mine, _, err := DeriveAddress(testProgram, testOrganizer, "abc")
	require.NoError(t, err)
	require.NotEqual(t, mine, other)

	underOther, _, err := DeriveAddress(Identity{0x01}, testOrganizer, "abc")
	require.NoError(t, err)
	require.NotEqual(t, mine, underOther)
}

func TestDeriveAddressIsOffCurve(t *testing.T) {
	a, _, err := DeriveAddress(testProgram, testOrganizer, "abc")
	require.NoError(t, err)
	require.False(t, onCurve(a[:]))
}

func TestFindProgramAddressBumpRange(t *testing.T) {
	seeds := [][]byte{[]byte(campaignSeedTag), testOrganizer[:], []byte("abc")}

	var tried int
	_, _, ok := findProgramAddress(testProgram, seeds, func([]byte) bool {
		tried++
		return true
	})
	require.False(t, ok)
	require.Equal(t, 255, tried)

	// only the candidate for bump 1 is accepted
	last := createProgramAddress(testProgram, append(seeds, []byte{1}))
	addr, bump, ok := findProgramAddress(testProgram, seeds, func(b []byte) bool {
		return string(b) != string(last[:])
	})
	require.True(t, ok)
	require.EqualValues(t, 1, bump)
	require.Equal(t, last, addr)
}

func TestDeriveAddressRejectsLongSeed(t *testing.T) {
	_, _, err := DeriveAddress(testProgram, testOrganizer, strings.Repeat("x", MaxSeedLen+1))
	require.ErrorIs(t, err, ErrInvalidParameters)
}

func TestVerifyAddressRejectsWrongBump(t *testing.T) {
	a, bump, err := DeriveAddress(testProgram, testOrganizer, "abc")
	require.NoError(t, err)
	require.False(t, VerifyAddress(testProgram, testOrganizer, "abc", bump-1, a))
	require.False(t, VerifyAddress(testProgram, testOrganizer, "abd", bump, a))
}

func TestParseIdentityRoundTrip(t *testing.T) {
	require.Equal(t, "J1LhfXskL8XwGUpa5jpenWg7mXEKE9TdYJLxYTbu8LAz", testProgram.String())

	a, _, err := DeriveAddress(testProgram, testOrganizer, "abc")
	require.NoError(t, err)
	parsed, err := ParseAddress(a.String())
	require.NoError(t, err)
	require.Equal(t, a, parsed)

	for _, bad := range []string{"", "0OIl", "3yZe7d"} {
		_, err := ParseIdentity(bad)
		require.ErrorIs(t, err, ErrInvalidParameters, bad)
	}
}
