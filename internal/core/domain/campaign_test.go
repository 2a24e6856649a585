package domain

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func validInput() NewCampaignInput {
	return NewCampaignInput{
		Program:     testProgram,
		Organizer:   testOrganizer,
		Seed:        "abc",
		Title:       "Launch party",
		Description: "Proof of participation",
		ImageURL:    "https://example.com/pop.png",
		TokenSymbol: "POP",
		Mint:        Identity{0x42},
		TotalTokens: 1000,
		EndDate:     now.Add(24 * time.Hour),
		Benefits:    []string{"early access", "merch"},
	}
}

func TestNewCampaignDefaults(t *testing.T) {
	c, err := NewCampaign(validInput(), now)
	require.NoError(t, err)

	addr, bump, err := DeriveAddress(testProgram, testOrganizer, "abc")
	require.NoError(t, err)
	require.Equal(t, addr, c.Address)
	require.Equal(t, bump, c.Bump)
	require.Equal(t, StatusActive, c.Status)
	require.Zero(t, c.DistributedTokens)
	require.EqualValues(t, DefaultDecimals, c.Decimals)
	require.Equal(t, now, c.CreatedAt)
	require.EqualValues(t, 1, c.Version)
}

func TestNewCampaignKeepsUpcoming(t *testing.T) {
	in := validInput()
	in.Status = StatusUpcoming
	c, err := NewCampaign(in, now)
	require.NoError(t, err)
	require.Equal(t, StatusUpcoming, c.Status)
}

func TestNewCampaignCopiesBenefits(t *testing.T) {
	in := validInput()
	c, err := NewCampaign(in, now)
	require.NoError(t, err)
	in.Benefits[0] = "changed"
	require.Equal(t, "early access", c.Benefits[0])
}

func TestNewCampaignRejects(t *testing.T) {
	tooMany := uint8(MaxDecimals + 1)
	cases := map[string]func(*NewCampaignInput){
		"zero supply":        func(in *NewCampaignInput) { in.TotalTokens = 0 },
		"end in past":        func(in *NewCampaignInput) { in.EndDate = now.Add(-time.Second) },
		"end now":            func(in *NewCampaignInput) { in.EndDate = now },
		"empty title":        func(in *NewCampaignInput) { in.Title = "   " },
		"empty symbol":       func(in *NewCampaignInput) { in.TokenSymbol = "" },
		"long symbol":        func(in *NewCampaignInput) { in.TokenSymbol = "ABCDEFGHIJK" },
		"symbol punctuation": func(in *NewCampaignInput) { in.TokenSymbol = "PO-P" },
		"long title":         func(in *NewCampaignInput) { in.Title = strings.Repeat("t", MaxTitleLen+1) },
		"long description":   func(in *NewCampaignInput) { in.Description = strings.Repeat("d", MaxDescriptionLen+1) },
		"control chars":      func(in *NewCampaignInput) { in.Description = "line\x00break" },
		"too many benefits":  func(in *NewCampaignInput) { in.Benefits = make([]string, MaxBenefits+1) },
		"empty benefit":      func(in *NewCampaignInput) { in.Benefits = []string{""} },
		"missing organizer":  func(in *NewCampaignInput) { in.Organizer = Identity{} },
		"missing mint":       func(in *NewCampaignInput) { in.Mint = Identity{} },
		"missing seed":       func(in *NewCampaignInput) { in.Seed = "" },
		"long seed":          func(in *NewCampaignInput) { in.Seed = strings.Repeat("s", MaxSeedLen+1) },
		"starts completed":   func(in *NewCampaignInput) { in.Status = StatusCompleted },
		"too many decimals":  func(in *NewCampaignInput) { in.Decimals = &tooMany },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			_, err := NewCampaign(in, now)
			require.ErrorIs(t, err, ErrInvalidParameters)
		})
	}
}

func TestNewCampaignAcceptsBoundaryLengths(t *testing.T) {
	in := validInput()
	in.Title = strings.Repeat("é", MaxTitleLen)
	in.TokenSymbol = "ABCDEFGHIJ"
	_, err := NewCampaign(in, now)
	require.NoError(t, err)
}

func TestNewCampaignNormalizesText(t *testing.T) {
	in := validInput()
	// decomposed input is longer in runes than the limit until composed
	in.Title = strings.Repeat("e\u0301", MaxTitleLen)
	in.Benefits = []string{"cafe\u0301"}

	c, err := NewCampaign(in, now)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("\u00e9", MaxTitleLen), c.Title)
	require.Equal(t, "caf\u00e9", c.Benefits[0])
}

func TestDistribute(t *testing.T) {
	c, err := NewCampaign(validInput(), now)
	require.NoError(t, err)

	after, err := c.Distribute(100, now)
	require.NoError(t, err)
	require.EqualValues(t, 100, after.DistributedTokens)
	require.EqualValues(t, 900, after.Remaining())
	require.Equal(t, c.Version+1, after.Version)
	require.Zero(t, c.DistributedTokens, "receiver must not change")

	_, err = after.Distribute(950, now)
	require.ErrorIs(t, err, ErrExceedsSupply)

	full, err := after.Distribute(900, now)
	require.NoError(t, err)
	require.Zero(t, full.Remaining())

	_, err = full.Distribute(1, now)
	require.ErrorIs(t, err, ErrExceedsSupply)

	_, err = after.Distribute(0, now)
	require.ErrorIs(t, err, ErrInvalidParameters)
}

func TestDistributeRejectsOverflow(t *testing.T) {
	c := Campaign{Status: StatusActive, TotalTokens: math.MaxUint64, DistributedTokens: 10}
	_, err := c.Distribute(math.MaxUint64-5, now)
	require.ErrorIs(t, err, ErrExceedsSupply)
}

func TestDistributeRequiresActive(t *testing.T) {
	for _, s := range []Status{StatusUpcoming, StatusCompleted} {
		c := Campaign{Status: s, TotalTokens: 10}
		_, err := c.Distribute(1, now)
		require.ErrorIs(t, err, ErrCampaignNotActive, s.String())
	}
}

// Any sequence of distributions keeps the counter monotonic and bounded.
func TestDistributeInvariantHolds(t *testing.T) {
	c := Campaign{Status: StatusActive, TotalTokens: 1000}
	amounts := []uint64{1, 999, 500, 250, 0, 1000, 249, 1, 1, math.MaxUint64}
	for _, a := range amounts {
		next, err := c.Distribute(a, now)
		if err != nil {
			continue
		}
		require.GreaterOrEqual(t, next.DistributedTokens, c.DistributedTokens)
		require.LessOrEqual(t, next.DistributedTokens, next.TotalTokens)
		c = next
	}
	require.EqualValues(t, 1000, c.DistributedTokens)
}

func TestTransitionStatus(t *testing.T) {
	allowed := map[[2]Status]bool{
		{StatusUpcoming, StatusActive}:    true,
		{StatusUpcoming, StatusCompleted}: true,
		{StatusActive, StatusCompleted}:   true,
	}
	all := []Status{StatusUpcoming, StatusActive, StatusCompleted}
	for _, from := range all {
		for _, to := range all {
			c := Campaign{Status: from, Version: 3}
			next, err := c.TransitionStatus(to, now)
			if allowed[[2]Status{from, to}] {
				require.NoError(t, err, "%s -> %s", from, to)
				require.Equal(t, to, next.Status)
				require.EqualValues(t, 4, next.Version)
				continue
			}
			require.ErrorIs(t, err, ErrInvalidTransition, "%s -> %s", from, to)
		}
	}
}

func TestStatusText(t *testing.T) {
	for _, s := range []Status{StatusUpcoming, StatusActive, StatusCompleted} {
		b, err := s.MarshalText()
		require.NoError(t, err)
		var back Status
		require.NoError(t, back.UnmarshalText(b))
		require.Equal(t, s, back)
	}
	_, err := ParseStatus("paused")
	require.ErrorIs(t, err, ErrInvalidParameters)
	_, err = StatusUnspecified.MarshalText()
	require.Error(t, err)
}

func TestCodeOf(t *testing.T) {
	_, err := Campaign{Status: StatusCompleted}.Distribute(1, now)
	require.Equal(t, CodeCampaignNotActive, CodeOf(err))
	require.Equal(t, CodeUnknown, CodeOf(nil))
}
