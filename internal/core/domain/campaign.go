package domain

import (
	"fmt"
	"math/bits"
	"strings"
	"time"
)

// Campaign is the persistent record of a token distribution campaign.
// Token amounts are in base units of the mint.
type Campaign struct {
	Address           Address
	Bump              uint8
	Organizer         Identity
	Seed              string
	Title             string
	Description       string
	ImageURL          string
	TokenSymbol       string
	Mint              Identity
	Decimals          uint8
	TotalTokens       uint64
	DistributedTokens uint64
	CreatedAt         time.Time
	EndDate           time.Time
	Status            Status
	Benefits          []string
	// Version increases by one with every committed mutation and guards
	// read-validate-write cycles against concurrent writers.
	Version   uint64
	UpdatedAt time.Time
}

// NewCampaignInput carries the caller-supplied fields of a new campaign.
type NewCampaignInput struct {
	Program     Identity
	Organizer   Identity
	Seed        string
	Title       string
	Description string
	ImageURL    string
	TokenSymbol string
	Mint        Identity
	Decimals    *uint8
	TotalTokens uint64
	EndDate     time.Time
	Status      Status
	Benefits    []string
}

// NewCampaign validates the input and builds the record that CreateCampaign
// persists. Nothing is returned unless every invariant holds.
func NewCampaign(in NewCampaignInput, now time.Time) (Campaign, error) {
	now = now.UTC()
	if in.Organizer.IsZero() {
		return Campaign{}, fmt.Errorf("%w: organizer is required", ErrInvalidParameters)
	}
	if in.Mint.IsZero() {
		return Campaign{}, fmt.Errorf("%w: mint is required", ErrInvalidParameters)
	}
	if in.TotalTokens == 0 {
		return Campaign{}, fmt.Errorf("%w: total tokens must be positive", ErrInvalidParameters)
	}
	if !in.EndDate.After(now) {
		return Campaign{}, fmt.Errorf("%w: end date must be in the future", ErrInvalidParameters)
	}
	title := normalize(strings.TrimSpace(in.Title))
	if err := checkText("title", title, MaxTitleLen, true); err != nil {
		return Campaign{}, err
	}
	description := normalize(in.Description)
	if err := checkText("description", description, MaxDescriptionLen, false); err != nil {
		return Campaign{}, err
	}
	if err := checkText("image url", in.ImageURL, MaxImageURLLen, false); err != nil {
		return Campaign{}, err
	}
	symbol := strings.TrimSpace(in.TokenSymbol)
	if err := checkSymbol(symbol); err != nil {
		return Campaign{}, err
	}
	benefits := make([]string, len(in.Benefits))
	for i, b := range in.Benefits {
		benefits[i] = normalize(b)
	}
	if err := checkBenefits(benefits); err != nil {
		return Campaign{}, err
	}
	if in.Seed == "" {
		return Campaign{}, fmt.Errorf("%w: seed is required", ErrInvalidParameters)
	}
	decimals := uint8(DefaultDecimals)
	if in.Decimals != nil {
		decimals = *in.Decimals
	}
	if decimals > MaxDecimals {
		return Campaign{}, fmt.Errorf("%w: decimals must be at most %d", ErrInvalidParameters, MaxDecimals)
	}
	status := in.Status
	switch status {
	case StatusUnspecified:
		status = StatusActive
	case StatusUpcoming, StatusActive:
	default:
		return Campaign{}, fmt.Errorf("%w: campaign cannot start as %s", ErrInvalidParameters, status)
	}

	addr, bump, err := DeriveAddress(in.Program, in.Organizer, in.Seed)
	if err != nil {
		return Campaign{}, err
	}

	return Campaign{
		Address:     addr,
		Bump:        bump,
		Organizer:   in.Organizer,
		Seed:        in.Seed,
		Title:       title,
		Description: description,
		ImageURL:    in.ImageURL,
		TokenSymbol: symbol,
		Mint:        in.Mint,
		Decimals:    decimals,
		TotalTokens: in.TotalTokens,
		CreatedAt:   now,
		EndDate:     in.EndDate.UTC(),
		Status:      status,
		Benefits:    benefits,
		Version:     1,
		UpdatedAt:   now,
	}, nil
}

// Remaining returns the number of tokens not yet distributed.
func (c Campaign) Remaining() uint64 {
	return c.TotalTokens - c.DistributedTokens
}

// Distribute returns a copy of c with amount added to the distributed
// counter. c itself is never modified.
func (c Campaign) Distribute(amount uint64, now time.Time) (Campaign, error) {
	if c.Status != StatusActive {
		return Campaign{}, fmt.Errorf("%w: status is %s", ErrCampaignNotActive, c.Status)
	}
	if amount == 0 {
		return Campaign{}, fmt.Errorf("%w: amount must be positive", ErrInvalidParameters)
	}
	sum, carry := bits.Add64(c.DistributedTokens, amount, 0)
	if carry != 0 || sum > c.TotalTokens {
		return Campaign{}, fmt.Errorf("%w: %d requested, %d remaining", ErrExceedsSupply, amount, c.Remaining())
	}
	updated := c.clone()
	updated.DistributedTokens = sum
	updated.Version++
	updated.UpdatedAt = now.UTC()
	return updated, nil
}

// TransitionStatus returns a copy of c moved to the target status.
func (c Campaign) TransitionStatus(target Status, now time.Time) (Campaign, error) {
	if !CanTransition(c.Status, target) {
		return Campaign{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, target)
	}
	updated := c.clone()
	updated.Status = target
	updated.Version++
	updated.UpdatedAt = now.UTC()
	return updated, nil
}

func (c Campaign) clone() Campaign {
	out := c
	out.Benefits = append([]string(nil), c.Benefits...)
	return out
}
