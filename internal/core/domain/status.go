package domain

import (
	"fmt"
	"strings"
)

// Status is the lifecycle phase of a campaign.
type Status int

const (
	// StatusUnspecified is the zero value and never stored.
	StatusUnspecified Status = iota
	StatusUpcoming
	StatusActive
	StatusCompleted
)

// String returns the lowercase label used on the wire and in storage.
func (s Status) String() string {
	switch s {
	case StatusUpcoming:
		return "upcoming"
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	default:
		return "unspecified"
	}
}

// ParseStatus maps a label back to a Status. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "upcoming":
		return StatusUpcoming, nil
	case "active":
		return StatusActive, nil
	case "completed":
		return StatusCompleted, nil
	default:
		return StatusUnspecified, fmt.Errorf("%w: unknown status %q", ErrInvalidParameters, s)
	}
}

func (s Status) MarshalText() ([]byte, error) {
	if s == StatusUnspecified {
		return nil, fmt.Errorf("%w: unspecified status", ErrInvalidParameters)
	}
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	parsed, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// CanTransition reports whether from -> to is on the allowed graph:
// upcoming -> active, upcoming -> completed, active -> completed.
func CanTransition(from, to Status) bool {
	switch from {
	case StatusUpcoming:
		return to == StatusActive || to == StatusCompleted
	case StatusActive:
		return to == StatusCompleted
	default:
		return false
	}
}
