package domain

import (
	"fmt"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Field bounds keep the stored record size predictable.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 200
	MaxImageURLLen    = 200
	MaxSymbolLen      = 10
	MaxBenefits       = 10
	MaxBenefitLen     = 100
	DefaultDecimals   = 9
	MaxDecimals       = 18
)

// normalize puts display text in NFC so that length limits count what
// the reader sees. Invalid UTF-8 is left for checkText to reject.
func normalize(s string) string {
	if !utf8.ValidString(s) {
		return s
	}
	return norm.NFC.String(s)
}

func checkText(field, v string, maxLen int, required bool) error {
	if required && v == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidParameters, field)
	}
	if !utf8.ValidString(v) {
		return fmt.Errorf("%w: %s is not valid utf-8", ErrInvalidParameters, field)
	}
	if n := utf8.RuneCountInString(v); n > maxLen {
		return fmt.Errorf("%w: %s has %d characters, max %d", ErrInvalidParameters, field, n, maxLen)
	}
	for _, r := range v {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: %s contains control characters", ErrInvalidParameters, field)
		}
	}
	return nil
}

func checkSymbol(v string) error {
	if err := checkText("token symbol", v, MaxSymbolLen, true); err != nil {
		return err
	}
	for _, r := range v {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return fmt.Errorf("%w: token symbol must be alphanumeric", ErrInvalidParameters)
		}
	}
	return nil
}

func checkBenefits(benefits []string) error {
	if len(benefits) > MaxBenefits {
		return fmt.Errorf("%w: %d benefits, max %d", ErrInvalidParameters, len(benefits), MaxBenefits)
	}
	for i, b := range benefits {
		if err := checkText(fmt.Sprintf("benefit %d", i), b, MaxBenefitLen, true); err != nil {
			return err
		}
	}
	return nil
}
