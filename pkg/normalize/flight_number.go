// Package normalize canonicalizes the raw flight number and date values found
// in agency booking feeds.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Flight number rejection reasons
var (
	ErrEmptyFlightNumber       = errors.New("flight number is empty")
	ErrNumericOverflow         = errors.New("numeric-only flight number exceeds digit limit")
	ErrPlaceholderFlightNumber = errors.New("flight number is a placeholder")
	ErrMalformedFlightNumber   = errors.New("flight number is malformed")
)

// DefaultMaxNumericDigits is the longest numeric-only value still treated as
// a possible flight number.
const DefaultMaxNumericDigits = 10

var (
	letterCodeZeros = regexp.MustCompile(`^([A-Z]{2,3})0+([1-9][0-9]*)$`)
	mixedCodeZeros  = regexp.MustCompile(`^([A-Z]{2,3}|[0-9][A-Z]|[A-Z][0-9])0+([1-9][0-9]*)$`)
	finalShape      = regexp.MustCompile(`^[A-Z0-9]{2,3}[0-9]+$`)
)

// FlightNumberNormalizer turns raw flight number strings into the canonical
// CODE+DIGITS form.
type FlightNumberNormalizer struct {
	maxNumericDigits int
	stripZeros       *regexp.Regexp
}

// NewFlightNumberNormalizer creates a normalizer. allowDigitLetterCode lets
// codes such as 6E or G8 shed leading zeros in their numeric run as well.
func NewFlightNumberNormalizer(maxNumericDigits int, allowDigitLetterCode bool) *FlightNumberNormalizer {
	if maxNumericDigits <= 0 {
		maxNumericDigits = DefaultMaxNumericDigits
	}
	re := letterCodeZeros
	if allowDigitLetterCode {
		re = mixedCodeZeros
	}
	return &FlightNumberNormalizer{maxNumericDigits: maxNumericDigits, stripZeros: re}
}

// Normalize returns the canonical flight number or one of the Err* values.
func (n *FlightNumberNormalizer) Normalize(raw string) (string, error) {
	s := clean(raw)
	if s == "" {
		return "", ErrEmptyFlightNumber
	}

	if isDigits(s) && len(s) > n.maxNumericDigits {
		return "", ErrNumericOverflow
	}

	// TK000, 0000, TK
	stripped := strings.TrimRight(s, "0")
	if stripped == "" || isLetters(stripped) {
		return "", ErrPlaceholderFlightNumber
	}

	if m := n.stripZeros.FindStringSubmatch(s); m != nil {
		s = m[1] + m[2]
	}

	if !finalShape.MatchString(s) {
		return "", ErrMalformedFlightNumber
	}
	return s, nil
}

// clean folds compatibility characters (full-width digits and letters), drops
// all whitespace and upper-cases the value.
func clean(raw string) string {
	s := norm.NFKC.String(raw)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func isLetters(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
