// Package money represents currency amounts as integer cents so that
// multiplication by a night count is exact.
package money

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Amount is a currency amount in cents.
type Amount int64

var (
	ErrInvalidAmount = errors.New("invalid amount: expected a decimal with at most 2 fraction digits")
	ErrOverflow      = errors.New("amount out of range")
)

// maxWhole is the largest whole part that still fits in cents.
const maxWhole = (math.MaxInt64 - 99) / 100

// Parse reads a decimal string such as "150", "99.9" or "-12.50".
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, hasDot := strings.Cut(s, ".")
	if whole == "" && (!hasDot || frac == "") {
		return 0, ErrInvalidAmount
	}
	if len(frac) > 2 || (hasDot && frac == "") {
		return 0, ErrInvalidAmount
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	if !digitsOnly(whole) || !digitsOnly(frac) {
		return 0, ErrInvalidAmount
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidAmount, err)
	}
	if w > maxWhole {
		return 0, fmt.Errorf("%w: %w", ErrInvalidAmount, ErrOverflow)
	}
	f, _ := strconv.ParseInt(frac, 10, 64)

	cents := w*100 + f
	if neg {
		cents = -cents
	}
	return Amount(cents), nil
}

// MustParse is Parse for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Cents returns the amount in cents.
func (a Amount) Cents() int64 { return int64(a) }

// Times multiplies the amount by a non-negative count n.
// It returns ErrOverflow when the product does not fit in an Amount.
func (a Amount) Times(n int) (Amount, error) {
	if n < 0 {
		return 0, fmt.Errorf("negative multiplier %d", n)
	}
	if n == 0 || a == 0 {
		return 0, nil
	}
	m := int64(n)
	if int64(a) > math.MaxInt64/m || int64(a) < math.MinInt64/m {
		return 0, ErrOverflow
	}
	return a * Amount(m), nil
}

func (a Amount) IsNegative() bool { return a < 0 }

// String formats the amount with exactly two fraction digits.
func (a Amount) String() string {
	c := int64(a)
	sign := ""
	if c < 0 {
		sign = "-"
		c = -c
	}
	return fmt.Sprintf("%s%d.%02d", sign, c/100, c%100)
}

// MarshalJSON writes the amount as a JSON number with two fraction digits.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts either a JSON number or a quoted decimal string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

func digitsOnly(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
