package booking

import (
	"errors"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
)

// Quote is the validated outcome of a stay request.
type Quote struct {
	CheckIn  time.Time
	CheckOut time.Time
	Nights   int
	Total    money.Amount
}

// Date truncates t to its calendar date at UTC midnight.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Nights counts the nights in [checkIn, checkOut).
func Nights(checkIn, checkOut time.Time) int {
	const secondsPerDay = 24 * 60 * 60
	return int((Date(checkOut).Unix() - Date(checkIn).Unix()) / secondsPerDay)
}

// Overlaps reports whether two half-open stays share a night.
// A stay ending on the day another begins does not overlap it.
func Overlaps(aIn, aOut, bIn, bOut time.Time) bool {
	return aIn.Before(bOut) && bIn.Before(aOut)
}

// QuoteStay applies the booking rules that do not need other bookings:
// the guest may not book their own listing, the range must be non-empty,
// and the total is nights × price_per_night.
func QuoteStay(l *Listing, guestID string, checkIn, checkOut time.Time) (Quote, error) {
	if guestID == l.HostID {
		return Quote{}, ErrSelfBooking
	}

	in, out := Date(checkIn), Date(checkOut)
	if !out.After(in) {
		return Quote{}, ErrInvalidDateRange
	}

	nights := Nights(in, out)
	total, err := l.PricePerNight.Times(nights)
	if err != nil {
		if errors.Is(err, money.ErrOverflow) {
			return Quote{}, ErrTotalOutOfRange
		}
		return Quote{}, err
	}
	return Quote{
		CheckIn:  in,
		CheckOut: out,
		Nights:   nights,
		Total:    total,
	}, nil
}
