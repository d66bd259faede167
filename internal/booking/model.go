package booking

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
)

var (
	ErrNotFound         = apperror.NotFound("booking not found")
	ErrPropertyNotFound = apperror.NotFound("property not found")
	ErrSelfBooking      = apperror.Validation("guest cannot book own property")
	ErrInvalidDateRange = apperror.Validation("invalid date range")
	ErrTotalOutOfRange  = apperror.Validation("total price is out of range")
	ErrDateConflict     = apperror.New(apperror.KindValidation, http.StatusConflict, "date range already booked")
	ErrPermissionDenied = apperror.Forbidden("only the guest can change this booking")
	ErrInvalidWindow    = apperror.Validation("from must be before to")
)

// Booking reserves the nights [CheckIn, CheckOut) of a property for a guest.
// CheckIn and CheckOut are calendar dates at UTC midnight.
type Booking struct {
	ID            string
	GuestID       string
	GuestUsername string
	PropertyID    string
	PropertyTitle string
	HostID        string
	CheckIn       time.Time
	CheckOut      time.Time
	TotalPrice    money.Amount
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsParticipant reports whether userID is the booking's guest or the property's host.
func (b *Booking) IsParticipant(userID string) bool {
	return userID != "" && (b.GuestID == userID || b.HostID == userID)
}

// Listing is the part of a property the booking rules need, read under lock.
type Listing struct {
	ID            string
	HostID        string
	PricePerNight money.Amount
}

// Filter defines parameters for listing bookings.
// From/To select bookings whose stay intersects [From, To).
type Filter struct {
	GuestID    string
	HostID     string
	PropertyID string
	From       *time.Time
	To         *time.Time

	Page      int
	PageSize  int
	SortOrder string
}
