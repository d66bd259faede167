package http

import (
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/booking"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/request"
)

type BookingResponse struct {
	ID            string       `json:"id"`
	GuestID       string       `json:"guest_id"`
	GuestUsername string       `json:"guest_username,omitempty"`
	PropertyID    string       `json:"property_id"`
	PropertyTitle string       `json:"property_title,omitempty"`
	HostID        string       `json:"host_id"`
	CheckIn       string       `json:"check_in"`
	CheckOut      string       `json:"check_out"`
	Nights        int          `json:"nights"`
	TotalPrice    money.Amount `json:"total_price"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{
		ID:            b.ID,
		GuestID:       b.GuestID,
		GuestUsername: b.GuestUsername,
		PropertyID:    b.PropertyID,
		PropertyTitle: b.PropertyTitle,
		HostID:        b.HostID,
		CheckIn:       b.CheckIn.Format(request.DateLayout),
		CheckOut:      b.CheckOut.Format(request.DateLayout),
		Nights:        booking.Nights(b.CheckIn, b.CheckOut),
		TotalPrice:    b.TotalPrice,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

// ListBookingsRequest defines query parameters for listing bookings.
// from/to select bookings whose stay intersects [from, to).
type ListBookingsRequest struct {
	request.ListParams
	PropertyID string `form:"property_id" binding:"omitempty,uuid"`
	From       string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// CreateBookingRequest is the body of POST /bookings.
// A guest field in the body is ignored; the guest is always the caller.
type CreateBookingRequest struct {
	PropertyID string `json:"property_id" binding:"required,uuid"`
	CheckIn    string `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut   string `json:"check_out" binding:"required,datetime=2006-01-02"`
}

// RescheduleBookingRequest is the body of PUT and PATCH /bookings/:id.
// The property of a booking cannot change.
type RescheduleBookingRequest struct {
	CheckIn  string `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut string `json:"check_out" binding:"required,datetime=2006-01-02"`
}
