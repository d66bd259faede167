package booking

import (
	"context"
	"errors"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/event"
	"github.com/sirupsen/logrus"
)

// CreateRequest carries data to create a booking. The guest comes from the caller's identity.
type CreateRequest struct {
	GuestID    string
	PropertyID string
	CheckIn    time.Time
	CheckOut   time.Time
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Booking, error)
	Reschedule(ctx context.Context, id, actingUserID string, checkIn, checkOut time.Time) (*Booking, error)
	GetByID(ctx context.Context, id, actingUserID string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	ListForGuest(ctx context.Context, guestID string, filter Filter) ([]*Booking, int, error)
	ListForHost(ctx context.Context, hostID string, filter Filter) ([]*Booking, int, error)
	Delete(ctx context.Context, id, actingUserID string) error
}

type service struct {
	repo   Repository
	events event.Publisher
	log    logrus.FieldLogger
}

func NewService(repo Repository, events event.Publisher, log logrus.FieldLogger) Service {
	return &service{repo: repo, events: events, log: log}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Booking, error) {
	var created *Booking

	// The property row lock serializes writers per listing, so the overlap
	// check and the insert see the same set of bookings.
	err := s.repo.Atomically(ctx, func(tx Tx) error {
		listing, err := tx.LockListing(ctx, req.PropertyID)
		if err != nil {
			return err
		}

		quote, err := QuoteStay(listing, req.GuestID, req.CheckIn, req.CheckOut)
		if err != nil {
			return err
		}

		overlap, err := tx.HasOverlap(ctx, listing.ID, quote.CheckIn, quote.CheckOut, "")
		if err != nil {
			return err
		}
		if overlap {
			return ErrDateConflict
		}

		b := &Booking{
			GuestID:    req.GuestID,
			PropertyID: listing.ID,
			HostID:     listing.HostID,
			CheckIn:    quote.CheckIn,
			CheckOut:   quote.CheckOut,
			TotalPrice: quote.Total,
		}
		if err := tx.Insert(ctx, b); err != nil {
			return err
		}
		created = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Reload to pick up the joined guest and property names.
	if full, err := s.repo.GetByID(ctx, created.ID); err != nil {
		s.log.WithError(err).WithField("booking_id", created.ID).Warn("failed to reload booking after create")
	} else {
		created = full
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":  created.ID,
		"property_id": created.PropertyID,
		"guest_id":    created.GuestID,
	}).Info("booking created")

	event.Emit(ctx, s.events, s.log, event.New(event.BookingCreated, payload(created)))
	return created, nil
}

func (s *service) Reschedule(ctx context.Context, id, actingUserID string, checkIn, checkOut time.Time) (*Booking, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := checkGuest(current, actingUserID); err != nil {
		return nil, err
	}

	var updated *Booking
	err = s.repo.Atomically(ctx, func(tx Tx) error {
		// Lock order matches Create: property first, then the booking.
		listing, err := tx.LockListing(ctx, current.PropertyID)
		if err != nil {
			if errors.Is(err, ErrPropertyNotFound) {
				return ErrNotFound
			}
			return err
		}

		b, err := tx.LockBooking(ctx, id)
		if err != nil {
			return err
		}
		if err := checkGuest(b, actingUserID); err != nil {
			return err
		}

		quote, err := QuoteStay(listing, b.GuestID, checkIn, checkOut)
		if err != nil {
			return err
		}

		overlap, err := tx.HasOverlap(ctx, listing.ID, quote.CheckIn, quote.CheckOut, b.ID)
		if err != nil {
			return err
		}
		if overlap {
			return ErrDateConflict
		}

		b.CheckIn, b.CheckOut, b.TotalPrice = quote.CheckIn, quote.CheckOut, quote.Total
		if err := tx.UpdateStay(ctx, b); err != nil {
			return err
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("booking_id", updated.ID).Info("booking rescheduled")
	event.Emit(ctx, s.events, s.log, event.New(event.BookingRescheduled, payload(updated)))
	return updated, nil
}

func (s *service) GetByID(ctx context.Context, id, actingUserID string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Bookings are private to their guest and host.
	if !b.IsParticipant(actingUserID) {
		return nil, ErrNotFound
	}
	return b, nil
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	if filter.From != nil && filter.To != nil && !Date(*filter.From).Before(Date(*filter.To)) {
		return nil, 0, ErrInvalidWindow
	}
	return s.repo.List(ctx, filter)
}

// ListForGuest lists the bookings made by guestID.
func (s *service) ListForGuest(ctx context.Context, guestID string, filter Filter) ([]*Booking, int, error) {
	filter.GuestID, filter.HostID = guestID, ""
	return s.List(ctx, filter)
}

// ListForHost lists the bookings on properties hostID owns.
func (s *service) ListForHost(ctx context.Context, hostID string, filter Filter) ([]*Booking, int, error) {
	filter.GuestID, filter.HostID = "", hostID
	return s.List(ctx, filter)
}

func (s *service) Delete(ctx context.Context, id, actingUserID string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !b.IsParticipant(actingUserID) {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "deleted_by": actingUserID}).Info("booking deleted")
	event.Emit(ctx, s.events, s.log, event.New(event.BookingDeleted, payload(b)))
	return nil
}

// checkGuest hides the booking from strangers and refuses changes by the host.
func checkGuest(b *Booking, userID string) error {
	switch {
	case b.GuestID == userID:
		return nil
	case b.HostID == userID:
		return ErrPermissionDenied
	default:
		return ErrNotFound
	}
}

func payload(b *Booking) map[string]any {
	return map[string]any{
		"booking_id":  b.ID,
		"property_id": b.PropertyID,
		"guest_id":    b.GuestID,
		"host_id":     b.HostID,
		"check_in":    b.CheckIn.Format("2006-01-02"),
		"check_out":   b.CheckOut.Format("2006-01-02"),
		"total_price": b.TotalPrice,
	}
}
