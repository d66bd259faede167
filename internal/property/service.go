package property

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/nekogravitycat/rental-booking-backend/internal/event"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
	"github.com/sirupsen/logrus"
)

// CreateRequest carries data to create a property. The host comes from the caller's identity.
type CreateRequest struct {
	Title         string
	Description   string
	PricePerNight money.Amount
	Bedrooms      int
	Location      string
}

// UpdateRequest carries data for partial updates.
type UpdateRequest struct {
	Title         *string
	Description   *string
	PricePerNight *money.Amount
	Bedrooms      *int
	Location      *string
}

type Service interface {
	Create(ctx context.Context, hostID string, req CreateRequest) (*Property, error)
	GetByID(ctx context.Context, id string) (*Property, error)
	List(ctx context.Context, filter Filter) ([]*Property, int, error)
	Update(ctx context.Context, id, actingUserID string, req UpdateRequest) (*Property, error)
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

// validateProperty checks the field rules shared by create and update.
func validateProperty(p *Property) error {
	switch {
	case p.Title == "":
		return ErrTitleRequired
	case utf8.RuneCountInString(p.Title) > MaxTitleLength:
		return ErrTitleTooLong
	case p.Location == "":
		return ErrLocationRequired
	case utf8.RuneCountInString(p.Location) > MaxLocationLength:
		return ErrLocationTooLong
	case p.PricePerNight.IsNegative():
		return ErrNegativePrice
	case p.Bedrooms < 0:
		return ErrNegativeBedrooms
	}
	return nil
}

func (s *service) Create(ctx context.Context, hostID string, req CreateRequest) (*Property, error) {
	p := &Property{
		HostID:        hostID,
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Bedrooms:      req.Bedrooms,
		Location:      strings.TrimSpace(req.Location),
	}
	if err := validateProperty(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Property, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*Property, int, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, 0, ErrInvalidPriceRange
	}
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, id, actingUserID string, req UpdateRequest) (*Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.HostID != actingUserID {
		return nil, ErrPermissionDenied
	}

	// Apply non-nil fields
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.PricePerNight != nil {
		p.PricePerNight = *req.PricePerNight
	}
	if req.Bedrooms != nil {
		p.Bedrooms = *req.Bedrooms
	}
	if req.Location != nil {
		p.Location = strings.TrimSpace(*req.Location)
	}

	if err := validateProperty(p); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Delete(ctx context.Context, id, actingUserID string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.HostID != actingUserID {
		return ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	event.Emit(ctx, s.events, s.log, event.New(event.PropertyDeleted, map[string]string{
		"property_id": p.ID,
		"host_id":     p.HostID,
	}))
	return nil
}
