package http

import (
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/rental-booking-backend/internal/property"
)

type PropertyResponse struct {
	ID            string       `json:"id"`
	HostID        string       `json:"host_id"`
	HostUsername  string       `json:"host_username,omitempty"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	PricePerNight money.Amount `json:"price_per_night"`
	Bedrooms      int          `json:"bedrooms"`
	Location      string       `json:"location"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func NewPropertyResponse(p *property.Property) PropertyResponse {
	return PropertyResponse{
		ID:            p.ID,
		HostID:        p.HostID,
		HostUsername:  p.HostUsername,
		Title:         p.Title,
		Description:   p.Description,
		PricePerNight: p.PricePerNight,
		Bedrooms:      p.Bedrooms,
		Location:      p.Location,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// ListPropertiesRequest defines query parameters for listing properties.
// Prices are decimal strings so that "120.50" is parsed exactly.
type ListPropertiesRequest struct {
	request.ListParams
	HostID      string `form:"host_id" binding:"omitempty,uuid"`
	Keyword     string `form:"q"`
	Location    string `form:"location"`
	MinPrice    string `form:"min_price"`
	MaxPrice    string `form:"max_price"`
	MinBedrooms *int   `form:"min_bedrooms" binding:"omitempty,min=0"`
	SortBy      string `form:"sort_by" binding:"omitempty,oneof=created_at price_per_night bedrooms title"`
}

// CreatePropertyRequest is also the body of PUT, which replaces every mutable field.
// A host field in the body is ignored; the host is always the caller.
type CreatePropertyRequest struct {
	Title         string        `json:"title" binding:"required,max=200"`
	Description   string        `json:"description"`
	PricePerNight *money.Amount `json:"price_per_night" binding:"required"`
	Bedrooms      *int          `json:"bedrooms" binding:"required"`
	Location      string        `json:"location" binding:"required,max=255"`
}

type UpdatePropertyRequest struct {
	Title         *string       `json:"title" binding:"omitempty,max=200"`
	Description   *string       `json:"description"`
	PricePerNight *money.Amount `json:"price_per_night"`
	Bedrooms      *int          `json:"bedrooms"`
	Location      *string       `json:"location" binding:"omitempty,max=255"`
}
