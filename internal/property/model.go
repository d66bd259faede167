package property

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
)

const (
	MaxTitleLength    = 200
	MaxLocationLength = 255
)

var (
	ErrNotFound          = apperror.NotFound("property not found")
	ErrPermissionDenied  = apperror.Forbidden("only the host can modify this property")
	ErrTitleRequired     = apperror.Validation("title is required")
	ErrTitleTooLong      = apperror.Validation("title must be at most 200 characters")
	ErrLocationRequired  = apperror.Validation("location is required")
	ErrLocationTooLong   = apperror.Validation("location must be at most 255 characters")
	ErrNegativePrice     = apperror.Validation("price_per_night must not be negative")
	ErrNegativeBedrooms  = apperror.Validation("bedrooms must not be negative")
	ErrInvalidPriceRange = apperror.Validation("min_price must not exceed max_price")
	ErrHostNotFound      = apperror.New(apperror.KindValidation, http.StatusBadRequest, "host does not exist")
)

// Property is a listing owned by a host. HostID never changes after creation.
type Property struct {
	ID            string
	HostID        string
	HostUsername  string
	Title         string
	Description   string
	PricePerNight money.Amount
	Bedrooms      int
	Location      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Filter defines parameters for listing properties.
type Filter struct {
	HostID      string
	Keyword     string // Search in title or description
	Location    string
	MinPrice    *money.Amount
	MaxPrice    *money.Amount
	MinBedrooms *int

	Page      int
	PageSize  int
	SortBy    string // created_at, price_per_night, bedrooms, title
	SortOrder string // ASC or DESC
}
