package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/money"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/response"
	"github.com/nekogravitycat/rental-booking-backend/internal/property"
)

type PropertyHandler struct {
	service property.Service
}

func NewHandler(service property.Service) *PropertyHandler {
	return &PropertyHandler{service: service}
}

// List retrieves a paginated list of properties. It is public.
func (h *PropertyHandler) List(c *gin.Context) {
	var req ListPropertiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	h.list(c, req)
}

// Mine lists the caller's own properties. It accepts the same query parameters as List
// but always filters by the caller.
func (h *PropertyHandler) Mine(c *gin.Context) {
	var req ListPropertiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.HostID = auth.GetUserID(c)
	h.list(c, req)
}

func (h *PropertyHandler) list(c *gin.Context, req ListPropertiesRequest) {
	req.Normalize()

	filter := property.Filter{
		HostID:      req.HostID,
		Keyword:     req.Keyword,
		Location:    req.Location,
		MinBedrooms: req.MinBedrooms,
		Page:        req.Page,
		PageSize:    req.PageSize,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
	}
	var err error
	if filter.MinPrice, err = parsePrice(req.MinPrice, "min_price"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.MaxPrice, err = parsePrice(req.MaxPrice, "max_price"); err != nil {
		response.Error(c, err)
		return
	}

	props, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PropertyResponse, len(props))
	for i, p := range props {
		items[i] = NewPropertyResponse(p)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Create adds a new property owned by the caller.
func (h *PropertyHandler) Create(c *gin.Context) {
	var body CreatePropertyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.Create(c.Request.Context(), auth.GetUserID(c), property.CreateRequest{
		Title:         body.Title,
		Description:   body.Description,
		PricePerNight: *body.PricePerNight,
		Bedrooms:      *body.Bedrooms,
		Location:      body.Location,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPropertyResponse(p))
}

func (h *PropertyHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	p, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

// Replace handles PUT: every mutable field must be present.
func (h *PropertyHandler) Replace(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}
	var body CreatePropertyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	h.update(c, uri.ID, property.UpdateRequest{
		Title:         &body.Title,
		Description:   &body.Description,
		PricePerNight: body.PricePerNight,
		Bedrooms:      body.Bedrooms,
		Location:      &body.Location,
	})
}

// Update handles PATCH: only the fields present are changed.
func (h *PropertyHandler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}
	var body UpdatePropertyRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	h.update(c, uri.ID, property.UpdateRequest{
		Title:         body.Title,
		Description:   body.Description,
		PricePerNight: body.PricePerNight,
		Bedrooms:      body.Bedrooms,
		Location:      body.Location,
	})
}

func (h *PropertyHandler) update(c *gin.Context, id string, req property.UpdateRequest) {
	p, err := h.service.Update(c.Request.Context(), id, auth.GetUserID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPropertyResponse(p))
}

// Delete removes a property and, by cascade, its bookings and photos.
func (h *PropertyHandler) Delete(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), uri.ID, auth.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parsePrice(raw, field string) (*money.Amount, error) {
	if raw == "" {
		return nil, nil
	}
	a, err := money.Parse(raw)
	if err != nil || a.IsNegative() {
		return nil, apperror.Validation("invalid " + field)
	}
	return &a, nil
}
