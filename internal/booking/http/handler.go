package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/booking"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/response"
)

type BookingHandler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *BookingHandler {
	return &BookingHandler{service: service}
}

// Mine lists the caller's bookings as a guest.
func (h *BookingHandler) Mine(c *gin.Context) {
	h.list(c, func(f booking.Filter) ([]*booking.Booking, int, error) {
		return h.service.ListForGuest(c.Request.Context(), auth.GetUserID(c), f)
	})
}

// Hosted lists bookings on properties the caller owns.
func (h *BookingHandler) Hosted(c *gin.Context) {
	h.list(c, func(f booking.Filter) ([]*booking.Booking, int, error) {
		return h.service.ListForHost(c.Request.Context(), auth.GetUserID(c), f)
	})
}

func (h *BookingHandler) list(c *gin.Context, fetch func(booking.Filter) ([]*booking.Booking, int, error)) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BindError(c, err)
		return
	}
	req.Normalize()

	filter := booking.Filter{
		PropertyID: req.PropertyID,
		From:       parseOptionalDate(req.From),
		To:         parseOptionalDate(req.To),
		Page:       req.Page,
		PageSize:   req.PageSize,
		SortOrder:  req.SortOrder,
	}

	bookings, total, err := fetch(filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

// Create books a stay for the caller.
func (h *BookingHandler) Create(c *gin.Context) {
	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		GuestID:    auth.GetUserID(c),
		PropertyID: body.PropertyID,
		CheckIn:    mustParseDate(body.CheckIn),
		CheckOut:   mustParseDate(body.CheckOut),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *BookingHandler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID, auth.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Reschedule moves a booking to new dates. Only the guest may do this.
func (h *BookingHandler) Reschedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}
	var body RescheduleBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BindError(c, err)
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), uri.ID, auth.GetUserID(c),
		mustParseDate(body.CheckIn), mustParseDate(body.CheckOut))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

// Delete cancels a booking. Both the guest and the host may do this.
func (h *BookingHandler) Delete(c *gin.Context) {
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

// mustParseDate parses a value already checked by the datetime binding.
func mustParseDate(s string) time.Time {
	t, _ := time.Parse(request.DateLayout, s)
	return t
}

func parseOptionalDate(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := mustParseDate(s)
	return &t
}
