package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nekogravitycat/rental-booking-backend/internal/auth"
	"github.com/nekogravitycat/rental-booking-backend/internal/photo"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/response"
)

// multipartOverhead is the allowance for form boundaries and headers on top of the file itself.
const multipartOverhead = 1 << 20

type Handler struct {
	service  photo.Service
	maxBytes int64
}

func NewHandler(service photo.Service, maxBytes int64) *Handler {
	return &Handler{service: service, maxBytes: maxBytes}
}

// Upload attaches the multipart field "file" to a property owned by the caller.
func (h *Handler) Upload(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, photo.ErrFileTooLarge)
			return
		}
		response.Error(c, photo.ErrFileRequired)
		return
	}
	if fileHeader.Size > h.maxBytes {
		response.Error(c, photo.ErrFileTooLarge)
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer src.Close()

	p, err := h.service.Upload(c.Request.Context(), photo.UploadInput{
		PropertyID: uri.ID,
		UserID:     auth.GetUserID(c),
		Filename:   fileHeader.Filename,
		Content:    src,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewPhotoResponse(p))
}

// List returns the photos of a property. It is public.
func (h *Handler) List(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	photos, err := h.service.List(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PhotoResponse, len(photos))
	for i, p := range photos {
		items[i] = NewPhotoResponse(p)
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Serve streams the original image.
func (h *Handler) Serve(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	stream, p, err := h.service.Download(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, stream, p.ContentType, p.Filename)
}

// ServeThumbnail streams the JPEG thumbnail.
func (h *Handler) ServeThumbnail(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BindError(c, err)
		return
	}

	stream, p, err := h.service.DownloadThumbnail(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer stream.Close()

	h.stream(c, stream, "image/jpeg", p.ID+"_thumb.jpg")
}

func (h *Handler) stream(c *gin.Context, r io.Reader, contentType, filename string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", "inline; filename=\""+filename+"\"")
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, r); err != nil {
		// The response has started, so only log.
		logger.FromContext(c).WithError(err).Warn("failed to stream photo")
	}
}

// Delete removes a photo of a property owned by the caller.
func (h *Handler) Delete(c *gin.Context) {
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
