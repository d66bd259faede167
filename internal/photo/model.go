package photo

import (
	"net/http"
	"time"

	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound         = apperror.NotFound("photo not found")
	ErrNoThumbnail      = apperror.NotFound("thumbnail not available for this photo")
	ErrPropertyNotFound = apperror.NotFound("property not found")
	ErrPermissionDenied = apperror.Forbidden("only the host can manage photos of this property")
	ErrFileRequired     = apperror.Validation("file is required")
	ErrFileTooLarge     = apperror.New(apperror.KindValidation, http.StatusRequestEntityTooLarge, "file too large")
	ErrUnsupportedType  = apperror.New(apperror.KindValidation, http.StatusUnsupportedMediaType, "unsupported file type")
)

// AllowedTypes are the sniffed content types accepted for upload.
var AllowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// Photo is an image attached to a property.
type Photo struct {
	ID            string
	PropertyID    string
	UploaderID    string
	Filename      string
	ContentType   string
	Size          int64
	StoragePath   string  // internal
	ThumbnailPath *string // internal; nil when no thumbnail could be made
	CreatedAt     time.Time
}

// URL returns the public path serving the original image.
func URL(id string) string {
	return "/v1/photos/" + id
}

// ThumbnailURL returns the public path serving the thumbnail.
func ThumbnailURL(id string) string {
	return "/v1/photos/" + id + "/thumbnail"
}
