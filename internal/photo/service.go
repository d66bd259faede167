package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nekogravitycat/rental-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/rental-booking-backend/internal/property"
	"github.com/sirupsen/logrus"
)

// PropertyReader resolves the property a photo belongs to.
type PropertyReader interface {
	GetByID(ctx context.Context, id string) (*property.Property, error)
}

// UploadInput carries one uploaded file.
type UploadInput struct {
	PropertyID string
	UserID     string
	Filename   string
	Content    io.Reader
}

type Service interface {
	Upload(ctx context.Context, in UploadInput) (*Photo, error)
	List(ctx context.Context, propertyID string) ([]*Photo, error)
	Get(ctx context.Context, id string) (*Photo, error)
	Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error)
	Delete(ctx context.Context, id, actingUserID string) error
}

type service struct {
	repo       Repository
	properties PropertyReader
	storage    storage.Storage
	imgProc    *storage.ImageProcessor
	maxBytes   int64
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewService(repo Repository, properties PropertyReader, store storage.Storage, maxBytes int64, log logrus.FieldLogger) Service {
	return &service{
		repo:       repo,
		properties: properties,
		storage:    store,
		imgProc:    storage.NewImageProcessor(),
		maxBytes:   maxBytes,
		log:        log,
		now:        time.Now,
	}
}

// ownedProperty loads the property and checks that userID hosts it.
func (s *service) ownedProperty(ctx context.Context, propertyID, userID string) (*property.Property, error) {
	p, err := s.properties.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, property.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	if p.HostID != userID {
		return nil, ErrPermissionDenied
	}
	return p, nil
}

func (s *service) Upload(ctx context.Context, in UploadInput) (*Photo, error) {
	if in.Content == nil {
		return nil, ErrFileRequired
	}
	if _, err := s.ownedProperty(ctx, in.PropertyID, in.UserID); err != nil {
		return nil, err
	}

	// Read one byte past the limit to detect oversized files without trusting the declared size.
	content, err := io.ReadAll(io.LimitReader(in.Content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if int64(len(content)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}
	if len(content) == 0 {
		return nil, ErrFileRequired
	}

	contentType := http.DetectContentType(content)
	ext, ok := AllowedTypes[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	photoID := uuid.New().String()
	dir := fmt.Sprintf("properties/%s", in.PropertyID)
	storagePath := fmt.Sprintf("%s/%s%s", dir, photoID, ext)

	if err := s.storage.Save(ctx, storagePath, bytes.NewReader(content), int64(len(content)), contentType); err != nil {
		return nil, fmt.Errorf("failed to save photo to storage: %w", err)
	}

	// A missing thumbnail does not fail the upload.
	var thumbnailPath *string
	if thumb, err := s.imgProc.Thumbnail(bytes.NewReader(content)); err != nil {
		s.log.WithError(err).WithField("photo_id", photoID).Warn("failed to generate thumbnail")
	} else {
		tPath := fmt.Sprintf("%s/%s_thumb.jpg", dir, photoID)
		if err := s.storage.Save(ctx, tPath, thumb, int64(thumb.Len()), "image/jpeg"); err != nil {
			s.log.WithError(err).WithField("photo_id", photoID).Warn("failed to save thumbnail")
		} else {
			thumbnailPath = &tPath
		}
	}

	p := &Photo{
		ID:            photoID,
		PropertyID:    in.PropertyID,
		UploaderID:    in.UserID,
		Filename:      filepath.Base(in.Filename),
		ContentType:   contentType,
		Size:          int64(len(content)),
		StoragePath:   storagePath,
		ThumbnailPath: thumbnailPath,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		// Remove the stored objects when the record cannot be written.
		s.removeObjects(ctx, p)
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"photo_id": p.ID, "property_id": p.PropertyID}).Info("photo uploaded")
	return p, nil
}

func (s *service) List(ctx context.Context, propertyID string) ([]*Photo, error) {
	if _, err := s.properties.GetByID(ctx, propertyID); err != nil {
		if errors.Is(err, property.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, err
	}
	return s.repo.ListByProperty(ctx, propertyID)
}

func (s *service) Get(ctx context.Context, id string) (*Photo, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) Download(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	stream, err := s.open(ctx, p.StoragePath, ErrNotFound)
	if err != nil {
		return nil, nil, err
	}
	return stream, p, nil
}

func (s *service) DownloadThumbnail(ctx context.Context, id string) (io.ReadCloser, *Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if p.ThumbnailPath == nil {
		return nil, nil, ErrNoThumbnail
	}

	stream, err := s.open(ctx, *p.ThumbnailPath, ErrNoThumbnail)
	if err != nil {
		return nil, nil, err
	}
	return stream, p, nil
}

func (s *service) open(ctx context.Context, path string, missing error) (io.ReadCloser, error) {
	stream, err := s.storage.Get(ctx, path)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, missing
		}
		return nil, fmt.Errorf("failed to retrieve photo from storage: %w", err)
	}
	return stream, nil
}

func (s *service) Delete(ctx context.Context, id, actingUserID string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.ownedProperty(ctx, p.PropertyID, actingUserID); err != nil {
		if errors.Is(err, ErrPropertyNotFound) {
			return ErrNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.removeObjects(ctx, p)
	return nil
}

// removeObjects deletes the stored original and thumbnail on a best-effort basis.
func (s *service) removeObjects(ctx context.Context, p *Photo) {
	paths := []string{p.StoragePath}
	if p.ThumbnailPath != nil {
		paths = append(paths, *p.ThumbnailPath)
	}
	for _, path := range paths {
		if err := s.storage.Delete(ctx, path); err != nil {
			s.log.WithError(err).WithField("path", path).Warn("failed to delete stored object")
		}
	}
}
