package storage

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

const (
	ThumbnailWidth  = 400
	ThumbnailHeight = 400
)

// ImageProcessor produces listing thumbnails.
type ImageProcessor struct {
	width, height int
	quality       int
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{width: ThumbnailWidth, height: ThumbnailHeight, quality: 80}
}

// Thumbnail decodes content (JPEG, PNG or GIF), crops it to fill the thumbnail box
// and returns the JPEG encoding.
func (p *ImageProcessor) Thumbnail(content io.Reader) (*bytes.Buffer, error) {
	img, err := imaging.Decode(content, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	thumb := imaging.Fill(img, p.width, p.height, imaging.Center, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, thumb, &jpeg.Options{Quality: p.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf, nil
}
