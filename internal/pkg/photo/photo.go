// Package photo normalizes uploaded and captured student photos.
package photo

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrUnsupportedImage is returned for payloads that are not a decodable image.
var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

// Options controls normalization
type Options struct {
	// MaxDimension bounds the longest side in pixels; 0 keeps the size.
	MaxDimension int
	JPEGQuality  int
}

// DefaultOptions matches the service defaults
var DefaultOptions = Options{MaxDimension: 600, JPEGQuality: 90}

// Normalize decodes JPEG, PNG, GIF or WebP data, applies EXIF orientation,
// fits the image within MaxDimension and re-encodes it as JPEG.
func Normalize(data []byte, opts Options) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrUnsupportedImage
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if opts.MaxDimension > 0 {
		b := img.Bounds()
		if b.Dx() > opts.MaxDimension || b.Dy() > opts.MaxDimension {
			img = imaging.Fit(img, opts.MaxDimension, opts.MaxDimension, imaging.Lanczos)
		}
	}

	return EncodeJPEG(img, opts.JPEGQuality)
}

// EncodeJPEG encodes img as JPEG with the given quality (default 90).
func EncodeJPEG(img image.Image, quality int) ([]byte, error) {
	if quality <= 0 || quality > 100 {
		quality = DefaultOptions.JPEGQuality
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
