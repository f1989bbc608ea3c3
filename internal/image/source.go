// Package image acquires raw RGBA pixel data from images, files, byte slices
// and URLs.
package image

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp" // Register WebP format

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/security"
)

// DefaultMaxPixels bounds the decoded size of file and byte sources.
const DefaultMaxPixels = 100_000_000

// Source produces the pixel buffer of an image.
type Source interface {
	Pixels(ctx context.Context) (colour.PixelBuffer, error)
}

// ImageSource reads an already decoded image.
type ImageSource struct {
	Image image.Image
}

// Pixels implements Source.
func (s ImageSource) Pixels(_ context.Context) (colour.PixelBuffer, error) {
	return imagePixels(s.Image)
}

// BufferSource is pixel data that is already resident.
type BufferSource struct {
	Buffer colour.PixelBuffer
}

// Pixels implements Source.
func (s BufferSource) Pixels(_ context.Context) (colour.PixelBuffer, error) {
	return s.Buffer, nil
}

// RawSource is a width x height block of non-premultiplied RGBA bytes.
type RawSource struct {
	Pix    []byte
	Width  int
	Height int
}

// Pixels implements Source.
func (s RawSource) Pixels(_ context.Context) (colour.PixelBuffer, error) {
	if s.Width <= 0 || s.Height <= 0 {
		return colour.PixelBuffer{}, fmt.Errorf("%w: raw image has no dimensions", ErrSourceNotReady)
	}
	need := s.Width * s.Height * 4
	if len(s.Pix) < need {
		return colour.PixelBuffer{}, &AcquisitionError{
			Source: "raw pixels",
			Err:    fmt.Errorf("have %d bytes, need %d for %dx%d", len(s.Pix), need, s.Width, s.Height),
		}
	}
	return colour.PixelBuffer{Pix: s.Pix, PixelCount: s.Width * s.Height}, nil
}

// FileSource decodes an image file from disk.
type FileSource struct {
	Path      string
	MaxPixels int
}

// Pixels implements Source.
func (s FileSource) Pixels(_ context.Context) (colour.PixelBuffer, error) {
	if s.Path == "" {
		return colour.PixelBuffer{}, &AcquisitionError{Source: "file", Err: fmt.Errorf("image path cannot be empty")}
	}

	file, err := os.Open(s.Path) // #nosec G304 - User-specified image path, intended to be read
	if err != nil {
		return colour.PixelBuffer{}, &AcquisitionError{Source: s.Path, Err: err}
	}
	defer file.Close()

	img, err := decode(file, s.MaxPixels)
	if err != nil {
		return colour.PixelBuffer{}, &AcquisitionError{Source: s.Path, Err: err}
	}
	return imagePixels(img)
}

// BytesSource decodes an encoded image held in memory.
type BytesSource struct {
	Data      []byte
	MaxPixels int
}

// Pixels implements Source.
func (s BytesSource) Pixels(_ context.Context) (colour.PixelBuffer, error) {
	img, err := decode(bytes.NewReader(s.Data), s.MaxPixels)
	if err != nil {
		return colour.PixelBuffer{}, &AcquisitionError{Source: "buffer", Err: err}
	}
	return imagePixels(img)
}

// ReaderSource decodes an encoded image from a stream, reading at most
// MaxBytes.
type ReaderSource struct {
	Reader    io.Reader
	MaxBytes  int64
	MaxPixels int
}

// Pixels implements Source.
func (s ReaderSource) Pixels(ctx context.Context) (colour.PixelBuffer, error) {
	maxBytes := s.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	data, err := io.ReadAll(security.NewLimitedReader(s.Reader, maxBytes))
	if err != nil {
		return colour.PixelBuffer{}, &AcquisitionError{Source: "stream", Err: err}
	}
	return BytesSource{Data: data, MaxPixels: s.MaxPixels}.Pixels(ctx)
}

// decode checks the image header against maxPixels before decoding with EXIF
// orientation applied.
func decode(r io.ReadSeeker, maxPixels int) (image.Image, error) {
	if maxPixels <= 0 {
		maxPixels = DefaultMaxPixels
	}

	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return nil, fmt.Errorf("unsupported or invalid image format: %w", err)
	}
	if cfg.Width*cfg.Height > maxPixels {
		return nil, fmt.Errorf("%s image is %dx%d, larger than %d pixels", format, cfg.Width, cfg.Height, maxPixels)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (format: %s): %w", format, err)
	}
	return img, nil
}

// imagePixels converts img to a tightly packed non-premultiplied RGBA buffer.
func imagePixels(img image.Image) (colour.PixelBuffer, error) {
	if img == nil {
		return colour.PixelBuffer{}, fmt.Errorf("%w: no image", ErrSourceNotReady)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return colour.PixelBuffer{}, fmt.Errorf("%w: image has no dimensions", ErrSourceNotReady)
	}

	nrgba := imaging.Clone(img)
	return colour.PixelBuffer{Pix: nrgba.Pix, PixelCount: b.Dx() * b.Dy()}, nil
}
