package image

import (
	"fmt"
	"image"
	"io"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/security"
)

// Resolver turns loosely typed inputs into Sources, applying shared limits
// and the URL policy.
type Resolver struct {
	CacheDir      string
	AllowInsecure bool
	MaxBytes      int64
	MaxPixels     int
}

// Resolve returns the Source for v:
//   - a Source is returned unchanged
//   - a string is an http(s) URL or a file path
//   - []byte is an encoded image
//   - image.Image is read directly
//   - colour.PixelBuffer is used as is
//   - io.Reader is read fully and decoded
//
// Anything else yields ErrUnsupportedSource.
func (r Resolver) Resolve(v any) (Source, error) {
	switch src := v.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil", ErrUnsupportedSource)
	case Source:
		return src, nil
	case string:
		if security.IsHTTPURL(src) {
			return URLSource{
				URL:           src,
				CacheDir:      r.CacheDir,
				AllowInsecure: r.AllowInsecure,
				MaxBytes:      r.MaxBytes,
				MaxPixels:     r.MaxPixels,
			}, nil
		}
		return FileSource{Path: src, MaxPixels: r.MaxPixels}, nil
	case []byte:
		return BytesSource{Data: src, MaxPixels: r.MaxPixels}, nil
	case image.Image:
		return ImageSource{Image: src}, nil
	case colour.PixelBuffer:
		return BufferSource{Buffer: src}, nil
	case *colour.PixelBuffer:
		if src == nil {
			return nil, fmt.Errorf("%w: nil pixel buffer", ErrUnsupportedSource)
		}
		return BufferSource{Buffer: *src}, nil
	case io.Reader:
		return ReaderSource{Reader: src, MaxBytes: r.MaxBytes, MaxPixels: r.MaxPixels}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedSource, v)
	}
}

// FromAny resolves v with default limits and the strict URL policy.
func FromAny(v any) (Source, error) {
	return Resolver{}.Resolve(v)
}
