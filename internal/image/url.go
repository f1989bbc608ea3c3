package image

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/security"
	httputil "github.com/jmylchreest/swatch/internal/util/http"
	"github.com/jmylchreest/swatch/internal/util/imagecache"
)

// DefaultMaxBytes bounds the size of fetched and streamed images.
const DefaultMaxBytes = httputil.DefaultMaxBytes

// URLSource fetches and decodes a remote image.
//
// Unless AllowInsecure is set, only HTTPS URLs on public hosts are read, and
// the policy also applies to every redirect and resolved address.
// When CacheDir is set, downloads are kept on disk and reused.
type URLSource struct {
	URL           string
	CacheDir      string
	AllowInsecure bool
	MaxBytes      int64
	MaxPixels     int

	// Client overrides the HTTP client.
	Client *http.Client
}

// Pixels implements Source.
func (s URLSource) Pixels(ctx context.Context) (colour.PixelBuffer, error) {
	if err := s.check(); err != nil {
		return colour.PixelBuffer{}, err
	}

	fetch := httputil.FetchOptions{
		MaxBytes: s.MaxBytes,
		Client:   s.Client,
		Strict:   !s.AllowInsecure,
	}

	if s.CacheDir != "" {
		path, err := imagecache.DownloadAndCache(ctx, s.URL, imagecache.CacheOptions{
			CacheDir: s.CacheDir,
			Fetch:    fetch,
		})
		if err != nil {
			return colour.PixelBuffer{}, s.fetchError(err)
		}
		return FileSource{Path: path, MaxPixels: s.MaxPixels}.Pixels(ctx)
	}

	data, err := httputil.Fetch(ctx, s.URL, fetch)
	if err != nil {
		return colour.PixelBuffer{}, s.fetchError(fmt.Errorf("failed to fetch image: %w", err))
	}
	img, err := decode(bytes.NewReader(data), s.MaxPixels)
	if err != nil {
		return colour.PixelBuffer{}, &AcquisitionError{Source: s.URL, Err: err}
	}
	return imagePixels(img)
}

func (s URLSource) check() error {
	if !security.IsHTTPURL(s.URL) {
		return fmt.Errorf("%w: %q is not an http(s) URL", ErrUnsupportedSource, s.URL)
	}
	if s.AllowInsecure {
		return nil
	}
	if err := security.ValidateHTTPURL(s.URL); err != nil {
		return &CrossOriginError{URL: s.URL, Err: err}
	}
	return nil
}

// fetchError reports policy refusals during the fetch as CrossOriginError and
// anything else as AcquisitionError.
func (s URLSource) fetchError(err error) error {
	var policyErr *security.PolicyError
	if errors.As(err, &policyErr) {
		return &CrossOriginError{URL: s.URL, Err: err}
	}
	return &AcquisitionError{Source: s.URL, Err: err}
}
