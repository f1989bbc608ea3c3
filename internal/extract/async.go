package extract

import (
	"context"

	"github.com/jmylchreest/swatch/internal/colour"
)

// Result is the outcome of a deferred extraction.
type Result struct {
	Palette *colour.Palette
	Err     error
}

// ColorResult is the outcome of a deferred dominant colour extraction.
type ColorResult struct {
	Color *colour.RGB
	Err   error
}

// PaletteAsync validates args and runs Palette in the background. Invalid
// options are returned immediately and no source is read. Otherwise the
// channel receives exactly one Result and is then closed.
func (s *Service) PaletteAsync(ctx context.Context, src any, args ...any) (<-chan Result, error) {
	cfg, err := colour.Normalize(colour.PaletteArgs(args...))
	if err != nil {
		return nil, err
	}

	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		palette, err := s.extract(ctx, src, cfg)
		ch <- Result{Palette: palette, Err: err}
	}()
	return ch, nil
}

// ColorAsync is the dominant colour counterpart of PaletteAsync.
func (s *Service) ColorAsync(ctx context.Context, src any, args ...any) (<-chan ColorResult, error) {
	cfg, err := colour.Normalize(colour.ColorArgs(args...))
	if err != nil {
		return nil, err
	}

	ch := make(chan ColorResult, 1)
	go func() {
		defer close(ch)
		palette, err := s.extract(ctx, src, cfg)
		if err != nil {
			ch <- ColorResult{Err: err}
			return
		}
		ch <- ColorResult{Color: dominant(palette)}
	}()
	return ch, nil
}

// ColorFromURL fetches url and calls fn with its dominant colour and the URL.
// fn runs at most once and only on success; failures are logged and dropped.
// The returned channel is closed when the work is finished.
func (s *Service) ColorFromURL(ctx context.Context, url string, quality any, fn func(colour.RGB, string)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c, err := s.Color(ctx, url, quality)
		if err != nil {
			s.logger.Warn("failed to extract colour from url", "url", url, "error", err)
			return
		}
		if c == nil {
			s.logger.Debug("no colour found", "url", url)
			return
		}
		fn(*c, url)
	}()
	return done
}
