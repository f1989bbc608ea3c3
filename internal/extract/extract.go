// Package extract ties pixel sources to the colour extraction pipeline.
//
// Options are validated before any source is touched, so an invalid request
// never reads a file or opens a connection.
package extract

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/image"
)

// Service extracts palettes and dominant colours from any input the
// resolver accepts.
type Service struct {
	extractor *colour.Extractor
	resolver  image.Resolver
	logger    hclog.Logger
}

// NewService creates a Service. A nil extractor uses the default median cut
// pipeline and a nil logger discards output.
func NewService(extractor *colour.Extractor, resolver image.Resolver, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	if extractor == nil {
		extractor = colour.NewExtractor(colour.WithLogger(logger))
	}
	return &Service{
		extractor: extractor,
		resolver:  resolver,
		logger:    logger,
	}
}

// Palette extracts a palette from src. args follow colour.PaletteArgs.
func (s *Service) Palette(ctx context.Context, src any, args ...any) (*colour.Palette, error) {
	return s.palette(ctx, src, colour.PaletteArgs(args...))
}

// Color extracts the dominant colour from src. args follow colour.ColorArgs.
func (s *Service) Color(ctx context.Context, src any, args ...any) (*colour.RGB, error) {
	palette, err := s.palette(ctx, src, colour.ColorArgs(args...))
	if err != nil {
		return nil, err
	}
	return dominant(palette), nil
}

func dominant(palette *colour.Palette) *colour.RGB {
	c, ok := palette.Dominant()
	if !ok {
		return nil
	}
	return &c
}

func (s *Service) palette(ctx context.Context, src any, opts colour.Options) (*colour.Palette, error) {
	cfg, err := colour.Normalize(opts)
	if err != nil {
		return nil, err
	}
	return s.extract(ctx, src, cfg)
}

// extract runs the pipeline with an already normalised configuration.
func (s *Service) extract(ctx context.Context, src any, cfg colour.Config) (*colour.Palette, error) {
	buf, err := s.pixels(ctx, src)
	if err != nil {
		return nil, err
	}
	return s.extractor.Palette(buf, cfg)
}

func (s *Service) pixels(ctx context.Context, src any) (colour.PixelBuffer, error) {
	source, err := s.resolver.Resolve(src)
	if err != nil {
		return colour.PixelBuffer{}, err
	}

	buf, err := source.Pixels(ctx)
	if err != nil {
		s.logger.Debug("failed to acquire pixels", "source", describe(src), "error", err)
		return colour.PixelBuffer{}, err
	}
	s.logger.Debug("acquired pixels", "source", describe(src), "pixels", buf.PixelCount)
	return buf, nil
}

// describe names src for logs without dumping pixel data.
func describe(src any) string {
	switch v := src.(type) {
	case string:
		return v
	case image.URLSource:
		return v.URL
	case image.FileSource:
		return v.Path
	default:
		return fmt.Sprintf("%T", v)
	}
}

var defaultService = NewService(nil, image.Resolver{}, nil)

// Palette extracts a palette from src with default limits and the strict URL
// policy.
func Palette(ctx context.Context, src any, args ...any) (*colour.Palette, error) {
	return defaultService.Palette(ctx, src, args...)
}

// Color extracts the dominant colour from src with default limits and the
// strict URL policy.
func Color(ctx context.Context, src any, args ...any) (*colour.RGB, error) {
	return defaultService.Color(ctx, src, args...)
}
