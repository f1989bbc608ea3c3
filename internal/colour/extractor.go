package colour

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
)

// Extractor runs the extraction pipeline: sampling with progressive
// relaxation, clustering, and fallback averaging.
//
// An Extractor holds no per-call state and is safe for concurrent use as
// long as its Clusterer is.
type Extractor struct {
	clusterer Clusterer
	logger    hclog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithClusterer sets the clustering collaborator.
func WithClusterer(c Clusterer) ExtractorOption {
	return func(e *Extractor) {
		if c != nil {
			e.clusterer = c
		}
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(l hclog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewExtractor creates an Extractor. By default it clusters with median cut
// and discards log output.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		clusterer: NewMedianCut(),
		logger:    hclog.NewNullLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Palette extracts a palette from buf using a normalised configuration.
// A nil palette with a nil error means no representative colour exists,
// which only happens when the buffer has no pixels.
//
// When clustering yields nothing the result is a single colour: the mean of
// the relaxed samples.
func (e *Extractor) Palette(buf PixelBuffer, cfg Config) (*Palette, error) {
	samples, stage := SampleWithRelaxation(buf, cfg.Quality, cfg.Filters())
	e.logger.Debug("sampled pixels", "pixels", buf.PixelCount, "quality", cfg.Quality, "samples", len(samples), "stage", stage)

	if len(samples) > 0 {
		palette, err := e.clusterer.Cluster(samples, cfg.ColorCount)
		if err != nil {
			return nil, fmt.Errorf("failed to cluster colours: %w", err)
		}
		if palette != nil && palette.Len() != cfg.ColorCount {
			e.logger.Warn("clusterer returned wrong palette size, ignoring result", "want", cfg.ColorCount, "got", palette.Len())
			palette = nil
		}
		if palette != nil {
			e.logger.Debug("clustered palette", "colours", palette.Len())
			return palette, nil
		}
	} else {
		// Only the saturation filter can still reject pixels here; average
		// the unfiltered scan instead.
		samples = Sample(buf, cfg.Quality, FilterSet{})
	}

	avg := Average(samples)
	if avg == nil {
		return nil, nil
	}
	e.logger.Debug("clustering produced no palette, using sample average", "colour", avg.Hex())
	return NewPaletteWithWeights([]RGB{*avg}, []float64{1}), nil
}

// PaletteFromOptions normalises opts and extracts a palette.
func (e *Extractor) PaletteFromOptions(buf PixelBuffer, opts Options) (*Palette, error) {
	cfg, err := Normalize(opts)
	if err != nil {
		return nil, err
	}
	return e.Palette(buf, cfg)
}

// Color returns the dominant colour of buf: the first entry of a palette of
// DominantColorCount colours. Any colour count in opts is ignored.
func (e *Extractor) Color(buf PixelBuffer, opts Options) (*RGB, error) {
	palette, err := e.PaletteFromOptions(buf, DominantOptions(opts))
	if err != nil {
		return nil, err
	}
	c, ok := palette.Dominant()
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// GetPalette accepts either (colorCount, quality) positional arguments or a
// single options value; see PaletteArgs.
func (e *Extractor) GetPalette(buf PixelBuffer, args ...any) (*Palette, error) {
	return e.PaletteFromOptions(buf, PaletteArgs(args...))
}

// GetColor accepts either a positional quality or a single options value;
// see ColorArgs.
func (e *Extractor) GetColor(buf PixelBuffer, args ...any) (*RGB, error) {
	return e.Color(buf, ColorArgs(args...))
}

// DominantOptions returns opts with the colour count fixed for a dominant
// colour request.
func DominantOptions(opts Options) Options {
	opts.ColorCount = Int(DominantColorCount)
	return opts
}

// optionsArg reports whether v is an options object and returns it.
func optionsArg(v any) (Options, bool) {
	switch o := v.(type) {
	case Options:
		return o, true
	case *Options:
		if o == nil {
			return Options{}, false
		}
		return *o, true
	case map[string]any:
		return ParseOptions(o), true
	default:
		return Options{}, false
	}
}

// PaletteArgs resolves the palette calling conventions into Options.
// An options value as first argument wins and later arguments are ignored;
// otherwise the arguments are read as (colorCount, quality).
func PaletteArgs(args ...any) Options {
	if len(args) == 0 {
		return Options{}
	}
	if opts, ok := optionsArg(args[0]); ok {
		return opts
	}
	var opts Options
	opts.ColorCount = NumberOf(args[0])
	if len(args) > 1 {
		opts.Quality = NumberOf(args[1])
	}
	return opts
}

// ColorArgs resolves the dominant colour calling conventions into Options:
// either a single options value or a positional quality.
func ColorArgs(args ...any) Options {
	if len(args) == 0 {
		return DominantOptions(Options{})
	}
	if opts, ok := optionsArg(args[0]); ok {
		return DominantOptions(opts)
	}
	return DominantOptions(Options{Quality: NumberOf(args[0])})
}
