package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/extract"
	"github.com/jmylchreest/swatch/internal/image"
	"github.com/jmylchreest/swatch/internal/plugin/executor"
)

// Flag names shared by the extraction commands.
const (
	flagColours        = "colours"
	flagQuality        = "quality"
	flagIgnoreWhite    = "ignore-white"
	flagWhiteThreshold = "white-threshold"
	flagAlphaThreshold = "alpha-threshold"
	flagMinSaturation  = "min-saturation"
	flagAlgorithm      = "algorithm"
	flagFormat         = "format"
	flagCacheDir       = "cache-dir"
	flagAllowInsecure  = "allow-insecure"
	flagPluginDir      = "plugin-dir"
)

// extractFlags holds the values of the extraction flag set. Only flags the
// user changed override the configured defaults.
type extractFlags struct {
	fs *pflag.FlagSet

	colours        int
	quality        int
	ignoreWhite    bool
	whiteThreshold int
	alphaThreshold int
	minSaturation  float64
	algorithm      string
	format         string
	output         string
	preview        bool
	cacheDir       string
	allowInsecure  bool
	pluginDir      string
}

// newExtractFlags builds the extraction flag set. withColours is false for
// commands that always extract a single colour.
func newExtractFlags(withColours bool) *extractFlags {
	f := &extractFlags{fs: pflag.NewFlagSet("extract", pflag.ContinueOnError)}
	cfg := colour.DefaultConfig()

	if withColours {
		f.fs.IntVarP(&f.colours, flagColours, "c", cfg.ColorCount, "number of colours to extract (2-20)")
	}
	f.fs.IntVarP(&f.quality, flagQuality, "q", cfg.Quality, "sample every Nth pixel (1 is highest quality)")
	f.fs.BoolVar(&f.ignoreWhite, flagIgnoreWhite, cfg.IgnoreWhite, "skip near-white pixels")
	f.fs.IntVar(&f.whiteThreshold, flagWhiteThreshold, cfg.WhiteThreshold, "channel value above which a pixel counts as white")
	f.fs.IntVar(&f.alphaThreshold, flagAlphaThreshold, cfg.AlphaThreshold, "alpha below which a pixel is skipped")
	f.fs.Float64Var(&f.minSaturation, flagMinSaturation, cfg.MinSaturation, "minimum HSV saturation of sampled pixels (0-1)")
	f.fs.StringVarP(&f.algorithm, flagAlgorithm, "a", string(colour.AlgorithmMedianCut),
		fmt.Sprintf("clustering algorithm %v or plugin:<path>", colour.ValidAlgorithms()))
	f.fs.StringVarP(&f.format, flagFormat, "f", string(FormatHex), fmt.Sprintf("output format %v", ValidFormats()))
	f.fs.StringVarP(&f.output, "output", "o", "", "write results to this file instead of stdout")
	f.fs.BoolVar(&f.preview, "preview", false, "show colour swatches (terminal only)")
	f.fs.StringVar(&f.cacheDir, flagCacheDir, "", "cache downloaded images in this directory")
	f.fs.BoolVar(&f.allowInsecure, flagAllowInsecure, false, "allow plain http and private hosts for URL inputs")
	f.fs.StringVar(&f.pluginDir, flagPluginDir, "", "only load cluster plugins from this directory")
	return f
}

// options merges the configured defaults with the flags the user set.
func (f *extractFlags) options(a *app) colour.Options {
	opts := a.cfg.Extraction
	if f.fs.Changed(flagColours) {
		opts.ColorCount = colour.Int(f.colours)
	}
	if f.fs.Changed(flagQuality) {
		opts.Quality = colour.Int(f.quality)
	}
	if f.fs.Changed(flagIgnoreWhite) {
		opts.IgnoreWhite = colour.BoolPtr(f.ignoreWhite)
	}
	if f.fs.Changed(flagWhiteThreshold) {
		opts.WhiteThreshold = colour.Int(f.whiteThreshold)
	}
	if f.fs.Changed(flagAlphaThreshold) {
		opts.AlphaThreshold = colour.Int(f.alphaThreshold)
	}
	if f.fs.Changed(flagMinSaturation) {
		opts.MinSaturation = colour.Float(f.minSaturation)
	}
	return opts
}

func (f *extractFlags) stringOr(name, value, fallback string) string {
	if f.fs.Changed(name) || fallback == "" {
		return value
	}
	return fallback
}

func (f *extractFlags) algorithmName(a *app) colour.Algorithm {
	return colour.Algorithm(f.stringOr(flagAlgorithm, f.algorithm, string(a.cfg.Algorithm)))
}

func (f *extractFlags) outputFormat(a *app) (Format, error) {
	return ParseFormat(f.stringOr(flagFormat, f.format, a.cfg.Format))
}

func (f *extractFlags) resolver(a *app) image.Resolver {
	allow := a.cfg.AllowInsecure
	if f.fs.Changed(flagAllowInsecure) {
		allow = f.allowInsecure
	}
	return image.Resolver{
		CacheDir:      f.stringOr(flagCacheDir, f.cacheDir, a.cfg.CacheDir),
		AllowInsecure: allow,
	}
}

// service builds the extraction service for the selected algorithm. The
// closer releases any plugin process.
func (f *extractFlags) service(ctx context.Context, a *app) (*extract.Service, io.Closer, error) {
	clusterer, closer, err := executor.ClustererFor(ctx, f.algorithmName(a), executor.Options{
		Logger:    a.logger,
		PluginDir: f.stringOr(flagPluginDir, f.pluginDir, a.cfg.PluginDir),
	})
	if err != nil {
		return nil, nil, err
	}

	extractor := colour.NewExtractor(
		colour.WithClusterer(clusterer),
		colour.WithLogger(a.logger.Named("extract")),
	)
	return extract.NewService(extractor, f.resolver(a), a.logger), closer, nil
}

// register adds the flag set to cmd.
func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().AddFlagSet(f.fs)
}
