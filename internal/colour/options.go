package colour

import (
	"encoding/json"
	"math"
)

const (
	// DefaultColorCount is the palette size used when none is requested.
	DefaultColorCount = 10

	// MinColorCount and MaxColorCount bound the palette size.
	MinColorCount = 2
	MaxColorCount = 20

	// DominantColorCount is the palette size requested internally by Color.
	DominantColorCount = 5

	// DefaultQuality is the default sampling stride.
	DefaultQuality = 10

	// DefaultWhiteThreshold is the channel value above which a pixel counts as white.
	DefaultWhiteThreshold = 250

	// DefaultAlphaThreshold is the alpha value below which a pixel counts as transparent.
	DefaultAlphaThreshold = 125
)

// Number is a loosely typed numeric option. The zero value is "absent".
type Number struct {
	Value float64
	Set   bool
}

// Int returns a present Number holding n.
func Int(n int) Number {
	return Number{Value: float64(n), Set: true}
}

// Float returns a present Number holding f.
func Float(f float64) Number {
	return Number{Value: f, Set: true}
}

// integer returns the value when it is present and integral.
func (n Number) integer() (int, bool) {
	if !n.Set || math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return 0, false
	}
	if math.Trunc(n.Value) != n.Value {
		return 0, false
	}
	if n.Value > math.MaxInt32 {
		return math.MaxInt32, true
	}
	if n.Value < math.MinInt32 {
		return math.MinInt32, true
	}
	return int(n.Value), true
}

// Options is the caller-facing configuration. Every field is optional.
type Options struct {
	ColorCount     Number
	Quality        Number
	IgnoreWhite    *bool
	WhiteThreshold Number
	AlphaThreshold Number
	MinSaturation  Number
}

// Config is a fully populated extraction configuration produced by Normalize.
type Config struct {
	ColorCount     int     `json:"colorCount"`
	Quality        int     `json:"quality"`
	IgnoreWhite    bool    `json:"ignoreWhite"`
	WhiteThreshold int     `json:"whiteThreshold"`
	AlphaThreshold int     `json:"alphaThreshold"`
	MinSaturation  float64 `json:"minSaturation"`
}

// DefaultConfig returns the configuration used when no options are given.
func DefaultConfig() Config {
	return Config{
		ColorCount:     DefaultColorCount,
		Quality:        DefaultQuality,
		IgnoreWhite:    true,
		WhiteThreshold: DefaultWhiteThreshold,
		AlphaThreshold: DefaultAlphaThreshold,
		MinSaturation:  0,
	}
}

// Filters returns the filter subset of the configuration.
func (c Config) Filters() FilterSet {
	return FilterSet{
		IgnoreWhite:    c.IgnoreWhite,
		WhiteThreshold: c.WhiteThreshold,
		AlphaThreshold: c.AlphaThreshold,
		MinSaturation:  c.MinSaturation,
	}
}

// Normalize validates and clamps opts into a Config.
//
// A colour count of exactly 1 is the only validation failure. Other counts
// are clamped into [MinColorCount, MaxColorCount] and non-integral or
// missing counts fall back to DefaultColorCount.
func Normalize(opts Options) (Config, error) {
	cfg := DefaultConfig()

	if n, ok := opts.ColorCount.integer(); ok {
		if n == 1 {
			return Config{}, &ValidationError{Field: "colorCount", Value: n, Err: ErrInvalidColorCount}
		}
		cfg.ColorCount = min(max(n, MinColorCount), MaxColorCount)
	}

	if q, ok := opts.Quality.integer(); ok && q >= 1 {
		cfg.Quality = q
	}

	if opts.IgnoreWhite != nil {
		cfg.IgnoreWhite = *opts.IgnoreWhite
	}

	// Channels are integral, so flooring the white threshold and ceiling the
	// alpha threshold keeps "r > t" and "a < t" exact for fractional input.
	if opts.WhiteThreshold.Set {
		cfg.WhiteThreshold = thresholdInt(opts.WhiteThreshold.Value, math.Floor, 255)
	}
	if opts.AlphaThreshold.Set {
		cfg.AlphaThreshold = thresholdInt(opts.AlphaThreshold.Value, math.Ceil, 0)
	}

	if opts.MinSaturation.Set && !math.IsNaN(opts.MinSaturation.Value) {
		cfg.MinSaturation = math.Max(0, math.Min(1, opts.MinSaturation.Value))
	}

	return cfg, nil
}

// thresholdInt converts a threshold to an int. NaN never matches a
// comparison, which neutral reproduces.
func thresholdInt(v float64, round func(float64) float64, neutral int) int {
	switch {
	case math.IsNaN(v):
		return neutral
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int(round(v))
}

// ParseOptions builds Options from a decoded JSON object or similar map.
// Keys follow the camelCase option names. Non-numeric values for numeric
// options are treated as absent; ignoreWhite takes the truthiness of
// whatever value is present.
func ParseOptions(m map[string]any) Options {
	var opts Options
	opts.ColorCount = NumberOf(m["colorCount"])
	opts.Quality = NumberOf(m["quality"])
	opts.WhiteThreshold = NumberOf(m["whiteThreshold"])
	opts.AlphaThreshold = NumberOf(m["alphaThreshold"])
	opts.MinSaturation = NumberOf(m["minSaturation"])
	if v, ok := m["ignoreWhite"]; ok {
		b := truthy(v)
		opts.IgnoreWhite = &b
	}
	return opts
}

// NumberOf converts a dynamically typed value to a Number. Anything that
// is not a number is absent.
func NumberOf(v any) Number {
	switch n := v.(type) {
	case Number:
		return n
	case int:
		return Int(n)
	case int8:
		return Int(int(n))
	case int16:
		return Int(int(n))
	case int32:
		return Int(int(n))
	case int64:
		return Float(float64(n))
	case uint:
		return Float(float64(n))
	case uint8:
		return Int(int(n))
	case uint16:
		return Int(int(n))
	case uint32:
		return Float(float64(n))
	case uint64:
		return Float(float64(n))
	case float32:
		return Float(float64(n))
	case float64:
		return Float(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return Number{}
		}
		return Float(f)
	default:
		return Number{}
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	default:
		n := NumberOf(v)
		if n.Set {
			return n.Value != 0 && !math.IsNaN(n.Value)
		}
		return true
	}
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}
