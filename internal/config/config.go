// Package config loads swatch defaults from SWATCH_* environment variables
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/jmylchreest/swatch/internal/colour"
)

// EnvPrefix is the prefix of every environment variable read by Load.
const EnvPrefix = "SWATCH_"

// DefaultEnvFile is read when no explicit env file is given and it exists.
const DefaultEnvFile = ".env"

// Environment variable names.
const (
	EnvColours        = EnvPrefix + "COLOURS"
	EnvQuality        = EnvPrefix + "QUALITY"
	EnvIgnoreWhite    = EnvPrefix + "IGNORE_WHITE"
	EnvWhiteThreshold = EnvPrefix + "WHITE_THRESHOLD"
	EnvAlphaThreshold = EnvPrefix + "ALPHA_THRESHOLD"
	EnvMinSaturation  = EnvPrefix + "MIN_SATURATION"
	EnvAlgorithm      = EnvPrefix + "ALGORITHM"
	EnvFormat         = EnvPrefix + "FORMAT"
	EnvCacheDir       = EnvPrefix + "CACHE_DIR"
	EnvAllowInsecure  = EnvPrefix + "ALLOW_INSECURE"
	EnvListenAddr     = EnvPrefix + "LISTEN_ADDR"
	EnvPluginDir      = EnvPrefix + "PLUGIN_DIR"
	EnvLogLevel       = EnvPrefix + "LOG_LEVEL"
	EnvMaxUploadBytes = EnvPrefix + "MAX_UPLOAD_BYTES"
	EnvRateLimit      = EnvPrefix + "RATE_LIMIT"
)

// Defaults for settings that have no pipeline default.
const (
	DefaultListenAddr = ":8080"
	DefaultFormat     = "hex"
	DefaultMaxUpload  = 20 << 20
	DefaultLogLevel   = "info"
)

// Config holds process-wide defaults. Command line flags override it.
type Config struct {
	// Extraction holds the option defaults; unset fields fall back to the
	// pipeline defaults.
	Extraction colour.Options

	Algorithm      colour.Algorithm
	Format         string
	CacheDir       string
	AllowInsecure  bool
	ListenAddr     string
	PluginDir      string
	LogLevel       string
	MaxUploadBytes int64

	// RateLimit is the server's extraction requests per second; zero is unlimited.
	RateLimit float64
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Algorithm:      colour.AlgorithmMedianCut,
		Format:         DefaultFormat,
		ListenAddr:     DefaultListenAddr,
		LogLevel:       DefaultLogLevel,
		MaxUploadBytes: DefaultMaxUpload,
	}
}

// Load reads the process environment on top of envFile. An empty envFile
// means DefaultEnvFile, which may be absent; an explicit file must exist.
func Load(envFile string) (*Config, error) {
	return LoadFrom(os.LookupEnv, envFile)
}

// LoadFrom is Load with an explicit environment lookup.
func LoadFrom(lookup func(string) (string, bool), envFile string) (*Config, error) {
	fileValues, err := readEnvFile(envFile)
	if err != nil {
		return nil, err
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	}

	cfg := Default()
	var errs []error

	number := func(key string, dst *colour.Number) {
		v, ok := get(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid number %q", key, v))
			return
		}
		*dst = colour.Float(f)
	}
	boolean := func(key string, set func(bool)) {
		v, ok := get(key)
		if !ok || strings.TrimSpace(v) == "" {
			return
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid boolean %q", key, v))
			return
		}
		set(b)
	}
	str := func(key string, dst *string) {
		if v, ok := get(key); ok && v != "" {
			*dst = v
		}
	}

	number(EnvColours, &cfg.Extraction.ColorCount)
	number(EnvQuality, &cfg.Extraction.Quality)
	number(EnvWhiteThreshold, &cfg.Extraction.WhiteThreshold)
	number(EnvAlphaThreshold, &cfg.Extraction.AlphaThreshold)
	number(EnvMinSaturation, &cfg.Extraction.MinSaturation)
	boolean(EnvIgnoreWhite, func(b bool) { cfg.Extraction.IgnoreWhite = colour.BoolPtr(b) })
	boolean(EnvAllowInsecure, func(b bool) { cfg.AllowInsecure = b })

	var alg string
	str(EnvAlgorithm, &alg)
	if alg != "" {
		cfg.Algorithm = colour.Algorithm(alg)
	}
	str(EnvFormat, &cfg.Format)
	str(EnvCacheDir, &cfg.CacheDir)
	str(EnvListenAddr, &cfg.ListenAddr)
	str(EnvPluginDir, &cfg.PluginDir)
	str(EnvLogLevel, &cfg.LogLevel)

	if v, ok := get(EnvMaxUploadBytes); ok && v != "" {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || n <= 0 {
			errs = append(errs, fmt.Errorf("%s: invalid size %q", EnvMaxUploadBytes, v))
		} else {
			cfg.MaxUploadBytes = n
		}
	}

	if v, ok := get(EnvRateLimit); ok && v != "" {
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || n < 0 {
			errs = append(errs, fmt.Errorf("%s: invalid rate %q", EnvRateLimit, v))
		} else {
			cfg.RateLimit = n
		}
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	return cfg, nil
}

func readEnvFile(envFile string) (map[string]string, error) {
	optional := envFile == ""
	if optional {
		envFile = DefaultEnvFile
	}

	values, err := godotenv.Read(envFile)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}
	return values, nil
}
