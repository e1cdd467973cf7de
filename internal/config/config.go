// Package config loads corpus-prep settings from CORPUS_PREP_* environment
// variables and command-line flags. Flags win over the environment.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const envPrefix = "CORPUS_PREP_"

// Config is the full run configuration.
type Config struct {
	InputDir  string
	OutputDir string

	// Geometry.
	ContentCrop   bool
	EdgeThreshold int
	CropMargin    float64
	AspectRatio   float64
	OutputWidth   int
	OutputHeight  int

	// Brightness strategy name, see brightness.Names.
	Strategy string

	// FallbackFormat is the output extension for inputs whose format cannot
	// be written, such as WebP.
	FallbackFormat string

	FailFast      bool
	StatsOnly     bool
	AutoOrient    bool
	JPEGQuality   int
	ProgressEvery int

	LogLevel  string
	LogFormat string

	// MetricsFile, when set, receives the run metrics in the Prometheus text
	// format after the run.
	MetricsFile string

	Trace TraceConfig
}

// TraceConfig selects the span exporter.
type TraceConfig struct {
	Exporter     string
	OTLPEndpoint string
	OTLPInsecure bool
}

// Load returns the configuration described by the environment, falling back
// to the defaults for unset or unparsable values.
func Load() Config {
	return Config{
		InputDir:  env("INPUT_DIR", ""),
		OutputDir: env("OUTPUT_DIR", ""),

		ContentCrop:   envBool("CONTENT_CROP", false),
		EdgeThreshold: envInt("EDGE_THRESHOLD", 10),
		CropMargin:    envFloat("CROP_MARGIN", 0.2),
		AspectRatio:   envFloat("ASPECT_RATIO", 1.2),
		OutputWidth:   envInt("OUTPUT_WIDTH", 268),
		OutputHeight:  envInt("OUTPUT_HEIGHT", 224),

		Strategy:       env("STRATEGY", "channel"),
		FallbackFormat: env("FALLBACK_FORMAT", "png"),

		FailFast:      envBool("FAIL_FAST", false),
		StatsOnly:     envBool("STATS_ONLY", false),
		AutoOrient:    envBool("AUTO_ORIENT", true),
		JPEGQuality:   envInt("JPEG_QUALITY", 95),
		ProgressEvery: envInt("PROGRESS_EVERY", 100),

		LogLevel:  env("LOG_LEVEL", "info"),
		LogFormat: env("LOG_FORMAT", "text"),

		MetricsFile: env("METRICS_FILE", ""),

		Trace: TraceConfig{
			Exporter:     env("TRACE_EXPORTER", "none"),
			OTLPEndpoint: env("OTLP_ENDPOINT", ""),
			OTLPInsecure: envBool("OTLP_INSECURE", false),
		},
	}
}

// BindFlags registers a flag for every setting on fs, using the current
// values of c as defaults. Call it on the result of Load so that flags
// override the environment.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.InputDir, "input", c.InputDir, "directory tree of source images")
	fs.StringVar(&c.OutputDir, "output", c.OutputDir, "directory that receives the normalized tree")

	fs.BoolVar(&c.ContentCrop, "content-crop", c.ContentCrop, "trim low-information borders before the aspect crop")
	fs.IntVar(&c.EdgeThreshold, "edge-threshold", c.EdgeThreshold, "minimum edge strength (0-255) counted as content")
	fs.Float64Var(&c.CropMargin, "crop-margin", c.CropMargin, "largest fraction of a side the content crop may remove")
	fs.Float64Var(&c.AspectRatio, "aspect", c.AspectRatio, "target aspect ratio, longer side over shorter side")
	fs.IntVar(&c.OutputWidth, "width", c.OutputWidth, "output width in pixels")
	fs.IntVar(&c.OutputHeight, "height", c.OutputHeight, "output height in pixels")

	fs.StringVar(&c.Strategy, "strategy", c.Strategy, "brightness strategy: channel or value")
	fs.StringVar(&c.FallbackFormat, "fallback-format", c.FallbackFormat, "output format for inputs that cannot be written back in their own format (png, jpg, tif, bmp, gif)")

	fs.BoolVar(&c.FailFast, "fail-fast", c.FailFast, "abort on the first image that fails")
	fs.BoolVar(&c.StatsOnly, "stats-only", c.StatsOnly, "compute the corpus statistics and exit without writing")
	fs.BoolVar(&c.AutoOrient, "auto-orient", c.AutoOrient, "apply EXIF orientation when decoding")
	fs.IntVar(&c.JPEGQuality, "jpeg-quality", c.JPEGQuality, "JPEG output quality (1-100)")
	fs.IntVar(&c.ProgressEvery, "progress-every", c.ProgressEvery, "entries between progress lines")

	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level: debug, info, warn, error")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "log format: text or json")

	fs.StringVar(&c.MetricsFile, "metrics-file", c.MetricsFile, "write run metrics to this file in Prometheus text format")

	fs.StringVar(&c.Trace.Exporter, "trace-exporter", c.Trace.Exporter, "span exporter: none, stdout or otlp")
	fs.StringVar(&c.Trace.OTLPEndpoint, "otlp-endpoint", c.Trace.OTLPEndpoint, "OTLP/HTTP collector host:port")
	fs.BoolVar(&c.Trace.OTLPInsecure, "otlp-insecure", c.Trace.OTLPInsecure, "use plain HTTP for the OTLP exporter")
}

// Validate checks that the configuration can drive a run.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.InputDir) == "" {
		add("input directory is required")
	}
	if !c.StatsOnly && strings.TrimSpace(c.OutputDir) == "" {
		add("output directory is required")
	}
	if c.EdgeThreshold < 0 || c.EdgeThreshold > 255 {
		add("edge threshold %d is outside 0-255", c.EdgeThreshold)
	}
	if !(c.CropMargin >= 0 && c.CropMargin <= 1) {
		add("crop margin %v is outside [0,1]", c.CropMargin)
	}
	if !(c.AspectRatio > 0) {
		add("aspect ratio must be positive, got %v", c.AspectRatio)
	}
	if c.OutputWidth <= 0 || c.OutputHeight <= 0 {
		add("output size must be positive, got %dx%d", c.OutputWidth, c.OutputHeight)
	}
	switch strings.ToLower(strings.TrimPrefix(c.FallbackFormat, ".")) {
	case "png", "jpg", "jpeg", "tif", "tiff", "bmp", "gif":
	default:
		add("fallback format %q has no encoder", c.FallbackFormat)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		add("jpeg quality %d is outside 1-100", c.JPEGQuality)
	}
	if c.ProgressEvery <= 0 {
		add("progress interval must be positive, got %d", c.ProgressEvery)
	}

	if len(problems) > 0 {
		return errors.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func env(key, fallback string) string {
	value, ok := os.LookupEnv(envPrefix + key)
	if !ok || value == "" {
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envFloat(key string, fallback float64) float64 {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func envBool(key string, fallback bool) bool {
	value := env(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}
