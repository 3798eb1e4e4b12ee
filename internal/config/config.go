// Package config provides configuration management for the client.
//
// Configuration is parsed from CLI flags with sensible defaults. The service
// endpoint and gallery location may also come from the environment (a .env
// file is honored when present), so the built-in endpoint default is exactly
// that: a default, never the only option. The Config struct is passed to
// components during initialization.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/joho/godotenv"
)

const (
	// Version is the application version
	Version = "0.1.0"

	// Default values for CLI flags
	defaultAPIURL         = "https://api.foodlens.dev/v1/transform"
	defaultGalleryPath    = "config/gallery.json"
	defaultTimeoutSeconds = 120
	defaultLogLevel       = "info"

	// Validation constraints
	minTimeoutSeconds = 1
	maxTimeoutSeconds = 600

	// Environment variable names. These override the flag defaults but not
	// explicitly passed flags (flags are parsed after the environment is
	// applied to the defaults).
	EnvAPIURL      = "RCC_API_URL"
	EnvGalleryPath = "RCC_GALLERY_PATH"
)

var (
	// ErrInvalidAPIURL is returned when the API URL is not a valid http(s) URL
	ErrInvalidAPIURL = errors.New("api-url must be a valid http or https URL")
	// ErrInvalidTimeout is returned when the request timeout is out of range
	ErrInvalidTimeout = errors.New("timeout must be between 1 and 600 seconds")
	// ErrInvalidGalleryPath is returned when the gallery path is empty
	ErrInvalidGalleryPath = errors.New("gallery path cannot be empty")
	// ErrInvalidLogLevel is returned when log level is not recognized
	ErrInvalidLogLevel = errors.New("log-level must be one of: debug, info, warn, error")
	// ErrShowHelp is returned when --help flag is requested
	ErrShowHelp = errors.New("help requested")
	// ErrShowVersion is returned when --version flag is requested
	ErrShowVersion = errors.New("version requested")
)

// Config holds all configuration values for the client.
// Values are populated from CLI flags with environment-aware defaults.
type Config struct {
	// APIURL is the image generation service endpoint.
	APIURL string

	// TimeoutSeconds is the hard per-request timeout.
	TimeoutSeconds int

	// GalleryPath is the JSON file holding the persisted gallery.
	GalleryPath string

	// LogLevel controls logging verbosity.
	LogLevel string

	// Internal flags
	showHelp    bool
	showVersion bool
}

// Parse parses CLI flags into a Config struct.
// It returns the parsed Config or an error if validation fails.
// If --help or --version is requested, it prints the output and returns
// ErrShowHelp or ErrShowVersion.
//
// A .env file in the working directory is loaded first (missing file is not
// an error), then RCC_API_URL and RCC_GALLERY_PATH seed the flag defaults.
func Parse(args []string, output io.Writer) (*Config, error) {
	// Load .env if present. Errors other than "not found" are ignored too:
	// the environment is a convenience layer, flags remain authoritative.
	_ = godotenv.Load()

	apiDefault := defaultAPIURL
	if v := os.Getenv(EnvAPIURL); v != "" {
		apiDefault = v
	}
	galleryDefault := defaultGalleryPath
	if v := os.Getenv(EnvGalleryPath); v != "" {
		galleryDefault = v
	}

	c := &Config{}

	fs := flag.NewFlagSet("restaurant-content-creator", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&c.APIURL, "api-url", apiDefault, "Image generation service endpoint URL")
	fs.IntVar(&c.TimeoutSeconds, "timeout", defaultTimeoutSeconds, "Per-request timeout in seconds")
	fs.StringVar(&c.GalleryPath, "gallery", galleryDefault, "Path to the persisted gallery JSON file")
	fs.StringVar(&c.LogLevel, "log-level", defaultLogLevel, "Log level (debug, info, warn, error)")

	fs.BoolVar(&c.showHelp, "help", false, "Show help message")
	fs.BoolVar(&c.showVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.showHelp {
		printHelp(output)
		return nil, ErrShowHelp
	}

	if c.showVersion {
		printVersion(output)
		return nil, ErrShowVersion
	}

	if err := c.validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// validate checks that all configuration values are within valid ranges
func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidAPIURL
	}

	if c.TimeoutSeconds < minTimeoutSeconds || c.TimeoutSeconds > maxTimeoutSeconds {
		return ErrInvalidTimeout
	}

	if c.GalleryPath == "" {
		return ErrInvalidGalleryPath
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		return ErrInvalidLogLevel
	}

	return nil
}

// printHelp prints usage information
func printHelp(w io.Writer) {
	fmt.Fprintf(w, `restaurant-content-creator - turn dish photos into marketing images

USAGE:
    creator [FLAGS]

FLAGS:
    --api-url <URL>       Generation service endpoint (default: %s)
    --timeout <SECONDS>   Per-request timeout in seconds (default: %d)
    --gallery <PATH>      Gallery JSON file (default: %s)
    --log-level <LEVEL>   Log level: debug, info, warn, error (default: %s)
    --help                Show this help message
    --version             Show version information

ENVIRONMENT:
    %s        Overrides the default endpoint (also read from .env)
    %s  Overrides the default gallery path

EXAMPLES:
    # Start with defaults
    creator

    # Point at a staging endpoint
    creator --api-url https://staging.example.com/v1/transform

    # Keep the gallery somewhere else
    creator --gallery ~/.local/share/creator/gallery.json
`,
		defaultAPIURL, defaultTimeoutSeconds, defaultGalleryPath, defaultLogLevel,
		EnvAPIURL, EnvGalleryPath)
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "restaurant-content-creator %s\n", Version)
}
