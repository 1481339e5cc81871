// Package config loads the justhtml.toml project file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "justhtml.toml"

// Config is the project configuration.
type Config struct {
	TemplatesDirectory string            `toml:"templates_directory"`
	ContentTemplate    string            `toml:"content_template"`
	ContentDir         string            `toml:"content_dir"`
	Build              BuildConfig       `toml:"build_config"`
	Development        DevelopmentConfig `toml:"development_config"`
}

// BuildConfig controls where and how pages are generated.
type BuildConfig struct {
	// BuildDirectory is the site root.
	BuildDirectory string `toml:"build_directory"`
	// ContentDirectory receives one page per content file. Its parent must
	// exist when the content stage runs.
	ContentDirectory string `toml:"content_directory"`
	// ContentListingPage names both the listing template
	// (<templates>/<name>.html) and the listing output (<build>/<name>.html).
	ContentListingPage string   `toml:"content_listing_page"`
	ListingPlaceholder string   `toml:"listing_placeholder,omitempty"`
	Extensions         []string `toml:"extensions,omitempty"`
	Workers            int      `toml:"workers,omitempty"`
	Sanitize           bool     `toml:"sanitize,omitempty"`
	Report             bool     `toml:"report,omitempty"`
	ReportFormat       string   `toml:"report_format,omitempty"`
}

// DevelopmentConfig controls the preview server.
type DevelopmentConfig struct {
	Port int `toml:"port"`
	// Watch defaults to true when omitted.
	Watch   *bool `toml:"watch,omitempty"`
	Metrics bool  `toml:"metrics,omitempty"`
	// RebuildInterval forces a full rebuild on a fixed schedule, for
	// filesystems that do not deliver change events. Empty disables it.
	RebuildInterval string `toml:"rebuild_interval,omitempty"`
}

// RebuildEvery parses RebuildInterval. Invalid values were rejected by
// validation and yield zero here.
func (d DevelopmentConfig) RebuildEvery() time.Duration {
	if d.RebuildInterval == "" {
		return 0
	}
	dur, err := time.ParseDuration(d.RebuildInterval)
	if err != nil {
		return 0
	}
	return dur
}

// WatchEnabled reports whether the preview server rebuilds on change.
func (d DevelopmentConfig) WatchEnabled() bool { return d.Watch == nil || *d.Watch }

// Default returns the configuration written by Init.
func Default() *Config {
	watch := true
	cfg := &Config{
		TemplatesDirectory: "./templates",
		ContentTemplate:    "./templates/content.html",
		ContentDir:         "./content",
		Build: BuildConfig{
			BuildDirectory:     "./build",
			ContentDirectory:   "./build/blog",
			ContentListingPage: "blog",
		},
		Development: DevelopmentConfig{
			Port:  9999,
			Watch: &watch,
		},
	}
	return cfg
}

// Load reads the TOML file at configPath, expands ${VAR} references, fills
// in defaults and validates the result. A .env or .env.local file in the
// working directory is loaded first when present.
func Load(configPath string) (*Config, error) {
	_ = loadEnvFile()

	// #nosec G304 -- the config path is chosen by the operator.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, foundationerrors.NotFoundError("configuration file not found, run `justhtml init` first").
				WithCause(err).
				WithContext("path", configPath).
				Build()
		}
		return nil, foundationerrors.ConfigError("cannot read configuration file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	cfg, err := Parse(os.ExpandEnv(string(data)))
	if err != nil {
		if ce, ok := foundationerrors.AsClassified(err); ok {
			return nil, ce.WithContext("path", configPath)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML text into a defaulted, normalized and validated Config.
// Unknown keys are rejected.
func Parse(text string) (*Config, error) {
	var cfg Config
	dec := toml.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, decodeError(err)
	}

	if err := NewDefaultApplier().ApplyDefaults(&cfg); err != nil {
		return nil, err
	}
	if _, err := NormalizeConfig(&cfg); err != nil {
		return nil, err
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes cfg as TOML.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "cannot encode configuration").Build()
	}
	return data, nil
}

// ListingTemplatePath is <templates>/<content_listing_page>.html.
func (c *Config) ListingTemplatePath() string {
	return joinSlash(c.TemplatesDirectory, c.Build.ContentListingPage+".html")
}

// ListingOutputPath is <build>/<content_listing_page>.html.
func (c *Config) ListingOutputPath() string {
	return joinSlash(c.Build.BuildDirectory, c.Build.ContentListingPage+".html")
}

// ListingPrefix is stripped from page identifiers to make listing links
// relative to the site root.
func (c *Config) ListingPrefix() string {
	return strings.TrimSuffix(c.Build.BuildDirectory, "/") + "/"
}

// joinSlash joins without cleaning so "./build" stays "./build/...". Page
// identifiers keep the configured spelling and the listing prefix must match
// it byte for byte.
func joinSlash(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}

func decodeError(err error) error {
	b := foundationerrors.ConfigError("invalid configuration file").WithCause(err)
	var de *toml.DecodeError
	if errors.As(err, &de) {
		row, col := de.Position()
		b = b.WithContext("line", row).WithContext("column", col)
	}
	var sme *toml.StrictMissingError
	if errors.As(err, &sme) {
		b = b.WithContext("unknown_keys", sme.String())
	}
	return b.Build()
}
