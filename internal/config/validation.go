package config

import (
	"strings"
	"time"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// ValidateConfig checks the configuration for values the build cannot use.
func ValidateConfig(cfg *Config) error {
	v := &configurationValidator{config: cfg}
	for _, check := range []func() error{v.validatePaths, v.validateBuild, v.validateDevelopment} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

type configurationValidator struct {
	config *Config
}

func (cv *configurationValidator) validatePaths() error {
	fields := []struct{ name, value string }{
		{"templates_directory", cv.config.TemplatesDirectory},
		{"content_template", cv.config.ContentTemplate},
		{"content_dir", cv.config.ContentDir},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return invalid(f.name, "must not be empty", f.value)
		}
	}
	return nil
}

func (cv *configurationValidator) validateBuild() error {
	b := cv.config.Build
	if strings.TrimSpace(b.BuildDirectory) == "" {
		return invalid("build_config.build_directory", "must not be empty", b.BuildDirectory)
	}
	if !strings.HasPrefix(strings.TrimSuffix(b.ContentDirectory, "/")+"/", cv.config.ListingPrefix()) {
		return invalid("build_config.content_directory", "must be inside build_directory so the listing can link to it", b.ContentDirectory)
	}
	page := b.ContentListingPage
	if page == "" || strings.ContainsAny(page, `/\`) || page == "." || page == ".." {
		return invalid("build_config.content_listing_page", "must be a plain file name without extension", page)
	}
	if page == "index" {
		return invalid("build_config.content_listing_page", "must not be index, the index page is copied from templates", page)
	}
	if b.ListingPlaceholder == "" || b.ListingPlaceholder == "{content}" {
		return invalid("build_config.listing_placeholder", "must be a non-empty token other than {content}", b.ListingPlaceholder)
	}
	if len(b.Extensions) == 0 {
		return invalid("build_config.extensions", "must list at least one extension", "")
	}
	if b.Workers < 1 {
		return invalid("build_config.workers", "must be at least 1", b.Workers)
	}
	if b.ReportFormat != "json" && b.ReportFormat != "yaml" {
		return invalid("build_config.report_format", "must be json or yaml", b.ReportFormat)
	}
	return nil
}

func (cv *configurationValidator) validateDevelopment() error {
	if p := cv.config.Development.Port; p < 1 || p > 65535 {
		return invalid("development_config.port", "must be between 1 and 65535", p)
	}
	if raw := cv.config.Development.RebuildInterval; raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d < time.Second {
			return invalid("development_config.rebuild_interval", "must be a duration of at least 1s", raw)
		}
	}
	return nil
}

func invalid(field, msg string, value any) error {
	return foundationerrors.ValidationError(field+" "+msg).
		WithContext("field", field).
		WithContext("value", value).
		UserAction().
		Build()
}
