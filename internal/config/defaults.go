package config

import "strings"

// DefaultApplier applies defaults for one configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// PathsDefaultApplier fills in the source locations.
type PathsDefaultApplier struct{}

func (p *PathsDefaultApplier) Domain() string { return "paths" }

func (p *PathsDefaultApplier) ApplyDefaults(cfg *Config) error {
	def := Default()
	if strings.TrimSpace(cfg.TemplatesDirectory) == "" {
		cfg.TemplatesDirectory = def.TemplatesDirectory
	}
	if strings.TrimSpace(cfg.ContentTemplate) == "" {
		cfg.ContentTemplate = joinSlash(cfg.TemplatesDirectory, "content.html")
	}
	if strings.TrimSpace(cfg.ContentDir) == "" {
		cfg.ContentDir = def.ContentDir
	}
	return nil
}

// BuildDefaultApplier handles build_config defaults.
type BuildDefaultApplier struct{}

func (b *BuildDefaultApplier) Domain() string { return "build" }

func (b *BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	def := Default().Build
	if strings.TrimSpace(cfg.Build.BuildDirectory) == "" {
		cfg.Build.BuildDirectory = def.BuildDirectory
	}
	if strings.TrimSpace(cfg.Build.ContentListingPage) == "" {
		cfg.Build.ContentListingPage = def.ContentListingPage
	}
	if strings.TrimSpace(cfg.Build.ContentDirectory) == "" {
		cfg.Build.ContentDirectory = joinSlash(cfg.Build.BuildDirectory, cfg.Build.ContentListingPage)
	}
	if cfg.Build.ListingPlaceholder == "" {
		cfg.Build.ListingPlaceholder = "{article_list}"
	}
	if len(cfg.Build.Extensions) == 0 {
		cfg.Build.Extensions = []string{".md"}
	}
	if cfg.Build.Workers <= 0 {
		cfg.Build.Workers = 1
	}
	if cfg.Build.ReportFormat == "" {
		cfg.Build.ReportFormat = "json"
	}
	return nil
}

// DevelopmentDefaultApplier handles development_config defaults.
type DevelopmentDefaultApplier struct{}

func (d *DevelopmentDefaultApplier) Domain() string { return "development" }

func (d *DevelopmentDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Development.Port == 0 {
		cfg.Development.Port = Default().Development.Port
	}
	return nil
}
