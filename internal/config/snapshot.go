package config

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
	"strconv"
	"strings"
)

// Snapshot computes a stable hash of the build-affecting configuration
// fields. Development settings are excluded. Extensions are order
// insensitive.
func (c *Config) Snapshot() string {
	if c == nil {
		return ""
	}
	h := sha256.New()
	w := func(parts ...string) {
		h.Write([]byte(strings.Join(parts, "=")))
		h.Write([]byte{0})
	}
	w("templates_directory", c.TemplatesDirectory)
	w("content_template", c.ContentTemplate)
	w("content_dir", c.ContentDir)
	w("build.build_directory", c.Build.BuildDirectory)
	w("build.content_directory", c.Build.ContentDirectory)
	w("build.content_listing_page", c.Build.ContentListingPage)
	w("build.listing_placeholder", c.Build.ListingPlaceholder)
	exts := slices.Clone(c.Build.Extensions)
	slices.Sort(exts)
	w("build.extensions", strings.Join(exts, ","))
	w("build.workers", strconv.Itoa(c.Build.Workers))
	w("build.sanitize", strconv.FormatBool(c.Build.Sanitize))
	w("build.report", strconv.FormatBool(c.Build.Report))
	w("build.report_format", c.Build.ReportFormat)
	return hex.EncodeToString(h.Sum(nil))
}
