package config

import (
	"fmt"
	"strings"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// NormalizationResult captures adjustments made during normalization.
type NormalizationResult struct{ Warnings []string }

// NormalizeConfig canonicalizes enumerated and list fields in place.
func NormalizeConfig(c *Config) (*NormalizationResult, error) {
	if c == nil {
		return nil, foundationerrors.InternalError("config is nil").Build()
	}
	res := &NormalizationResult{}
	normalizeBuild(&c.Build, res)
	return res, nil
}

func normalizeBuild(b *BuildConfig, res *NormalizationResult) {
	if f := strings.ToLower(strings.TrimSpace(b.ReportFormat)); f != b.ReportFormat {
		res.Warnings = append(res.Warnings, warnChanged("build_config.report_format", b.ReportFormat, f))
		b.ReportFormat = f
	}
	if f := b.ReportFormat; f == "yml" {
		res.Warnings = append(res.Warnings, warnChanged("build_config.report_format", f, "yaml"))
		b.ReportFormat = "yaml"
	}

	exts := make([]string, 0, len(b.Extensions))
	seen := make(map[string]struct{}, len(b.Extensions))
	for _, raw := range b.Extensions {
		ext := strings.TrimSpace(raw)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			res.Warnings = append(res.Warnings, warnChanged("build_config.extensions", raw, "."+ext))
			ext = "." + ext
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	b.Extensions = exts
}

func warnChanged(field string, from, to any) string {
	return fmt.Sprintf("normalized %s from '%v' to '%v'", field, from, to)
}
