// Package report records what a site build did and persists it next to the
// generated site.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeWarning  Outcome = "warning"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Format selects the machine readable report encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool { return f == FormatJSON || f == FormatYAML }

// IssueCode enumerates machine-parseable issue identifiers. Codes are only
// ever appended.
type IssueCode string

const (
	IssueMalformedFrontmatter IssueCode = "MALFORMED_FRONTMATTER"
	IssueStemCollision        IssueCode = "STEM_COLLISION"
	IssueTemplateInvalid      IssueCode = "TEMPLATE_INVALID"
	IssuePrefixMismatch       IssueCode = "LISTING_PREFIX_MISMATCH"
	IssueFileSystem           IssueCode = "FILESYSTEM"
	IssueCanceled             IssueCode = "BUILD_CANCELED"
	IssueGenericStageError    IssueCode = "GENERIC_STAGE_ERROR"
)

// Severity of an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structured problem recorded during a build.
type Issue struct {
	Code     IssueCode `json:"code" yaml:"code"`
	Stage    string    `json:"stage" yaml:"stage"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Message  string    `json:"message" yaml:"message"`
	Source   string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// Page is the report view of one generated content page.
type Page struct {
	Source         string `json:"source" yaml:"source"`
	Output         string `json:"output" yaml:"output"`
	Fingerprint    string `json:"fingerprint" yaml:"fingerprint"`
	HasFrontmatter bool   `json:"has_frontmatter" yaml:"has_frontmatter"`
}

// BuildReport captures one run of the site build.
type BuildReport struct {
	SchemaVersion int    `json:"schema_version" yaml:"schema_version"`
	ID            string `json:"id" yaml:"id"`
	// SourceCommit is the HEAD commit of the project repository, if any.
	SourceCommit   string                   `json:"source_commit,omitempty" yaml:"source_commit,omitempty"`
	Start          time.Time                `json:"start" yaml:"start"`
	End            time.Time                `json:"end" yaml:"end"`
	Pages          []Page                   `json:"pages" yaml:"pages"`
	Listing        string                   `json:"listing,omitempty" yaml:"listing,omitempty"`
	Assets         []string                 `json:"assets" yaml:"assets"`
	StageDurations map[string]time.Duration `json:"stage_durations" yaml:"stage_durations"`
	Issues         []Issue                  `json:"issues" yaml:"issues"`
	Outcome        Outcome                  `json:"outcome" yaml:"outcome"`

	errors   []error
	warnings []error
}

// New starts a report with a fresh build ID.
func New() *BuildReport {
	return &BuildReport{
		SchemaVersion:  1,
		ID:             uuid.NewString(),
		Start:          time.Now(),
		Pages:          []Page{},
		Assets:         []string{},
		StageDurations: make(map[string]time.Duration),
		Issues:         []Issue{},
	}
}

// AddPage records a generated page.
func (r *BuildReport) AddPage(p Page) { r.Pages = append(r.Pages, p) }

// AddAsset records a copied static file.
func (r *BuildReport) AddAsset(path string) { r.Assets = append(r.Assets, path) }

// RecordStage stores how long a stage took.
func (r *BuildReport) RecordStage(stage string, d time.Duration) { r.StageDurations[stage] = d }

// AddIssue appends a structured issue and tracks err as an error or warning
// by severity. err may be nil for purely informational issues.
func (r *BuildReport) AddIssue(code IssueCode, stage string, severity Severity, source string, err error) {
	issue := Issue{Code: code, Stage: stage, Severity: severity, Source: source}
	if err != nil {
		issue.Message = err.Error()
		switch severity {
		case SeverityError:
			r.errors = append(r.errors, err)
		case SeverityWarning:
			r.warnings = append(r.warnings, err)
		}
	}
	r.Issues = append(r.Issues, issue)
}

// Errors returns the fatal errors recorded so far.
func (r *BuildReport) Errors() []error { return r.errors }

// Warnings returns the non-fatal problems recorded so far.
func (r *BuildReport) Warnings() []error { return r.warnings }

// Finish stamps the end time and derives the outcome.
func (r *BuildReport) Finish() {
	r.End = time.Now()
	r.Outcome = r.deriveOutcome()
}

func (r *BuildReport) deriveOutcome() Outcome {
	for _, issue := range r.Issues {
		if issue.Code == IssueCanceled {
			return OutcomeCanceled
		}
	}
	if len(r.errors) > 0 {
		return OutcomeFailed
	}
	if len(r.warnings) > 0 {
		return OutcomeWarning
	}
	return OutcomeSuccess
}

// Duration is End minus Start, or zero for an unfinished report.
func (r *BuildReport) Duration() time.Duration {
	if r.End.IsZero() {
		return 0
	}
	return r.End.Sub(r.Start)
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	s := fmt.Sprintf("id=%s pages=%d assets=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.ID, len(r.Pages), len(r.Assets), r.Duration().Truncate(time.Millisecond),
		len(r.errors), len(r.warnings), r.Outcome)
	if r.SourceCommit != "" {
		s += " commit=" + r.SourceCommit
	}
	return s
}

// FileName returns the machine readable report file name for format.
func FileName(format Format) string {
	if format == FormatYAML {
		return "build-report.yaml"
	}
	return "build-report.json"
}

// SummaryFileName is the human readable summary written next to the report.
const SummaryFileName = "build-report.txt"

// Persist writes the report atomically into root as build-report.json or
// build-report.yaml, plus build-report.txt. An unfinished report is finished
// first.
func (r *BuildReport) Persist(root string, format Format) error {
	if r.End.IsZero() {
		r.Finish()
	}
	if format == "" {
		format = FormatJSON
	}
	if !format.Valid() {
		return foundationerrors.ValidationError("unknown report format").
			WithContext("format", string(format)).
			Build()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return persistError(err, root)
	}

	var data []byte
	var err error
	switch format {
	case FormatYAML:
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "cannot encode build report").Build()
	}

	if err := writeAtomic(filepath.Join(root, FileName(format)), data); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(root, SummaryFileName), []byte(r.Summary()+"\n"))
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	// #nosec G306 -- reports are published with the site.
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return persistError(err, tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		return persistError(err, path)
	}
	return nil
}

func persistError(err error, path string) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot persist build report").
		WithContext("path", path).
		Build()
}
