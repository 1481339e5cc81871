// Package site runs a complete build: index page, content pages, the listing
// page, stylesheets and the build report.
package site

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/justhtml/internal/config"
	"git.home.luguber.info/inful/justhtml/internal/content"
	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/frontmatter"
	"git.home.luguber.info/inful/justhtml/internal/git"
	"git.home.luguber.info/inful/justhtml/internal/listing"
	"git.home.luguber.info/inful/justhtml/internal/logfields"
	"git.home.luguber.info/inful/justhtml/internal/markdown"
	"git.home.luguber.info/inful/justhtml/internal/metrics"
	"git.home.luguber.info/inful/justhtml/internal/report"
	"git.home.luguber.info/inful/justhtml/internal/templates"
)

// Stage names used in logs, metrics and the report.
const (
	StagePrepare = "prepare"
	StageIndex   = "index"
	StageContent = "content"
	StageListing = "listing"
	StageAssets  = "assets"
)

// IndexTemplate is copied verbatim to the build root when present.
const IndexTemplate = "index.html"

// Builder builds a whole site from a loaded configuration.
type Builder struct {
	cfg      *config.Config
	parser   *frontmatter.Parser
	recorder metrics.Recorder
	logger   *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) {
		if r != nil {
			b.recorder = r
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBuilder returns a Builder for cfg.
func NewBuilder(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{
		cfg:      cfg,
		parser:   frontmatter.NewParser(),
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs every stage in order and stops at the first fatal error. The
// returned report is never nil; it carries the failure when err is set.
func (b *Builder) Build(ctx context.Context) (*report.BuildReport, error) {
	rep := report.New()
	logger := b.logger.With(logfields.BuildID(rep.ID))
	logger.Info("Starting build",
		slog.String("content_dir", b.cfg.ContentDir),
		slog.String("build_directory", b.cfg.Build.BuildDirectory))

	stages := []struct {
		name string
		run  func(context.Context, *report.BuildReport, *slog.Logger) error
	}{
		{StagePrepare, b.prepare},
		{StageIndex, b.copyIndex},
		{StageContent, b.buildContent},
		{StageListing, b.buildListing},
		{StageAssets, b.copyAssets},
	}

	var buildErr error
	for _, stage := range stages {
		if err := ctx.Err(); err != nil {
			buildErr = err
			b.recordFailure(rep, stage.name, err)
			break
		}
		warnings := len(rep.Warnings())
		start := time.Now()
		err := stage.run(ctx, rep, logger.With(logfields.Stage(stage.name)))
		elapsed := time.Since(start)
		rep.RecordStage(stage.name, elapsed)
		b.recorder.ObserveStageDuration(stage.name, elapsed)
		if err != nil {
			buildErr = err
			b.recordFailure(rep, stage.name, err)
			logger.Error("Build stage failed", logfields.Stage(stage.name), logfields.Error(err))
			break
		}
		if len(rep.Warnings()) > warnings {
			b.recorder.IncStageResult(stage.name, metrics.ResultWarning)
		} else {
			b.recorder.IncStageResult(stage.name, metrics.ResultSuccess)
		}
	}

	rep.Finish()
	b.recorder.ObserveBuildDuration(rep.Duration())
	b.recorder.IncBuildOutcome(outcomeLabel(rep.Outcome))

	if b.cfg.Build.Report && buildErr == nil {
		if err := rep.Persist(b.cfg.Build.BuildDirectory, report.Format(b.cfg.Build.ReportFormat)); err != nil {
			logger.Warn("Failed to persist build report", logfields.Error(err))
		}
	}

	logger.Info("Build finished",
		slog.String("outcome", string(rep.Outcome)),
		logfields.Pages(len(rep.Pages)),
		logfields.DurationMS(float64(rep.Duration().Microseconds())/1000))
	return rep, buildErr
}

func (b *Builder) prepare(_ context.Context, rep *report.BuildReport, logger *slog.Logger) error {
	if commit, ok := git.HeadCommit(b.cfg.ContentDir); ok {
		rep.SourceCommit = commit
		logger.Debug("Building from commit", slog.String("commit", commit))
	}
	if err := os.MkdirAll(b.cfg.Build.BuildDirectory, 0o750); err != nil {
		return foundationerrors.FileSystemError("cannot create build directory").
			WithCause(err).
			WithContext("path", b.cfg.Build.BuildDirectory).
			Build()
	}
	return nil
}

func (b *Builder) copyIndex(_ context.Context, rep *report.BuildReport, logger *slog.Logger) error {
	src := filepath.Join(b.cfg.TemplatesDirectory, IndexTemplate)
	dst := filepath.Join(b.cfg.Build.BuildDirectory, IndexTemplate)
	copied, err := copyFile(src, dst)
	if err != nil {
		return err
	}
	if !copied {
		logger.Debug("No index template, skipping", logfields.Path(src))
		return nil
	}
	rep.AddAsset(dst)
	logger.Debug("Index page copied", logfields.Source(src), logfields.Output(dst))
	return nil
}

func (b *Builder) buildContent(ctx context.Context, rep *report.BuildReport, logger *slog.Logger) error {
	var mdOpts []markdown.Option
	if b.cfg.Build.Sanitize {
		mdOpts = append(mdOpts, markdown.WithSanitizer())
	}
	builder := content.NewBuilder(
		content.WithParser(b.parser),
		content.WithRenderer(markdown.NewRenderer(mdOpts...)),
		content.WithRecorder(b.recorder),
		content.WithLogger(logger),
		content.WithWorkers(b.cfg.Build.Workers),
		content.WithExtensions(b.cfg.Build.Extensions...),
	)
	res, err := builder.Build(ctx, b.cfg.ContentTemplate, b.cfg.ContentDir, b.cfg.Build.ContentDirectory)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		rep.AddIssue(report.IssueMalformedFrontmatter, StageContent, report.SeverityWarning, w.Source, w.Err)
	}
	for _, p := range res.Pages {
		rep.AddPage(report.Page{
			Source:         p.Source,
			Output:         p.Path,
			Fingerprint:    p.Fingerprint,
			HasFrontmatter: p.HasFrontmatter,
		})
	}
	return nil
}

func (b *Builder) buildListing(_ context.Context, rep *report.BuildReport, logger *slog.Logger) error {
	tmplPath := b.cfg.ListingTemplatePath()
	tmpl, err := templates.LoadListing(tmplPath, b.cfg.Build.ListingPlaceholder)
	if err != nil {
		return err
	}
	ids := make([]string, 0, len(rep.Pages))
	for _, p := range rep.Pages {
		ids = append(ids, p.Output)
	}
	page, err := listing.Render(ids, b.cfg.ListingPrefix(), tmpl)
	if err != nil {
		return err
	}
	out := b.cfg.ListingOutputPath()
	// #nosec G306 -- generated pages are published as-is.
	if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
		return foundationerrors.FileSystemError("cannot write listing page").
			WithCause(err).
			WithContext("path", out).
			Build()
	}
	rep.Listing = out
	logger.Info("Listing page written", logfields.Output(out), logfields.Template(tmplPath), logfields.Pages(len(ids)))
	return nil
}

func (b *Builder) copyAssets(_ context.Context, rep *report.BuildReport, logger *slog.Logger) error {
	entries, err := os.ReadDir(b.cfg.TemplatesDirectory)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot read templates directory").
			WithContext("path", b.cfg.TemplatesDirectory).
			Build()
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".css") {
			continue
		}
		src := filepath.Join(b.cfg.TemplatesDirectory, entry.Name())
		dst := filepath.Join(b.cfg.Build.BuildDirectory, entry.Name())
		if _, err := copyFile(src, dst); err != nil {
			return err
		}
		rep.AddAsset(dst)
		logger.Debug("Stylesheet copied", logfields.Source(src), logfields.Output(dst))
	}
	return nil
}

// copyFile copies src to dst. A missing src is not an error and reports
// false.
func copyFile(src, dst string) (bool, error) {
	// #nosec G304 -- src is inside the configured templates directory.
	data, err := os.ReadFile(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot read file").
			WithContext("path", src).
			Build()
	}
	// #nosec G306 -- published site files.
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return false, foundationerrors.FileSystemError("cannot write file").
			WithCause(err).
			WithContext("path", dst).
			Build()
	}
	return true, nil
}

func (b *Builder) recordFailure(rep *report.BuildReport, stage string, err error) {
	b.recorder.IncStageResult(stage, metrics.ResultFatal)
	source := ""
	if ce, ok := foundationerrors.AsClassified(err); ok {
		source, _ = ce.Context().GetString("path")
	}
	rep.AddIssue(issueCode(err), stage, report.SeverityError, source, err)
}

func issueCode(err error) report.IssueCode {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return report.IssueCanceled
	case errors.Is(err, content.ErrStemCollision):
		return report.IssueStemCollision
	case errors.Is(err, listing.ErrPrefixMismatch):
		return report.IssuePrefixMismatch
	case errors.Is(err, templates.ErrMissingContentPlaceholder),
		errors.Is(err, templates.ErrMissingListingPlaceholder):
		return report.IssueTemplateInvalid
	case foundationerrors.HasCategory(err, foundationerrors.CategoryFileSystem):
		return report.IssueFileSystem
	default:
		return report.IssueGenericStageError
	}
}

func outcomeLabel(o report.Outcome) metrics.BuildOutcomeLabel {
	switch o {
	case report.OutcomeSuccess:
		return metrics.BuildOutcomeSuccess
	case report.OutcomeWarning:
		return metrics.BuildOutcomeWarning
	default:
		return metrics.BuildOutcomeFailed
	}
}
