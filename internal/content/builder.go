package content

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/frontmatter"
	"git.home.luguber.info/inful/justhtml/internal/logfields"
	"git.home.luguber.info/inful/justhtml/internal/markdown"
	"git.home.luguber.info/inful/justhtml/internal/metrics"
	"git.home.luguber.info/inful/justhtml/internal/templates"
)

const stageContent = "content"

// ContentList is the ordered list of generated page identifiers.
type ContentList []string

// BuiltPage describes one written output page.
type BuiltPage struct {
	Source string `json:"source" yaml:"source"`
	Stem   string `json:"stem" yaml:"stem"`
	// Path is the output file and the page identifier used by the listing.
	Path           string `json:"path" yaml:"path"`
	Fingerprint    string `json:"fingerprint" yaml:"fingerprint"`
	HasFrontmatter bool   `json:"has_frontmatter" yaml:"has_frontmatter"`
}

// Warning is a non-fatal problem with one source file.
type Warning struct {
	Source string
	Err    error
}

func (w Warning) String() string { return w.Source + ": " + w.Err.Error() }

// Result is the outcome of a content build.
type Result struct {
	Pages    []BuiltPage
	Warnings []Warning
}

// List returns the page identifiers in build order.
func (r *Result) List() ContentList {
	if r == nil {
		return nil
	}
	list := make(ContentList, 0, len(r.Pages))
	for _, p := range r.Pages {
		list = append(list, p.Path)
	}
	return list
}

// OutputPath returns the page identifier for stem: <buildDir>/<stem>.html.
// The build directory string is used as given so identifiers keep the
// caller's prefix (for example "./build/blog").
func OutputPath(buildDir, stem string) string {
	return strings.TrimSuffix(buildDir, "/") + "/" + stem + ".html"
}

// Builder renders a directory of content files into HTML pages.
type Builder struct {
	parser     *frontmatter.Parser
	renderer   *markdown.Renderer
	recorder   metrics.Recorder
	logger     *slog.Logger
	workers    int
	extensions []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithParser sets the frontmatter parser.
func WithParser(p *frontmatter.Parser) Option {
	return func(b *Builder) {
		if p != nil {
			b.parser = p
		}
	}
}

// WithRenderer sets the Markdown renderer.
func WithRenderer(r *markdown.Renderer) Option {
	return func(b *Builder) {
		if r != nil {
			b.renderer = r
		}
	}
}

// WithRecorder sets the recorder for per-page counters. Stage results and
// durations belong to the caller that owns the stage.
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

// WithWorkers sets how many files are processed concurrently. Values below
// one mean sequential processing.
func WithWorkers(n int) Option {
	return func(b *Builder) {
		if n < 1 {
			n = 1
		}
		b.workers = n
	}
}

// WithExtensions sets the accepted source file extensions, including the dot.
func WithExtensions(exts ...string) Option {
	return func(b *Builder) {
		if len(exts) > 0 {
			b.extensions = exts
		}
	}
}

// NewBuilder returns a Builder with sequential processing of ".md" files.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		parser:     frontmatter.NewParser(),
		recorder:   metrics.NoopRecorder{},
		logger:     slog.Default(),
		workers:    1,
		extensions: DefaultExtensions,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.renderer == nil {
		b.renderer = markdown.NewRenderer()
	}
	return b
}

// Build renders every content file in contentDir with the template at
// templatePath and writes the pages into buildDir.
//
// buildDir is created with a single-level mkdir; its parent must exist.
// The template is validated before any content file is read.
func (b *Builder) Build(ctx context.Context, templatePath, contentDir, buildDir string) (*Result, error) {
	if err := ensureDir(buildDir); err != nil {
		return nil, err
	}
	tmpl, err := templates.Load(templatePath)
	if err != nil {
		return nil, err
	}
	return b.run(ctx, tmpl, contentDir, buildDir)
}

// BuildWithTemplate is Build with an already parsed template.
func (b *Builder) BuildWithTemplate(ctx context.Context, tmpl *templates.Template, contentDir, buildDir string) (*Result, error) {
	if tmpl == nil {
		return nil, foundationerrors.InternalError("nil content template").Build()
	}
	if err := ensureDir(buildDir); err != nil {
		return nil, err
	}
	return b.run(ctx, tmpl, contentDir, buildDir)
}

func (b *Builder) run(ctx context.Context, tmpl *templates.Template, contentDir, buildDir string) (*Result, error) {
	start := time.Now()

	paths, err := Discover(contentDir, b.extensions)
	if err != nil {
		return nil, err
	}
	if err := CheckCollisions(paths); err != nil {
		return nil, err
	}

	type slot struct {
		page    BuiltPage
		warning *Warning
	}
	slots := make([]slot, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, warning, err := b.buildOne(tmpl, path, buildDir)
			if err != nil {
				return err
			}
			slots[i] = slot{page: page, warning: warning}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, foundationerrors.RuntimeError("content build canceled").WithCause(err).Build()
		}
		return nil, err
	}

	res := &Result{Pages: make([]BuiltPage, 0, len(slots))}
	for _, s := range slots {
		res.Pages = append(res.Pages, s.page)
		if s.warning != nil {
			res.Warnings = append(res.Warnings, *s.warning)
		}
	}

	elapsed := time.Since(start)
	b.logger.Info("Content pages built",
		logfields.Stage(stageContent),
		logfields.Pages(len(res.Pages)),
		slog.Int("warnings", len(res.Warnings)),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000))
	return res, nil
}

func (b *Builder) buildOne(tmpl *templates.Template, path, buildDir string) (BuiltPage, *Warning, error) {
	file, err := NewContentFile(b.parser, path)
	if err != nil {
		return BuiltPage{}, nil, err
	}

	var warning *Warning
	if file.Malformed != nil {
		b.recorder.IncFrontmatterRejected()
		b.logger.Warn("Ignoring malformed frontmatter",
			logfields.Source(path),
			logfields.Line(file.Malformed.Line),
			logfields.Error(file.Malformed))
		warning = &Warning{Source: path, Err: file.Malformed}
	}

	html := b.renderer.Render(file.Body)
	page := tmpl.Render(html, file.Metadata)
	out := OutputPath(buildDir, file.Stem)

	// #nosec G306 -- generated pages are published as-is.
	if err := os.WriteFile(out, []byte(page), 0o644); err != nil {
		return BuiltPage{}, nil, foundationerrors.FileSystemError("cannot write page").
			WithCause(err).
			WithContext("path", out).
			WithContext("source", path).
			Build()
	}
	b.recorder.IncPageRendered()
	b.logger.Debug("Page written",
		logfields.Source(path),
		logfields.Output(out),
		logfields.Stem(file.Stem))

	return BuiltPage{
		Source:         path,
		Stem:           file.Stem,
		Path:           out,
		Fingerprint:    Fingerprint(file.Metadata, file.Body),
		HasFrontmatter: file.Metadata != nil,
	}, warning, nil
}

// ensureDir creates dir if it does not exist. Only the last path element is
// created.
func ensureDir(dir string) error {
	err := os.Mkdir(dir, 0o750)
	if err != nil && !errors.Is(err, fs.ErrExist) {
		return foundationerrors.FileSystemError("cannot create build directory").
			WithCause(err).
			WithContext("path", dir).
			Build()
	}
	info, err := os.Stat(dir)
	if err != nil {
		return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot stat build directory").
			Fatal().
			WithContext("path", dir).
			Build()
	}
	if !info.IsDir() {
		return foundationerrors.FileSystemError("build output path is not a directory").
			UserAction().
			WithContext("path", dir).
			Build()
	}
	return nil
}
