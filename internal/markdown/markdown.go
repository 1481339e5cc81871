// Package markdown converts content bodies to HTML with goldmark.
package markdown

import (
	"bytes"
	"html"

	bm "github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Renderer is a CommonMark renderer with strikethrough enabled and no other
// extensions. Raw HTML in the body is passed through unless sanitizing.
// A Renderer is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bm.Policy
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithSanitizer filters rendered HTML through the bluemonday UGC policy.
func WithSanitizer() Option {
	return func(r *Renderer) {
		r.policy = bm.UGCPolicy()
	}
}

// NewRenderer builds a Renderer.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Strikethrough),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render converts body to HTML. It never fails: if goldmark reports an error
// the escaped body is returned inside a <pre> block.
func (r *Renderer) Render(body string) string {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return "<pre>" + html.EscapeString(body) + "</pre>\n"
	}
	out := buf.Bytes()
	if r.policy != nil {
		out = r.policy.SanitizeBytes(out)
	}
	return string(out)
}
