package content

import (
	"os"
	"path/filepath"
	"strings"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/frontmatter"
)

// ContentFile is one source file after frontmatter extraction. It is read
// once and not modified afterwards.
type ContentFile struct {
	Path string
	// Stem is the file name without its extension; it names the output page.
	Stem string
	// Body is the Markdown text with any valid frontmatter block removed.
	Body string
	// Metadata is nil when the file has no valid frontmatter.
	Metadata map[string]string
	// Malformed is set when a frontmatter block was present but discarded.
	Malformed *frontmatter.MalformedError
}

// Stem returns the file name of path without its extension.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// NewContentFile reads path and extracts its frontmatter with parser.
func NewContentFile(parser *frontmatter.Parser, path string) (*ContentFile, error) {
	// #nosec G304 -- path comes from discovery inside the content directory.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot read content file").
			Fatal().
			WithContext("path", path).
			Build()
	}
	res := parser.Extract(string(data))
	return &ContentFile{
		Path:      path,
		Stem:      Stem(path),
		Body:      res.Body,
		Metadata:  res.Metadata,
		Malformed: res.Malformed,
	}, nil
}
