package templates

import (
	"errors"
	"os"
	"slices"
	"strings"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// ContentPlaceholder is the token every page template must contain.
const ContentPlaceholder = "{content}"

// DefaultListingPlaceholder is the token replaced by the listing anchors.
const DefaultListingPlaceholder = "{article_list}"

var (
	// ErrMissingContentPlaceholder is the cause of a page template rejection.
	ErrMissingContentPlaceholder = errors.New("template does not contain " + ContentPlaceholder)
	// ErrMissingListingPlaceholder is the cause of a listing template rejection.
	ErrMissingListingPlaceholder = errors.New("listing template does not contain its placeholder")
)

// Template is a loaded template string with one required placeholder and
// any number of optional {key} placeholders. It is never modified after Parse.
type Template struct {
	name        string
	text        string
	placeholder string
}

// Parse validates a page template. It fails when {content} is absent.
func Parse(name, text string) (*Template, error) {
	return parse(name, text, ContentPlaceholder, ErrMissingContentPlaceholder)
}

// ParseListing validates a listing template against its placeholder token.
func ParseListing(name, text, placeholder string) (*Template, error) {
	if placeholder == "" {
		placeholder = DefaultListingPlaceholder
	}
	return parse(name, text, placeholder, ErrMissingListingPlaceholder)
}

// Load reads and validates a page template file.
func Load(path string) (*Template, error) {
	text, err := readTemplate(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, text)
}

// LoadListing reads and validates a listing template file.
func LoadListing(path, placeholder string) (*Template, error) {
	text, err := readTemplate(path)
	if err != nil {
		return nil, err
	}
	return ParseListing(path, text, placeholder)
}

func parse(name, text, placeholder string, cause error) (*Template, error) {
	if !strings.Contains(text, placeholder) {
		return nil, foundationerrors.TemplateError("template is missing its required placeholder").
			WithCause(cause).
			WithContext("path", name).
			WithContext("placeholder", placeholder).
			Build()
	}
	return &Template{name: name, text: text, placeholder: placeholder}, nil
}

func readTemplate(path string) (string, error) {
	// #nosec G304 -- template paths come from the site configuration.
	data, err := os.ReadFile(path)
	if err != nil {
		return "", foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot read template").
			Fatal().
			UserAction().
			WithContext("path", path).
			Build()
	}
	return string(data), nil
}

// Name returns the path or name the template was parsed from.
func (t *Template) Name() string { return t.name }

// Placeholder returns the required token.
func (t *Template) Placeholder() string { return t.placeholder }

// Text returns the unmodified template text.
func (t *Template) Text() string { return t.text }

// Render replaces every occurrence of the required placeholder with value,
// then every {key} with its metadata value, keys in sorted order. Values are
// inserted verbatim (no HTML escaping), and a value that itself contains a
// {key} token may be rewritten by a later key.
func (t *Template) Render(value string, metadata map[string]string) string {
	out := strings.ReplaceAll(t.text, t.placeholder, value)
	if len(metadata) == 0 {
		return out
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		out = strings.ReplaceAll(out, "{"+k+"}", metadata[k])
	}
	return out
}
