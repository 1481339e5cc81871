// Package listing assembles the page that links every rendered content page.
package listing

import (
	"errors"
	"fmt"
	"html"
	"strings"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/templates"
)

// Separator follows every anchor in the rendered list.
const Separator = " <br />"

// ErrPrefixMismatch is the cause when an identifier is outside the build root.
var ErrPrefixMismatch = errors.New("output identifier does not start with the build root prefix")

// Anchors renders one anchor per identifier, in order. Both href and link
// text are the identifier with prefix removed. An identifier that does not
// start with prefix is an error.
func Anchors(identifiers []string, prefix string) (string, error) {
	var b strings.Builder
	for _, id := range identifiers {
		rel, ok := strings.CutPrefix(id, prefix)
		if !ok {
			return "", foundationerrors.ListingError("content page is outside the build root").
				WithCause(ErrPrefixMismatch).
				WithContext("path", id).
				WithContext("prefix", prefix).
				Build()
		}
		escaped := html.EscapeString(rel)
		fmt.Fprintf(&b, `<a href="%s">%s</a>%s`, escaped, escaped, Separator)
	}
	return b.String(), nil
}

// Render substitutes the anchors for identifiers into the listing template.
func Render(identifiers []string, prefix string, tmpl *templates.Template) (string, error) {
	anchors, err := Anchors(identifiers, prefix)
	if err != nil {
		return "", err
	}
	return tmpl.Render(anchors, nil), nil
}
