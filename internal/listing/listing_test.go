package listing

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
	"git.home.luguber.info/inful/justhtml/internal/templates"
)

type anchor struct {
	href string
	text string
}

func parseAnchors(t *testing.T, page string) []anchor {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)

	var out []anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			a := anchor{}
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					a.href = attr.Val
				}
			}
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				a.text = n.FirstChild.Data
			}
			out = append(out, a)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out
}

func TestRender_OneAnchorPerEntry(t *testing.T) {
	tmpl, err := templates.ParseListing("blog.html", "<html><body>{article_list}</body></html>", "")
	require.NoError(t, err)

	list := []string{"./build/blog/about.html", "./build/blog/hello.html", "./build/blog/a&b.html"}
	page, err := Render(list, "./build/", tmpl)
	require.NoError(t, err)

	anchors := parseAnchors(t, page)
	require.Len(t, anchors, len(list))
	for i, id := range list {
		want := strings.TrimPrefix(id, "./build/")
		require.Equal(t, want, anchors[i].href)
		require.Equal(t, want, anchors[i].text)
	}
}

func TestAnchors_Format(t *testing.T) {
	got, err := Anchors([]string{"build/hello.html", "build/about.html"}, "build/")
	require.NoError(t, err)
	require.Equal(t, `<a href="hello.html">hello.html</a> <br /><a href="about.html">about.html</a> <br />`, got)
}

func TestAnchors_Empty(t *testing.T) {
	got, err := Anchors(nil, "./build/")
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestAnchors_PrefixMismatchFails(t *testing.T) {
	_, err := Anchors([]string{"./build/blog/ok.html", "/elsewhere/bad.html"}, "./build/")
	require.ErrorIs(t, err, ErrPrefixMismatch)
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryListing))

	classified, ok := foundationerrors.AsClassified(err)
	require.True(t, ok)
	path, _ := classified.Context().GetString("path")
	require.Equal(t, "/elsewhere/bad.html", path)
}
