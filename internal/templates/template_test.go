package templates

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

func TestParse_RequiresContentPlaceholder(t *testing.T) {
	_, err := Parse("page.html", "<html>{title}</html>")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMissingContentPlaceholder))
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryTemplate))

	tpl, err := Parse("page.html", "anything at all {content} {unknown")
	require.NoError(t, err)
	require.Equal(t, ContentPlaceholder, tpl.Placeholder())
}

func TestRender_ReplacesEveryContentOccurrence(t *testing.T) {
	tpl, err := Parse("t", "<main>{content}</main><aside>{content}</aside>")
	require.NoError(t, err)

	out := tpl.Render("<p>x</p>", nil)
	require.Equal(t, "<main><p>x</p></main><aside><p>x</p></aside>", out)
	require.NotContains(t, out, ContentPlaceholder)
}

func TestRender_SubstitutesMetadata(t *testing.T) {
	tpl, err := Parse("t", "<title>{title}</title>{content}<footer>{author} {title}</footer>{missing}")
	require.NoError(t, err)

	out := tpl.Render("<p>body</p>", map[string]string{"title": "About", "author": "Ann"})
	require.Equal(t, "<title>About</title><p>body</p><footer>Ann About</footer>{missing}", out)
}

func TestRender_DoesNotEscapeValues(t *testing.T) {
	tpl, err := Parse("t", "{content}|{title}")
	require.NoError(t, err)

	out := tpl.Render("", map[string]string{"title": "<b>&</b>"})
	require.Equal(t, "|<b>&</b>", out)
}

func TestRender_KeysApplyInSortedOrder(t *testing.T) {
	tpl, err := Parse("t", "{content}{a}")
	require.NoError(t, err)

	// "a" is replaced first, inserting "{b}", which "b" then rewrites.
	out := tpl.Render("", map[string]string{"a": "{b}", "b": "B"})
	require.Equal(t, "B", out)
}

func TestRender_TemplateIsReusable(t *testing.T) {
	tpl, err := Parse("t", "<h1>{title}</h1>{content}")
	require.NoError(t, err)

	first := tpl.Render("one", map[string]string{"title": "First"})
	second := tpl.Render("two", nil)
	require.Equal(t, "<h1>First</h1>one", first)
	require.Equal(t, "<h1>{title}</h1>two", second)
	require.Equal(t, "<h1>{title}</h1>{content}", tpl.Text())
}

func TestParseListing(t *testing.T) {
	_, err := ParseListing("blog.html", "<ul>{content}</ul>", "")
	require.ErrorIs(t, err, ErrMissingListingPlaceholder)

	tpl, err := ParseListing("blog.html", "<nav>{article_list}</nav>", "")
	require.NoError(t, err)
	require.Equal(t, "<nav>links</nav>", tpl.Render("links", nil))

	tpl, err = ParseListing("blog.html", "<nav>{posts}</nav>", "{posts}")
	require.NoError(t, err)
	require.Equal(t, "<nav>x</nav>", tpl.Render("x", nil))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "content.html")
	require.NoError(t, os.WriteFile(good, []byte("<html>{content}</html>"), 0o600))

	tpl, err := Load(good)
	require.NoError(t, err)
	require.Equal(t, good, tpl.Name())

	_, err = Load(filepath.Join(dir, "missing.html"))
	require.Error(t, err)
	require.True(t, errors.Is(err, os.ErrNotExist))
	require.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryFileSystem))
}
