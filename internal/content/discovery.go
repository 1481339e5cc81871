package content

import (
	"cmp"
	"errors"
	"os"
	"path/filepath"
	"slices"

	"golang.org/x/text/cases"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// DefaultExtensions selects Markdown sources.
var DefaultExtensions = []string{".md"}

// ErrStemCollision is the cause when two sources would write the same page.
var ErrStemCollision = errors.New("two content files share an output name")

// Discover lists the eligible files directly inside dir, sorted by file name.
// Subdirectories, files with other extensions and files whose name is only
// an extension (".md") are skipped. Matching is case-sensitive.
func Discover(dir string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot read content directory").
			Fatal().
			UserAction().
			WithContext("path", dir).
			Build()
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := filepath.Ext(name)
		if ext == name || !slices.Contains(extensions, ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	// os.ReadDir already sorts by name; keep the order explicit for callers
	// that pass in their own path lists.
	slices.SortFunc(paths, func(a, b string) int {
		return cmp.Compare(filepath.Base(a), filepath.Base(b))
	})
	return paths, nil
}

// CheckCollisions fails when two paths map to the same output page. Stems
// that differ only by case also collide, since they overwrite each other on
// case-insensitive filesystems.
func CheckCollisions(paths []string) error {
	fold := cases.Fold()
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		key := fold.String(Stem(p))
		if first, ok := seen[key]; ok {
			return foundationerrors.ContentError("content files produce the same output page").
				WithCause(ErrStemCollision).
				WithContext("path", p).
				WithContext("conflicts_with", first).
				WithContext("stem", Stem(p)).
				Build()
		}
		seen[key] = p
	}
	return nil
}
