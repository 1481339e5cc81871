// Package git records which commit of the project a build came from and
// creates the project repository on init.
package git

import (
	"errors"

	ggit "github.com/go-git/go-git/v5"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

// InitRepository creates a git repository in dir unless dir is already
// inside one. It reports whether a repository was created.
func InitRepository(dir string) (bool, error) {
	if _, err := open(dir); err == nil {
		return false, nil
	} else if !errors.Is(err, ggit.ErrRepositoryNotExists) {
		return false, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot inspect git repository").
			WithContext("path", dir).
			Build()
	}
	if _, err := ggit.PlainInit(dir, false); err != nil {
		return false, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "cannot initialize git repository").
			WithContext("path", dir).
			Build()
	}
	return true, nil
}

// HeadCommit returns the HEAD commit hash of the repository containing dir.
// ok is false when dir is not in a repository or has no commits yet.
func HeadCommit(dir string) (hash string, ok bool) {
	repo, err := open(dir)
	if err != nil {
		return "", false
	}
	ref, err := repo.Head()
	if err != nil {
		return "", false
	}
	return ref.Hash().String(), true
}

func open(dir string) (*ggit.Repository, error) {
	return ggit.PlainOpenWithOptions(dir, &ggit.PlainOpenOptions{DetectDotGit: true})
}
