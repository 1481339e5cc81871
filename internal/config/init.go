package config

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	foundationerrors "git.home.luguber.info/inful/justhtml/internal/foundation/errors"
)

//go:embed starter
var starterFS embed.FS

// InitResult lists what Init wrote.
type InitResult struct {
	Config  *Config
	Created []string
	Skipped []string
}

// Init writes the default configuration to configPath and scaffolds the
// content and templates directories, starter templates and a .gitignore.
// An existing config file is only replaced when force is set. Existing
// templates, content and .gitignore are never overwritten.
func Init(configPath string, force bool) (*InitResult, error) {
	if _, err := os.Stat(configPath); err == nil && !force {
		return nil, foundationerrors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", configPath).
			UserAction().
			Build()
	}

	cfg := Default()
	if err := NewDefaultApplier().ApplyDefaults(cfg); err != nil {
		return nil, err
	}
	data, err := Marshal(cfg)
	if err != nil {
		return nil, err
	}

	res := &InitResult{Config: cfg}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := mkdirAll(dir); err != nil {
			return nil, err
		}
	}
	if err := writeFile(configPath, data); err != nil {
		return nil, err
	}
	res.Created = append(res.Created, configPath)

	for _, dir := range []string{cfg.ContentDir, cfg.TemplatesDirectory} {
		if err := mkdirAll(dir); err != nil {
			return nil, err
		}
	}

	starters := []struct{ src, dst string }{
		{"starter/index.html", joinSlash(cfg.TemplatesDirectory, "index.html")},
		{"starter/content.html", cfg.ContentTemplate},
		{"starter/blog.html", cfg.ListingTemplatePath()},
		{"starter/style.css", joinSlash(cfg.TemplatesDirectory, "style.css")},
		{"starter/hello.md", joinSlash(cfg.ContentDir, "hello.md")},
	}
	for _, s := range starters {
		body, err := starterFS.ReadFile(s.src)
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryInternal, "missing starter file").
				WithContext("path", s.src).
				Build()
		}
		created, err := writeIfAbsent(s.dst, body)
		if err != nil {
			return nil, err
		}
		if created {
			res.Created = append(res.Created, s.dst)
		} else {
			res.Skipped = append(res.Skipped, s.dst)
		}
	}

	ignore := "/" + strings.Trim(strings.TrimPrefix(cfg.Build.BuildDirectory, "./"), "/") + "/\n"
	created, err := writeIfAbsent(".gitignore", []byte(ignore))
	if err != nil {
		return nil, err
	}
	if created {
		res.Created = append(res.Created, ".gitignore")
	} else {
		res.Skipped = append(res.Skipped, ".gitignore")
	}
	return res, nil
}

func writeIfAbsent(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fsError(err, "cannot stat file", path)
	}
	return true, writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	// #nosec G306 -- project files are meant to be shared.
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fsError(err, "cannot write file", path)
	}
	return nil
}

func mkdirAll(dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fsError(err, "cannot create directory", dir)
	}
	return nil
}

func fsError(err error, msg, path string) error {
	return foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, msg).
		WithContext("path", path).
		Build()
}
