package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kdl-lang/kdl/kdl"
)

// canonicalize parses source (read from path, used only for config lookup
// and error messages) and returns its canonical serialization, using the
// indent configured for path's directory (walking up to the nearest
// .kdlfmt.yaml, or the library default).
func canonicalize(path string, source []byte) ([]byte, error) {
	cfg, err := loadConfig(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("load config for %s: %w", path, err)
	}

	doc, err := kdl.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var opts []kdl.SerializeOption
	if cfg.Indent != "" {
		opts = append(opts, kdl.WithIndent(cfg.Indent))
	}
	return kdl.SerializeToBytes(doc, opts...)
}

// formatFile reads and canonicalizes path in one step.
func formatFile(path string) ([]byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return canonicalize(path, source)
}

// isCanonical reports whether path's on-disk bytes already equal its
// canonical form.
func isCanonical(path string) (bool, []byte, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return false, nil, fmt.Errorf("read %s: %w", path, err)
	}
	canonical, err := canonicalize(path, source)
	if err != nil {
		return false, nil, err
	}
	return bytes.Equal(source, canonical), canonical, nil
}

// reformatOnDisk overwrites path with its canonical form, skipping the
// write entirely when the file is already canonical (so watch doesn't
// retrigger its own fsnotify event in a loop).
func reformatOnDisk(path string) error {
	ok, canonical, err := isCanonical(path)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return os.WriteFile(path, canonical, 0o644)
}
