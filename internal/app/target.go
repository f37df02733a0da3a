package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/devsweep/devsweep/internal/config"
)

// ResolveTarget validates and canonicalizes the directory a session
// will scan, expanding a leading "~". These are the only errors
// surfaced to the user before the interactive loop starts; everything
// later degrades to skipped items.
func ResolveTarget(path string, useGitignore bool) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("determine working directory: %w", err)
		}
		path = cwd
	}

	path, err := config.ExpandTilde(path)
	if err != nil {
		return "", err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("directory does not exist: %s", abs)
		}
		return "", fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}

	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	if useGitignore {
		if _, err := os.Stat(filepath.Join(abs, ".gitignore")); err != nil {
			return "", fmt.Errorf("no .gitignore file found in %s", abs)
		}
	}

	return abs, nil
}
