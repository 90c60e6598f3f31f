// Package fileutil provides file system helpers for resolving MIDI file
// paths.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns a usable path for path. An exact match wins; otherwise
// the containing directory is searched case-insensitively, since MIDI
// collections copied across file systems routinely disagree on case
// (SONG.MID vs song.mid).
func Resolve(path string) (string, error) {
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return FindFileCaseInsensitive(filepath.Dir(path), filepath.Base(path))
}

// FindFileCaseInsensitive searches dir for a file whose name matches
// filename ignoring case, and returns the actual path.
func FindFileCaseInsensitive(dir, filename string) (string, error) {
	if dir == "" {
		dir = "."
	}
	searchName := strings.ToLower(filename)

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.ToLower(entry.Name()) == searchName {
			return filepath.Join(dir, entry.Name()), nil
		}
	}

	return "", fmt.Errorf("file not found: %s (searched in %s)", filename, dir)
}
