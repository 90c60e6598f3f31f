package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTestFiles(t *testing.T, names ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}
	}
	return dir
}

func TestFindFileCaseInsensitive(t *testing.T) {
	dir := writeTestFiles(t, "SONG.MID", "other.mid")

	tests := []struct {
		name       string
		searchName string
		shouldFind bool
		wantBase   string
	}{
		{"exact match", "SONG.MID", true, "SONG.MID"},
		{"lowercase search", "song.mid", true, "SONG.MID"},
		{"mixed case search", "Song.Mid", true, "SONG.MID"},
		{"other file", "OTHER.MID", true, "other.mid"},
		{"not found", "missing.mid", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := FindFileCaseInsensitive(dir, tt.searchName)
			if tt.shouldFind {
				if err != nil {
					t.Fatalf("expected to find file, got error: %v", err)
				}
				if filepath.Base(path) != tt.wantBase {
					t.Errorf("found %q, want %q", filepath.Base(path), tt.wantBase)
				}
			} else if err == nil {
				t.Errorf("expected error, found %q", path)
			}
		})
	}
}

func TestFindFileSkipsDirectories(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "song.mid"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := FindFileCaseInsensitive(dir, "song.mid"); err == nil {
		t.Error("a directory should not satisfy a file search")
	}
}

func TestResolve(t *testing.T) {
	dir := writeTestFiles(t, "TUNE.MID")

	exact := filepath.Join(dir, "TUNE.MID")
	if got, err := Resolve(exact); err != nil || got != exact {
		t.Errorf("Resolve(exact) = (%q, %v)", got, err)
	}

	insensitive := filepath.Join(dir, "tune.mid")
	got, err := Resolve(insensitive)
	if err != nil {
		t.Fatalf("Resolve(case-mismatched) returned error: %v", err)
	}
	if filepath.Base(got) != "TUNE.MID" {
		t.Errorf("Resolve found %q, want TUNE.MID", got)
	}

	if _, err := Resolve(filepath.Join(dir, "absent.mid")); err == nil {
		t.Error("Resolve of a missing file should fail")
	}
}
