package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDataDir(t *testing.T) {
	dir := t.TempDir()
	if IsValidDataDir(dir) {
		t.Fatal("empty dir accepted as data dir")
	}
	if err := os.WriteFile(filepath.Join(dir, SentencesFile), []byte("আমি ভালো আছি\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !IsValidDataDir(dir) {
		t.Fatal("dir with a sentence list rejected")
	}

	pr, err := NewPathResolver()
	if err != nil {
		t.Fatal(err)
	}
	if got := pr.GetDataDir(dir); got != dir {
		t.Errorf("GetDataDir(%q) = %q", dir, got)
	}
}
