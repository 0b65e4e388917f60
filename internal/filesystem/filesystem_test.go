package filesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "c")
	if err := EnsureDir(path); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", path)
	}

	// idempotent on existing directories
	if err := EnsureDir(path); err != nil {
		t.Errorf("EnsureDir on existing dir failed: %v", err)
	}
}
