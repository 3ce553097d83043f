package encoding

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLockOutputDirIsExclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "Game")
	unlock, err := lockOutputDir(dir)
	if err != nil {
		t.Fatalf("lockOutputDir: %v", err)
	}
	if _, err := lockOutputDir(dir); err == nil || !strings.Contains(err.Error(), "another conversion") {
		t.Fatalf("expected second lock to be refused, got %v", err)
	}
	unlock()

	if _, err := os.Stat(filepath.Join(dir, outputLockName)); err != nil {
		t.Fatalf("lock file removed on unlock: %v", err)
	}
	relock, err := lockOutputDir(dir)
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	relock()
}
