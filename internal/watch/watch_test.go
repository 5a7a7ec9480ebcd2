package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherSignalsOnSessionWrite(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "-proj")
	if err := os.Mkdir(projectDir, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	updates := w.Updates()

	if err := os.WriteFile(filepath.Join(projectDir, "s.jsonl"), []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-updates:
	case <-time.After(3 * time.Second):
		t.Fatal("no update signal after session file write")
	}
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	root := t.TempDir()
	projectDir := filepath.Join(root, "-proj")
	if err := os.Mkdir(projectDir, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(root)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	updates := w.Updates()

	if err := os.WriteFile(filepath.Join(projectDir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-updates:
		t.Fatal("unexpected signal for non-session file")
	case <-time.After(time.Second):
	}
}

func TestWatcherMissingRoot(t *testing.T) {
	w, err := New(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("New on missing root: %v", err)
	}
	defer w.Close()
	w.Updates()
}
