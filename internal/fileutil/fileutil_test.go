package fileutil_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dpcretl/internal/fileutil"
)

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "report.json")
	if err := fileutil.WriteFileAtomic(path, []byte(`{"ok":true}`), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected content: %q", data)
	}
}

func TestWriteFileAtomicLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	if err := fileutil.WriteFileAtomic(path, []byte("Well,Value\n"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestPathExists(t *testing.T) {
	dir := t.TempDir()
	if fileutil.PathExists(filepath.Join(dir, "missing")) {
		t.Fatal("expected missing path to report false")
	}
	if !fileutil.PathExists(dir) {
		t.Fatal("expected existing dir to report true")
	}
}
