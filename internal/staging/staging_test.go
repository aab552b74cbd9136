package staging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rscapture/internal/staging"
)

func TestNewIntermediateCreatesRootAndUniquePaths(t *testing.T) {
	root := filepath.Join(t.TempDir(), "stage")
	ws := staging.NewWorkspace(root, nil)

	first, err := ws.NewIntermediate()
	if err != nil {
		t.Fatalf("NewIntermediate: %v", err)
	}
	second, err := ws.NewIntermediate()
	if err != nil {
		t.Fatalf("NewIntermediate: %v", err)
	}
	if first == second {
		t.Fatalf("paths must be unique, both %q", first)
	}
	for _, path := range []string{first, second} {
		if filepath.Dir(path) != root {
			t.Fatalf("path %q not under root %q", path, root)
		}
		base := filepath.Base(path)
		if !strings.HasPrefix(base, "recording-") || !strings.HasSuffix(base, ".mkv") {
			t.Fatalf("unexpected intermediate name %q", base)
		}
	}
	if _, err := os.Stat(root); err != nil {
		t.Fatalf("root not created: %v", err)
	}
}

func TestCleanupSweepsIntermediatesOnly(t *testing.T) {
	root := t.TempDir()
	ws := staging.NewWorkspace(root, nil)

	staged := filepath.Join(root, "recording-20260829-120000-abcd1234.mkv")
	if err := os.WriteFile(staged, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	unrelated := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(unrelated, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if _, err := os.Stat(staged); !os.IsNotExist(err) {
		t.Fatal("staged intermediate survived cleanup")
	}
	if _, err := os.Stat(unrelated); err != nil {
		t.Fatal("cleanup must not touch unrelated files")
	}
}

func TestCleanupToleratesMissingRoot(t *testing.T) {
	ws := staging.NewWorkspace(filepath.Join(t.TempDir(), "never-created"), nil)
	if err := ws.Cleanup(); err != nil {
		t.Fatalf("Cleanup on missing root: %v", err)
	}
}

func TestBlankRootIsRejected(t *testing.T) {
	ws := staging.NewWorkspace("  ", nil)
	if _, err := ws.NewIntermediate(); err == nil {
		t.Fatal("expected error for unconfigured workspace")
	}
	if err := ws.Cleanup(); err == nil {
		t.Fatal("expected error for unconfigured workspace")
	}
}
