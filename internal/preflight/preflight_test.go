package preflight_test

import (
	"os"
	"path/filepath"
	"testing"

	"rscapture/internal/preflight"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Fatalf("expected writable temp dir to pass: %+v", result)
	}

	result = preflight.CheckDirectoryAccess("Staging directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("expected missing directory to fail")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	result = preflight.CheckDirectoryAccess("Staging directory", file)
	if result.Passed {
		t.Fatal("expected plain file to fail directory check")
	}
}

func TestCheckEncoder(t *testing.T) {
	if result := preflight.CheckEncoder("sh"); !result.Passed {
		t.Fatalf("expected sh to resolve: %+v", result)
	}
	if result := preflight.CheckEncoder("rscapture-definitely-not-installed"); result.Passed {
		t.Fatal("expected missing binary to fail")
	}
}

func TestCheckDisplay(t *testing.T) {
	if result := preflight.CheckDisplay(":0.0"); !result.Passed {
		t.Fatalf("expected display to pass: %+v", result)
	}
	if result := preflight.CheckDisplay("  "); result.Passed {
		t.Fatal("expected blank display to fail")
	}
}
