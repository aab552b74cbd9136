package history_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"rscapture/internal/config"
	"rscapture/internal/history"
	"rscapture/internal/selection"
)

func newStore(t *testing.T) *history.Store {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StagingDir = filepath.Join(base, "staging")
	cfg.Paths.OutputDir = filepath.Join(base, "out")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	store, err := history.Open(&cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordingLifecycle(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	region := selection.Rect{X: 10, Y: 20, Width: 800, Height: 600}

	rec, err := store.NewRecording(ctx, region, "/staging/recording-1.mkv")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	if rec.Status != history.StatusRecording {
		t.Fatalf("status = %q", rec.Status)
	}
	if rec.Region != region {
		t.Fatalf("region = %+v", rec.Region)
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}

	if err := store.MarkEncoding(ctx, rec.ID, "high"); err != nil {
		t.Fatalf("MarkEncoding: %v", err)
	}
	if err := store.MarkCompleted(ctx, rec.ID, "/videos/Demo.mp4"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	got, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != history.StatusCompleted {
		t.Fatalf("status = %q", got.Status)
	}
	if got.Quality != "high" {
		t.Fatalf("quality = %q", got.Quality)
	}
	if got.FinalPath != "/videos/Demo.mp4" {
		t.Fatalf("final path = %q", got.FinalPath)
	}
	if !got.UpdatedAt.After(got.CreatedAt) && !got.UpdatedAt.Equal(got.CreatedAt) {
		t.Fatal("updated_at went backwards")
	}
}

func TestMarkFailedKeepsMessage(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	rec, err := store.NewRecording(ctx, selection.Rect{Width: 1, Height: 1}, "")
	if err != nil {
		t.Fatalf("NewRecording: %v", err)
	}
	if err := store.MarkFailed(ctx, rec.ID, "encoder exited with status 1"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	got, err := store.GetByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != history.StatusFailed {
		t.Fatalf("status = %q", got.Status)
	}
	if got.ErrorMessage != "encoder exited with status 1" {
		t.Fatalf("error message = %q", got.ErrorMessage)
	}
}

func TestListNewestFirstWithLimit(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	var last int64
	for i := 0; i < 3; i++ {
		rec, err := store.NewRecording(ctx, selection.Rect{Width: 10 + i, Height: 10}, "")
		if err != nil {
			t.Fatalf("NewRecording: %v", err)
		}
		last = rec.ID
	}

	all, err := store.List(ctx, 0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d", len(all))
	}
	if all[0].ID != last {
		t.Fatalf("expected newest first, got id %d", all[0].ID)
	}

	limited, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("List limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limited len = %d", len(limited))
	}
}

func TestUnknownRecordingID(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if _, err := store.GetByID(ctx, 9999); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("GetByID error = %v", err)
	}
	if err := store.MarkDiscarded(ctx, 9999); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("MarkDiscarded error = %v", err)
	}
}
