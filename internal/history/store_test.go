package history

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/veracitylab/veracity/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history", "veracity.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleReport(id string, analyzedAt time.Time) *model.Report {
	return &model.Report{
		ID:            id,
		URL:           "https://example.com/" + id,
		AnalyzedAt:    analyzedAt,
		VeracityScore: 72,
		Verdict:       model.VerdictCaution,
		Flags:         []string{"vague_claims"},
		Summary:       "Some claims lack evidence.",
		Signals: model.SignalSet{
			model.SourceThreatLookup: model.OkSignal(model.SourceThreatLookup, 0, nil, "clean"),
		},
	}
}

func TestStore_SaveAndGet(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := sampleReport("abc-123", time.Now().UTC())
	if err := store.Save(ctx, report); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Get(ctx, "abc-123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if loaded.URL != report.URL {
		t.Errorf("url mismatch: %q vs %q", loaded.URL, report.URL)
	}
	if loaded.VeracityScore != 72 || loaded.Verdict != model.VerdictCaution {
		t.Errorf("score/verdict mismatch: %d %s", loaded.VeracityScore, loaded.Verdict)
	}
	if len(loaded.Flags) != 1 || loaded.Flags[0] != "vague_claims" {
		t.Errorf("flags mismatch: %v", loaded.Flags)
	}
	if _, ok := loaded.Signals[model.SourceThreatLookup]; !ok {
		t.Error("signals should round-trip")
	}
}

func TestStore_GetMissing(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListNewestFirst(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := store.Save(ctx, sampleReport(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	entries, err := store.List(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "third" || entries[1].ID != "second" {
		t.Errorf("expected newest first, got %s, %s", entries[0].ID, entries[1].ID)
	}
}

func TestStore_SaveIsIdempotentPerID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	report := sampleReport("same-id", time.Now().UTC())
	if err := store.Save(ctx, report); err != nil {
		t.Fatalf("first save: %v", err)
	}
	report.VeracityScore = 10
	report.Verdict = model.VerdictDanger
	if err := store.Save(ctx, report); err != nil {
		t.Fatalf("second save: %v", err)
	}

	entries, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after replace, got %d", len(entries))
	}
	if entries[0].Score != 10 {
		t.Errorf("expected replaced score 10, got %d", entries[0].Score)
	}
}
