package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/onnwee/featrank/internal/elo"
)

func sampleRatings() map[string]*elo.FeatureRating {
	a := elo.NewFeatureRating("a")
	a.Ratings.Impact = 1450
	a.Matches.Impact = 2
	a.Matches.Total = 2
	return map[string]*elo.FeatureRating{
		"a": a,
		"b": elo.NewFeatureRating("b"),
	}
}

func assertRatingsEqual(t *testing.T, got, want map[string]*elo.FeatureRating) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d rating records, got %d", len(want), len(got))
	}
	for name, w := range want {
		g, ok := got[name]
		if !ok {
			t.Fatalf("missing rating record for %q", name)
		}
		if g.Ratings != w.Ratings || g.Matches != w.Matches {
			t.Errorf("rating record %q differs: got %+v, want %+v", name, g, w)
		}
	}
}

// TestInMemoryStore_RoundTrip tests save/load fidelity for every concern.
func TestInMemoryStore_RoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	features := []string{"a", "b", "c"}
	if err := store.SaveFeatures(features); err != nil {
		t.Fatalf("SaveFeatures failed: %v", err)
	}
	loaded, err := store.LoadFeatures()
	if err != nil {
		t.Fatalf("LoadFeatures failed: %v", err)
	}
	if len(loaded) != 3 || loaded[0] != "a" || loaded[2] != "c" {
		t.Errorf("feature round-trip mismatch: %v", loaded)
	}

	ratings := sampleRatings()
	if err := store.SaveRatings(ratings); err != nil {
		t.Fatalf("SaveRatings failed: %v", err)
	}
	gotRatings, err := store.LoadRatings()
	if err != nil {
		t.Fatalf("LoadRatings failed: %v", err)
	}
	assertRatingsEqual(t, gotRatings, ratings)

	// Saving what was loaded and loading again must return an equal mapping.
	if err := store.SaveRatings(gotRatings); err != nil {
		t.Fatalf("second SaveRatings failed: %v", err)
	}
	again, _ := store.LoadRatings()
	assertRatingsEqual(t, again, ratings)

	outcome := Outcome{Selected: "a", Rejected: "b", Criterion: elo.CriterionImpact, Timestamp: time.Now()}
	if err := store.AppendOutcome(outcome); err != nil {
		t.Fatalf("AppendOutcome failed: %v", err)
	}
	outcomes, _ := store.LoadOutcomes()
	if len(outcomes) != 1 || outcomes[0].Selected != "a" {
		t.Errorf("outcome round-trip mismatch: %v", outcomes)
	}

	if err := store.SaveCompletedCount(5); err != nil {
		t.Fatalf("SaveCompletedCount failed: %v", err)
	}
	if count, _ := store.LoadCompletedCount(); count != 5 {
		t.Errorf("completed count round-trip mismatch: %d", count)
	}
}

// TestInMemoryStore_CopiesAreIsolated tests that callers cannot mutate stored
// state through returned values.
func TestInMemoryStore_CopiesAreIsolated(t *testing.T) {
	store := NewInMemoryStore()
	if err := store.SaveRatings(sampleRatings()); err != nil {
		t.Fatalf("SaveRatings failed: %v", err)
	}

	loaded, _ := store.LoadRatings()
	loaded["a"].Ratings.Impact = 9999

	fresh, _ := store.LoadRatings()
	if fresh["a"].Ratings.Impact == 9999 {
		t.Error("mutating a loaded record leaked into the store")
	}
}

// TestFileStore_RoundTrip tests save/load fidelity through the filesystem.
func TestFileStore_RoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), slog.Default())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.SaveFeatures([]string{"a", "b"}); err != nil {
		t.Fatalf("SaveFeatures failed: %v", err)
	}
	features, _ := store.LoadFeatures()
	if len(features) != 2 {
		t.Errorf("expected 2 features, got %v", features)
	}

	ratings := sampleRatings()
	if err := store.SaveRatings(ratings); err != nil {
		t.Fatalf("SaveRatings failed: %v", err)
	}
	loaded, _ := store.LoadRatings()
	assertRatingsEqual(t, loaded, ratings)

	if err := store.AppendOutcome(Outcome{Selected: "a", Rejected: "b", Criterion: elo.CriterionEase, Timestamp: time.Now()}); err != nil {
		t.Fatalf("AppendOutcome failed: %v", err)
	}
	if err := store.AppendOutcome(Outcome{Selected: "b", Rejected: "a", Criterion: elo.CriterionImpact, Timestamp: time.Now()}); err != nil {
		t.Fatalf("second AppendOutcome failed: %v", err)
	}
	outcomes, _ := store.LoadOutcomes()
	if len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes[1].Selected != "b" {
		t.Error("outcomes not in append order")
	}

	if err := store.SaveCompletedCount(7); err != nil {
		t.Fatalf("SaveCompletedCount failed: %v", err)
	}
	if count, _ := store.LoadCompletedCount(); count != 7 {
		t.Errorf("completed count round-trip mismatch: %d", count)
	}
}

// TestFileStore_EmptyDirectory tests that a fresh store loads empty state.
func TestFileStore_EmptyDirectory(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), slog.Default())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	features, err := store.LoadFeatures()
	if err != nil || len(features) != 0 {
		t.Errorf("expected empty features, got %v (err %v)", features, err)
	}
	ratings, err := store.LoadRatings()
	if err != nil || len(ratings) != 0 {
		t.Errorf("expected empty ratings, got %v (err %v)", ratings, err)
	}
	count, err := store.LoadCompletedCount()
	if err != nil || count != 0 {
		t.Errorf("expected zero count, got %d (err %v)", count, err)
	}
}

// TestFileStore_MalformedDataFailsSoft tests that corruption in one file is
// isolated: that concern loads empty while the others are unaffected.
func TestFileStore_MalformedDataFailsSoft(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, slog.Default())
	if err != nil {
		t.Fatalf("NewFileStore failed: %v", err)
	}

	if err := store.SaveFeatures([]string{"a", "b"}); err != nil {
		t.Fatalf("SaveFeatures failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ratings.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to corrupt ratings file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "completed"), []byte("banana"), 0o644); err != nil {
		t.Fatalf("failed to corrupt count file: %v", err)
	}

	ratings, err := store.LoadRatings()
	if err != nil {
		t.Errorf("corrupt ratings should fail soft, got error %v", err)
	}
	if len(ratings) != 0 {
		t.Errorf("corrupt ratings should load empty, got %v", ratings)
	}

	count, err := store.LoadCompletedCount()
	if err != nil || count != 0 {
		t.Errorf("corrupt count should load as zero, got %d (err %v)", count, err)
	}

	// The intact feature list is unaffected.
	features, _ := store.LoadFeatures()
	if len(features) != 2 {
		t.Errorf("intact features should still load, got %v", features)
	}
}
