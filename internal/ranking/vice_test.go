package ranking

import (
	"testing"

	"github.com/onnwee/featrank/internal/elo"
)

// TestNormalizeRating tests the linear mapping and clamping behavior.
func TestNormalizeRating(t *testing.T) {
	tests := []struct {
		rating int
		want   float64
	}{
		{1000, 0},
		{1400, 40},
		{1500, 50},
		{2000, 100},
		{900, 0},    // below floor clamps to 0
		{2100, 100}, // above ceiling clamps to 100
	}

	for _, tt := range tests {
		if got := NormalizeRating(tt.rating); got != tt.want {
			t.Errorf("NormalizeRating(%d) = %v, want %v", tt.rating, got, tt.want)
		}
	}
}

// TestViceScore_AllDefault tests that fresh features score 40.
func TestViceScore_AllDefault(t *testing.T) {
	r := elo.Ratings{Impact: 1400, Ease: 1400, Confidence: 1400}

	// Each normalizes to 40, cube root of 40^3 is 40.
	if got := ViceScore(r); got != 40 {
		t.Errorf("ViceScore(all 1400) = %d, want 40", got)
	}
}

// TestViceScore_ZeroPropagation tests that a floored criterion zeroes the composite.
func TestViceScore_ZeroPropagation(t *testing.T) {
	tests := []elo.Ratings{
		{Impact: 1000, Ease: 2000, Confidence: 2000},
		{Impact: 2000, Ease: 900, Confidence: 2000},
		{Impact: 2000, Ease: 2000, Confidence: 1000},
	}

	for _, r := range tests {
		if got := ViceScore(r); got != 0 {
			t.Errorf("ViceScore(%+v) = %d, want 0", r, got)
		}
	}
}

// TestViceScore_PenalizesWeakCriterion tests that the geometric mean punishes
// imbalance harder than an arithmetic mean would.
func TestViceScore_PenalizesWeakCriterion(t *testing.T) {
	balanced := elo.Ratings{Impact: 1500, Ease: 1500, Confidence: 1500}
	lopsided := elo.Ratings{Impact: 1900, Ease: 1500, Confidence: 1100}

	// Same arithmetic mean (50), but the lopsided feature must score lower.
	if ViceScore(lopsided) >= ViceScore(balanced) {
		t.Errorf("lopsided score %d should be below balanced score %d",
			ViceScore(lopsided), ViceScore(balanced))
	}
}

// TestViceScore_Bounds tests the output range.
func TestViceScore_Bounds(t *testing.T) {
	max := elo.Ratings{Impact: 2000, Ease: 2000, Confidence: 2000}
	if got := ViceScore(max); got != 100 {
		t.Errorf("ViceScore(all 2000) = %d, want 100", got)
	}
}

// TestLeaderboard tests ordering, ranks, and tie-breaking.
func TestLeaderboard(t *testing.T) {
	ratings := map[string]*elo.FeatureRating{
		"search":    {Name: "search", Ratings: elo.Ratings{Impact: 1600, Ease: 1600, Confidence: 1600}},
		"dark mode": {Name: "dark mode", Ratings: elo.Ratings{Impact: 1400, Ease: 1400, Confidence: 1400}},
		"export":    {Name: "export", Ratings: elo.Ratings{Impact: 1400, Ease: 1400, Confidence: 1400}},
	}

	entries := Leaderboard(ratings)

	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].Name != "search" {
		t.Errorf("expected 'search' first, got %q", entries[0].Name)
	}
	// Tied scores break alphabetically.
	if entries[1].Name != "dark mode" || entries[2].Name != "export" {
		t.Errorf("expected alphabetical tie-break, got %q then %q", entries[1].Name, entries[2].Name)
	}
	for i, e := range entries {
		if e.Rank != i+1 {
			t.Errorf("entry %d has rank %d", i, e.Rank)
		}
	}
}

// TestLeaderboard_Empty tests the empty feature set.
func TestLeaderboard_Empty(t *testing.T) {
	entries := Leaderboard(map[string]*elo.FeatureRating{})
	if len(entries) != 0 {
		t.Errorf("expected empty leaderboard, got %d entries", len(entries))
	}
}
