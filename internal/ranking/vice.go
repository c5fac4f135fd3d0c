package ranking

import (
	"math"
	"sort"

	"github.com/onnwee/featrank/internal/elo"
)

// Normalization bounds. Ratings are unbounded integers in principle but
// cluster in this range in practice, so it is the scale the 0-100 mapping
// assumes.
const (
	MinRating = 1000
	MaxRating = 2000
)

// NormalizeRating linearly maps a rating from [MinRating, MaxRating] onto
// [0, 100], clamping at both ends. Ratings at or below MinRating normalize
// to 0; at or above MaxRating to 100.
func NormalizeRating(rating int) float64 {
	normalized := float64(rating-MinRating) / float64(MaxRating-MinRating) * 100.0
	if normalized < 0 {
		return 0
	}
	if normalized > 100 {
		return 100
	}
	return normalized
}

// ViceScore computes the composite priority score for one feature's ratings.
// It is the geometric mean of the three normalized sub-scores: the cube root
// of impact * ease * confidence, rounded to the nearest integer.
// The result is always in [0, 100].
func ViceScore(r elo.Ratings) int {
	impact := NormalizeRating(r.Impact)
	ease := NormalizeRating(r.Ease)
	confidence := NormalizeRating(r.Confidence)

	return int(math.Round(math.Cbrt(impact * ease * confidence)))
}

// Entry is one row of a ranked leaderboard.
type Entry struct {
	Rank      int         `json:"rank"`
	Name      string      `json:"name"`
	ViceScore int         `json:"vice_score"`
	Ratings   elo.Ratings `json:"ratings"`
	Matches   elo.Matches `json:"matches"`
}

// Leaderboard ranks a feature set by composite score, highest first.
// Ties break alphabetically by feature name so the ordering is stable
// across renders.
func Leaderboard(ratings map[string]*elo.FeatureRating) []Entry {
	entries := make([]Entry, 0, len(ratings))
	for name, fr := range ratings {
		entries = append(entries, Entry{
			Name:      name,
			ViceScore: ViceScore(fr.Ratings),
			Ratings:   fr.Ratings,
			Matches:   fr.Matches,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ViceScore != entries[j].ViceScore {
			return entries[i].ViceScore > entries[j].ViceScore
		}
		return entries[i].Name < entries[j].Name
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
