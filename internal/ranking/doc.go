// Package ranking converts raw per-criterion Elo ratings into display-ready
// priority scores and ranked leaderboards.
//
// Basic Usage:
//
//	// Score a single feature
//	score := ranking.ViceScore(feature.Ratings)
//
//	// Rank a whole feature set for a leaderboard view
//	entries := ranking.Leaderboard(ratings)
//	for _, e := range entries {
//		fmt.Printf("%d. %s (%d)\n", e.Rank, e.Name, e.ViceScore)
//	}
//
// Scoring model:
//
// Each criterion rating is normalized from the assumed [1000, 2000] working
// range onto [0, 100], clamped at both ends. The composite VICE score is the
// geometric mean of the three normalized sub-scores, so a feature that is weak
// on any single criterion is penalized multiplicatively instead of being
// averaged away. A sub-score of zero forces the composite to zero; that
// zero-propagation is intentional.
package ranking
