// Package elo implements the pairwise rating engine used to rank features.
// Each feature carries an independent rating per comparison criterion, updated
// with a standard Elo formula after every head-to-head choice.
package elo

import "math"

// Rating update constants.
const (
	// DefaultKFactor is the maximum rating swing per comparison.
	DefaultKFactor = 32

	// DefaultInitialRating is the starting rating for new features.
	DefaultInitialRating = 1400
)

// ExpectedOutcome returns the probability that a feature rated ratingA is
// preferred over a feature rated ratingB.
// Formula: 1 / (1 + 10^((ratingB - ratingA) / 400))
//
// The result is always in (0, 1), and
// ExpectedOutcome(a, b) + ExpectedOutcome(b, a) == 1 up to rounding.
func ExpectedOutcome(ratingA, ratingB int) float64 {
	return 1.0 / (1.0 + math.Pow(10, float64(ratingB-ratingA)/400.0))
}

// UpdateRatings computes new ratings after a decisive comparison.
// The winner's actual outcome is 1, the loser's 0; each side is adjusted by
// kFactor scaled by how surprising the result was. Results are rounded to the
// nearest integer, which defines the coarse rating scale used everywhere else.
func UpdateRatings(winnerRating, loserRating, kFactor int) (newWinnerRating, newLoserRating int) {
	expectedWinner := ExpectedOutcome(winnerRating, loserRating)
	expectedLoser := ExpectedOutcome(loserRating, winnerRating)

	newWinnerRating = int(math.Round(float64(winnerRating) + float64(kFactor)*(1.0-expectedWinner)))
	newLoserRating = int(math.Round(float64(loserRating) + float64(kFactor)*(0.0-expectedLoser)))
	return newWinnerRating, newLoserRating
}

// UpdateRatingsForDraw computes new ratings when neither feature is preferred.
// Both sides receive an actual outcome of 0.5, so the higher-rated side loses
// points and the lower-rated side gains them.
func UpdateRatingsForDraw(ratingA, ratingB, kFactor int) (newRatingA, newRatingB int) {
	expectedA := ExpectedOutcome(ratingA, ratingB)
	expectedB := ExpectedOutcome(ratingB, ratingA)

	newRatingA = int(math.Round(float64(ratingA) + float64(kFactor)*(0.5-expectedA)))
	newRatingB = int(math.Round(float64(ratingB) + float64(kFactor)*(0.5-expectedB)))
	return newRatingA, newRatingB
}
