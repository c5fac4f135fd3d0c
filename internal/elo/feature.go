package elo

import "fmt"

// Criterion is one of the three independent comparison dimensions.
// Criteria are a fixed enumerated set so aggregation code can be exhaustive
// rather than iterating free-form string keys.
type Criterion string

// The supported comparison criteria.
const (
	CriterionImpact     Criterion = "impact"
	CriterionEase       Criterion = "ease"
	CriterionConfidence Criterion = "confidence"
)

// AllCriteria is the ordered list of every criterion. The order determines
// how criteria rotate across successive comparisons.
var AllCriteria = []Criterion{CriterionImpact, CriterionEase, CriterionConfidence}

// ParseCriterion validates a string as a known criterion.
func ParseCriterion(s string) (Criterion, error) {
	switch Criterion(s) {
	case CriterionImpact, CriterionEase, CriterionConfidence:
		return Criterion(s), nil
	}
	return "", fmt.Errorf("unknown criterion %q", s)
}

// Ratings holds one rating per criterion for a single feature.
type Ratings struct {
	Impact     int `json:"impact"`
	Ease       int `json:"ease"`
	Confidence int `json:"confidence"`
}

// Get returns the rating for a criterion.
func (r Ratings) Get(c Criterion) int {
	switch c {
	case CriterionImpact:
		return r.Impact
	case CriterionEase:
		return r.Ease
	case CriterionConfidence:
		return r.Confidence
	}
	return 0
}

// Set stores the rating for a criterion.
func (r *Ratings) Set(c Criterion, rating int) {
	switch c {
	case CriterionImpact:
		r.Impact = rating
	case CriterionEase:
		r.Ease = rating
	case CriterionConfidence:
		r.Confidence = rating
	}
}

// Matches counts how many comparisons a feature has participated in,
// per criterion and in total. Total always equals the sum of the three
// per-criterion counts.
type Matches struct {
	Impact     int `json:"impact"`
	Ease       int `json:"ease"`
	Confidence int `json:"confidence"`
	Total      int `json:"total"`
}

// Increment bumps the count for a criterion and the running total.
func (m *Matches) Increment(c Criterion) {
	switch c {
	case CriterionImpact:
		m.Impact++
	case CriterionEase:
		m.Ease++
	case CriterionConfidence:
		m.Confidence++
	default:
		return
	}
	m.Total++
}

// FeatureRating is the full rating state for one feature.
type FeatureRating struct {
	Name    string  `json:"name"`
	Ratings Ratings `json:"ratings"`
	Matches Matches `json:"matches"`
}

// NewFeatureRating initializes rating state for a feature that has not been
// compared yet: every criterion starts at the default rating with zero matches.
func NewFeatureRating(name string) *FeatureRating {
	return &FeatureRating{
		Name: name,
		Ratings: Ratings{
			Impact:     DefaultInitialRating,
			Ease:       DefaultInitialRating,
			Confidence: DefaultInitialRating,
		},
	}
}
