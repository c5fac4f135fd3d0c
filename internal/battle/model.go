// Package battle provides the shared, network-visible variant of a comparison
// session: a named feature set that many visitors vote on, persisted in a
// key-value store and ranked with the same rating engine as local sessions.
package battle

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onnwee/featrank/internal/elo"
)

// Validation errors for battle creation and votes.
var (
	ErrTitleRequired        = errors.New("battle title is required")
	ErrInsufficientFeatures = errors.New("at least 2 features are required")
	ErrFeatureNotInBattle   = errors.New("feature is not part of this battle")
	ErrSelfVote             = errors.New("winner and loser must be different features")
)

// VoteTally counts how many times a feature won, per criterion and in total.
type VoteTally struct {
	Impact     int `json:"impact"`
	Ease       int `json:"ease"`
	Confidence int `json:"confidence"`
	Total      int `json:"total"`
}

// increment bumps the tally for a criterion and the running total.
func (v *VoteTally) increment(c elo.Criterion) {
	switch c {
	case elo.CriterionImpact:
		v.Impact++
	case elo.CriterionEase:
		v.Ease++
	case elo.CriterionConfidence:
		v.Confidence++
	default:
		return
	}
	v.Total++
}

// Settings controls which criteria a battle compares and how results behave.
type Settings struct {
	CompareImpact      bool `json:"compare_impact"`
	CompareEase        bool `json:"compare_ease"`
	CompareConfidence  bool `json:"compare_confidence"`
	AllowMultipleVotes bool `json:"allow_multiple_votes"`
	ShowResults        bool `json:"show_results"`
}

// DefaultSettings enables all three criteria with visible results.
func DefaultSettings() Settings {
	return Settings{
		CompareImpact:     true,
		CompareEase:       true,
		CompareConfidence: true,
		ShowResults:       true,
	}
}

// ActiveCriteria returns the enabled criteria in rotation order.
func (s Settings) ActiveCriteria() []elo.Criterion {
	var criteria []elo.Criterion
	if s.CompareImpact {
		criteria = append(criteria, elo.CriterionImpact)
	}
	if s.CompareEase {
		criteria = append(criteria, elo.CriterionEase)
	}
	if s.CompareConfidence {
		criteria = append(criteria, elo.CriterionConfidence)
	}
	return criteria
}

// Creation is the caller-supplied portion of a battle. Settings fields are
// pointers so an omitted field falls back to its default rather than false.
type Creation struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Features    []string `json:"features"`
	Settings    *SettingsPatch `json:"settings,omitempty"`
}

// SettingsPatch is a partial Settings where nil means "use the default".
type SettingsPatch struct {
	CompareImpact      *bool `json:"compare_impact,omitempty"`
	CompareEase        *bool `json:"compare_ease,omitempty"`
	CompareConfidence  *bool `json:"compare_confidence,omitempty"`
	AllowMultipleVotes *bool `json:"allow_multiple_votes,omitempty"`
	ShowResults        *bool `json:"show_results,omitempty"`
}

// resolve merges a patch over the defaults.
func (p *SettingsPatch) resolve() Settings {
	s := DefaultSettings()
	if p == nil {
		return s
	}
	if p.CompareImpact != nil {
		s.CompareImpact = *p.CompareImpact
	}
	if p.CompareEase != nil {
		s.CompareEase = *p.CompareEase
	}
	if p.CompareConfidence != nil {
		s.CompareConfidence = *p.CompareConfidence
	}
	if p.AllowMultipleVotes != nil {
		s.AllowMultipleVotes = *p.AllowMultipleVotes
	}
	if p.ShowResults != nil {
		s.ShowResults = *p.ShowResults
	}
	return s
}

// Validate checks a creation request and normalizes its feature names.
func (c *Creation) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return ErrTitleRequired
	}

	cleaned := make([]string, 0, len(c.Features))
	seen := make(map[string]bool, len(c.Features))
	for _, f := range c.Features {
		f = strings.TrimSpace(f)
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		cleaned = append(cleaned, f)
	}
	if len(cleaned) < 2 {
		return ErrInsufficientFeatures
	}
	c.Features = cleaned
	return nil
}

// Battle is the full shared comparison state for one feature set.
type Battle struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description,omitempty"`
	Features        []string               `json:"features"`
	Votes           map[string]*VoteTally  `json:"votes"`
	Ratings         map[string]elo.Ratings `json:"ratings"`
	CreatedAt       int64                  `json:"created_at"`
	ComparisonCount int                    `json:"comparison_count"`
	TotalVisitors   int                    `json:"total_visitors"`
	Settings        Settings               `json:"settings"`
}

// New builds a battle from a validated creation request, assigning an id and
// zeroed tallies plus default ratings for every feature.
func New(c Creation) *Battle {
	b := &Battle{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(c.Title),
		Description: c.Description,
		Features:    c.Features,
		Votes:       make(map[string]*VoteTally, len(c.Features)),
		Ratings:     make(map[string]elo.Ratings, len(c.Features)),
		CreatedAt:   time.Now().UnixMilli(),
		Settings:    c.Settings.resolve(),
	}
	for _, f := range c.Features {
		b.Votes[f] = &VoteTally{}
		b.Ratings[f] = defaultRatings()
	}
	return b
}

func defaultRatings() elo.Ratings {
	return elo.Ratings{
		Impact:     elo.DefaultInitialRating,
		Ease:       elo.DefaultInitialRating,
		Confidence: elo.DefaultInitialRating,
	}
}

// ApplyUpdate replaces the mutable fields of a battle from a validated
// creation request. Tallies and ratings for surviving features are preserved;
// new features start from zero. The id, creation time, visitor count, and
// comparison count are untouched.
func (b *Battle) ApplyUpdate(c Creation) {
	votes := make(map[string]*VoteTally, len(c.Features))
	ratings := make(map[string]elo.Ratings, len(c.Features))
	for _, f := range c.Features {
		if tally, ok := b.Votes[f]; ok {
			votes[f] = tally
		} else {
			votes[f] = &VoteTally{}
		}
		if r, ok := b.Ratings[f]; ok {
			ratings[f] = r
		} else {
			ratings[f] = defaultRatings()
		}
	}

	b.Title = strings.TrimSpace(c.Title)
	b.Description = c.Description
	b.Features = c.Features
	b.Votes = votes
	b.Ratings = ratings
	b.Settings = c.Settings.resolve()
}

// ApplyVote records a decisive comparison: the winner's tally grows and both
// sides' ratings move by the standard update. Battle votes are always
// non-draw.
func (b *Battle) ApplyVote(winner, loser string, criterion elo.Criterion) error {
	if winner == loser {
		return ErrSelfVote
	}
	winnerTally, ok := b.Votes[winner]
	if !ok {
		return ErrFeatureNotInBattle
	}
	if _, ok := b.Votes[loser]; !ok {
		return ErrFeatureNotInBattle
	}

	winnerRatings := b.Ratings[winner]
	loserRatings := b.Ratings[loser]
	newWinner, newLoser := elo.UpdateRatings(
		winnerRatings.Get(criterion), loserRatings.Get(criterion), elo.DefaultKFactor)
	winnerRatings.Set(criterion, newWinner)
	loserRatings.Set(criterion, newLoser)
	b.Ratings[winner] = winnerRatings
	b.Ratings[loser] = loserRatings

	winnerTally.increment(criterion)
	b.ComparisonCount++
	return nil
}
