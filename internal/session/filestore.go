package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/onnwee/featrank/internal/elo"
)

// File names used by FileStore inside its directory.
const (
	featuresFile  = "features.json"
	ratingsFile   = "ratings.json"
	outcomesFile  = "outcomes.json"
	completedFile = "completed"
)

// FileStore persists session state as JSON files in a directory, one file per
// concern. Missing or corrupt files degrade to empty state with a logged
// warning, so a damaged outcome log never blocks loading the feature list.
// Rating history is not safety-critical; starting fresh beats refusing to
// start.
type FileStore struct {
	dir    string
	logger *slog.Logger
}

// NewFileStore creates a file-backed store rooted at dir, creating the
// directory if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir, logger: logger}, nil
}

// readJSON unmarshals a file into v. Missing and malformed files both leave v
// untouched and return false; malformed data is logged.
func (s *FileStore) readJSON(name string, v any) bool {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("failed to read store file, treating as empty", "file", name, "error", err)
		}
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("malformed store file, treating as empty", "file", name, "error", err)
		return false
	}
	return true
}

// writeJSON marshals v and writes it to a file.
func (s *FileStore) writeJSON(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// LoadFeatures returns the ordered feature list.
func (s *FileStore) LoadFeatures() ([]string, error) {
	var features []string
	s.readJSON(featuresFile, &features)
	return features, nil
}

// SaveFeatures persists the ordered feature list.
func (s *FileStore) SaveFeatures(features []string) error {
	return s.writeJSON(featuresFile, features)
}

// LoadRatings returns the rating mapping.
func (s *FileStore) LoadRatings() (map[string]*elo.FeatureRating, error) {
	ratings := make(map[string]*elo.FeatureRating)
	s.readJSON(ratingsFile, &ratings)
	return ratings, nil
}

// SaveRatings persists the rating mapping.
func (s *FileStore) SaveRatings(ratings map[string]*elo.FeatureRating) error {
	return s.writeJSON(ratingsFile, ratings)
}

// LoadOutcomes returns the comparison log.
func (s *FileStore) LoadOutcomes() ([]Outcome, error) {
	var outcomes []Outcome
	s.readJSON(outcomesFile, &outcomes)
	return outcomes, nil
}

// AppendOutcome adds one record to the comparison log.
// The log is small enough that append rewrites the file.
func (s *FileStore) AppendOutcome(outcome Outcome) error {
	outcomes, err := s.LoadOutcomes()
	if err != nil {
		return err
	}
	return s.SaveOutcomes(append(outcomes, outcome))
}

// SaveOutcomes rewrites the comparison log.
func (s *FileStore) SaveOutcomes(outcomes []Outcome) error {
	if outcomes == nil {
		outcomes = []Outcome{}
	}
	return s.writeJSON(outcomesFile, outcomes)
}

// LoadCompletedCount returns the completed-comparison counter.
func (s *FileStore) LoadCompletedCount() (int, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, completedFile))
	if err != nil {
		return 0, nil
	}
	count, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || count < 0 {
		s.logger.Warn("malformed completed count, treating as zero", "error", err)
		return 0, nil
	}
	return count, nil
}

// SaveCompletedCount persists the completed-comparison counter.
func (s *FileStore) SaveCompletedCount(count int) error {
	path := filepath.Join(s.dir, completedFile)
	if err := os.WriteFile(path, []byte(strconv.Itoa(count)), 0o644); err != nil {
		return fmt.Errorf("failed to write completed count: %w", err)
	}
	return nil
}
