package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one saved camera analysis. Entries are immutable once
// created - re-analyzing saves a new entry rather than mutating the old one.
type HistoryEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`

	// Summary is the first lines of the analysis for list rendering;
	// Analysis is the full markdown text.
	Summary  string `json:"summary" db:"summary"`
	Analysis string `json:"analysis" db:"analysis"`

	// ImageKey is the storage object key of the analyzed photo; ImageURL is
	// its public URL. The object is deleted best-effort when the entry is.
	ImageKey string `json:"-" db:"image_key"`
	ImageURL string `json:"image_url" db:"image_url"`

	IsPersonalized bool `json:"is_personalized" db:"is_personalized"`

	// PreferenceSnapshot captures the preference set active at analysis
	// time, nil for basic analyses.
	PreferenceSnapshot *UserPreference `json:"preference_snapshot,omitempty" db:"preference_snapshot"`
}

// summaryMaxRunes bounds the list-view summary.
const summaryMaxRunes = 120

// Summarize derives the list-view summary from the full analysis text.
func Summarize(analysis string) string {
	runes := []rune(analysis)
	for i, r := range runes {
		if r == '\n' {
			runes = runes[:i]
			break
		}
	}
	if len(runes) > summaryMaxRunes {
		runes = runes[:summaryMaxRunes]
	}
	return string(runes)
}
