package models

import (
	"time"
)

// Word is immutable once issued to a running game. Edits in the word bank
// only affect sessions started afterwards.
type Word struct {
	ID         string   `json:"id"`
	Text       string   `json:"word"`
	Definition string   `json:"definition"`
	Usage      string   `json:"usage"`
	Synonyms   []string `json:"synonyms"`
	Antonyms   []string `json:"antonyms"`
	Etymology  string   `json:"etymology"`
	Category   string   `json:"category"`
	SourceTier string   `json:"source_tier"` // "authoritative" or "supplementary"
}

// SessionConfig is the single authoritative live-test configuration for one
// class. At most one active config per class; a new start supersedes it.
type SessionConfig struct {
	ClassID          string `json:"class_id"`
	Active           bool   `json:"active"`
	Mode             string `json:"mode"` // "standard", "rush", "unscramble", "quiz"
	GlobalTimerSecs  int    `json:"global_timer_seconds"`
	PerWordTimerSecs int    `json:"per_word_timer_seconds"`
	WordLimit        int    `json:"word_limit"`
	Generation       int64  `json:"generation"`
}

// Result is append-only: never mutated after creation.
type Result struct {
	ID            string    `json:"id"`
	ParticipantID string    `json:"participant_id"`
	ClassID       string    `json:"class_id"`
	SchoolID      string    `json:"school_id,omitempty"`
	Score         int       `json:"score"`
	Total         int       `json:"total"`
	Mode          string    `json:"mode"`
	TimeTakenSecs int       `json:"time_taken_seconds"`
	RecordedAt    time.Time `json:"recorded_at"`
}

// HasTimeTaken reports whether the result carries a usable time. A zero or
// negative time sorts as worst among score ties.
func (r Result) HasTimeTaken() bool {
	return r.TimeTakenSecs > 0
}

type RankedEntry struct {
	Rank          int    `json:"rank"`
	ParticipantID string `json:"participant_id"`
	Score         int    `json:"score"`
	Total         int    `json:"total"`
	Mode          string `json:"mode"`
	TimeTakenSecs int    `json:"time_taken_seconds"`
	Tier          string `json:"tier"`
}
