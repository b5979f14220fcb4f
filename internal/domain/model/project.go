// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// Score bounds for AI-assigned winning-potential ratings.
const (
	MinScore = 0.0
	MaxScore = 10.0
)

// Sentinel errors for record validation.
var (
	ErrUnknownOutcome = errors.New("unknown outcome")
	ErrScoreRange     = errors.New("score out of range")
	ErrEmptyName      = errors.New("project name is empty")
)

// Outcome classifies a project as a winner or a participant.
type Outcome string

const (
	OutcomeWinner      Outcome = "winner"
	OutcomeParticipant Outcome = "participant"
)

// ParseOutcome accepts any casing of "winner" or "participant".
// A place string that merely contains "winner" (e.g. "1st Place Winner") also
// classifies as a winner, matching how stored records are queried.
func ParseOutcome(s string) (Outcome, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == string(OutcomeParticipant):
		return OutcomeParticipant, nil
	case strings.Contains(v, string(OutcomeWinner)):
		return OutcomeWinner, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownOutcome, s)
}

// Place is the stored and on-the-wire form: "Winner" or "Participant".
func (o Outcome) Place() string {
	switch o {
	case OutcomeWinner:
		return "Winner"
	case OutcomeParticipant:
		return "Participant"
	}
	return ""
}

// IsWinner reports whether o is the winner outcome.
func (o Outcome) IsWinner() bool { return o == OutcomeWinner }

// Project is one catalogued hackathon project.
// JSON names follow the persisted column names.
type Project struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Framework   string   `json:"framework"`
	GitHubLink  string   `json:"githubLink"`
	Place       string   `json:"place"`
	Topic       string   `json:"topic"`
	Description string   `json:"descriptions"`
	Score       *float64 `json:"ai_score"`
	Reasoning   string   `json:"ai_reasoning"`
}

// Outcome derives the binary classification from Place.
func (p Project) Outcome() Outcome {
	if o, err := ParseOutcome(p.Place); err == nil {
		return o
	}
	return OutcomeParticipant
}

// Validate checks the record invariants: a name, a known outcome and a score in [0,10].
func (p Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if _, err := ParseOutcome(p.Place); err != nil {
		return err
	}
	if p.Score != nil && (*p.Score < MinScore || *p.Score > MaxScore) {
		return fmt.Errorf("%w: %v", ErrScoreRange, *p.Score)
	}
	return nil
}

// ScoreValue returns the score, or zero when absent.
func (p Project) ScoreValue() float64 {
	if p.Score == nil {
		return 0
	}
	return *p.Score
}

// Float is a helper for building optional scores.
func Float(v float64) *float64 { return &v }

// FrameworkCount is one row of the top-frameworks breakdown.
type FrameworkCount struct {
	Framework string `json:"framework"`
	Count     int    `json:"count"`
}

// CategoryCount is one row of the top-categories breakdown.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// Stats holds aggregate counters over the catalogue.
type Stats struct {
	TotalProjects     int              `json:"total_projects"`
	TotalWinners      int              `json:"total_winners"`
	TotalParticipants int              `json:"total_participants"`
	AvgWinnerScore    float64          `json:"avg_winner_score"`
	TopFrameworks     []FrameworkCount `json:"top_frameworks"`
	TopCategories     []CategoryCount  `json:"top_categories"`
}
