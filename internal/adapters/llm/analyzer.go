// Package llm talks to Gemini for repository analysis, trend narratives,
// improvement plans, idea pitches and speech synthesis.
package llm

import (
	"context"

	"github.com/okian/hackwreck/internal/domain/model"
)

// Operation labels used for metrics and logs.
const (
	OpAnalyzeRepo   = "analyze_repo"
	OpAssessProject = "assess_project"
	OpSuggest       = "suggest"
	OpTrends        = "trends"
	OpWreckMe       = "wreck_me"
	OpSpeak         = "speak"
	OpPing          = "ping"
)

// Analyzer is the model-backed half of the service.
type Analyzer interface {
	// AnalyzeRepo reads the repository at url and profiles it for the catalogue.
	AnalyzeRepo(ctx context.Context, url, place string) (model.RepoProfile, error)
	// AssessProject rates a repository's hackathon readiness.
	AssessProject(ctx context.Context, url string) (model.Assessment, error)
	// Suggest writes a markdown improvement plan.
	Suggest(ctx context.Context, in SuggestionInput) (string, error)
	// Trends writes a markdown verdict on an idea against catalogue data.
	Trends(ctx context.Context, in TrendInput) (string, error)
	// WreckMe pitches a random hackathon idea in markdown.
	WreckMe(ctx context.Context) (string, error)
	// Speak synthesizes text and returns a WAV file.
	Speak(ctx context.Context, text string) ([]byte, error)
	Ping(ctx context.Context) error
}

// TrendInput is the catalogue context handed to the trends prompt.
type TrendInput struct {
	Category        string
	Framework       string
	Description     string
	CategoryWinners []model.Project
	OtherWinners    []model.Project
	Participants    []model.Project
	Stats           model.Stats
}

// SuggestionInput is the context handed to the improvement-plan prompt.
type SuggestionInput struct {
	HackathonName  string
	HackathonTheme string
	Assessment     model.Assessment
	Related        []model.Project
	TopWinners     []model.Project
	TopFrameworks  []model.FrameworkCount
}

// Disabled is used when no API key is configured. Every call fails with ErrNoAPIKey.
type Disabled struct{}

var _ Analyzer = Disabled{}

func (Disabled) AnalyzeRepo(context.Context, string, string) (model.RepoProfile, error) {
	return model.RepoProfile{}, ErrNoAPIKey
}

func (Disabled) AssessProject(context.Context, string) (model.Assessment, error) {
	return model.Assessment{}, ErrNoAPIKey
}

func (Disabled) Suggest(context.Context, SuggestionInput) (string, error) { return "", ErrNoAPIKey }
func (Disabled) Trends(context.Context, TrendInput) (string, error) { return "", ErrNoAPIKey }
func (Disabled) WreckMe(context.Context) (string, error) { return "", ErrNoAPIKey }
func (Disabled) Speak(context.Context, string) ([]byte, error) { return nil, ErrNoAPIKey }
func (Disabled) Ping(context.Context) error { return ErrNoAPIKey }
