package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/scoring"
)

// ExtractJSON strips a ```json (or bare ```) fence around a model answer.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)
	for _, fence := range []string{"```json", "```"} {
		start := strings.Index(text, fence)
		if start < 0 {
			continue
		}
		body := text[start+len(fence):]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		return strings.TrimSpace(body)
	}
	return text
}

// flexFloat accepts 7.5, "7.5" and "7.5/10".
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	s, _, _ = strings.Cut(s, "/")
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("score %s: %w", b, err)
	}
	*f = flexFloat(v)
	return nil
}

type repoAnswer struct {
	Name        string    `json:"name"`
	Framework   string    `json:"framework"`
	Topic       string    `json:"topic"`
	Description string    `json:"descriptions"`
	Score       flexFloat `json:"ai_score"`
	Reasoning   string    `json:"ai_reasoning"`
}

type assessmentAnswer struct {
	Name         string    `json:"name"`
	Framework    string    `json:"framework"`
	Topic        string    `json:"topic"`
	Description  string    `json:"description"`
	Strengths    []string  `json:"strengths"`
	Weaknesses   []string  `json:"weaknesses"`
	CurrentScore flexFloat `json:"current_score"`
}

func decode(text string, v any) error {
	if err := json.Unmarshal([]byte(ExtractJSON(text)), v); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedJSON, err)
	}
	return nil
}

// ParseRepoProfile decodes an analyze-repository answer; the score is clamped to [0, 10].
func ParseRepoProfile(text string) (model.RepoProfile, error) {
	var a repoAnswer
	if err := decode(text, &a); err != nil {
		return model.RepoProfile{}, err
	}
	return model.RepoProfile{
		Name:        strings.TrimSpace(a.Name),
		Framework:   a.Framework,
		Topic:       a.Topic,
		Description: a.Description,
		Score:       scoring.Clamp(float64(a.Score)),
		Reasoning:   a.Reasoning,
	}, nil
}

// ParseAssessment decodes a readiness answer; missing lists become empty slices.
func ParseAssessment(text string) (model.Assessment, error) {
	var a assessmentAnswer
	if err := decode(text, &a); err != nil {
		return model.Assessment{}, err
	}
	out := model.Assessment{
		Name:         a.Name,
		Framework:    a.Framework,
		Topic:        a.Topic,
		Description:  a.Description,
		Strengths:    a.Strengths,
		Weaknesses:   a.Weaknesses,
		CurrentScore: scoring.Clamp(float64(a.CurrentScore)),
	}
	if out.Strengths == nil {
		out.Strengths = []string{}
	}
	if out.Weaknesses == nil {
		out.Weaknesses = []string{}
	}
	return out, nil
}
