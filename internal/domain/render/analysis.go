package render

import (
	"fmt"
	"strings"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/scoring"
)

// Badge is the headline score of an analysis.
type Badge struct {
	Score float64
	Label string
	Tier  scoring.Tier
}

// GridRow is one key/value line of the summary grid.
type GridRow struct {
	Key   string
	Value string
}

// AnalysisView is the display form of a project-optimization result.
type AnalysisView struct {
	Badge       Badge
	Grid        []GridRow
	Strengths   []string
	Weaknesses  []string
	Suggestions Document
	Related     []model.RelatedRecord
	// ShowRelated is false when there are no related winners to show.
	ShowRelated bool
}

// Analysis builds the view for r. Missing strength and weakness lists render
// as empty lists and related winners are capped at model.MaxRelated.
func Analysis(r model.AnalysisResult) AnalysisView {
	a := r.Assessment
	score := scoring.Clamp(a.CurrentScore)
	theme := r.HackathonTheme
	if strings.TrimSpace(theme) == "" {
		theme = "General"
	}

	related := r.RelatedWinners
	if len(related) > model.MaxRelated {
		related = related[:model.MaxRelated]
	}

	return AnalysisView{
		Badge: Badge{
			Score: score,
			Label: fmt.Sprintf("%.1f/10", score),
			Tier:  scoring.TierOf(score),
		},
		Grid: []GridRow{
			{Key: "Name", Value: orDash(a.Name)},
			{Key: "Framework", Value: orDash(a.Framework)},
			{Key: "Topic", Value: orDash(a.Topic)},
			{Key: "Hackathon", Value: orDash(r.HackathonName)},
			{Key: "Theme", Value: theme},
			{Key: "Description", Value: orDash(a.Description)},
		},
		Strengths:   nonNil(a.Strengths),
		Weaknesses:  nonNil(a.Weaknesses),
		Suggestions: Markdown(r.Suggestions),
		Related:     nonNilRelated(related),
		ShowRelated: len(related) > 0,
	}
}

// Text renders the view as plain text.
func (v AnalysisView) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Score %s (%s)\n\n", v.Badge.Label, v.Badge.Tier)
	for _, row := range v.Grid {
		fmt.Fprintf(&sb, "%-12s %s\n", row.Key+":", row.Value)
	}
	writeList(&sb, "Strengths", v.Strengths)
	writeList(&sb, "Weaknesses", v.Weaknesses)
	if v.ShowRelated {
		sb.WriteString("\nRelated winners\n")
		for _, r := range v.Related {
			fmt.Fprintf(&sb, "  %s  [%s · %s]  %.1f/10\n", r.Name, orDash(r.Framework), orDash(r.Topic), r.Score)
		}
	}
	if s := v.Suggestions.Text(); s != "" {
		sb.WriteString("\nSuggestions\n\n")
		sb.WriteString(s)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func writeList(sb *strings.Builder, title string, items []string) {
	fmt.Fprintf(sb, "\n%s\n", title)
	if len(items) == 0 {
		sb.WriteString("  (none)\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(sb, "  • %s\n", it)
	}
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilRelated(s []model.RelatedRecord) []model.RelatedRecord {
	if s == nil {
		return []model.RelatedRecord{}
	}
	return s
}
