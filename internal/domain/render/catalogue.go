package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/okian/hackwreck/internal/domain/model"
)

// maxCellWidth truncates long descriptions in project tables.
const maxCellWidth = 48

// Projects renders a project list as a bordered table.
func Projects(projects []model.Project) string {
	if len(projects) == 0 {
		return "No projects found."
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "Name", "Outcome", "Framework", "Topic", "Score", "Description")
	for _, p := range projects {
		score := "-"
		if p.Score != nil {
			score = fmt.Sprintf("%.1f", *p.Score)
		}
		t.Row(
			fmt.Sprintf("%d", p.ID),
			p.Name,
			p.Outcome().Place(),
			orDash(p.Framework),
			orDash(p.Topic),
			score,
			truncate(orDash(p.Description), maxCellWidth),
		)
	}
	return t.String()
}

// StatsLine renders the aggregate counters on one line.
func StatsLine(s model.Stats) string {
	return fmt.Sprintf("%d projects · %d winners · %d participants · avg winner score %.1f",
		s.TotalProjects, s.TotalWinners, s.TotalParticipants, s.AvgWinnerScore)
}

// StatsDetail renders counters plus the top framework and category breakdowns.
func StatsDetail(s model.Stats) string {
	var sb strings.Builder
	sb.WriteString(StatsLine(s))
	if len(s.TopFrameworks) > 0 {
		sb.WriteString("\n\nTop frameworks\n")
		for _, f := range s.TopFrameworks {
			fmt.Fprintf(&sb, "  %-24s %d\n", f.Framework, f.Count)
		}
	}
	if len(s.TopCategories) > 0 {
		sb.WriteString("\nTop categories\n")
		for _, c := range s.TopCategories {
			fmt.Fprintf(&sb, "  %-24s %d\n", c.Category, c.Count)
		}
	}
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
