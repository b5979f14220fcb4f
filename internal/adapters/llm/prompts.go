package llm

import (
	"fmt"
	"strings"

	"github.com/okian/hackwreck/internal/domain/model"
)

const repoPrompt = `
Analyze this GitHub repository: %s.
The project was a '%s' in a hackathon.
Extract the following information and return it ONLY as a JSON object:
{
    "name": "Project Name",
    "framework": "Primary Framework/Languages",
    "topic": "Category like AI, FinTech, etc.",
    "descriptions": "A 2-sentence summary of what it does",
    "ai_score": 0.0,
    "ai_reasoning": "Explanation for the score"
}

For ai_score, rate the project's "winning potential" from 0.0 to 10.0 based on:
- Innovation and creativity
- Technical complexity
- Practicality and real-world impact
- Code quality and documentation
- Presentation/README clarity

For ai_reasoning, provide a 2-3 sentence explanation of why you gave that score.
`

const assessmentPrompt = `
Analyze this GitHub repository: %s

Extract and return ONLY a JSON object:
{
    "name": "Project Name",
    "framework": "Primary Framework/Languages used",
    "topic": "Category (AI, FinTech, HealthTech, etc.)",
    "description": "2-3 sentence summary of what it does",
    "strengths": ["strength1", "strength2", "strength3"],
    "weaknesses": ["weakness1", "weakness2", "weakness3"],
    "current_score": 0.0
}

Rate current_score from 0.0 to 10.0 based on hackathon-readiness.
`

const suggestionFormat = `
Create a SLEEK, SCANNABLE improvement plan. Be EXTREMELY concise - no paragraphs, only bullet points.
Search the web to find relevant tutorials, documentation, and resources.

Format your response EXACTLY like this:

## STATUS: X/10 → Y/10
*One sentence: biggest gap vs winners*

---

## PHASE 1: QUICK WINS (2-4h)

**Task**: Brief 5-word description
→ [Resource name](URL)

## PHASE 2: CORE IMPROVEMENTS (4-8h)

**Task**: Brief 5-word description
→ [Resource name](URL)

## PHASE 3: POLISH (2-4h)

**Task**: Brief 5-word description
→ [Resource name](URL)

---

## WINNER PATTERNS
- Short insight 1
- Short insight 2
- Short insight 3

## YOUR PITCH
*2 sentences max. Make it compelling.*

---

CRITICAL: Keep tasks to 5-7 words max. Use real URLs. No fluff.
`

const trendsFormat = `
Format your response EXACTLY like this:

## WHAT WINNERS DO

| Pattern | Example from Data |
|---------|------------------|
| Pattern 1 | "Project X did this..." |
| Pattern 2 | "Project Y shows..." |

## WHAT LOSERS DO

| Mistake | Why It Fails |
|---------|-------------|
| Mistake 1 | Brief reason |

## YOUR IDEA: VERDICT

**Score: X/10**

### Strengths (What Sets You Apart)
- Strength 1

### Gaps (What's Missing vs Winners)
- Gap 1 - How to fix

## TOP 3 ACTIONS

1. **Action 1**: One sentence max
2. **Action 2**: One sentence max
3. **Action 3**: One sentence max

## YOUR WINNING PITCH
> Write a 2-sentence pitch they should use based on winner patterns.

Be brutally honest. Reference specific projects from the data. No fluff.
`

const wreckPrompt = `
You are a hackathon veteran. Invent ONE original, buildable-in-a-weekend hackathon idea.
Pick a random category and a modern framework. Return Markdown only, formatted EXACTLY like this:

## IDEA: Catchy Name
*One-line hook*

### The Problem
- 2 bullets max

### The Build
| Layer | Choice |
|-------|--------|
| Frontend | ... |
| Backend | ... |
| AI/Data | ... |

### 48-Hour Plan
1. **Hours 0-12**: ...
2. **Hours 12-36**: ...
3. **Hours 36-48**: ...

### Why Judges Will Love It
- 3 bullets max

No fluff.
`

func buildRepoPrompt(url, place string) string {
	return fmt.Sprintf(repoPrompt, url, place)
}

func buildAssessmentPrompt(url string) string {
	return fmt.Sprintf(assessmentPrompt, url)
}

func buildSuggestionPrompt(in SuggestionInput) string {
	a := in.Assessment
	theme := in.HackathonTheme
	if theme == "" {
		theme = "General"
	}
	var b strings.Builder
	b.WriteString("\nYou are a hackathon coach. A developer wants to enter their project into a hackathon ")
	b.WriteString("and needs advice on how to improve it to maximize their chances of winning.\n\n")
	b.WriteString("## HACKATHON DETAILS\n")
	fmt.Fprintf(&b, "- **Hackathon Name**: %s\n- **Theme/Track**: %s\n\n", in.HackathonName, theme)
	b.WriteString("## USER'S CURRENT PROJECT\n")
	fmt.Fprintf(&b, "- **Name**: %s\n", orDefault(a.Name, "Unknown"))
	fmt.Fprintf(&b, "- **Framework**: %s\n", orDefault(a.Framework, "Unknown"))
	fmt.Fprintf(&b, "- **Category**: %s\n", orDefault(a.Topic, "Unknown"))
	fmt.Fprintf(&b, "- **Description**: %s\n", orDefault(a.Description, "No description"))
	fmt.Fprintf(&b, "- **Current Score**: %.1f/10\n", a.CurrentScore)
	fmt.Fprintf(&b, "- **Strengths**: %s\n", strings.Join(a.Strengths, ", "))
	fmt.Fprintf(&b, "- **Weaknesses**: %s\n\n", strings.Join(a.Weaknesses, ", "))
	b.WriteString("## WINNING PROJECTS WITH SIMILAR FRAMEWORK OR CATEGORY\n")
	b.WriteString(winnerList(in.Related))
	b.WriteString("\n## TOP WINNING PROJECTS OVERALL\n")
	b.WriteString(winnerList(in.TopWinners))
	b.WriteString("\n## MOST SUCCESSFUL FRAMEWORKS\n")
	b.WriteString(frameworkList(in.TopFrameworks, "No data"))
	b.WriteString("\n\n---\n")
	b.WriteString(suggestionFormat)
	return b.String()
}

func buildTrendsPrompt(in TrendInput) string {
	var b strings.Builder
	b.WriteString("\nYou are a hackathon judge. Analyze the database and give DIRECT, CONCISE answers.\n\n")
	b.WriteString("## DATABASE STATS\n")
	fmt.Fprintf(&b, "### Database Statistics\n- **Total Projects**: %d\n- **Total Winners**: %d\n- **Average Winner Score**: %.1f/10\n\n",
		in.Stats.TotalProjects, in.Stats.TotalWinners, in.Stats.AvgWinnerScore)
	b.WriteString("### Top Winning Frameworks\n")
	b.WriteString(frameworkList(in.Stats.TopFrameworks, "No data yet"))
	b.WriteString("\n\n### Top Winning Categories\n")
	b.WriteString(categoryList(in.Stats.TopCategories, "No data yet"))
	fmt.Fprintf(&b, "\n\n## WINNERS IN '%s' CATEGORY\n", in.Category)
	b.WriteString(projectTable(in.CategoryWinners, fmt.Sprintf("Winners in '%s' Category", in.Category)))
	b.WriteString("\n## OTHER TOP WINNERS\n")
	b.WriteString(projectTable(in.OtherWinners, "Top Winners in Other Categories"))
	b.WriteString("\n## NON-WINNERS (FOR COMPARISON)\n")
	b.WriteString(projectTable(in.Participants, "Sample Participants (Non-Winners)"))
	b.WriteString("\n## USER'S IDEA\n")
	fmt.Fprintf(&b, "- Category: %s\n- Framework: %s\n- Description: %s\n\n---\n", in.Category, in.Framework, in.Description)
	b.WriteString(trendsFormat)
	return b.String()
}

func winnerList(ps []model.Project) string {
	if len(ps) == 0 {
		return "No matching winners found.\n"
	}
	var b strings.Builder
	for _, p := range ps {
		fmt.Fprintf(&b, "\n- **%s** (%s) - Score: %s/10\n  Framework: %s\n  %s\n", p.Name, p.Topic, score(p), p.Framework, p.Description)
	}
	return b.String()
}

func projectTable(ps []model.Project, title string) string {
	if len(ps) == 0 {
		return fmt.Sprintf("### %s\nNo projects found.\n", title)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n", title)
	b.WriteString("| Name | Framework | Category | Score | Description | Reasoning |\n")
	b.WriteString("|------|-----------|----------|-------|-------------|----------|\n")
	for _, p := range ps {
		fmt.Fprintf(&b, "| %s | %s | %s | %s/10 | %s | %s |\n",
			p.Name, p.Framework, p.Topic, score(p), clip(p.Description, 80), clip(p.Reasoning, 60))
	}
	return b.String()
}

func frameworkList(fs []model.FrameworkCount, empty string) string {
	if len(fs) == 0 {
		return empty
	}
	lines := make([]string, 0, len(fs))
	for _, f := range fs {
		lines = append(lines, fmt.Sprintf("- %s: %d wins", f.Framework, f.Count))
	}
	return strings.Join(lines, "\n")
}

func categoryList(cs []model.CategoryCount, empty string) string {
	if len(cs) == 0 {
		return empty
	}
	lines := make([]string, 0, len(cs))
	for _, c := range cs {
		lines = append(lines, fmt.Sprintf("- %s: %d wins", c.Category, c.Count))
	}
	return strings.Join(lines, "\n")
}

// clip shortens s to n runes with an ellipsis; blank becomes N/A.
func clip(s string, n int) string {
	if s == "" {
		return "N/A"
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

func score(p model.Project) string {
	if p.Score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *p.Score)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
