package model

// Assessment is the scored breakdown of one submitted repository.
type Assessment struct {
	Name         string   `json:"name"`
	Framework    string   `json:"framework"`
	Topic        string   `json:"topic"`
	Description  string   `json:"description"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	CurrentScore float64  `json:"current_score"`
}

// RelatedRecord is a compact view of a stored winner.
type RelatedRecord struct {
	Name      string  `json:"name"`
	Framework string  `json:"framework"`
	Topic     string  `json:"topic"`
	Score     float64 `json:"score"`
}

// MaxRelated bounds the related winners returned with an analysis.
const MaxRelated = 8

// AnalysisResult compares a submitted project against stored winners.
type AnalysisResult struct {
	Success        bool            `json:"success"`
	Assessment     Assessment      `json:"project_analysis"`
	Suggestions    string          `json:"suggestions"`
	RelatedWinners []RelatedRecord `json:"related_winners"`
	HackathonName  string          `json:"hackathon_name"`
	HackathonTheme string          `json:"hackathon_theme"`
}

// RepoProfile is what the analyzer extracts from a repository before archival.
type RepoProfile struct {
	Name        string  `json:"name"`
	Framework   string  `json:"framework"`
	Topic       string  `json:"topic"`
	Description string  `json:"descriptions"`
	Score       float64 `json:"ai_score"`
	Reasoning   string  `json:"ai_reasoning"`
}
