package model

// InsertRequest archives one repository. Status is "Winner" or "Participant".
type InsertRequest struct {
	GitHubURL string `json:"github_url"`
	Status    string `json:"status"`
}

// InsertResponse confirms archival. A duplicate yields Success=false.
type InsertResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ProjectName string `json:"project_name,omitempty"`
}

// SearchRequest is a free-text catalogue query.
type SearchRequest struct {
	Query string `json:"query"`
}

// SearchResponse lists matching projects.
type SearchResponse struct {
	Projects []Project `json:"projects"`
	Count    int       `json:"count"`
}

// TrendRequest describes a project idea to compare against winners.
type TrendRequest struct {
	Category    string `json:"category"`
	Framework   string `json:"framework"`
	Description string `json:"description"`
}

// TrendResponse carries markdown narrative; also used by wreck-me.
type TrendResponse struct {
	Success  bool   `json:"success"`
	Analysis string `json:"analysis"`
}

// AnalyzeRequest asks for a comparative analysis of one repository.
type AnalyzeRequest struct {
	GitHubURL      string `json:"github_url"`
	HackathonName  string `json:"hackathon_name"`
	HackathonTheme string `json:"hackathon_theme"`
}

// SpeechRequest is text to synthesize.
type SpeechRequest struct {
	Text string `json:"text"`
}

// DeleteResponse confirms removal of one record.
type DeleteResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	ProjectName string `json:"project_name,omitempty"`
}

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// BatchItem is one repository in a batch submission.
type BatchItem struct {
	GitHubURL string `json:"github_url" yaml:"github_url"`
	Status    string `json:"status" yaml:"status"`
}

// BatchRequest submits many repositories for background archival.
type BatchRequest struct {
	Items []BatchItem `json:"items" yaml:"items"`
}

// BatchState is the lifecycle of a batch job or item.
type BatchState string

const (
	BatchPending   BatchState = "pending"
	BatchRunning   BatchState = "running"
	BatchDone      BatchState = "done"
	BatchFailed    BatchState = "failed"
	BatchDuplicate BatchState = "duplicate"
)

// BatchItemResult records the outcome of one item.
type BatchItemResult struct {
	GitHubURL   string     `json:"github_url" yaml:"github_url"`
	State       BatchState `json:"state" yaml:"state"`
	ProjectName string     `json:"project_name,omitempty" yaml:"project_name,omitempty"`
	Error       string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// BatchJob is the status view of a batch submission.
type BatchJob struct {
	ID        string            `json:"id" yaml:"id"`
	State     BatchState        `json:"state" yaml:"state"`
	Total     int               `json:"total" yaml:"total"`
	Completed int               `json:"completed" yaml:"completed"`
	Items     []BatchItemResult `json:"items" yaml:"items"`
}

// IngestTask is one queued batch item awaiting archival.
type IngestTask struct {
	JobID string
	Index int
	Item  BatchItem
}
