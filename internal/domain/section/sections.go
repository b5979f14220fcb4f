package section

import (
	"context"
	"strings"
	"sync"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/internal/domain/validate"
)

// Section names, also used as metric labels.
const (
	NameStats      = "stats"
	NameSubmission = "submission"
	NameSearch     = "search"
	NameTrends     = "trends"
	NameOptimize   = "optimize"
)

// Field names.
const (
	FieldGitHubURL      = "github_url"
	FieldShowcaseURL    = "showcase_url"
	FieldStatus         = "status"
	FieldQuery          = "query"
	FieldCategory       = "category"
	FieldFramework      = "framework"
	FieldDescription    = "description"
	FieldHackathonName  = "hackathon_name"
	FieldHackathonTheme = "hackathon_theme"
)

// API is the subset of the HTTP client the sections call.
type API interface {
	Stats(ctx context.Context) (model.Stats, error)
	Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error)
	Insert(ctx context.Context, req model.InsertRequest) (model.InsertResponse, error)
	Trends(ctx context.Context, req model.TrendRequest) (model.TrendResponse, error)
	AnalyzeProject(ctx context.Context, req model.AnalyzeRequest) (model.AnalysisResult, error)
}

// NoInput is the request type of sections without fields.
type NoInput struct{}

// NewStats builds the aggregate-stats loader. Callers submit it on mount and
// again after every successful archival.
func NewStats(api API) *Machine[NoInput, model.Stats] {
	return New(Definition[NoInput, model.Stats]{
		Name:  NameStats,
		Build: func(map[string]string) NoInput { return NoInput{} },
		Call: func(ctx context.Context, _ NoInput) (model.Stats, error) {
			return api.Stats(ctx)
		},
	})
}

// NewSubmission builds the archival section. Inputs reset after success and
// onSuccess (typically a stats refresh) runs afterwards.
func NewSubmission(api API, onSuccess func(ctx context.Context)) *Machine[model.InsertRequest, model.InsertResponse] {
	return New(Definition[model.InsertRequest, model.InsertResponse]{
		Name: NameSubmission,
		Fields: []Field{
			{Name: FieldGitHubURL, Label: "GitHub URL", Required: true, Validate: validate.GitHubRepo, Live: true},
			{Name: FieldShowcaseURL, Label: "Devpost URL", Validate: validate.ShowcaseLink, Live: true},
			{Name: FieldStatus, Label: "Status", Required: true, Default: model.OutcomeWinner.Place(),
				Validate: validate.OneOf("Status", model.OutcomeWinner.Place(), model.OutcomeParticipant.Place())},
		},
		Build: func(v map[string]string) model.InsertRequest {
			status := model.OutcomeParticipant.Place()
			if o, err := model.ParseOutcome(v[FieldStatus]); err == nil {
				status = o.Place()
			}
			return model.InsertRequest{GitHubURL: strings.TrimSpace(v[FieldGitHubURL]), Status: status}
		},
		Call: func(ctx context.Context, req model.InsertRequest) (model.InsertResponse, error) {
			res, err := api.Insert(ctx, req)
			if err != nil {
				return res, err
			}
			if !res.Success {
				return res, &RejectedError{Message: res.Message}
			}
			return res, nil
		},
		ResetOnSuccess: true,
		OnSuccess: func(ctx context.Context, _ model.InsertResponse) {
			if onSuccess != nil {
				onSuccess(ctx)
			}
		},
	})
}

// NewSearch builds the free-text search section.
func NewSearch(api API) *Machine[model.SearchRequest, model.SearchResponse] {
	return New(Definition[model.SearchRequest, model.SearchResponse]{
		Name: NameSearch,
		Fields: []Field{
			{Name: FieldQuery, Label: "Search query", Required: true},
		},
		Build: func(v map[string]string) model.SearchRequest {
			return model.SearchRequest{Query: strings.TrimSpace(v[FieldQuery])}
		},
		Call: api.Search,
	})
}

// NewTrends builds the trend-analysis section.
func NewTrends(api API) *Machine[model.TrendRequest, model.TrendResponse] {
	return New(Definition[model.TrendRequest, model.TrendResponse]{
		Name: NameTrends,
		Fields: []Field{
			{Name: FieldCategory, Label: "Category", Required: true},
			{Name: FieldFramework, Label: "Framework", Required: true},
			{Name: FieldDescription, Label: "Description", Required: true},
		},
		Build: func(v map[string]string) model.TrendRequest {
			return model.TrendRequest{
				Category:    strings.TrimSpace(v[FieldCategory]),
				Framework:   strings.TrimSpace(v[FieldFramework]),
				Description: strings.TrimSpace(v[FieldDescription]),
			}
		},
		Call: api.Trends,
	})
}

// NewOptimize builds the project-optimization section.
func NewOptimize(api API) *Machine[model.AnalyzeRequest, model.AnalysisResult] {
	return New(Definition[model.AnalyzeRequest, model.AnalysisResult]{
		Name: NameOptimize,
		Fields: []Field{
			{Name: FieldGitHubURL, Label: "GitHub URL", Required: true, Validate: validate.GitHubRepo, Live: true},
			{Name: FieldHackathonName, Label: "Hackathon name", Required: true},
			{Name: FieldHackathonTheme, Label: "Theme"},
		},
		Build: func(v map[string]string) model.AnalyzeRequest {
			return model.AnalyzeRequest{
				GitHubURL:      strings.TrimSpace(v[FieldGitHubURL]),
				HackathonName:  strings.TrimSpace(v[FieldHackathonName]),
				HackathonTheme: strings.TrimSpace(v[FieldHackathonTheme]),
			}
		},
		Call: api.AnalyzeProject,
	})
}

// Shell groups the sections of one client session. The only cross-section
// link is the stats refresh after a successful archival.
type Shell struct {
	Stats      *Machine[NoInput, model.Stats]
	Submission *Machine[model.InsertRequest, model.InsertResponse]
	Search     *Machine[model.SearchRequest, model.SearchResponse]
	Trends     *Machine[model.TrendRequest, model.TrendResponse]
	Optimize   *Machine[model.AnalyzeRequest, model.AnalysisResult]

	mu         sync.Mutex
	refreshCtx context.Context // non-nil while a stats refresh is queued
}

// NewShell wires all sections against api.
func NewShell(api API) *Shell {
	s := &Shell{
		Stats:    NewStats(api),
		Search:   NewSearch(api),
		Trends:   NewTrends(api),
		Optimize: NewOptimize(api),
	}
	s.Submission = NewSubmission(api, s.RefreshStats)
	s.Stats.OnTransition(func(_ string, from, _ Phase) {
		if from != Submitting {
			return
		}
		if ctx, ok := s.takeRefresh(); ok {
			s.RefreshStats(ctx)
		}
	})
	return s
}

// RefreshStats reloads the stats. A refresh requested while a load is in
// flight is queued and runs once that load settles; repeated requests in the
// meantime collapse into one.
func (s *Shell) RefreshStats(ctx context.Context) {
	for !s.Stats.Submit(ctx) {
		s.mu.Lock()
		s.refreshCtx = ctx
		s.mu.Unlock()
		if s.Stats.InFlight() {
			return
		}
		// The load settled before the request was queued.
		if _, ok := s.takeRefresh(); !ok {
			return
		}
	}
}

func (s *Shell) takeRefresh() (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctx := s.refreshCtx
	s.refreshCtx = nil
	return ctx, ctx != nil
}

// Observe registers fn on every section.
func (s *Shell) Observe(fn Transition) {
	s.Stats.OnTransition(fn)
	s.Submission.OnTransition(fn)
	s.Search.OnTransition(fn)
	s.Trends.OnTransition(fn)
	s.Optimize.OnTransition(fn)
}
