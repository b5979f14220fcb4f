package batch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/logger"
)

// MaxChunk is the largest batch the API accepts in one submission.
const MaxChunk = 500

// API is the subset of the HTTP client a run needs.
type API interface {
	SubmitBatch(ctx context.Context, req model.BatchRequest) (model.BatchJob, error)
	BatchStatus(ctx context.Context, id string) (model.BatchJob, error)
}

// Report is the outcome of one run.
type Report struct {
	Items    []model.BatchItemResult `json:"items" yaml:"items"`
	Rejected []Rejected              `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// Count returns the number of items in state.
func (r Report) Count(state model.BatchState) int {
	n := 0
	for _, it := range r.Items {
		if it.State == state {
			n++
		}
	}
	return n
}

// Total counts submitted and rejected entries.
func (r Report) Total() int { return len(r.Items) + len(r.Rejected) }

// Summary renders the report the way an operator reads it.
func (r Report) Summary() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch insert complete: %d/%d successful", r.Count(model.BatchDone), r.Total())
	if d := r.Count(model.BatchDuplicate); d > 0 {
		fmt.Fprintf(&sb, " (%d duplicate)", d)
	}
	sb.WriteByte('\n')

	var failed []string
	for _, it := range r.Items {
		if it.State == model.BatchFailed {
			failed = append(failed, fmt.Sprintf("   - %s: %s", it.GitHubURL, it.Error))
		}
	}
	for _, rj := range r.Rejected {
		failed = append(failed, fmt.Sprintf("   - %s: %s", rj.GitHubURL, rj.Reason))
	}
	if len(failed) > 0 {
		fmt.Fprintf(&sb, "Failed (%d):\n%s\n", len(failed), strings.Join(failed, "\n"))
	}
	return sb.String()
}

// Progress is reported after every poll.
type Progress func(job model.BatchJob)

// Runner submits manifests and waits for them to settle.
type Runner struct {
	api      API
	interval time.Duration
	timeout  time.Duration
	progress Progress
	logger   logger.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterval sets the status poll interval.
func WithInterval(d time.Duration) Option {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

// WithTimeout bounds how long one chunk may take to settle; zero waits forever.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) { r.timeout = d }
}

// WithProgress registers a progress callback.
func WithProgress(fn Progress) Option {
	return func(r *Runner) { r.progress = fn }
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner builds a Runner over api.
func NewRunner(api API, opts ...Option) *Runner {
	r := &Runner{
		api:      api,
		interval: 2 * time.Second,
		timeout:  30 * time.Minute,
		logger:   logger.GetOrNop().Named("batch"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run submits m in chunks of at most MaxChunk and waits for each job to finish.
func (r *Runner) Run(ctx context.Context, m Manifest) (Report, error) {
	report := Report{Rejected: m.Rejected}
	for start := 0; start < len(m.Items); start += MaxChunk {
		end := min(start+MaxChunk, len(m.Items))
		job, err := r.api.SubmitBatch(ctx, model.BatchRequest{Items: m.Items[start:end]})
		if err != nil {
			return report, fmt.Errorf("submit items %d-%d: %w", start+1, end, err)
		}
		r.logger.Info(ctx, "batch submitted", logger.String("job", job.ID), logger.Int("items", job.Total))

		final, err := r.wait(ctx, job)
		if err != nil {
			return report, err
		}
		report.Items = append(report.Items, final.Items...)
	}
	return report, nil
}

func (r *Runner) wait(ctx context.Context, job model.BatchJob) (model.BatchJob, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if job.State == model.BatchDone {
			return job, nil
		}
		select {
		case <-ctx.Done():
			if ctx.Err() == context.DeadlineExceeded {
				return job, fmt.Errorf("%w: job %s at %d/%d", ErrTimeout, job.ID, job.Completed, job.Total)
			}
			return job, ctx.Err()
		case <-ticker.C:
		}
		next, err := r.api.BatchStatus(ctx, job.ID)
		if err != nil {
			return job, fmt.Errorf("poll job %s: %w", job.ID, err)
		}
		job = next
		if r.progress != nil {
			r.progress(job)
		}
	}
}
