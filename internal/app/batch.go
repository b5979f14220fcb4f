package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/okian/hackwreck/internal/adapters/mq/queue"
	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/logger"
)

// jobRegistry keeps batch job status in memory for the life of the process.
type jobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]*model.BatchJob
}

func newJobRegistry() *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*model.BatchJob)}
}

func (r *jobRegistry) create(items []model.BatchItem) *model.BatchJob {
	job := &model.BatchJob{
		ID:    uuid.NewString(),
		State: model.BatchPending,
		Total: len(items),
		Items: make([]model.BatchItemResult, len(items)),
	}
	for i, it := range items {
		job.Items[i] = model.BatchItemResult{GitHubURL: it.GitHubURL, State: model.BatchPending}
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	r.mu.Unlock()
	return job
}

func (r *jobRegistry) get(id string) (model.BatchJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	job, ok := r.jobs[id]
	if !ok {
		return model.BatchJob{}, false
	}
	out := *job
	out.Items = append([]model.BatchItemResult(nil), job.Items...)
	return out, true
}

func (r *jobRegistry) start(id string, index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if job, ok := r.jobs[id]; ok {
		job.State = model.BatchRunning
		job.Items[index].State = model.BatchRunning
	}
}

// finish records an item outcome; the job completes once every item settled.
func (r *jobRegistry) finish(id string, index int, res model.BatchItemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[id]
	if !ok {
		return
	}
	job.Items[index] = res
	job.Completed++
	if job.Completed == job.Total {
		job.State = model.BatchDone
	}
}

// SubmitBatch validates every item, then queues them for the worker pool.
func (s *Service) SubmitBatch(ctx context.Context, req model.BatchRequest) (model.BatchJob, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return model.BatchJob{}, ErrNotStarted
	}
	if len(req.Items) == 0 {
		return model.BatchJob{}, invalid("Batch contains no items")
	}
	if len(req.Items) > s.maxBatchSize {
		return model.BatchJob{}, invalid(fmt.Sprintf("Batch exceeds %d items", s.maxBatchSize))
	}
	for i, it := range req.Items {
		if _, err := model.ParseOutcome(it.Status); err != nil {
			return model.BatchJob{}, invalid(fmt.Sprintf("Item %d: %s", i+1, msgInvalidStatus))
		}
	}
	if free := s.queue.Capacity() - s.queue.Len(ctx); len(req.Items) > free {
		return model.BatchJob{}, fmt.Errorf("%w: %d slots free", ErrQueueFull, free)
	}

	job := s.jobs.create(req.Items)
	for i, it := range req.Items {
		if !s.queue.Enqueue(ctx, queue.Task{JobID: job.ID, Index: i, Item: it}) {
			s.jobs.finish(job.ID, i, model.BatchItemResult{GitHubURL: it.GitHubURL, State: model.BatchFailed, Error: ErrQueueFull.Error()})
		}
	}
	s.logger.Info(ctx, "batch queued", logger.String("job", job.ID), logger.Int("items", len(req.Items)))
	out, _ := s.jobs.get(job.ID)
	return out, nil
}

// BatchStatus returns a snapshot of a batch job.
func (s *Service) BatchStatus(_ context.Context, id string) (model.BatchJob, error) {
	job, ok := s.jobs.get(id)
	if !ok {
		return model.BatchJob{}, &NotFoundError{Message: fmt.Sprintf("Batch job %s not found", id)}
	}
	return job, nil
}

// handleTask runs Ingest for one queued item and records the outcome.
func (s *Service) handleTask(ctx context.Context, t queue.Task) error {
	s.jobs.start(t.JobID, t.Index)
	res := model.BatchItemResult{GitHubURL: t.Item.GitHubURL}

	resp, err := s.Ingest(ctx, model.InsertRequest{GitHubURL: t.Item.GitHubURL, Status: t.Item.Status})
	switch {
	case err != nil:
		res.State = model.BatchFailed
		var inputErr *InputError
		if errors.As(err, &inputErr) {
			res.Error = inputErr.Message
		} else {
			res.Error = err.Error()
		}
	case !resp.Success:
		res.State = model.BatchDuplicate
		res.Error = resp.Message
	default:
		res.State = model.BatchDone
		res.ProjectName = resp.ProjectName
	}
	s.jobs.finish(t.JobID, t.Index, res)
	if res.State == model.BatchFailed {
		return err
	}
	return nil
}
