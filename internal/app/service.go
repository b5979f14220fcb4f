// Package service implements the HackWreck backend operations the HTTP API exposes.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/hackwreck/internal/adapters/cache"
	"github.com/okian/hackwreck/internal/adapters/llm"
	"github.com/okian/hackwreck/internal/adapters/mq/queue"
	"github.com/okian/hackwreck/internal/adapters/mq/worker"
	"github.com/okian/hackwreck/internal/adapters/repository"
	"github.com/okian/hackwreck/internal/domain/dedupe"
	"github.com/okian/hackwreck/internal/domain/validate"
	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// Verifier confirms a repository exists before it is analyzed.
type Verifier interface {
	Exists(ctx context.Context, ref validate.RepoRef) error
}

// Service implements the API dependencies for the catalogue.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	analyzer llm.Analyzer
	verifier Verifier
	cache    cache.Cache
	guard    dedupe.Guard
	queue    *queue.InMemoryQueue
	pool     *worker.Pool
	jobs     *jobRegistry

	workerCount  int
	queueSize    int
	dedupeSize   int
	searchLimit  int
	speechLimit  int
	cacheTTL     time.Duration
	maxBatchSize int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithVerifier enables repository existence checks on ingest.
func WithVerifier(v Verifier) Option {
	return func(s *Service) {
		s.verifier = v
	}
}

// WithCache caches narrative answers for ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithWorkerCount sets the number of batch ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued batch items.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the number of concurrent ingestions.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		s.dedupeSize = size
	}
}

// WithSearchLimit caps search results.
func WithSearchLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.searchLimit = n
		}
	}
}

// WithSpeechLimit caps the characters sent for synthesis.
func WithSpeechLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.speechLimit = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over store and analyzer.
func New(store repository.Store, analyzer llm.Analyzer, opts ...Option) *Service {
	s := &Service{
		store:        store,
		analyzer:     analyzer,
		workerCount:  2,
		queueSize:    256,
		dedupeSize:   1024,
		searchLimit:  repository.DefaultSearchLimit,
		speechLimit:  4000,
		maxBatchSize: 500,
		jobs:         newJobRegistry(),
		logger:       logger.GetOrNop().Named("service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.analyzer == nil {
		s.analyzer = llm.Disabled{}
	}
	s.guard = dedupe.NewGuard(dedupe.WithMaxSize(s.dedupeSize))
	return s
}

// Start launches the batch ingest workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.HandlerFunc(s.handleTask))
	s.pool.Start(ctx)
	s.started = true

	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateProjectsTotal(n)
	}
	s.logger.Info(ctx, "catalogue service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the workers. The store is owned by the caller.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	err := s.pool.Shutdown(ctx)
	s.logger.Info(ctx, "catalogue service stopped")
	return err
}

// Ready reports whether the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// InFlight returns the number of repositories currently being ingested.
func (s *Service) InFlight() int64 {
	return s.guard.Size()
}

// RefreshMetrics publishes catalogue gauges that other writers may change,
// such as a shared Postgres database.
func (s *Service) RefreshMetrics(ctx context.Context) {
	if n, err := s.store.Count(ctx); err == nil {
		metrics.UpdateProjectsTotal(n)
	}
}
