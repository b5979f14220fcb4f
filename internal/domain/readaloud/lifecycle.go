// Package readaloud implements the read-aloud audio lifecycle: extract the
// visible text, synthesize it, and play it back with at most one live audio
// resource at a time.
package readaloud

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// DefaultMaxChars bounds the text sent for synthesis.
const DefaultMaxChars = 4000

// State of the lifecycle.
type State int

const (
	Idle State = iota
	Loading
	Playing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Playing:
		return "playing"
	}
	return "unknown"
}

// Synthesizer turns text into an audio stream.
type Synthesizer interface {
	Speak(ctx context.Context, text string) (io.ReadCloser, error)
}

// SynthesizerFunc adapts a function to Synthesizer.
type SynthesizerFunc func(ctx context.Context, text string) (io.ReadCloser, error)

func (f SynthesizerFunc) Speak(ctx context.Context, text string) (io.ReadCloser, error) {
	return f(ctx, text)
}

// Option customizes a Lifecycle.
type Option func(*Lifecycle)

// WithMaxChars sets the truncation budget.
func WithMaxChars(n int) Option {
	return func(l *Lifecycle) {
		if n > 0 {
			l.maxChars = n
		}
	}
}

// WithTempDir sets where audio resources are written.
func WithTempDir(dir string) Option {
	return func(l *Lifecycle) { l.tempDir = dir }
}

// WithObserver registers a state observer. Observers run with the lifecycle
// lock held and must not call back into it.
func WithObserver(fn func(from, to State)) Option {
	return func(l *Lifecycle) { l.observers = append(l.observers, fn) }
}

// session is one live playback and the resource backing it.
type session struct {
	res *resource
	pb  Playback
}

// Lifecycle is the Idle/Loading/Playing state machine. It is safe for
// concurrent use.
type Lifecycle struct {
	synth     Synthesizer
	player    Player
	maxChars  int
	tempDir   string
	observers []func(from, to State)
	log       logger.Logger

	mu      sync.Mutex
	state   State
	current *session
	wg      sync.WaitGroup
}

// New builds a Lifecycle in Idle.
func New(synth Synthesizer, player Player, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		synth:    synth,
		player:   player,
		maxChars: DefaultMaxChars,
		log:      logger.GetOrNop().Named("readaloud"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Trigger is the single user control:
//   - while Playing it stops playback and returns to Idle without a request;
//   - while Loading it does nothing;
//   - while Idle it extracts and truncates the text, silently ignores blank
//     text, and otherwise synthesizes and starts playback.
//
// It returns once playback has started or the attempt has failed.
func (l *Lifecycle) Trigger(ctx context.Context, src TextSource) error {
	l.mu.Lock()
	switch l.state {
	case Playing:
		sess := l.current
		l.current = nil
		l.setLocked(Idle)
		l.mu.Unlock()
		sess.pb.Stop()
		sess.res.release()
		return nil
	case Loading:
		l.mu.Unlock()
		return nil
	}

	text, err := src.Text()
	if err != nil {
		l.mu.Unlock()
		return fmt.Errorf("extract text: %w", err)
	}
	text = strings.TrimSpace(Truncate(text, l.maxChars))
	if text == "" {
		l.mu.Unlock()
		return nil
	}

	// A superseded resource may still be referenced if its watcher has not run yet.
	if prev := l.current; prev != nil {
		l.current = nil
		prev.pb.Stop()
		prev.res.release()
	}
	l.setLocked(Loading)
	l.mu.Unlock()

	sess, err := l.load(ctx, text)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.setLocked(Idle)
		l.log.Debug(ctx, "read aloud failed", logger.Error(err))
		return err
	}
	l.current = sess
	l.setLocked(Playing)
	l.wg.Add(1)
	go l.watch(sess)
	return nil
}

// load synthesizes text and starts playback; the resource is released on any failure.
func (l *Lifecycle) load(ctx context.Context, text string) (*session, error) {
	audio, err := l.synth.Speak(ctx, text)
	if err != nil {
		return nil, err
	}
	res, err := newResource(l.tempDir, audio)
	_ = audio.Close()
	if err != nil {
		return nil, err
	}
	pb, err := l.player.Start(ctx, res.path)
	if err != nil {
		res.release()
		return nil, err
	}
	return &session{res: res, pb: pb}, nil
}

// watch returns to Idle when playback ends naturally or with an error.
func (l *Lifecycle) watch(sess *session) {
	defer l.wg.Done()
	err := <-sess.pb.Done()
	sess.res.release()

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current != sess {
		return
	}
	l.current = nil
	l.setLocked(Idle)
	if err != nil && !errors.Is(err, context.Canceled) {
		l.log.Debug(context.Background(), "playback ended with error", logger.Error(err))
	}
}

// Wait blocks until every playback started so far has ended.
func (l *Lifecycle) Wait() {
	l.wg.Wait()
}

// Close stops any playback, releases its resource and waits for cleanup.
func (l *Lifecycle) Close() {
	l.mu.Lock()
	sess := l.current
	l.current = nil
	if l.state == Playing {
		l.setLocked(Idle)
	}
	l.mu.Unlock()
	if sess != nil {
		sess.pb.Stop()
		sess.res.release()
	}
	l.wg.Wait()
}

func (l *Lifecycle) setLocked(to State) {
	from := l.state
	if from == to {
		return
	}
	l.state = to
	metrics.RecordReadAloudTransition(to.String())
	for _, fn := range l.observers {
		fn(from, to)
	}
}
