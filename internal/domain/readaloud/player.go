package readaloud

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Playback is one running playback.
type Playback interface {
	// Done yields the playback result once and is then closed.
	Done() <-chan error
	// Stop ends playback early. It is safe to call more than once.
	Stop()
}

// Player starts playback of a local audio file.
type Player interface {
	Start(ctx context.Context, path string) (Playback, error)
}

// ExecPlayer plays audio with an external command; the file path is appended
// as the last argument.
type ExecPlayer struct {
	Command []string
}

// Start launches the player process. The process is not tied to ctx; use Stop.
func (p ExecPlayer) Start(_ context.Context, path string) (Playback, error) {
	if len(p.Command) == 0 {
		return nil, ErrNoPlayer
	}
	args := append(append([]string(nil), p.Command[1:]...), path)
	cmd := exec.Command(p.Command[0], args...) //nolint:gosec // command comes from configuration
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPlayback, err)
	}
	pb := &processPlayback{cmd: cmd, done: make(chan error, 1)}
	go func() {
		pb.done <- cmd.Wait()
		close(pb.done)
	}()
	return pb, nil
}

type processPlayback struct {
	cmd  *exec.Cmd
	done chan error
	once sync.Once
}

func (p *processPlayback) Done() <-chan error { return p.done }

func (p *processPlayback) Stop() {
	p.once.Do(func() {
		if p.cmd.Process != nil {
			_ = p.cmd.Process.Kill()
		}
	})
}

// resource is the transient audio file backing one playback.
type resource struct {
	path string
	once sync.Once
}

func newResource(dir string, audio io.Reader) (*resource, error) {
	f, err := os.CreateTemp(dir, "hackwreck-speech-*.wav")
	if err != nil {
		return nil, fmt.Errorf("create audio file: %w", err)
	}
	r := &resource{path: f.Name()}
	if _, err := io.Copy(f, audio); err != nil {
		_ = f.Close()
		r.release()
		return nil, fmt.Errorf("write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		r.release()
		return nil, fmt.Errorf("close audio file: %w", err)
	}
	return r, nil
}

// release removes the file; later calls do nothing.
func (r *resource) release() {
	r.once.Do(func() {
		_ = os.Remove(r.path)
	})
}
