package dedupe

const defaultMaxSize = 1024

// Option applies a configuration option to the guard.
type Option func(*inFlightGuard)

// WithMaxSize sets the maximum number of keys that may be in flight.
// If maxSize <= 0 the guard is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(g *inFlightGuard) {
		g.maxSize = maxSize
	}
}
