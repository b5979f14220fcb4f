package repository

import "time"

// Option configures a store.
type Option func(*options)

type options struct {
	maxConns        int32
	minConns        int32
	maxConnLifetime time.Duration
	maxIdleTime     time.Duration
	busyTimeout     time.Duration
}

func defaultOptions() options {
	return options{
		maxConns:        25,
		minConns:        5,
		maxConnLifetime: 30 * time.Minute,
		maxIdleTime:     5 * time.Minute,
		busyTimeout:     5 * time.Second,
	}
}

// WithMaxConns caps the Postgres pool size.
func WithMaxConns(n int32) Option {
	return func(o *options) {
		if n > 0 {
			o.maxConns = n
		}
	}
}

// WithMinConns sets the number of idle Postgres connections kept warm.
func WithMinConns(n int32) Option {
	return func(o *options) {
		if n >= 0 {
			o.minConns = n
		}
	}
}

// WithMaxConnLifetime recycles pooled connections after d.
func WithMaxConnLifetime(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.maxConnLifetime = d
		}
	}
}

// WithBusyTimeout sets how long SQLite waits on a locked database.
func WithBusyTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.busyTimeout = d
		}
	}
}
