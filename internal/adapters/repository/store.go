// Package repository persists catalogued projects. SQLiteStore is the default
// backend; PostgresStore serves hosted deployments. Both share the hacks schema
// and query set.
package repository

import (
	"context"

	"github.com/okian/hackwreck/internal/domain/model"
)

// Default limits used by the analysis queries.
const (
	DefaultSearchLimit = 50
	TopBreakdownLimit  = 5
)

// Store provides read/write access to the project catalogue.
type Store interface {
	// Insert stores p and returns its new id.
	Insert(ctx context.Context, p model.Project) (int64, error)
	// FindByLink returns the project archived under link, or ErrNotFound.
	FindByLink(ctx context.Context, link string) (model.Project, error)
	// Delete removes a project and returns its name, or ErrNotFound.
	Delete(ctx context.Context, id int64) (string, error)

	List(ctx context.Context) ([]model.Project, error)
	Winners(ctx context.Context) ([]model.Project, error)
	// Search matches every whitespace-separated term against name, framework,
	// topic and description, best scores first.
	Search(ctx context.Context, query string, limit int) ([]model.Project, error)

	WinnersByCategory(ctx context.Context, category string, limit int) ([]model.Project, error)
	WinnersExcludingCategory(ctx context.Context, category string, limit int) ([]model.Project, error)
	// WinnersByFramework matches on the first entry of a comma or slash separated list.
	WinnersByFramework(ctx context.Context, framework string, limit int) ([]model.Project, error)
	Participants(ctx context.Context, limit int) ([]model.Project, error)
	TopWinners(ctx context.Context, limit int) ([]model.Project, error)

	// Stats returns counters; AvgWinnerScore is not rounded.
	Stats(ctx context.Context) (model.Stats, error)
	Count(ctx context.Context) (int, error)

	Ping(ctx context.Context) error
	Close() error
}
