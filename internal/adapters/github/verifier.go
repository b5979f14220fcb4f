// Package github checks that submitted repositories exist before they are analyzed.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/okian/hackwreck/internal/domain/validate"
	"github.com/okian/hackwreck/pkg/logger"
)

var (
	// ErrRepoNotFound is returned when GitHub answers 404.
	ErrRepoNotFound = errors.New("repository not found")
	// ErrNotARepository is returned when the response is not a repository document.
	ErrNotARepository = errors.New("URL does not point to a valid repository")
	// ErrUnverified is returned for any other unexpected status or transport failure.
	ErrUnverified = errors.New("could not verify repository")
)

// DefaultBaseURL is the public GitHub REST API.
const DefaultBaseURL = "https://api.github.com"

// Verifier queries the GitHub REST API for repository metadata.
type Verifier struct {
	baseURL string
	http    *http.Client
	log     logger.Logger
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) {
		if c != nil {
			v.http = c
		}
	}
}

// WithLogger sets the logger used for rate-limit warnings.
func WithLogger(l logger.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.log = l
		}
	}
}

// NewVerifier builds a Verifier against baseURL (DefaultBaseURL when empty).
func NewVerifier(baseURL string, opts ...Option) *Verifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	v := &Verifier{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logger.GetOrNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Exists returns nil when ref names a repository. A 403 (rate limited or
// private) is let through with a warning.
func (v *Verifier) Exists(ctx context.Context, ref validate.RepoRef) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/repos/%s/%s", v.baseURL, ref.Owner, ref.Repo), nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnverified, err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: network error checking repository: %w", ErrUnverified, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s (404)", ErrRepoNotFound, ref)
	case http.StatusForbidden:
		v.log.Warn(ctx, "could not verify repository, rate limited or private", logger.String("repo", ref.String()))
		return nil
	default:
		return fmt.Errorf("%w (HTTP %d)", ErrUnverified, resp.StatusCode)
	}

	var body struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Name == "" {
		return ErrNotARepository
	}
	return nil
}
