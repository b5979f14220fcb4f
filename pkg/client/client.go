// Package client is a typed HTTP client for the HackWreck API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/hackwreck/internal/domain/model"
	"github.com/okian/hackwreck/pkg/logger"
	"github.com/okian/hackwreck/pkg/metrics"
)

// Default endpoint locations.
const (
	DefaultBaseURL    = "http://localhost:8000"
	DefaultSearchPath = "/api/search"
	DefaultStatsPath  = "/api/stats"

	// HeaderRequestID correlates client calls with server logs.
	HeaderRequestID = "X-Request-ID"

	maxErrorBody = 64 << 10
)

// Config locates the API. Zero values fall back to the defaults above.
type Config struct {
	BaseURL    string
	SearchPath string
	StatsPath  string
	// Timeout bounds each call; zero means no client-side timeout.
	Timeout time.Duration
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for debug request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client calls the HackWreck API.
type Client struct {
	base       string
	searchPath string
	statsPath  string
	http       *http.Client
	log        logger.Logger
}

// New builds a Client. The base URL is trimmed of trailing slashes.
func New(cfg Config, opts ...Option) *Client {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		base:       base,
		searchPath: orDefault(cfg.SearchPath, DefaultSearchPath),
		statsPath:  orDefault(cfg.StatsPath, DefaultStatsPath),
		http:       &http.Client{Timeout: cfg.Timeout},
		log:        logger.GetOrNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the resolved base URL.
func (c *Client) BaseURL() string { return c.base }

// Stats fetches aggregate counters.
func (c *Client) Stats(ctx context.Context) (model.Stats, error) {
	var out model.Stats
	err := c.do(ctx, http.MethodGet, c.statsPath, nil, &out)
	return out, err
}

// Search runs a free-text catalogue query.
func (c *Client) Search(ctx context.Context, req model.SearchRequest) (model.SearchResponse, error) {
	var out model.SearchResponse
	err := c.do(ctx, http.MethodPost, c.searchPath, req, &out)
	return out, err
}

// Insert archives one repository.
func (c *Client) Insert(ctx context.Context, req model.InsertRequest) (model.InsertResponse, error) {
	var out model.InsertResponse
	err := c.do(ctx, http.MethodPost, "/api/insert", req, &out)
	return out, err
}

// Trends asks for narrative trend advice.
func (c *Client) Trends(ctx context.Context, req model.TrendRequest) (model.TrendResponse, error) {
	var out model.TrendResponse
	err := c.do(ctx, http.MethodPost, "/api/trends", req, &out)
	return out, err
}

// WreckMe asks for a random idea pitch.
func (c *Client) WreckMe(ctx context.Context) (model.TrendResponse, error) {
	var out model.TrendResponse
	err := c.do(ctx, http.MethodPost, "/api/wreck-me", nil, &out)
	return out, err
}

// AnalyzeProject compares one repository against stored winners.
func (c *Client) AnalyzeProject(ctx context.Context, req model.AnalyzeRequest) (model.AnalysisResult, error) {
	var out model.AnalysisResult
	err := c.do(ctx, http.MethodPost, "/api/analyze-project", req, &out)
	return out, err
}

// DeleteProject removes one record.
func (c *Client) DeleteProject(ctx context.Context, id int64) (model.DeleteResponse, error) {
	var out model.DeleteResponse
	err := c.do(ctx, http.MethodDelete, "/api/projects/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// ListProjects returns every stored project.
func (c *Client) ListProjects(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := c.do(ctx, http.MethodGet, "/api/projects", nil, &out)
	return out, err
}

// Winners returns stored winning projects.
func (c *Client) Winners(ctx context.Context) ([]model.Project, error) {
	var out []model.Project
	err := c.do(ctx, http.MethodGet, "/api/projects/winners", nil, &out)
	return out, err
}

// SubmitBatch queues many repositories for background archival.
func (c *Client) SubmitBatch(ctx context.Context, req model.BatchRequest) (model.BatchJob, error) {
	var out model.BatchJob
	err := c.do(ctx, http.MethodPost, "/api/insert/batch", req, &out)
	return out, err
}

// BatchStatus fetches the state of a batch job.
func (c *Client) BatchStatus(ctx context.Context, id string) (model.BatchJob, error) {
	var out model.BatchJob
	err := c.do(ctx, http.MethodGet, "/api/insert/batch/"+url.PathEscape(id), nil, &out)
	return out, err
}

// TextToSpeech synthesizes text and returns the audio stream. The caller must
// close it.
func (c *Client) TextToSpeech(ctx context.Context, text string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, http.MethodPost, "/api/text-to-speech", model.SpeechRequest{Text: text})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	resp, err := c.send(ctx, method, path, in)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrDecode, method, path, err)
	}
	return nil
}

// send issues the request and converts non-2xx responses into *APIError.
// On success the caller owns resp.Body.
func (c *Client) send(ctx context.Context, method, path string, in any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrTransport, err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordClientRequest(path, "transport_error", elapsed)
		c.log.Debug(ctx, "request failed",
			logger.String("method", method),
			logger.String("path", path),
			logger.String("request_id", requestID),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		metrics.RecordClientRequest(path, "http_"+strconv.Itoa(resp.StatusCode), elapsed)
		apiErr := &APIError{Status: resp.StatusCode, Detail: readDetail(resp.Body)}
		c.log.Debug(ctx, "request rejected",
			logger.String("method", method),
			logger.String("path", path),
			logger.String("request_id", requestID),
			logger.Int("status", resp.StatusCode),
		)
		return nil, apiErr
	}

	metrics.RecordClientRequest(path, "ok", elapsed)
	return resp, nil
}

// readDetail extracts the "detail" string of an error body, or "".
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		// Validation errors carry a structured detail; keep it readable.
		return strings.TrimSpace(string(payload.Detail))
	}
	return strings.TrimSpace(detail)
}

func orDefault(v, def string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	return v
}

// IsTransport reports whether err is a fetch-level failure.
func IsTransport(err error) bool { return errors.Is(err, ErrTransport) }
