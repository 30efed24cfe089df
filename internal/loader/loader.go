// Package loader fetches snapshot documents from an HTTP endpoint or a local
// file and tags every attempt with a sequence number.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/tracespace/internal/domain/snapshot"
)

const (
	// DefaultTimeout bounds a single fetch.
	DefaultTimeout = 30 * time.Second

	maxBodyBytes = 32 << 20
)

// Result is the outcome of one fetch. Exactly one of Snapshot and Err is set.
type Result struct {
	Seq       uint64
	RequestID string
	Endpoint  string
	Snapshot  *snapshot.Snapshot
	Raw       []byte
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}

// OK reports whether the fetch produced a valid document.
func (r Result) OK() bool {
	return r.Err == nil && r.Snapshot != nil
}

// Options configures a Loader.
type Options struct {
	Endpoint string
	Timeout  time.Duration
	Client   *http.Client
}

// Loader fetches snapshots from one endpoint.
type Loader struct {
	endpoint string
	path     string
	client   *http.Client
	timeout  time.Duration
	logger   *slog.Logger
	seq      atomic.Uint64
}

// New creates a Loader. Endpoints without an http(s) scheme are read from disk.
func New(opts Options, logger *slog.Logger) (*Loader, error) {
	if opts.Endpoint == "" {
		return nil, errors.New("endpoint is required")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	l := &Loader{
		endpoint: opts.Endpoint,
		client:   opts.Client,
		timeout:  timeout,
		logger:   logger,
	}

	switch {
	case strings.HasPrefix(opts.Endpoint, "http://"), strings.HasPrefix(opts.Endpoint, "https://"):
		if l.client == nil {
			client, err := NewHTTPClient(timeout)
			if err != nil {
				return nil, err
			}
			l.client = client
		}
	case strings.HasPrefix(opts.Endpoint, "file://"):
		u, err := url.Parse(opts.Endpoint)
		if err != nil {
			return nil, fmt.Errorf("invalid endpoint %q: %w", opts.Endpoint, err)
		}
		l.path = u.Path
	default:
		l.path = opts.Endpoint
	}

	return l, nil
}

// Endpoint returns the configured endpoint string.
func (l *Loader) Endpoint() string {
	return l.endpoint
}

// Path returns the local file path, or "" for HTTP endpoints.
func (l *Loader) Path() string {
	return l.path
}

// LastSeq returns the most recently issued sequence number.
func (l *Loader) LastSeq() uint64 {
	return l.seq.Load()
}

// Fetch performs one request. Errors are reported in Result.Err, never
// returned, so callers can journal every attempt uniformly.
func (l *Loader) Fetch(ctx context.Context) Result {
	res := Result{
		Seq:       l.seq.Add(1),
		RequestID: uuid.NewString(),
		Endpoint:  l.endpoint,
		StartedAt: time.Now(),
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	var raw []byte
	if l.path != "" {
		raw, res.Err = l.readFile()
	} else {
		raw, res.Err = l.get(ctx, res.RequestID)
	}
	if res.Err == nil {
		res.Raw = raw
		res.Snapshot, res.Err = snapshot.Decode(raw)
	}
	res.Duration = time.Since(res.StartedAt)

	if res.Err != nil {
		l.logger.Warn("snapshot fetch failed", "seq", res.Seq, "request_id", res.RequestID, "error", res.Err)
	} else {
		l.logger.Debug("snapshot fetched", "seq", res.Seq, "request_id", res.RequestID,
			"organisms", res.Snapshot.OrganismCount(), "duration", res.Duration)
	}
	return res
}

// FromCache decodes a previously stored document as sequence 0, so any live
// fetch supersedes it.
func (l *Loader) FromCache(raw []byte) Result {
	res := Result{
		RequestID: "cache",
		Endpoint:  l.endpoint,
		Raw:       raw,
		StartedAt: time.Now(),
	}
	res.Snapshot, res.Err = snapshot.Decode(raw)
	return res
}

// Close releases idle connections.
func (l *Loader) Close() {
	if l.client != nil {
		l.client.CloseIdleConnections()
	}
}

func (l *Loader) get(ctx context.Context, requestID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.endpoint, nil)
	if err != nil {
		return nil, &snapshot.FetchError{Endpoint: l.endpoint, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, &snapshot.FetchError{Endpoint: l.endpoint, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &snapshot.FetchError{
			Endpoint:   l.endpoint,
			StatusCode: resp.StatusCode,
			Cause:      fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &snapshot.FetchError{Endpoint: l.endpoint, StatusCode: resp.StatusCode, Cause: err}
	}
	return body, nil
}

func (l *Loader) readFile() ([]byte, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, &snapshot.FetchError{Endpoint: l.endpoint, Cause: err}
	}
	defer f.Close()

	body, err := io.ReadAll(io.LimitReader(f, maxBodyBytes))
	if err != nil {
		return nil, &snapshot.FetchError{Endpoint: l.endpoint, Cause: err}
	}
	return body, nil
}
