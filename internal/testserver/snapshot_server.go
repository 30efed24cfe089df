// Package testserver serves snapshot documents for tests.
package testserver

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// SnapshotServer is an httptest server returning a configurable body.
type SnapshotServer struct {
	Server *httptest.Server

	mu         sync.Mutex
	body       []byte
	status     int
	delay      time.Duration
	hits       int
	requestIDs []string
}

// New starts a server that answers every request with body and status 200.
func New(t *testing.T, body []byte) *SnapshotServer {
	t.Helper()

	ss := &SnapshotServer{body: body, status: http.StatusOK}
	ss.Server = httptest.NewServer(http.HandlerFunc(ss.serve))

	t.Cleanup(func() {
		ss.Server.Close()
	})

	return ss
}

// URL is the snapshot endpoint.
func (ss *SnapshotServer) URL() string {
	return ss.Server.URL + "/api/latest"
}

// SetBody replaces the served document.
func (ss *SnapshotServer) SetBody(body []byte) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.body = body
}

// SetStatus replaces the response status.
func (ss *SnapshotServer) SetStatus(status int) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.status = status
}

// SetDelay holds every response for d.
func (ss *SnapshotServer) SetDelay(d time.Duration) {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	ss.delay = d
}

// Hits returns the number of requests served.
func (ss *SnapshotServer) Hits() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.hits
}

// RequestIDs returns the X-Request-Id headers seen so far.
func (ss *SnapshotServer) RequestIDs() []string {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return append([]string(nil), ss.requestIDs...)
}

func (ss *SnapshotServer) serve(w http.ResponseWriter, r *http.Request) {
	ss.mu.Lock()
	ss.hits++
	ss.requestIDs = append(ss.requestIDs, r.Header.Get("X-Request-Id"))
	body, status, delay := ss.body, ss.status, ss.delay
	ss.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
