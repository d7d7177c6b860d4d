// Package testutil provides shared test doubles for use across package tests.
// All dummies implement the corresponding interfaces from the production code,
// allowing injection into components under test without real I/O or side effects.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/rinwao/hakobu/internal/library"
	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/platform"
	"github.com/rinwao/hakobu/internal/webclient"
)

// ─── Logger ────────────────────────────────────────────────────────────

// DummyLogger implements logging.Logger with in-memory recording.
type DummyLogger struct {
	mu     sync.Mutex
	Errors []string
	Infos  []string
	Debugs []string
	Warns  []string
}

func (l *DummyLogger) Debug(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Debugs = append(l.Debugs, msg)
}

func (l *DummyLogger) Info(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Infos = append(l.Infos, msg)
}

func (l *DummyLogger) Warn(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Warns = append(l.Warns, msg)
}

func (l *DummyLogger) Error(msg string, fields ...logging.Field) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Errors = append(l.Errors, msg)
}

func (l *DummyLogger) With(_ ...logging.Field) logging.Logger { return l }

// ─── WebClient ─────────────────────────────────────────────────────────

// DummyWebClient implements webclient.WebClient with scriptable responses.
// Responses is keyed by "METHOD URL"; unmatched requests fall back to
// Handler if set, otherwise to a 200 with body "ok:<url>".
// Set FailURLs[url] = true to force an error for a specific URL.
type DummyWebClient struct {
	Responses     map[string]*webclient.Response
	Handler       func(req *webclient.Request) (*webclient.Response, error)
	FailURLs      map[string]bool
	ResponseDelay time.Duration

	mu       sync.Mutex
	Requests []*webclient.Request
}

func (d *DummyWebClient) Do(ctx context.Context, req *webclient.Request) (*webclient.Response, error) {
	if d.ResponseDelay > 0 {
		select {
		case <-time.After(d.ResponseDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()

	if d.FailURLs != nil && d.FailURLs[req.URL] {
		return nil, &errString{"dummy fetch fail for " + req.URL}
	}

	if resp, ok := d.Responses[req.Method+" "+req.URL]; ok {
		cp := *resp
		cp.Request = req
		if cp.FetchedAt.IsZero() {
			cp.FetchedAt = time.Now()
		}
		return &cp, nil
	}
	if d.Handler != nil {
		return d.Handler(req)
	}

	return &webclient.Response{
		Request:    req,
		Body:       []byte("ok:" + req.URL),
		StatusCode: 200,
		FetchedAt:  time.Now(),
	}, nil
}

func (d *DummyWebClient) Get(ctx context.Context, url string) (*webclient.Response, error) {
	return d.Do(ctx, &webclient.Request{Method: "GET", URL: url})
}

func (d *DummyWebClient) Close() error { return nil }

// RequestCount returns how many requests matched the given method and URL.
func (d *DummyWebClient) RequestCount(method, url string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.Requests {
		if r.Method == method && r.URL == url {
			n++
		}
	}
	return n
}

// ─── AssetStore ────────────────────────────────────────────────────────

// DummyStore implements interfaces.AssetStore with an in-memory map.
type DummyStore struct {
	mu     sync.Mutex
	Assets map[string]*library.Asset
	PutErr error
}

func NewDummyStore() *DummyStore {
	return &DummyStore{Assets: make(map[string]*library.Asset)}
}

func (s *DummyStore) Put(_ context.Context, a *library.Asset) error {
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *a
	s.Assets[a.ID] = &cp
	return nil
}

func (s *DummyStore) Get(_ context.Context, id string) (*library.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Assets[id]
	if !ok {
		return nil, library.ErrAssetNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *DummyStore) List(_ context.Context, status platform.Status, limit int) ([]*library.Asset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*library.Asset
	for _, a := range s.Assets {
		if status != "" && a.Status != status {
			continue
		}
		cp := *a
		out = append(out, &cp)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (s *DummyStore) UpdateStatus(_ context.Context, id string, status platform.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Assets[id]
	if !ok {
		return library.ErrAssetNotFound
	}
	a.Status = status
	a.LastCheckedAt = time.Now().UTC()
	return nil
}

func (s *DummyStore) Touch(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.Assets[id]
	if !ok {
		return library.ErrAssetNotFound
	}
	a.LastCheckedAt = time.Now().UTC()
	return nil
}

func (s *DummyStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.Assets[id]; !ok {
		return library.ErrAssetNotFound
	}
	delete(s.Assets, id)
	return nil
}

func (s *DummyStore) Close() error { return nil }

// ─── Engine doubles ────────────────────────────────────────────────────

// DummyEvidenceSource implements interfaces.EvidenceSource, returning a
// canned bundle per asset id. Unknown ids get the Default bundle.
type DummyEvidenceSource struct {
	mu      sync.Mutex
	Bundles map[string]*platform.EvidenceBundle
	Default *platform.EvidenceBundle
	Calls   []string
}

func (d *DummyEvidenceSource) Collect(_ context.Context, assetID string, _ platform.Kind, _ *platform.Session) *platform.EvidenceBundle {
	d.mu.Lock()
	d.Calls = append(d.Calls, assetID)
	d.mu.Unlock()
	if b, ok := d.Bundles[assetID]; ok {
		return b
	}
	if d.Default != nil {
		return d.Default
	}
	return &platform.EvidenceBundle{}
}

// SetBundle swaps the canned bundle for an asset id.
func (d *DummyEvidenceSource) SetBundle(assetID string, b *platform.EvidenceBundle) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Bundles == nil {
		d.Bundles = make(map[string]*platform.EvidenceBundle)
	}
	d.Bundles[assetID] = b
}

// DummySubmitter implements interfaces.Submitter.
type DummySubmitter struct {
	mu       sync.Mutex
	NextID   string
	Err      error
	Requests []platform.SubmitRequest
}

func (d *DummySubmitter) Submit(_ context.Context, req platform.SubmitRequest) (string, error) {
	d.mu.Lock()
	d.Requests = append(d.Requests, req)
	d.mu.Unlock()
	if d.Err != nil {
		return "", d.Err
	}
	if d.NextID != "" {
		return d.NextID, nil
	}
	return "dummy-asset-1", nil
}

// DummyWithdrawer implements interfaces.Withdrawer.
type DummyWithdrawer struct {
	mu        sync.Mutex
	Err       error
	Withdrawn []string
}

func (d *DummyWithdrawer) Withdraw(_ context.Context, assetID string) error {
	d.mu.Lock()
	d.Withdrawn = append(d.Withdrawn, assetID)
	d.mu.Unlock()
	return d.Err
}

type errString struct{ s string }

func (e *errString) Error() string { return e.s }
