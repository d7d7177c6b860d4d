package platform_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rinwao/hakobu/internal/platform"
	"github.com/rinwao/hakobu/internal/testutil"
)

// withdrawRecorder scripts per-candidate responses and records the attempts.
type withdrawRecorder struct {
	mu       sync.Mutex
	attempts []string // "VERB /path"
	// respond maps "VERB /path" to a status code; unmatched gets 404.
	respond map[string]int
}

func (rec *withdrawRecorder) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/session/ping" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		key := r.Method + " " + r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		rec.mu.Lock()
		rec.attempts = append(rec.attempts, key)
		status, ok := rec.respond[key]
		rec.mu.Unlock()
		if !ok {
			status = http.StatusNotFound
		}
		w.WriteHeader(status)
	}
}

func newWithdrawer(t *testing.T, srv *httptest.Server) *platform.Withdrawer {
	t.Helper()
	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	session := platform.NewSession(cfg, "secret", "", wc, &testutil.DummyLogger{})
	return platform.NewWithdrawer(cfg, session, wc, &testutil.DummyLogger{})
}

func TestWithdraw_LaterCandidateSucceeds(t *testing.T) {
	rec := &withdrawRecorder{respond: map[string]int{
		"DELETE /asset/remove?id=42": http.StatusOK,
	}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	if err := newWithdrawer(t, srv).Withdraw(context.Background(), "42"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	want := []string{
		"DELETE /assets/42",
		"DELETE /ingest/assets/42",
		"DELETE /asset/remove?id=42",
	}
	if len(rec.attempts) != len(want) {
		t.Fatalf("attempts = %v, want %v", rec.attempts, want)
	}
	for i := range want {
		if rec.attempts[i] != want[i] {
			t.Errorf("attempt %d = %q, want %q", i, rec.attempts[i], want[i])
		}
	}
}

func TestWithdraw_ForbiddenTriggersPostPass(t *testing.T) {
	rec := &withdrawRecorder{respond: map[string]int{
		"DELETE /assets/42": http.StatusForbidden,
		"POST /assets/42":   http.StatusOK,
	}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	if err := newWithdrawer(t, srv).Withdraw(context.Background(), "42"); err != nil {
		t.Fatalf("Withdraw: %v", err)
	}

	// The DELETE pass walks all three candidates, then POST succeeds first try.
	if got := len(rec.attempts); got != 4 {
		t.Fatalf("attempts = %v, want 3 DELETEs then 1 POST", rec.attempts)
	}
	if rec.attempts[3] != "POST /assets/42" {
		t.Errorf("final attempt = %q, want POST /assets/42", rec.attempts[3])
	}
}

func TestWithdraw_AllNotFoundReportsNotFound(t *testing.T) {
	rec := &withdrawRecorder{respond: map[string]int{}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	err := newWithdrawer(t, srv).Withdraw(context.Background(), "42")

	var werr *platform.WithdrawalError
	if !errors.As(err, &werr) {
		t.Fatalf("expected *WithdrawalError, got %v", err)
	}
	if werr.Kind != platform.FailureNotFound {
		t.Errorf("kind = %v, want not-found", werr.Kind)
	}
	// No 403 anywhere, so only the DELETE pass runs.
	if got := len(rec.attempts); got != 3 {
		t.Errorf("attempts = %v, want exactly the 3 DELETE candidates", rec.attempts)
	}
}

func TestWithdraw_GuestCookieIsDefinitive(t *testing.T) {
	var attempts int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/session/ping" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		attempts++
		http.SetCookie(w, &http.Cookie{Name: platform.GuestCookie, Value: "1"})
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newWithdrawer(t, srv).Withdraw(context.Background(), "42")

	var werr *platform.WithdrawalError
	if !errors.As(err, &werr) || werr.Kind != platform.FailureAuth {
		t.Fatalf("expected definitive auth failure, got %v", err)
	}
	if attempts != 1 {
		t.Errorf("guest session must stop the walk, saw %d attempts", attempts)
	}
}

func TestWithdraw_NoCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent without a credential")
	}))
	defer srv.Close()

	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	session := platform.NewSession(cfg, "", "", wc, &testutil.DummyLogger{})
	w := platform.NewWithdrawer(cfg, session, wc, &testutil.DummyLogger{})

	err := w.Withdraw(context.Background(), "42")
	var werr *platform.WithdrawalError
	if !errors.As(err, &werr) || werr.Kind != platform.FailureAuth {
		t.Fatalf("expected auth failure, got %v", err)
	}
}

func TestWithdraw_ServerErrorsReported(t *testing.T) {
	rec := &withdrawRecorder{respond: map[string]int{
		"DELETE /assets/42":          http.StatusInternalServerError,
		"DELETE /ingest/assets/42":   http.StatusInternalServerError,
		"DELETE /asset/remove?id=42": http.StatusInternalServerError,
	}}
	srv := httptest.NewServer(rec.handler())
	defer srv.Close()

	err := newWithdrawer(t, srv).Withdraw(context.Background(), "42")

	var werr *platform.WithdrawalError
	if !errors.As(err, &werr) {
		t.Fatalf("expected *WithdrawalError, got %v", err)
	}
	if werr.Kind != platform.FailureServer {
		t.Errorf("kind = %v, want server-fault, not not-found", werr.Kind)
	}
}
