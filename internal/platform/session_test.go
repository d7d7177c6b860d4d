package platform_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rinwao/hakobu/internal/platform"
	"github.com/rinwao/hakobu/internal/testutil"
)

func TestSession_CSRFTokenCached(t *testing.T) {
	var pings int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pings++
		w.Header().Set("X-CSRF-Token", "tok-42")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	s := platform.NewSession(cfg, "secret", "", wc, &testutil.DummyLogger{})

	for i := 0; i < 3; i++ {
		tok, err := s.CSRFToken(context.Background())
		if err != nil {
			t.Fatalf("CSRFToken: %v", err)
		}
		if tok != "tok-42" {
			t.Fatalf("token = %q, want tok-42", tok)
		}
	}
	if pings != 1 {
		t.Errorf("token should be fetched once, saw %d pings", pings)
	}

	s.InvalidateCSRF()
	if _, err := s.CSRFToken(context.Background()); err != nil {
		t.Fatalf("CSRFToken after invalidate: %v", err)
	}
	if pings != 2 {
		t.Errorf("invalidate should force a refetch, saw %d pings", pings)
	}
}

func TestSession_ToleratesMissingToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	s := platform.NewSession(cfg, "secret", "", wc, &testutil.DummyLogger{})

	tok, err := s.CSRFToken(context.Background())
	if err != nil {
		t.Fatalf("a deployment without CSRF enforcement must not error: %v", err)
	}
	if tok != "" {
		t.Errorf("token = %q, want empty", tok)
	}
}

func TestSession_AnonymousHasNoToken(t *testing.T) {
	cfg := platform.DefaultConfig()
	s := platform.NewSession(cfg, "", "", nil, &testutil.DummyLogger{})

	if s.Authenticated() {
		t.Error("session without credential reported authenticated")
	}
	if _, err := s.CSRFToken(context.Background()); err == nil {
		t.Error("expected an error for anonymous token fetch")
	}
}
