package platform_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rinwao/hakobu/internal/platform"
	"github.com/rinwao/hakobu/internal/testutil"
	"github.com/rinwao/hakobu/internal/webclient"
)

func newTestClient(t *testing.T, srv *httptest.Server) webclient.WebClient {
	t.Helper()
	wc, err := webclient.NewNetHTTPClient(webclient.Config{}, &testutil.DummyLogger{}, srv.Client())
	if err != nil {
		t.Fatalf("create webclient: %v", err)
	}
	return wc
}

func catalogEntry(forSale, restricted bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{
				"id":           "42",
				"isForSale":    forSale,
				"isRestricted": restricted,
				"isLimited":    false,
				"createdUtc":   time.Now().UTC().Format(time.RFC3339),
			}},
		})
	}
}

func TestCollector_AcceptedScenario(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/asset/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/catalog/v1/items/details", catalogEntry(true, false))
	mux.HandleFunc("/library/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><h1>My Track</h1><p>Use this in your creations.</p></body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	c := platform.NewCollector(cfg, wc, nil, &testutil.DummyLogger{})

	b := c.Collect(context.Background(), "42", platform.KindAudio, nil)

	if b.Anonymous != platform.ReachOK {
		t.Errorf("anonymous = %v, want ok", b.Anonymous)
	}
	if b.Authenticated != platform.ReachUnknown {
		t.Errorf("authenticated probe should not run without a credential, got %v", b.Authenticated)
	}
	if b.Catalog != platform.CatalogPresent || b.CatalogInfo == nil || !b.CatalogInfo.ForSale {
		t.Errorf("catalog = %v info %+v, want present and for sale", b.Catalog, b.CatalogInfo)
	}
	if b.Page != platform.PageNone {
		t.Errorf("page = %v, want none", b.Page)
	}
	if got := platform.Resolve(b); got != platform.StatusAccepted {
		t.Errorf("Resolve = %v, want accepted", got)
	}
}

func TestCollector_ProbeFailuresDegradeToUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	c := platform.NewCollector(cfg, wc, nil, &testutil.DummyLogger{})

	b := c.Collect(context.Background(), "42", platform.KindImage, nil)

	if b.Anonymous != platform.ReachUnknown {
		t.Errorf("anonymous = %v, want unknown on 500", b.Anonymous)
	}
	if b.Catalog != platform.CatalogUnknown {
		t.Errorf("catalog = %v, want unknown on 500", b.Catalog)
	}
	if b.Page != platform.PageFetchFailed {
		t.Errorf("page = %v, want fetch-failed on 500", b.Page)
	}
	if got := platform.Resolve(b); got != platform.StatusPending {
		t.Errorf("degraded bundle must resolve pending, got %v", got)
	}
}

func TestCollector_CatalogEmptyMeansAbsent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/asset/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/catalog/v1/items/details", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})
	mux.HandleFunc("/library/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	c := platform.NewCollector(cfg, wc, nil, &testutil.DummyLogger{})

	b := c.Collect(context.Background(), "42", platform.KindAudio, nil)

	if b.Catalog != platform.CatalogAbsent {
		t.Errorf("catalog = %v, want absent for empty result list", b.Catalog)
	}
	if b.Page != platform.PageNotFound {
		t.Errorf("page = %v, want not-found", b.Page)
	}
	if got := platform.Resolve(b); got != platform.StatusDeclined {
		t.Errorf("Resolve = %v, want declined", got)
	}
}

func TestCollector_AuthenticatedProbeRunsWithCredential(t *testing.T) {
	var deliveries atomic.Int64
	var sawCookie atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("/asset/", func(w http.ResponseWriter, r *http.Request) {
		deliveries.Add(1)
		if c, err := r.Cookie(platform.CredentialCookie); err == nil && c.Value == "secret" {
			sawCookie.Store(true)
			w.WriteHeader(http.StatusOK)
			return
		}
		http.Error(w, "gated", http.StatusForbidden)
	})
	mux.HandleFunc("/catalog/v1/items/details", catalogEntry(false, true))
	mux.HandleFunc("/library/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>pending review</body></html>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cfg := platform.DefaultConfig()
	cfg.BaseURL = srv.URL
	wc := newTestClient(t, srv)
	session := platform.NewSession(cfg, "secret", "", wc, &testutil.DummyLogger{})
	c := platform.NewCollector(cfg, wc, nil, &testutil.DummyLogger{})

	b := c.Collect(context.Background(), "42", platform.KindAudio, session)

	if got := deliveries.Load(); got != 2 {
		t.Errorf("expected 2 delivery probes (anon + auth), got %d", got)
	}
	if !sawCookie.Load() {
		t.Error("authenticated probe did not carry the session cookie")
	}
	if b.Anonymous != platform.ReachForbidden || b.Authenticated != platform.ReachOK {
		t.Errorf("anon=%v auth=%v, want forbidden/ok", b.Anonymous, b.Authenticated)
	}
	if got := platform.Resolve(b); got != platform.StatusPending {
		t.Errorf("gated pending asset resolved %v", got)
	}
}
