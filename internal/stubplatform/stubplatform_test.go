package stubplatform

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func doReq(t *testing.T, h http.Handler, method, path string, body string, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if authed {
		req.AddCookie(&http.Cookie{Name: "SessionToken", Value: DefaultConfig().ValidCredential})
	}
	if strings.HasPrefix(body, "{") || strings.HasPrefix(body, "<") {
		if strings.HasPrefix(body, "<") {
			req.Header.Set("Content-Type", "application/xml")
		} else {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func ingestAudio(t *testing.T, h http.Handler) string {
	t.Helper()
	doc := `<asset><name>Track</name><file><name>t.ogg</name><encoding>base64</encoding><data>` +
		base64.StdEncoding.EncodeToString([]byte("audio")) + `</data></file></asset>`
	rec := doReq(t, h, http.MethodPost, "/ingest/audio?name=Track", doc, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("ingest: %d %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		AssetID json.Number `json:"assetId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.AssetID.String()
}

func TestIngestRequiresCredential(t *testing.T) {
	h := New(DefaultConfig()).Handler()

	rec := doReq(t, h, http.MethodPost, "/ingest/audio", "<asset></asset>", false)

	// Unauthenticated ingestion answers 200 with a guest-session cookie, the
	// same shape the real platform uses.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "GuestSession" {
			found = true
		}
	}
	if !found {
		t.Error("expected a guest-session cookie")
	}
}

func TestModerationDrivesSignals(t *testing.T) {
	stub := New(DefaultConfig())
	h := stub.Handler()

	id := ingestAudio(t, h)

	// Pending: anonymous delivery is gated.
	if rec := doReq(t, h, http.MethodGet, "/asset/?id="+id, "", false); rec.Code != http.StatusForbidden {
		t.Errorf("pending anonymous delivery = %d, want 403", rec.Code)
	}
	// Pending: owner can download.
	if rec := doReq(t, h, http.MethodGet, "/asset/?id="+id, "", true); rec.Code != http.StatusOK {
		t.Errorf("pending owner delivery = %d, want 200", rec.Code)
	}

	stub.Moderate(id, OutcomeAccepted)
	if rec := doReq(t, h, http.MethodGet, "/asset/?id="+id, "", false); rec.Code != http.StatusOK {
		t.Errorf("accepted delivery = %d, want 200", rec.Code)
	}

	stub.Moderate(id, OutcomeDeclined)
	if rec := doReq(t, h, http.MethodGet, "/asset/?id="+id, "", false); rec.Code != http.StatusNotFound {
		t.Errorf("declined anonymous delivery = %d, want 404", rec.Code)
	}
	rec := doReq(t, h, http.MethodGet, "/library/"+id, "", false)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "has been rejected") {
		t.Errorf("declined listing page = %d %q", rec.Code, rec.Body.String())
	}
}

func TestCatalogReflectsOutcome(t *testing.T) {
	stub := New(DefaultConfig())
	h := stub.Handler()
	id := ingestAudio(t, h)

	lookup := func() (int, string) {
		body := `{"items":[{"itemType":"Audio","id":"` + id + `"}]}`
		rec := doReq(t, h, http.MethodPost, "/catalog/v1/items/details", body, false)
		return rec.Code, rec.Body.String()
	}

	if code, body := lookup(); code != http.StatusOK || !strings.Contains(body, `"isRestricted":true`) {
		t.Errorf("pending catalog = %d %s", code, body)
	}

	stub.Moderate(id, OutcomeAccepted)
	if code, body := lookup(); code != http.StatusOK || !strings.Contains(body, `"isForSale":true`) {
		t.Errorf("accepted catalog = %d %s", code, body)
	}

	stub.Moderate(id, OutcomeDeclined)
	if code, body := lookup(); code != http.StatusOK || strings.Contains(body, id) {
		t.Errorf("declined asset should vanish from the catalog, got %d %s", code, body)
	}
}

func TestWithdrawVerbPolicy(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PostOnlyWithdraw = true
	stub := New(cfg)
	h := stub.Handler()
	id := ingestAudio(t, h)

	if rec := doReq(t, h, http.MethodDelete, "/assets/"+id, "", true); rec.Code != http.StatusForbidden {
		t.Errorf("DELETE on a POST-only deployment = %d, want 403", rec.Code)
	}
	if rec := doReq(t, h, http.MethodPost, "/assets/"+id, "", true); rec.Code != http.StatusOK {
		t.Errorf("POST withdraw = %d, want 200", rec.Code)
	}
	if rec := doReq(t, h, http.MethodGet, "/asset/?id="+id, "", true); rec.Code != http.StatusNotFound {
		t.Errorf("withdrawn asset delivery = %d, want 404", rec.Code)
	}
}
