// Package stubplatform is an in-memory fake of the remote creative platform.
// It implements the full external surface the engine assumes (delivery,
// catalog, listing page, ingestion, withdrawal) plus control endpoints to
// script moderation outcomes. Used for local development and integration
// tests.
package stubplatform

import (
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Outcome is the scripted moderation state of a stub asset.
type Outcome string

const (
	OutcomePending  Outcome = "pending"
	OutcomeAccepted Outcome = "accepted"
	OutcomeDeclined Outcome = "declined"
	OutcomeDeleted  Outcome = "deleted"
)

type stubAsset struct {
	ID          string
	Kind        string
	Name        string
	Description string
	Payload     []byte
	Outcome     Outcome
	CreatedAt   time.Time
}

// StubPlatform is the fake platform server state.
type StubPlatform struct {
	cfg Config

	mu            sync.RWMutex
	assets        map[string]*stubAsset
	nextID        int64
	nextErrorCode int // injected into the next ingestion response, then cleared
}

// New creates a stub platform.
func New(cfg Config) *StubPlatform {
	if cfg.ValidCredential == "" {
		cfg.ValidCredential = DefaultConfig().ValidCredential
	}
	return &StubPlatform{
		cfg:    cfg,
		assets: make(map[string]*stubAsset),
		nextID: 1000,
	}
}

// Handler returns the full route set, usable directly with httptest.
func (s *StubPlatform) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/asset/", s.handleDelivery)
	mux.HandleFunc("/catalog/v1/items/details", s.handleCatalog)
	mux.HandleFunc("/library/", s.handleListingPage)
	mux.HandleFunc("/v2/session/ping", s.handleSessionPing)
	mux.HandleFunc("/ingest/audio", s.handleIngestAudio)
	mux.HandleFunc("/ingest/audio/", s.handleAudioDescription)
	mux.HandleFunc("/ingest/image", s.handleIngestImage)
	mux.HandleFunc("/assets/", s.handleWithdraw)
	mux.HandleFunc("/ingest/assets/", s.handleWithdraw)
	mux.HandleFunc("/asset/remove", s.handleWithdraw)

	mux.HandleFunc("/control/moderate", s.handleControlModerate)
	mux.HandleFunc("/control/reset", s.handleControlReset)
	mux.HandleFunc("/control/fail-next", s.handleControlFailNext)

	return mux
}

// Start runs the standalone stub server.
func (s *StubPlatform) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	fmt.Printf("Stub platform starting on http://localhost%s\n", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// Moderate scripts an outcome for an asset (test helper).
func (s *StubPlatform) Moderate(id string, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.assets[id]; ok {
		a.Outcome = outcome
	}
}

// AssetIDs returns the ids of all stored assets (test helper).
func (s *StubPlatform) AssetIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.assets))
	for id := range s.assets {
		out = append(out, id)
	}
	return out
}

func (s *StubPlatform) authenticated(r *http.Request) bool {
	c, err := r.Cookie("SessionToken")
	return err == nil && c.Value == s.cfg.ValidCredential
}

// --- external surface ---

func (s *StubPlatform) handleDelivery(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")

	s.mu.RLock()
	a, ok := s.assets[id]
	graceDownload := s.cfg.GraceDownload
	s.mu.RUnlock()

	if !ok || a.Outcome == OutcomeDeleted {
		http.NotFound(w, r)
		return
	}

	authed := s.authenticated(r)

	switch a.Outcome {
	case OutcomeAccepted:
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(a.Payload)
	case OutcomePending:
		if authed {
			_, _ = w.Write(a.Payload)
			return
		}
		http.Error(w, "asset is gated", http.StatusForbidden)
	case OutcomeDeclined:
		// The real platform keeps declined assets downloadable for a grace
		// period; owners can see them for longer still.
		if graceDownload || authed {
			_, _ = w.Write(a.Payload)
			return
		}
		http.NotFound(w, r)
	}
}

func (s *StubPlatform) handleCatalog(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Items []struct {
			ItemType string `json:"itemType"`
			ID       string `json:"id"`
		} `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Items) == 0 {
		http.Error(w, "bad descriptor", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data := []map[string]any{}
	for _, item := range req.Items {
		a, ok := s.assets[item.ID]
		if !ok || a.Outcome == OutcomeDeclined || a.Outcome == OutcomeDeleted {
			continue
		}
		data = append(data, map[string]any{
			"id":           a.ID,
			"isForSale":    a.Outcome == OutcomeAccepted,
			"isRestricted": a.Outcome == OutcomePending,
			"isLimited":    false,
			"createdUtc":   a.CreatedAt.Format(time.RFC3339),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func (s *StubPlatform) handleListingPage(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/library/")

	s.mu.RLock()
	a, ok := s.assets[id]
	s.mu.RUnlock()

	if !ok || a.Outcome == OutcomeDeleted {
		http.NotFound(w, r)
		return
	}

	var blurb string
	switch a.Outcome {
	case OutcomeAccepted:
		blurb = "Use this item in your creations."
	case OutcomePending:
		blurb = "This item is pending review and will be available once approved."
	case OutcomeDeclined:
		blurb = "This item has been rejected by moderation."
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, `<html><head><title>%s</title></head>
<body><h1>%s</h1><p>%s</p><script>var _x = "has been rejected is not in script text";</script></body></html>`,
		a.Name, a.Name, blurb)
}

func (s *StubPlatform) handleSessionPing(w http.ResponseWriter, r *http.Request) {
	if !s.authenticated(r) {
		http.SetCookie(w, &http.Cookie{Name: "GuestSession", Value: "1"})
		http.Error(w, "unauthenticated", http.StatusUnauthorized)
		return
	}
	w.Header().Set("X-CSRF-Token", "stub-csrf-token")
	http.Error(w, "token challenge", http.StatusForbidden)
}

// injectedError pops the scripted error code, if any.
func (s *StubPlatform) injectedError() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	code := s.nextErrorCode
	s.nextErrorCode = 0
	return code
}

func (s *StubPlatform) guestReject(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: "GuestSession", Value: "1"})
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("please log in"))
}

func (s *StubPlatform) handleIngestAudio(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authenticated(r) {
		s.guestReject(w)
		return
	}
	if code := s.injectedError(); code != 0 {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"errorCode": code, "message": "scripted failure"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	var doc struct {
		Name     string `xml:"name"`
		Filename string `xml:"file>name"`
		Encoding string `xml:"file>encoding"`
		Data     string `xml:"file>data"`
	}
	if err := xml.Unmarshal(body, &doc); err != nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"errorCode": 7, "message": "unparseable ingestion document"})
		return
	}
	payload, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"errorCode": 7, "message": "corrupted payload"})
		return
	}

	name := doc.Name
	if name == "" {
		name = r.URL.Query().Get("name")
	}

	id := s.storeAsset("audio", name, payload)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"assetId": idAsNumber(id)})
}

func (s *StubPlatform) handleIngestImage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authenticated(r) {
		s.guestReject(w)
		return
	}
	if code := s.injectedError(); code != 0 {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"errorCode": code, "message": "scripted failure"})
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"errorCode": 1, "message": "missing multipart body"})
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"errorCode": 1, "message": "missing file part"})
		return
	}
	defer file.Close()
	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read file", http.StatusBadRequest)
		return
	}

	id := s.storeAsset("image", r.FormValue("name"), payload)
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"assetId": idAsNumber(id)})
}

func (s *StubPlatform) handleAudioDescription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost || !strings.HasSuffix(r.URL.Path, "/description") {
		http.NotFound(w, r)
		return
	}
	if !s.authenticated(r) {
		s.guestReject(w)
		return
	}

	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/ingest/audio/"), "/description")

	var body struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	a.Description = body.Description
	w.WriteHeader(http.StatusOK)
}

func (s *StubPlatform) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var id string
	switch {
	case strings.HasPrefix(r.URL.Path, "/assets/"):
		id = strings.TrimPrefix(r.URL.Path, "/assets/")
	case strings.HasPrefix(r.URL.Path, "/ingest/assets/"):
		id = strings.TrimPrefix(r.URL.Path, "/ingest/assets/")
	default:
		id = r.URL.Query().Get("id")
	}

	if !s.authenticated(r) {
		s.guestReject(w)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		if s.cfg.PostOnlyWithdraw {
			http.Error(w, "verb not accepted here", http.StatusForbidden)
			return
		}
	case http.MethodPost:
		// accepted everywhere
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.assets[id]
	if !ok || a.Outcome == OutcomeDeleted {
		http.NotFound(w, r)
		return
	}
	a.Outcome = OutcomeDeleted
	w.WriteHeader(http.StatusOK)
}

// --- control surface ---

func (s *StubPlatform) handleControlModerate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID      string `json:"id"`
		Outcome string `json:"outcome"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	s.Moderate(body.ID, Outcome(body.Outcome))
	w.WriteHeader(http.StatusOK)
}

func (s *StubPlatform) handleControlReset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.assets = make(map[string]*stubAsset)
	s.nextID = 1000
	s.nextErrorCode = 0
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *StubPlatform) handleControlFailNext(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ErrorCode int `json:"error_code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad body", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.nextErrorCode = body.ErrorCode
	s.mu.Unlock()
	w.WriteHeader(http.StatusOK)
}

func (s *StubPlatform) storeAsset(kind, name string, payload []byte) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := strconv.FormatInt(s.nextID, 10)
	s.assets[id] = &stubAsset{
		ID:        id,
		Kind:      kind,
		Name:      name,
		Payload:   payload,
		Outcome:   OutcomePending,
		CreatedAt: time.Now().UTC(),
	}
	return id
}

func idAsNumber(id string) int64 {
	n, _ := strconv.ParseInt(id, 10, 64)
	return n
}
