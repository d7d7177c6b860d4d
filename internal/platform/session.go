package platform

import (
	"context"
	"net/http"
	"sync"

	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/webclient"
)

// CredentialCookie is the session cookie name the platform expects.
const CredentialCookie = "SessionToken"

// GuestCookie marks an unauthenticated session in Set-Cookie. Its presence on
// any negotiator response means the credential was not honored, regardless of
// HTTP status.
const GuestCookie = "GuestSession"

// csrfHeader carries the cross-site-request-forgery token in both directions.
const csrfHeader = "X-CSRF-Token"

// Session is an explicit handle for one logical platform session: credential,
// optional owning group, and a cached CSRF token. Acquire one per login,
// release with Close on logout. There is no package-level session state.
type Session struct {
	cfg        Config
	credential string
	groupID    string
	wc         webclient.WebClient
	logger     logging.Logger

	mu        sync.Mutex
	csrfToken string
}

// NewSession creates a session handle. credential may be empty for anonymous
// use (status checks only). groupID is the owning group for submissions, or
// empty for the operator's own inventory.
func NewSession(cfg Config, credential, groupID string, wc webclient.WebClient, logger logging.Logger) *Session {
	return &Session{
		cfg:        cfg,
		credential: credential,
		groupID:    groupID,
		wc:         wc,
		logger:     logger.With(logging.Field{Key: "component", Value: "session"}),
	}
}

// Authenticated reports whether the session carries a credential.
func (s *Session) Authenticated() bool { return s.credential != "" }

// GroupID returns the owning group identifier, or "".
func (s *Session) GroupID() string { return s.groupID }

// authHeaders returns request headers carrying the session credential.
func (s *Session) authHeaders() http.Header {
	h := http.Header{}
	if s.credential != "" {
		h.Set("Cookie", CredentialCookie+"="+s.credential)
	}
	return h
}

// CSRFToken returns the cached token, fetching it on first use. The platform
// hands the token out on the 403 challenge of any state-changing call; an
// authenticated no-op logout request is the conventional harmless trigger.
// Absence is tolerated: some deployments do not enforce CSRF, so ("", nil) is
// a valid result. Redundant refetches are idempotent, hence the plain mutex.
func (s *Session) CSRFToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.csrfToken != "" {
		return s.csrfToken, nil
	}
	if s.credential == "" {
		return "", ErrNoCredential
	}

	resp, err := s.wc.Do(ctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     s.cfg.BaseURL + "/v2/session/ping",
		Headers: s.authHeaders(),
	})
	if err != nil {
		return "", err
	}

	token := resp.Headers.Get(csrfHeader)
	if token == "" {
		s.logger.Debug("platform issued no csrf token")
		return "", nil
	}

	s.csrfToken = token
	return token, nil
}

// InvalidateCSRF drops the cached token so the next call refetches it. Called
// after the platform rejects a request for a stale token.
func (s *Session) InvalidateCSRF() {
	s.mu.Lock()
	s.csrfToken = ""
	s.mu.Unlock()
}

// Close releases the session handle. The credential itself is owned by the
// caller; nothing is revoked remotely.
func (s *Session) Close() error {
	s.InvalidateCSRF()
	return nil
}

// hasGuestCookie reports whether the response flags the caller as a guest
// session.
func hasGuestCookie(resp *webclient.Response) bool {
	if resp == nil {
		return false
	}
	return resp.Cookie(GuestCookie) != nil
}
