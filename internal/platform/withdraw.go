package platform

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/webclient"
)

// The platform exposes no single reliable deletion method. Withdrawal walks
// an ordered list of (endpoint, verb) candidates: one DELETE pass, then, if
// any candidate answered 403, a POST pass over the same list, because some
// deployments only accept POST for this action.

// withdrawCandidates are the endpoint shapes, in preference order. {id} is
// substituted with the escaped asset identifier.
var withdrawCandidates = []string{
	"/assets/{id}",
	"/ingest/assets/{id}",
	"/asset/remove?id={id}",
}

type withdrawState int

const (
	stateTrying withdrawState = iota
	stateSucceeded
	stateExhausted
)

// Withdrawer removes previously submitted assets.
type Withdrawer struct {
	cfg     Config
	session *Session
	wc      webclient.WebClient
	logger  logging.Logger
}

func NewWithdrawer(cfg Config, session *Session, wc webclient.WebClient, logger logging.Logger) *Withdrawer {
	return &Withdrawer{
		cfg:     cfg,
		session: session,
		wc:      wc,
		logger:  logger.With(logging.Field{Key: "component", Value: "withdrawer"}),
	}
}

// Withdraw attempts removal of assetID. Returns nil on success or a
// *WithdrawalError once every candidate is exhausted or a definitive failure
// is classified.
func (w *Withdrawer) Withdraw(ctx context.Context, assetID string) error {
	if w.session == nil || !w.session.Authenticated() {
		return &WithdrawalError{Kind: FailureAuth, Message: ErrNoCredential.Error()}
	}

	verbs := []string{http.MethodDelete}
	state := stateTrying
	var lastErr *WithdrawalError
	saw403 := false
	sawOnly404 := true

	for pass := 0; pass < len(verbs) && state == stateTrying; pass++ {
		verb := verbs[pass]
		for i, shape := range withdrawCandidates {
			outcome, werr := w.attempt(ctx, verb, shape, assetID)
			switch outcome {
			case attemptSucceeded:
				w.logger.Info("withdrawal succeeded",
					logging.Field{Key: "asset_id", Value: assetID},
					logging.Field{Key: "verb", Value: verb},
					logging.Field{Key: "candidate", Value: i})
				state = stateSucceeded
			case attemptForbidden:
				// Schedule the POST pass once; keep walking this pass in
				// case a later candidate accepts the current verb.
				saw403 = true
				sawOnly404 = false
				lastErr = werr
			case attemptNextCandidate:
				if werr != nil && werr.StatusCode != http.StatusNotFound {
					sawOnly404 = false
				}
				if werr != nil {
					lastErr = werr
				}
			case attemptDefinitive:
				return werr
			}
			if state != stateTrying {
				break
			}
		}

		if state == stateTrying && saw403 && len(verbs) == 1 {
			verbs = append(verbs, http.MethodPost)
		}
	}

	if state == stateSucceeded {
		return nil
	}
	state = stateExhausted

	// All candidates exhausted. If nothing but 404s came back, not-found is
	// the reported reason.
	if lastErr == nil || sawOnly404 {
		return &WithdrawalError{
			Kind:       FailureNotFound,
			StatusCode: http.StatusNotFound,
			Message:    fmt.Sprintf("asset %s not found at any withdrawal endpoint", assetID),
		}
	}
	return lastErr
}

type attemptOutcome int

const (
	attemptSucceeded attemptOutcome = iota
	attemptNextCandidate
	attemptForbidden
	attemptDefinitive
)

func (w *Withdrawer) attempt(ctx context.Context, verb, shape, assetID string) (attemptOutcome, *WithdrawalError) {
	endpoint := w.cfg.BaseURL + strings.ReplaceAll(shape, "{id}", url.PathEscape(assetID))

	headers := w.session.authHeaders()
	if token, err := w.session.CSRFToken(ctx); err == nil && token != "" {
		headers.Set(csrfHeader, token)
	}

	timeout := w.cfg.WithdrawTimeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := w.wc.Do(tctx, &webclient.Request{
		Method:  verb,
		URL:     endpoint,
		Headers: headers,
	})
	if err != nil {
		// Transport failures are ambiguous per-endpoint; advance.
		return attemptNextCandidate, &WithdrawalError{Kind: FailureNetwork, Message: err.Error()}
	}

	if hasGuestCookie(resp) {
		return attemptDefinitive, &WithdrawalError{
			Kind:       FailureAuth,
			StatusCode: resp.StatusCode,
			Message:    "platform answered with a guest session",
		}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return attemptSucceeded, nil
	case resp.StatusCode == http.StatusForbidden:
		return attemptForbidden, &WithdrawalError{
			Kind:       FailureAuth,
			StatusCode: resp.StatusCode,
			Message:    "endpoint refused verb " + verb,
		}
	case resp.StatusCode == http.StatusNotFound:
		// Try the next candidate; 404 only becomes terminal at exhaustion.
		return attemptNextCandidate, &WithdrawalError{
			Kind:       FailureNotFound,
			StatusCode: resp.StatusCode,
			Message:    "no asset at " + endpoint,
		}
	case resp.StatusCode >= 500:
		return attemptNextCandidate, &WithdrawalError{
			Kind:       FailureServer,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(resp.Body)),
		}
	default:
		return attemptNextCandidate, &WithdrawalError{
			Kind:       FailureUnclassified,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(resp.Body)),
		}
	}
}
