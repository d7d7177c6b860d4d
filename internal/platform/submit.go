package platform

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"encoding/xml"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rinwao/hakobu/internal/logging"
	"github.com/rinwao/hakobu/internal/webclient"
)

// SubmitRequest describes one submission attempt.
type SubmitRequest struct {
	Payload     []byte
	Filename    string
	Kind        Kind
	Name        string
	Description string
}

// Submitter negotiates asset ingestion with the platform. The two asset kinds
// use structurally different endpoints and payload encodings and must never
// be conflated.
type Submitter struct {
	cfg     Config
	session *Session
	wc      webclient.WebClient
	logger  logging.Logger
}

func NewSubmitter(cfg Config, session *Session, wc webclient.WebClient, logger logging.Logger) *Submitter {
	return &Submitter{
		cfg:     cfg,
		session: session,
		wc:      wc,
		logger:  logger.With(logging.Field{Key: "component", Value: "submitter"}),
	}
}

// audioDocument is the structured ingestion document for the audio endpoint
// family. The payload travels base64-embedded, not as a binary part.
type audioDocument struct {
	XMLName  xml.Name `xml:"asset"`
	Name     string   `xml:"name"`
	Filename string   `xml:"file>name"`
	Encoding string   `xml:"file>encoding"`
	Data     string   `xml:"file>data"`
	GroupID  string   `xml:"groupId,omitempty"`
}

// Submit posts the payload to the kind-specific ingestion endpoint and
// returns the platform-assigned identifier. Failures come back as
// *SubmissionError; the caller decides about retries (none are automatic).
func (sub *Submitter) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if !req.Kind.Valid() {
		return "", &SubmissionError{Kind: FailureUnclassified, Message: "unknown asset kind " + string(req.Kind)}
	}
	if sub.session == nil || !sub.session.Authenticated() {
		return "", &SubmissionError{Kind: FailureAuth, Message: ErrNoCredential.Error()}
	}

	// Token fetch is best-effort: deployments without CSRF enforcement hand
	// out nothing, and submission proceeds without the header.
	token, err := sub.session.CSRFToken(ctx)
	if err != nil {
		sub.logger.Debug("csrf token fetch failed, submitting without",
			logging.Field{Key: "error", Value: err.Error()})
	}

	var (
		endpoint    string
		body        []byte
		contentType string
	)
	switch req.Kind {
	case KindAudio:
		endpoint = sub.cfg.BaseURL + "/ingest/audio?name=" + url.QueryEscape(req.Name)
		body, err = encodeAudioDocument(req, sub.session.GroupID())
		contentType = "application/xml"
	case KindImage:
		endpoint = sub.cfg.BaseURL + "/ingest/image"
		body, contentType, err = encodeImageForm(req, sub.session.GroupID())
	}
	if err != nil {
		return "", &SubmissionError{Kind: FailureUnclassified, Message: "encode payload: " + err.Error()}
	}

	headers := sub.session.authHeaders()
	headers.Set("Content-Type", contentType)
	if token != "" {
		headers.Set(csrfHeader, token)
	}

	tctx, cancel := context.WithTimeout(ctx, sub.submitTimeout(len(req.Payload)))
	defer cancel()

	resp, err := sub.wc.Do(tctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     endpoint,
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		return "", &SubmissionError{Kind: FailureNetwork, Message: err.Error()}
	}

	assetID, serr := classifySubmitResponse(resp)
	if serr != nil {
		sub.logger.Warn("submission rejected",
			logging.Field{Key: "kind", Value: string(req.Kind)},
			logging.Field{Key: "failure", Value: string(serr.Kind)},
			logging.Field{Key: "status", Value: serr.StatusCode})
		return "", serr
	}

	sub.logger.Info("submission accepted",
		logging.Field{Key: "kind", Value: string(req.Kind)},
		logging.Field{Key: "asset_id", Value: assetID})

	// The audio endpoint family ignores descriptions on ingest; attach it in
	// a best-effort follow-up that never downgrades the submission result.
	if req.Kind == KindAudio && req.Description != "" {
		sub.attachDescription(ctx, assetID, req.Description)
	}

	return assetID, nil
}

// submitTimeout scales the request deadline by payload size: base plus one
// second per 100KiB, clamped to [base, max].
func (sub *Submitter) submitTimeout(payloadSize int) time.Duration {
	base := sub.cfg.SubmitBaseTimeout
	if base == 0 {
		base = 30 * time.Second
	}
	max := sub.cfg.SubmitMaxTimeout
	if max == 0 {
		max = 300 * time.Second
	}

	t := base + time.Duration(payloadSize/(100*1024))*time.Second
	if t > max {
		t = max
	}
	return t
}

func encodeAudioDocument(req SubmitRequest, groupID string) ([]byte, error) {
	doc := audioDocument{
		Name:     req.Name,
		Filename: req.Filename,
		Encoding: "base64",
		Data:     base64.StdEncoding.EncodeToString(req.Payload),
		GroupID:  groupID,
	}
	out, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

func encodeImageForm(req SubmitRequest, groupID string) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", req.Name); err != nil {
		return nil, "", err
	}
	if req.Description != "" {
		if err := w.WriteField("description", req.Description); err != nil {
			return nil, "", err
		}
	}
	if groupID != "" {
		if err := w.WriteField("groupId", groupID); err != nil {
			return nil, "", err
		}
	}

	part, err := w.CreateFormFile("file", req.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Payload); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}

// ingestResponse is the loosely typed body the platform returns. Either an
// identifier or an error code; field names drift across deployments.
type ingestResponse struct {
	AssetID   json.Number `json:"assetId"`
	ID        json.Number `json:"id"`
	ErrorCode int         `json:"errorCode"`
	Code      int         `json:"code"`
	Message   string      `json:"message"`
}

// classifySubmitResponse applies the classification precedence:
//
//  1. A guest-session cookie means the credential was not honored, whatever
//     the HTTP status says.
//  2. A body error code maps to a specific failure, overriding generic
//     status-code handling (a fixture may pair code 4 with HTTP 200; it is
//     still file-too-large).
//  3. Success needs an identifier in the body; 2xx alone is not sufficient.
//  4. Only then does the raw status code decide.
func classifySubmitResponse(resp *webclient.Response) (string, *SubmissionError) {
	if hasGuestCookie(resp) {
		return "", &SubmissionError{
			Kind:       FailureAuth,
			StatusCode: resp.StatusCode,
			Message:    "platform answered with a guest session",
		}
	}

	bodyText := strings.TrimSpace(string(resp.Body))

	var parsed ingestResponse
	jsonOK := json.Unmarshal(resp.Body, &parsed) == nil

	if jsonOK {
		code := parsed.ErrorCode
		if code == 0 {
			code = parsed.Code
		}
		if code != 0 {
			kind, ok := platformErrorCodes[code]
			msg := parsed.Message
			if msg == "" {
				msg = bodyText
			}
			if !ok {
				kind = FailureUnclassified
			}
			return "", &SubmissionError{Kind: kind, Code: code, StatusCode: resp.StatusCode, Message: msg}
		}

		id := parsed.AssetID.String()
		if id == "" || id == "0" {
			id = parsed.ID.String()
		}
		if id != "" && id != "0" && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return id, nil
		}
	}

	// Legacy deployments answer with the bare identifier as plain text.
	if resp.StatusCode >= 200 && resp.StatusCode < 300 && bodyText != "" {
		if _, err := strconv.ParseInt(bodyText, 10, 64); err == nil {
			return bodyText, nil
		}
	}

	return "", classifyByStatus(resp.StatusCode, bodyText)
}

func classifyByStatus(status int, bodyText string) *SubmissionError {
	msg := bodyText
	if msg == "" {
		msg = http.StatusText(status)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &SubmissionError{Kind: FailureAuth, StatusCode: status, Message: msg}
	case status == http.StatusNotFound:
		return &SubmissionError{Kind: FailureNotFound, StatusCode: status, Message: msg}
	case status == http.StatusRequestEntityTooLarge:
		return &SubmissionError{Kind: FailureTooLarge, StatusCode: status, Message: msg}
	case status >= 500:
		return &SubmissionError{Kind: FailureServer, StatusCode: status, Message: msg}
	default:
		return &SubmissionError{Kind: FailureUnclassified, StatusCode: status, Message: msg}
	}
}

// attachDescription is fire-and-forget: a failure is logged and dropped.
func (sub *Submitter) attachDescription(ctx context.Context, assetID, description string) {
	body, err := json.Marshal(map[string]string{"description": description})
	if err != nil {
		return
	}

	headers := sub.session.authHeaders()
	headers.Set("Content-Type", "application/json")
	if token, err := sub.session.CSRFToken(ctx); err == nil && token != "" {
		headers.Set(csrfHeader, token)
	}

	tctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	resp, err := sub.wc.Do(tctx, &webclient.Request{
		Method:  http.MethodPost,
		URL:     sub.cfg.BaseURL + "/ingest/audio/" + url.PathEscape(assetID) + "/description",
		Headers: headers,
		Body:    body,
	})
	if err != nil {
		sub.logger.Warn("description follow-up failed",
			logging.Field{Key: "asset_id", Value: assetID},
			logging.Field{Key: "error", Value: err.Error()})
		return
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		sub.logger.Warn("description follow-up rejected",
			logging.Field{Key: "asset_id", Value: assetID},
			logging.Field{Key: "status", Value: resp.StatusCode})
	}
}
