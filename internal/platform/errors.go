package platform

import (
	"errors"
	"fmt"
)

// FailureKind classifies negotiator failures for the caller. The taxonomy is
// stable; messages are not.
type FailureKind string

const (
	FailureNetwork          FailureKind = "network-unreachable"
	FailureAuth             FailureKind = "authentication-invalid"
	FailureMissingFile      FailureKind = "missing-file-technical-error"
	FailureTooLarge         FailureKind = "file-too-large"
	FailureDuration         FailureKind = "duration-exceeded"
	FailureFormat           FailureKind = "unsupported-format"
	FailureCorrupted        FailureKind = "corrupted-file"
	FailureRejectedContent  FailureKind = "previously-rejected-content"
	FailureNotFound         FailureKind = "not-found"
	FailureServer           FailureKind = "server-fault"
	FailureUnclassified     FailureKind = "unclassified"
)

// platformErrorCodes maps the small integer error codes the platform embeds
// in ingestion response bodies. Unmapped codes fall back to FailureUnclassified
// carrying the raw message.
var platformErrorCodes = map[int]FailureKind{
	1: FailureMissingFile,
	4: FailureTooLarge,
	5: FailureDuration,
	6: FailureFormat,
	7: FailureCorrupted,
	8: FailureRejectedContent,
}

// SubmissionError is the typed failure returned by the Submitter.
type SubmissionError struct {
	Kind       FailureKind
	Code       int    // platform body error code, 0 if none
	StatusCode int    // HTTP status, 0 on transport failure
	Message    string // most specific available message
}

func (e *SubmissionError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("submission failed (%s, code %d): %s", e.Kind, e.Code, e.Message)
	}
	return fmt.Sprintf("submission failed (%s): %s", e.Kind, e.Message)
}

// Definitive reports whether the failure should stop any further attempts.
// Ambiguous failures may be retried by the user or advanced past by fallback
// logic; definitive ones may not.
func (e *SubmissionError) Definitive() bool {
	switch e.Kind {
	case FailureAuth, FailureTooLarge, FailureDuration, FailureFormat,
		FailureCorrupted, FailureRejectedContent, FailureMissingFile:
		return true
	}
	return false
}

// WithdrawalError is the typed failure returned by the Withdrawer.
type WithdrawalError struct {
	Kind       FailureKind
	StatusCode int
	Message    string
}

func (e *WithdrawalError) Error() string {
	return fmt.Sprintf("withdrawal failed (%s): %s", e.Kind, e.Message)
}

// ErrNoCredential is returned when an operation that requires a session
// credential is attempted without one.
var ErrNoCredential = errors.New("no session credential")
