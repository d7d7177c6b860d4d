package interfaces

import (
	"context"

	"github.com/rinwao/hakobu/internal/platform"
)

// EvidenceSource produces evidence bundles for status checks. The production
// implementation is platform.Collector; tests supply canned bundles.
type EvidenceSource interface {
	Collect(ctx context.Context, assetID string, kind platform.Kind, session *platform.Session) *platform.EvidenceBundle
}

// Submitter negotiates asset ingestion.
type Submitter interface {
	Submit(ctx context.Context, req platform.SubmitRequest) (string, error)
}

// Withdrawer negotiates asset removal.
type Withdrawer interface {
	Withdraw(ctx context.Context, assetID string) error
}
