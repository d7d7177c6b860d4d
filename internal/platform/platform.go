// Package platform implements the client side of the remote creative
// platform: submitting binary assets, inferring moderation status from
// independent probe signals, and withdrawing assets.
//
// The platform exposes no authoritative status endpoint. Status is judged by
// fusing up to four read-only signals (see Collector) through a fixed
// precedence policy (see Resolve).
package platform

// Kind is the asset class. It determines the ingestion endpoint family and
// the payload encoding; the two kinds must never be conflated.
type Kind string

const (
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

// Valid reports whether k is a known asset kind.
func (k Kind) Valid() bool {
	return k == KindAudio || k == KindImage
}

// Status is the moderation judgment for a submitted asset.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)
