package platform

import "time"

// Config holds the remote platform surface and probe tuning.
type Config struct {
	// BaseURL is the platform root, e.g. "https://platform.example".
	BaseURL string

	// DeliveryTimeout bounds each binary-delivery probe.
	DeliveryTimeout time.Duration

	// CatalogTimeout bounds the catalog metadata lookup.
	CatalogTimeout time.Duration

	// PageTimeout bounds the listing-page fetch. Rendered pages are slower,
	// so this is the largest of the probe timeouts.
	PageTimeout time.Duration

	// SubmitBaseTimeout and SubmitMaxTimeout clamp the size-scaled ingestion
	// timeout.
	SubmitBaseTimeout time.Duration
	SubmitMaxTimeout  time.Duration

	// WithdrawTimeout bounds each withdrawal candidate attempt.
	WithdrawTimeout time.Duration
}

// DefaultConfig returns probe timeouts chosen so worst-case evidence
// collection stays bounded (sum of the four probe timeouts).
func DefaultConfig() Config {
	return Config{
		DeliveryTimeout:   5 * time.Second,
		CatalogTimeout:    5 * time.Second,
		PageTimeout:       10 * time.Second,
		SubmitBaseTimeout: 30 * time.Second,
		SubmitMaxTimeout:  300 * time.Second,
		WithdrawTimeout:   10 * time.Second,
	}
}
