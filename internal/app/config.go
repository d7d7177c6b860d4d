package app

import (
	"github.com/rinwao/hakobu/internal/platform"
	"github.com/rinwao/hakobu/internal/scheduler"
	"github.com/rinwao/hakobu/internal/webclient"
)

// Config contains the runtime configuration shared across modules.
type Config struct {
	// PlatformCfg holds the remote platform surface and probe tuning.
	PlatformCfg platform.Config

	// Credential is the operator's session credential for the platform.
	Credential string

	// GroupID is the owning group for submissions, empty for personal
	// inventory.
	GroupID string

	// StorePath is where the asset record database lives.
	StorePath string

	// SchedulerCfg tunes the refresh loop.
	SchedulerCfg scheduler.Config

	// WebClientCfg selects the default HTTP backend.
	WebClientCfg webclient.Config

	// PageWebClientCfg selects the backend for listing-page fetches; leave
	// the zero value to reuse the default backend.
	PageWebClientCfg *webclient.Config

	// ListenAddr is the API server bind address.
	ListenAddr string
}

// DefaultConfig returns a Config populated with sensible development defaults.
func DefaultConfig() *Config {
	return &Config{
		PlatformCfg:  platform.DefaultConfig(),
		StorePath:    "hakobu.db",
		SchedulerCfg: scheduler.DefaultConfig(),
		WebClientCfg: webclient.Config{
			Client: webclient.ClientNetHTTP,
		},
		ListenAddr: ":8080",
	}
}
