package stubplatform

// Config controls the stub platform's behavior knobs.
type Config struct {
	// Port for the standalone binary.
	Port int

	// ValidCredential is the only session credential the stub accepts.
	ValidCredential string

	// PostOnlyWithdraw makes the withdrawal endpoints refuse DELETE with 403
	// and accept POST, mimicking deployments that only take POST.
	PostOnlyWithdraw bool

	// GraceDownload keeps declined assets downloadable on the anonymous
	// delivery path, mimicking the platform's post-decline grace period.
	GraceDownload bool
}

// DefaultConfig returns stub defaults for local development.
func DefaultConfig() Config {
	return Config{
		Port:            9090,
		ValidCredential: "stub-credential",
	}
}
