package webclient

import "time"

type Client string

const (
	ClientNetHTTP  Client = "nethttp"
	ClientChromedp Client = "chromedp"
)

// Config selects and parameterizes the WebClient backend.
type Config struct {
	Client Client

	// Timeout is the transport-level timeout for the nethttp backend.
	// Callers that need per-request deadlines should use context instead.
	Timeout time.Duration

	// IdleAfter is how long the chromedp backend waits for network silence
	// before snapshotting the rendered document.
	IdleAfter time.Duration

	// Headless controls whether the chromedp backend shows a browser window.
	Headless bool
}
