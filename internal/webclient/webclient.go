package webclient

import (
	"context"
)

// WebClient abstracts HTTP execution so probes can run against either a plain
// net/http client or a rendering browser backend.
type WebClient interface {
	Do(ctx context.Context, req *Request) (*Response, error)

	// Get is a convenience method for simple GET requests
	Get(ctx context.Context, url string) (*Response, error)

	Close() error
}
