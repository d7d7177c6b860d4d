package server

import (
	"github.com/rinwao/hakobu/internal/app"
	"github.com/rinwao/hakobu/internal/logging"
)

// Config for the API server.
type Config struct {
	// ListenAddr is the bind address, e.g. ":8080".
	ListenAddr string

	// AppConfig is the shared application configuration; nil means defaults.
	AppConfig *app.Config

	// Logger is optional; a stdout logger is created when nil.
	Logger logging.Logger
}
