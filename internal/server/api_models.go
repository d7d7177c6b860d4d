package server

import (
	"github.com/rinwao/hakobu/internal/library"
)

// submitResponse is returned by POST /assets.
type submitResponse struct {
	Asset *library.Asset `json:"asset"`
}

// statusResponse is returned by POST /assets/{id}/refresh.
type statusResponse struct {
	AssetID string `json:"asset_id"`
	Status  string `json:"status"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
	Code  int    `json:"code,omitempty"`
}
