// Package interfaces holds the minimal cross-package contracts used to wire
// components and to inject test doubles. Implementations live elsewhere.
package interfaces

import (
	"context"

	"github.com/rinwao/hakobu/internal/library"
	"github.com/rinwao/hakobu/internal/platform"
)

// AssetStore is the contract for asset record persistence. Implementations
// should be safe for concurrent use.
type AssetStore interface {
	Put(ctx context.Context, a *library.Asset) error
	Get(ctx context.Context, id string) (*library.Asset, error)
	List(ctx context.Context, status platform.Status, limit int) ([]*library.Asset, error)
	UpdateStatus(ctx context.Context, id string, status platform.Status) error
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Close() error
}
