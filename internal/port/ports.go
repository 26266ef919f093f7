package port

import (
	"context"

	"github.com/nikolayk812/cartstore-demo/internal/domain"
)

type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

type Catalog interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
	GetStock(ctx context.Context, productID int64) (domain.Stock, error)
}

// Notifier delivers fire-and-forget user-facing messages.
type Notifier interface {
	Notify(message string)
}
