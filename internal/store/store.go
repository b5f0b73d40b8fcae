package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
)

// Common errors returned by the stores
var (
	ErrNotFound           = errors.New("not found")
	ErrProductNotFound    = fmt.Errorf("product %w", ErrNotFound)
	ErrOrderNotFound      = fmt.Errorf("order %w", ErrNotFound)
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// ProductStore reads and writes product records by key.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// PutProductSizes replaces the stock map of a product and recomputes its total quantity.
	PutProductSizes(ctx context.Context, id string, sizes domain.Sizes) error

	CreateProduct(ctx context.Context, product *domain.Product) error
	UpdateProduct(ctx context.Context, product *domain.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

// OrderStore reads and writes order records by key.
type OrderStore interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, id string) error
}

// Tx is a transactional view over both stores. Writes made through it become
// visible together when the transaction commits, or not at all.
type Tx interface {
	ProductStore
	OrderStore
	OutboxWriter
}

// TxFunc is run inside a transaction. It must use the ctx it is given for
// every Tx call and may be retried by the backend, so it must not have side
// effects outside the Tx.
type TxFunc func(ctx context.Context, tx Tx) error

// Store is the persistence boundary of the service.
type Store interface {
	// WithTx runs fn atomically. Any error returned by fn rolls back every write.
	WithTx(ctx context.Context, fn TxFunc) error

	GetProduct(ctx context.Context, id string) (*domain.Product, error)

	// ListProducts returns products newest first; an empty category lists all.
	ListProducts(ctx context.Context, category domain.Category) ([]*domain.Product, error)

	GetOrder(ctx context.Context, id string) (*domain.Order, error)

	// ListOrders returns orders newest first; an empty status lists all.
	ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)

	OutboxReader

	Close() error
}

// Unavailable wraps a backend failure so callers can match ErrStorageUnavailable.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
