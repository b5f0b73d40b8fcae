package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) *MemoryStore {
	store := NewMemoryStore()
	t.Cleanup(func() { store.Close() })

	// Deterministic, strictly increasing timestamps
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	tick := 0
	store.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return store
}

func newTestProduct(id string, sizes domain.Sizes) *domain.Product {
	return &domain.Product{
		ID:        id,
		Name:      "Runner " + id,
		Category:  domain.CategoryShoes,
		Colors:    []string{"black"},
		SellPrice: decimal.NewFromInt(120),
		Sizes:     sizes,
	}
}

func seedProduct(t *testing.T, s *MemoryStore, p *domain.Product) {
	err := s.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.CreateProduct(ctx, p)
	})
	require.NoError(t, err)
}

func TestMemoryStore_CreateProduct_RecomputesTotal(t *testing.T) {
	s := setupStore(t)
	p := newTestProduct("p1", domain.Sizes{"40": 3, "41": 4})
	p.TotalQuantity = 999 // caller value is ignored

	seedProduct(t, s, p)

	stored, err := s.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, stored.TotalQuantity)
	assert.Equal(t, 7, p.TotalQuantity)
	assert.False(t, stored.CreatedAt.IsZero())
}

func TestMemoryStore_GetProduct_NotFound(t *testing.T) {
	s := setupStore(t)

	_, err := s.GetProduct(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutProductSizes(t *testing.T) {
	s := setupStore(t)
	seedProduct(t, s, newTestProduct("p1", domain.Sizes{"40": 3}))

	err := s.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.PutProductSizes(ctx, "p1", domain.Sizes{"40": 1, "42": 5})
	})
	require.NoError(t, err)

	stored, err := s.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.Sizes{"40": 1, "42": 5}, stored.Sizes)
	assert.Equal(t, 6, stored.TotalQuantity)
}

func TestMemoryStore_WithTx_RollbackOnError(t *testing.T) {
	s := setupStore(t)
	seedProduct(t, s, newTestProduct("p1", domain.Sizes{"40": 3}))
	boom := errors.New("boom")

	err := s.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		if err := tx.PutProductSizes(ctx, "p1", domain.Sizes{"40": 0}); err != nil {
			return err
		}
		if err := tx.CreateOrder(ctx, &domain.Order{ID: "o1", Status: domain.OrderStatusPending}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// Nothing from the failed transaction is visible
	stored, err := s.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Sizes["40"])

	_, err = s.GetOrder(context.Background(), "o1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryStore_WithTx_ReadsOwnWrites(t *testing.T) {
	s := setupStore(t)
	seedProduct(t, s, newTestProduct("p1", domain.Sizes{"40": 3}))

	err := s.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		require.NoError(t, tx.PutProductSizes(ctx, "p1", domain.Sizes{"40": 2}))
		p, err := tx.GetProduct(ctx, "p1")
		require.NoError(t, err)
		assert.Equal(t, 2, p.Sizes["40"])

		require.NoError(t, tx.DeleteProduct(ctx, "p1"))
		_, err = tx.GetProduct(ctx, "p1")
		assert.ErrorIs(t, err, ErrProductNotFound)
		return nil
	})
	require.NoError(t, err)

	_, err = s.GetProduct(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestMemoryStore_ReturnedRecordsAreCopies(t *testing.T) {
	s := setupStore(t)
	seedProduct(t, s, newTestProduct("p1", domain.Sizes{"40": 3}))

	p, err := s.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	p.Sizes["40"] = 100

	again, err := s.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, again.Sizes["40"])
}

func TestMemoryStore_Orders_CRUD(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	order := &domain.Order{
		ID:     "o1",
		Status: domain.OrderStatusPending,
		Items: []domain.OrderItem{
			{ProductID: "p1", Size: "40", Quantity: 2, Price: decimal.NewFromInt(10)},
		},
		TotalPrice: decimal.NewFromInt(20),
	}
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.CreateOrder(ctx, order)
	}))
	assert.False(t, order.CreatedAt.IsZero())

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		o, err := tx.GetOrder(ctx, "o1")
		if err != nil {
			return err
		}
		o.Status = domain.OrderStatusAccepted
		return tx.UpdateOrder(ctx, o)
	}))

	stored, err := s.GetOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, stored.Status)
	assert.Equal(t, order.CreatedAt, stored.CreatedAt)
	assert.True(t, stored.UpdatedAt.After(stored.CreatedAt))

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.DeleteOrder(ctx, "o1")
	}))
	_, err = s.GetOrder(ctx, "o1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryStore_UpdateOrder_NotFound(t *testing.T) {
	s := setupStore(t)

	err := s.WithTx(context.Background(), func(ctx context.Context, tx Tx) error {
		return tx.UpdateOrder(ctx, &domain.Order{ID: "nope"})
	})
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestMemoryStore_ListOrders_FilterAndOrder(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	for _, o := range []*domain.Order{
		{ID: "o1", Status: domain.OrderStatusPending},
		{ID: "o2", Status: domain.OrderStatusAccepted},
		{ID: "o3", Status: domain.OrderStatusPending},
	} {
		require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.CreateOrder(ctx, o)
		}))
	}

	all, err := s.ListOrders(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest first
	assert.Equal(t, "o3", all[0].ID)
	assert.Equal(t, "o1", all[2].ID)

	pending, err := s.ListOrders(ctx, domain.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "o3", pending[0].ID)
	assert.Equal(t, "o1", pending[1].ID)
}

func TestMemoryStore_ListProducts_ByCategory(t *testing.T) {
	s := setupStore(t)
	seedProduct(t, s, newTestProduct("p1", domain.Sizes{"40": 1}))
	jacket := newTestProduct("p2", domain.Sizes{"M": 2})
	jacket.Category = domain.CategoryJackets
	seedProduct(t, s, jacket)

	all, err := s.ListProducts(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	jackets, err := s.ListProducts(context.Background(), domain.CategoryJackets)
	require.NoError(t, err)
	require.Len(t, jackets, 1)
	assert.Equal(t, "p2", jackets[0].ID)
}

func TestMemoryStore_WithTx_CancelledContext(t *testing.T) {
	s := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WithTx(ctx, func(ctx context.Context, tx Tx) error { return nil })
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.ErrorIs(t, err, context.Canceled)
}
