// Package storetest holds behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises st. The store must start empty.
func Run(t *testing.T, st store.Store) {
	t.Run("ProductRoundTrip", func(t *testing.T) { productRoundTrip(t, st) })
	t.Run("PutProductSizes", func(t *testing.T) { putProductSizes(t, st) })
	t.Run("UpdateAndDeleteProduct", func(t *testing.T) { updateAndDeleteProduct(t, st) })
	t.Run("OrderRoundTrip", func(t *testing.T) { orderRoundTrip(t, st) })
	t.Run("RollbackOnError", func(t *testing.T) { rollbackOnError(t, st) })
	t.Run("ReadsOwnWrites", func(t *testing.T) { readsOwnWrites(t, st) })
	t.Run("ListOrdersNewestFirst", func(t *testing.T) { listOrdersNewestFirst(t, st) })
	t.Run("Outbox", func(t *testing.T) { outbox(t, st) })
	t.Run("ConcurrentStockDebits", func(t *testing.T) { concurrentStockDebits(t, st) })
}

func NewProduct(id string) *domain.Product {
	purchase := decimal.RequireFromString("40.25")
	sale := decimal.RequireFromString("89.90")
	return &domain.Product{
		ID:            id,
		Name:          "Denim jacket " + id,
		Description:   "Washed denim",
		Category:      domain.CategoryJackets,
		Colors:        []string{"blue", "black"},
		Images:        []string{"https://cdn.example.com/" + id + ".jpg"},
		PurchasePrice: &purchase,
		SellPrice:     decimal.RequireFromString("120.50"),
		SalePrice:     &sale,
		Sizes:         domain.Sizes{"M": 2, "L": 3},
		TotalQuantity: 999,
	}
}

func NewOrder(id string, status domain.OrderStatus) *domain.Order {
	items := []domain.OrderItem{
		{ProductID: "p1", ProductName: "Denim jacket", Size: "M", Color: "blue", Quantity: 2, Price: decimal.RequireFromString("89.90")},
		{ProductID: "p2", ProductName: "Runner", Size: "42", Color: "white", Quantity: 1, Price: decimal.RequireFromString("150")},
	}
	return &domain.Order{
		ID: id,
		Customer: domain.Customer{
			Name:        "Sami",
			FullAddress: "Old city 12",
			City:        "Hebron",
			Town:        "Center",
			WhatsApp:    "0591234567",
		},
		Status:     status,
		Items:      items,
		TotalPrice: domain.ItemsTotal(items),
	}
}

func withTx(t *testing.T, st store.Store, fn store.TxFunc) {
	t.Helper()
	require.NoError(t, st.WithTx(context.Background(), fn))
}

func productRoundTrip(t *testing.T, st store.Store) {
	ctx := context.Background()
	product := NewProduct("rt-1")
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, product)
	})
	assert.False(t, product.CreatedAt.IsZero())

	got, err := st.GetProduct(ctx, "rt-1")
	require.NoError(t, err)
	assert.Equal(t, product.Name, got.Name)
	assert.Equal(t, domain.CategoryJackets, got.Category)
	assert.Equal(t, []string{"blue", "black"}, got.Colors)
	assert.Equal(t, product.Images, got.Images)
	assert.Equal(t, domain.Sizes{"M": 2, "L": 3}, got.Sizes)
	assert.Equal(t, 5, got.TotalQuantity)
	assert.True(t, product.SellPrice.Equal(got.SellPrice), got.SellPrice.String())
	require.NotNil(t, got.SalePrice)
	assert.True(t, product.SalePrice.Equal(*got.SalePrice))
	require.NotNil(t, got.PurchasePrice)
	assert.True(t, product.PurchasePrice.Equal(*got.PurchasePrice))
	assert.True(t, product.CreatedAt.Equal(got.CreatedAt))

	plain := NewProduct("rt-2")
	plain.SalePrice = nil
	plain.PurchasePrice = nil
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, plain)
	})
	got, err = st.GetProduct(ctx, "rt-2")
	require.NoError(t, err)
	assert.Nil(t, got.SalePrice)
	assert.Nil(t, got.PurchasePrice)

	_, err = st.GetProduct(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrProductNotFound)

	jackets, err := st.ListProducts(ctx, domain.CategoryJackets)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(jackets), 2)
	shoes, err := st.ListProducts(ctx, domain.CategoryShoes)
	require.NoError(t, err)
	assert.Empty(t, shoes)
}

func putProductSizes(t *testing.T, st store.Store) {
	ctx := context.Background()
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, NewProduct("sz-1"))
	})

	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.PutProductSizes(ctx, "sz-1", domain.Sizes{"M": 0, "L": 1, "XL": 4})
	})

	got, err := st.GetProduct(ctx, "sz-1")
	require.NoError(t, err)
	assert.Equal(t, domain.Sizes{"M": 0, "L": 1, "XL": 4}, got.Sizes)
	assert.Equal(t, 5, got.TotalQuantity)

	err = st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.PutProductSizes(ctx, "missing", domain.Sizes{"M": 1})
	})
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func updateAndDeleteProduct(t *testing.T, st store.Store) {
	ctx := context.Background()
	product := NewProduct("ud-1")
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, product)
	})
	createdAt := product.CreatedAt

	update := NewProduct("ud-1")
	update.Name = "Renamed"
	update.SalePrice = nil
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateProduct(ctx, update)
	})
	assert.True(t, createdAt.Equal(update.CreatedAt))

	got, err := st.GetProduct(ctx, "ud-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Nil(t, got.SalePrice)
	assert.True(t, createdAt.Equal(got.CreatedAt))

	err = st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateProduct(ctx, NewProduct("missing"))
	})
	assert.ErrorIs(t, err, store.ErrProductNotFound)

	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.DeleteProduct(ctx, "ud-1")
	})
	_, err = st.GetProduct(ctx, "ud-1")
	assert.ErrorIs(t, err, store.ErrProductNotFound)

	err = st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.DeleteProduct(ctx, "ud-1")
	})
	assert.ErrorIs(t, err, store.ErrProductNotFound)
}

func orderRoundTrip(t *testing.T, st store.Store) {
	ctx := context.Background()
	order := NewOrder("or-1", domain.OrderStatusPending)
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateOrder(ctx, order)
	})

	got, err := st.GetOrder(ctx, "or-1")
	require.NoError(t, err)
	assert.Equal(t, order.Customer, got.Customer)
	assert.Equal(t, domain.OrderStatusPending, got.Status)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Denim jacket", got.Items[0].ProductName)
	assert.Equal(t, 2, got.Items[0].Quantity)
	assert.True(t, decimal.RequireFromString("89.9").Equal(got.Items[0].Price))
	assert.True(t, decimal.RequireFromString("329.8").Equal(got.TotalPrice), got.TotalPrice.String())
	assert.True(t, order.CreatedAt.Equal(got.CreatedAt))

	got.Status = domain.OrderStatusAccepted
	got.Items = got.Items[:1]
	got.TotalPrice = domain.ItemsTotal(got.Items)
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateOrder(ctx, got)
	})

	updated, err := st.GetOrder(ctx, "or-1")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusAccepted, updated.Status)
	assert.Len(t, updated.Items, 1)
	assert.True(t, order.CreatedAt.Equal(updated.CreatedAt))

	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.DeleteOrder(ctx, "or-1")
	})
	_, err = st.GetOrder(ctx, "or-1")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)

	err = st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		return tx.UpdateOrder(ctx, NewOrder("missing", domain.OrderStatusPending))
	})
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func rollbackOnError(t *testing.T, st store.Store) {
	ctx := context.Background()
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, NewProduct("rb-1"))
	})

	boom := errors.New("boom")
	err := st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.PutProductSizes(ctx, "rb-1", domain.Sizes{"M": 0}); err != nil {
			return err
		}
		if err := tx.CreateOrder(ctx, NewOrder("rb-order", domain.OrderStatusAccepted)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := st.GetProduct(ctx, "rb-1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Sizes["M"])
	_, err = st.GetOrder(ctx, "rb-order")
	assert.ErrorIs(t, err, store.ErrOrderNotFound)
}

func readsOwnWrites(t *testing.T, st store.Store) {
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		if err := tx.CreateProduct(ctx, NewProduct("own-1")); err != nil {
			return err
		}
		if err := tx.PutProductSizes(ctx, "own-1", domain.Sizes{"S": 9}); err != nil {
			return err
		}
		p, err := tx.GetProduct(ctx, "own-1")
		if err != nil {
			return err
		}
		assert.Equal(t, 9, p.TotalQuantity)

		if err := tx.DeleteProduct(ctx, "own-1"); err != nil {
			return err
		}
		_, err = tx.GetProduct(ctx, "own-1")
		assert.ErrorIs(t, err, store.ErrProductNotFound)
		return nil
	})
}

func listOrdersNewestFirst(t *testing.T, st store.Store) {
	ctx := context.Background()
	for _, o := range []*domain.Order{
		NewOrder("ls-1", domain.OrderStatusPending),
		NewOrder("ls-2", domain.OrderStatusAccepted),
		NewOrder("ls-3", domain.OrderStatusPending),
	} {
		withTx(t, st, func(ctx context.Context, tx store.Tx) error {
			return tx.CreateOrder(ctx, o)
		})
		time.Sleep(5 * time.Millisecond)
	}

	pending, err := st.ListOrders(ctx, domain.OrderStatusPending)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ls-3", pending[0].ID)
	assert.Equal(t, "ls-1", pending[1].ID)

	all, err := st.ListOrders(ctx, "")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 3)
	assert.Equal(t, "ls-3", all[0].ID)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}
}

func outbox(t *testing.T, st store.Store) {
	ctx := context.Background()
	event := func(id, orderID string) *store.OutboxEvent {
		return &store.OutboxEvent{
			ID:          id,
			AggregateID: orderID,
			EventType:   "order.created",
			Payload:     []byte(`{"order_id":"` + orderID + `"}`),
		}
	}

	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		first := event("ev-1", "o-1")
		if err := tx.AppendEvent(ctx, first); err != nil {
			return err
		}
		assert.False(t, first.CreatedAt.IsZero())
		return tx.AppendEvent(ctx, event("ev-2", "o-1"))
	})
	err := st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
		if err := tx.AppendEvent(ctx, event("ev-lost", "o-2")); err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.AppendEvent(ctx, event("ev-3", "o-3"))
	})

	pending, err := st.UnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, "ev-1", pending[0].ID)
	assert.Equal(t, "ev-2", pending[1].ID)
	assert.Equal(t, "ev-3", pending[2].ID)
	assert.Equal(t, "o-1", pending[0].AggregateID)
	assert.Equal(t, "order.created", pending[0].EventType)
	assert.JSONEq(t, `{"order_id":"o-1"}`, string(pending[0].Payload))

	limited, err := st.UnpublishedEvents(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	require.NoError(t, st.MarkEventPublished(ctx, "ev-1"))
	pending, err = st.UnpublishedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, "ev-2", pending[0].ID)

	assert.ErrorIs(t, st.MarkEventPublished(ctx, "missing"), store.ErrNotFound)
}

var errOutOfStock = errors.New("out of stock")

// concurrentStockDebits races transactions that each take one unit and
// record an accepted order for it. Only as many as the stock allows may
// commit, and every committed debit must have its order.
func concurrentStockDebits(t *testing.T, st store.Store) {
	ctx := context.Background()
	const stock, workers = 5, 12

	product := NewProduct("conc-1")
	product.Sizes = domain.Sizes{"M": stock}
	withTx(t, st, func(ctx context.Context, tx store.Tx) error {
		return tx.CreateProduct(ctx, product)
	})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		committed []string
		failures  []error
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(orderID string) {
			defer wg.Done()
			err := st.WithTx(ctx, func(ctx context.Context, tx store.Tx) error {
				p, err := tx.GetProduct(ctx, "conc-1")
				if err != nil {
					return err
				}
				if p.Sizes["M"] < 1 {
					return errOutOfStock
				}
				if err := tx.PutProductSizes(ctx, "conc-1", domain.Sizes{"M": p.Sizes["M"] - 1}); err != nil {
					return err
				}
				order := NewOrder(orderID, domain.OrderStatusAccepted)
				order.Items = []domain.OrderItem{{
					ProductID: "conc-1", ProductName: p.Name, Size: "M", Color: "blue",
					Quantity: 1, Price: p.SellPrice,
				}}
				order.TotalPrice = domain.ItemsTotal(order.Items)
				return tx.CreateOrder(ctx, order)
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			committed = append(committed, orderID)
		}(fmt.Sprintf("conc-order-%d", i))
	}
	wg.Wait()

	assert.Len(t, committed, stock)
	require.Len(t, failures, workers-stock)
	for _, err := range failures {
		assert.ErrorIs(t, err, errOutOfStock)
	}

	got, err := st.GetProduct(ctx, "conc-1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.Sizes["M"])
	assert.Equal(t, 0, got.TotalQuantity)

	accepted := 0
	for i := 0; i < workers; i++ {
		order, err := st.GetOrder(ctx, fmt.Sprintf("conc-order-%d", i))
		if errors.Is(err, store.ErrOrderNotFound) {
			continue
		}
		require.NoError(t, err)
		accepted += order.Items[0].Quantity
	}
	assert.Equal(t, stock, accepted+got.Sizes["M"])
}
