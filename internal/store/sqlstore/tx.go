package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
)

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type tx struct {
	q     querier
	store *Store
}

func (t *tx) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return getProduct(ctx, t.q, id, t.store.lockClause())
}

func (t *tx) PutProductSizes(ctx context.Context, id string, sizes domain.Sizes) error {
	if sizes == nil {
		sizes = domain.Sizes{}
	}
	sizesJSON, err := encodeJSON(sizes)
	if err != nil {
		return err
	}

	res, err := t.q.ExecContext(ctx,
		`UPDATE products SET sizes = $1, total_quantity = $2, updated_at = $3 WHERE id = $4`,
		sizesJSON, sizes.Total(), t.store.timestamp().UnixMilli(), id)
	if err != nil {
		return store.Unavailable("update product sizes", err)
	}
	return requireAffected(res, store.ErrProductNotFound)
}

func (t *tx) CreateProduct(ctx context.Context, product *domain.Product) error {
	product.Recompute()
	now := t.store.timestamp()

	args, err := productArgs(product)
	if err != nil {
		return err
	}
	args = append(args, now.UnixMilli(), now.UnixMilli())

	_, err = t.q.ExecContext(ctx, `INSERT INTO products (id, name, description, category, colors, images,
	          purchase_price, sell_price, sale_price, sizes, total_quantity, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`, args...)
	if err != nil {
		return store.Unavailable("insert product", err)
	}

	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (t *tx) UpdateProduct(ctx context.Context, product *domain.Product) error {
	product.Recompute()
	now := t.store.timestamp()

	args, err := productArgs(product)
	if err != nil {
		return err
	}
	args = append(args, now.UnixMilli())

	var createdAt int64
	err = t.q.QueryRowContext(ctx, `UPDATE products SET name = $2, description = $3, category = $4,
	          colors = $5, images = $6, purchase_price = $7, sell_price = $8, sale_price = $9,
	          sizes = $10, total_quantity = $11, updated_at = $12
	          WHERE id = $1 RETURNING created_at`, args...).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrProductNotFound
	}
	if err != nil {
		return store.Unavailable("update product", err)
	}

	product.CreatedAt = fromMillis(createdAt)
	product.UpdatedAt = now
	return nil
}

func (t *tx) DeleteProduct(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return store.Unavailable("delete product", err)
	}
	return requireAffected(res, store.ErrProductNotFound)
}

func (t *tx) CreateOrder(ctx context.Context, order *domain.Order) error {
	now := t.store.timestamp()

	itemsJSON, err := encodeJSON(order.Items)
	if err != nil {
		return err
	}

	_, err = t.q.ExecContext(ctx, `INSERT INTO orders (id, customer_name, full_address, city, town, whatsapp,
	          status, items, total_price, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		order.ID,
		order.Customer.Name,
		order.Customer.FullAddress,
		order.Customer.City,
		order.Customer.Town,
		order.Customer.WhatsApp,
		string(order.Status),
		itemsJSON,
		order.TotalPrice,
		now.UnixMilli(),
		now.UnixMilli())
	if err != nil {
		return store.Unavailable("insert order", err)
	}

	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

func (t *tx) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return getOrder(ctx, t.q, id, t.store.lockClause())
}

func (t *tx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	now := t.store.timestamp()

	itemsJSON, err := encodeJSON(order.Items)
	if err != nil {
		return err
	}

	var createdAt int64
	err = t.q.QueryRowContext(ctx, `UPDATE orders SET customer_name = $2, full_address = $3, city = $4,
	          town = $5, whatsapp = $6, status = $7, items = $8, total_price = $9, updated_at = $10
	          WHERE id = $1 RETURNING created_at`,
		order.ID,
		order.Customer.Name,
		order.Customer.FullAddress,
		order.Customer.City,
		order.Customer.Town,
		order.Customer.WhatsApp,
		string(order.Status),
		itemsJSON,
		order.TotalPrice,
		now.UnixMilli()).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrOrderNotFound
	}
	if err != nil {
		return store.Unavailable("update order", err)
	}

	order.CreatedAt = fromMillis(createdAt)
	order.UpdatedAt = now
	return nil
}

func (t *tx) DeleteOrder(ctx context.Context, id string) error {
	res, err := t.q.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return store.Unavailable("delete order", err)
	}
	return requireAffected(res, store.ErrOrderNotFound)
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return store.Unavailable("rows affected", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func productArgs(p *domain.Product) ([]any, error) {
	colors, err := encodeJSON(nonNil(p.Colors))
	if err != nil {
		return nil, err
	}
	images, err := encodeJSON(nonNil(p.Images))
	if err != nil {
		return nil, err
	}
	sizes, err := encodeJSON(p.Sizes)
	if err != nil {
		return nil, err
	}
	return []any{
		p.ID,
		p.Name,
		p.Description,
		string(p.Category),
		colors,
		images,
		nullDecimal(p.PurchasePrice),
		p.SellPrice,
		nullDecimal(p.SalePrice),
		sizes,
		p.TotalQuantity,
	}, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

// encodeJSON returns a string so both drivers bind it as text.
func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode column: %w", err)
	}
	return string(data), nil
}
