package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"github.com/shopspring/decimal"
)

const productColumns = `id, name, description, category, colors, images, purchase_price,
	sell_price, sale_price, sizes, total_quantity, created_at, updated_at`

const orderColumns = `id, customer_name, full_address, city, town, whatsapp, status, items,
	total_price, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func getProduct(ctx context.Context, q querier, id, lock string) (*domain.Product, error) {
	row := q.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`+lock, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProductNotFound
	}
	return p, err
}

func getOrder(ctx context.Context, q querier, id, lock string) (*domain.Order, error) {
	row := q.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`+lock, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrOrderNotFound
	}
	return o, err
}

// scanProduct returns sql.ErrNoRows unwrapped so callers can map it.
func scanProduct(row scanner) (*domain.Product, error) {
	var (
		p                        domain.Product
		category                 string
		colors, images, sizes    []byte
		purchasePrice, salePrice decimal.NullDecimal
		createdAt, updatedAt     int64
	)
	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&category,
		&colors,
		&images,
		&purchasePrice,
		&p.SellPrice,
		&salePrice,
		&sizes,
		&p.TotalQuantity,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, store.Unavailable("scan product", err)
	}

	p.Category = domain.Category(category)
	if err := decodeJSON(colors, &p.Colors); err != nil {
		return nil, err
	}
	if err := decodeJSON(images, &p.Images); err != nil {
		return nil, err
	}
	if err := decodeJSON(sizes, &p.Sizes); err != nil {
		return nil, err
	}
	p.PurchasePrice = decimalPtr(purchasePrice)
	p.SalePrice = decimalPtr(salePrice)
	p.CreatedAt = fromMillis(createdAt)
	p.UpdatedAt = fromMillis(updatedAt)
	p.Recompute()
	return &p, nil
}

func scanOrder(row scanner) (*domain.Order, error) {
	var (
		o                    domain.Order
		status               string
		items                []byte
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&o.ID,
		&o.Customer.Name,
		&o.Customer.FullAddress,
		&o.Customer.City,
		&o.Customer.Town,
		&o.Customer.WhatsApp,
		&status,
		&items,
		&o.TotalPrice,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, store.Unavailable("scan order", err)
	}

	o.Status = domain.OrderStatus(status)
	if err := decodeJSON(items, &o.Items); err != nil {
		return nil, err
	}
	o.CreatedAt = fromMillis(createdAt)
	o.UpdatedAt = fromMillis(updatedAt)
	return &o, nil
}

func decodeJSON(data []byte, out any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode column: %w", err)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func decimalPtr(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
