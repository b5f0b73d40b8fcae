package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxSizeStock bounds the stock an admin may set for one size.
const MaxSizeStock = 1_000_000

// Sizes maps a size label to its stock count.
type Sizes map[string]int

// Total returns the sum of all stock counts.
func (s Sizes) Total() int {
	total := 0
	for _, quantity := range s {
		total += quantity
	}
	return total
}

// Clone returns an independent copy of the sizes map.
func (s Sizes) Clone() Sizes {
	out := make(Sizes, len(s))
	for size, quantity := range s {
		out[size] = quantity
	}
	return out
}

type Product struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description"`
	Category      Category         `json:"category"`
	Colors        []string         `json:"colors"`
	Images        []string         `json:"images"`
	PurchasePrice *decimal.Decimal `json:"purchase_price,omitempty"`
	SellPrice     decimal.Decimal  `json:"sell_price"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
	Sizes         Sizes            `json:"sizes"`
	TotalQuantity int              `json:"total_quantity"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// EffectivePrice is the price a customer pays right now: the sale price when set, the sell price otherwise.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.SellPrice
}

// OnSale reports whether a discount is active.
func (p *Product) OnSale() bool {
	return p.SalePrice != nil
}

// Recompute refreshes derived fields. Stores call it on every write.
func (p *Product) Recompute() {
	if p.Sizes == nil {
		p.Sizes = Sizes{}
	}
	p.TotalQuantity = p.Sizes.Total()
}

// Clone returns a deep copy so callers can mutate it without touching stored state.
func (p *Product) Clone() *Product {
	c := *p
	c.Sizes = p.Sizes.Clone()
	c.Colors = append([]string(nil), p.Colors...)
	c.Images = append([]string(nil), p.Images...)
	if p.PurchasePrice != nil {
		v := *p.PurchasePrice
		c.PurchasePrice = &v
	}
	if p.SalePrice != nil {
		v := *p.SalePrice
		c.SalePrice = &v
	}
	return &c
}
