package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Size        string          `json:"size"`
	Color       string          `json:"color"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

// Subtotal is price times quantity.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Customer holds the delivery details captured at checkout.
type Customer struct {
	Name        string `json:"customer_name"`
	FullAddress string `json:"full_address"`
	City        string `json:"city"`
	Town        string `json:"town"`
	WhatsApp    string `json:"whatsapp"`
}

type Order struct {
	ID         string          `json:"id"`
	Customer   Customer        `json:"customer"`
	Status     OrderStatus     `json:"status"`
	Items      []OrderItem     `json:"items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ItemsTotal sums price times quantity over items.
func ItemsTotal(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// StockKey identifies one stock counter: a product size.
type StockKey struct {
	ProductID string
	Size      string
}

// Quantities sums item quantities per product size.
func Quantities(items []OrderItem) map[StockKey]int {
	out := make(map[StockKey]int, len(items))
	for _, item := range items {
		out[StockKey{ProductID: item.ProductID, Size: item.Size}] += item.Quantity
	}
	return out
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append([]OrderItem(nil), o.Items...)
	return &c
}
