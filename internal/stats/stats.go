// Package stats reduces orders and products into the admin dashboard report.
package stats

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/shopspring/decimal"
)

type Period string

const (
	PeriodAll   Period = "all"
	PeriodToday Period = "today"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 5
)

var ErrUnknownPeriod = errors.New("unknown period")

// ParsePeriod validates raw; an empty value means all.
func ParsePeriod(raw string) (Period, error) {
	switch p := Period(raw); p {
	case "":
		return PeriodAll, nil
	case PeriodAll, PeriodToday, PeriodWeek, PeriodMonth:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPeriod, raw)
}

// Contains reports whether an order created at t falls in the period ending at now.
// Calendar days are taken in now's location.
func (p Period) Contains(t, now time.Time) bool {
	t = t.In(now.Location())
	today := startOfDay(now)
	day := startOfDay(t)

	switch p {
	case PeriodToday:
		return day.Equal(today)
	case PeriodWeek:
		return !day.Before(today.AddDate(0, 0, -7))
	case PeriodMonth:
		return t.Year() == now.Year() && t.Month() == now.Month()
	}
	return true
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

type ProductSales struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type ProductSummary struct {
	Count      int `json:"count"`
	TotalStock int `json:"total_stock"`
	OnSale     int `json:"on_sale"`
}

type Report struct {
	Period            Period          `json:"period"`
	Total             int             `json:"total"`
	Pending           int             `json:"pending"`
	Accepted          int             `json:"accepted"`
	Rejected          int             `json:"rejected"`
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	TopProducts       []ProductSales  `json:"top_products"`
	RecentOrders      []*domain.Order `json:"recent_orders"`
	Products          ProductSummary  `json:"products"`
}

// Compute builds the report for orders created within period. Only accepted
// orders count toward revenue and top products.
func Compute(orders []*domain.Order, products []*domain.Product, period Period, now time.Time) *Report {
	report := &Report{
		Period:            period,
		TotalRevenue:      decimal.Zero,
		AverageOrderValue: decimal.Zero,
		TopProducts:       []ProductSales{},
		RecentOrders:      []*domain.Order{},
	}

	filtered := make([]*domain.Order, 0, len(orders))
	sales := make(map[string]*ProductSales)
	for _, order := range orders {
		if !period.Contains(order.CreatedAt, now) {
			continue
		}
		filtered = append(filtered, order)
		report.Total++

		switch order.Status {
		case domain.OrderStatusPending:
			report.Pending++
		case domain.OrderStatusRejected:
			report.Rejected++
		case domain.OrderStatusAccepted:
			report.Accepted++
			report.TotalRevenue = report.TotalRevenue.Add(order.TotalPrice)
			for _, item := range order.Items {
				s, ok := sales[item.ProductID]
				if !ok {
					s = &ProductSales{ProductID: item.ProductID, Name: item.ProductName, Revenue: decimal.Zero}
					sales[item.ProductID] = s
				}
				s.Quantity += item.Quantity
				s.Revenue = s.Revenue.Add(item.Subtotal())
			}
		}
	}

	if report.Accepted > 0 {
		report.AverageOrderValue = report.TotalRevenue.Div(decimal.NewFromInt(int64(report.Accepted))).Round(2)
	}

	for _, s := range sales {
		report.TopProducts = append(report.TopProducts, *s)
	}
	sort.Slice(report.TopProducts, func(i, j int) bool {
		a, b := report.TopProducts[i], report.TopProducts[j]
		if a.Quantity != b.Quantity {
			return a.Quantity > b.Quantity
		}
		return a.ProductID < b.ProductID
	})
	if len(report.TopProducts) > topProductsLimit {
		report.TopProducts = report.TopProducts[:topProductsLimit]
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID < filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})
	if len(filtered) > recentOrdersLimit {
		filtered = filtered[:recentOrdersLimit]
	}
	report.RecentOrders = filtered

	report.Products.Count = len(products)
	for _, product := range products {
		report.Products.TotalStock += product.TotalQuantity
		if product.OnSale() {
			report.Products.OnSale++
		}
	}

	return report
}
