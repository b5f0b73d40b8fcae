package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderStatusPending, OrderStatusAccepted, true},
		{OrderStatusPending, OrderStatusRejected, true},
		{OrderStatusAccepted, OrderStatusRejected, true},
		{OrderStatusAccepted, OrderStatusAccepted, true},
		{OrderStatusRejected, OrderStatusRejected, true},
		{OrderStatusRejected, OrderStatusAccepted, false},
		{OrderStatusAccepted, OrderStatusPending, false},
		{OrderStatus("shipped"), OrderStatusRejected, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
	assert.True(t, OrderStatusRejected.IsTerminal())
	assert.False(t, OrderStatusAccepted.IsTerminal())
}

func TestCategory_Sizes(t *testing.T) {
	assert.True(t, CategoryShoes.HasSize("42"))
	assert.False(t, CategoryShoes.HasSize("M"))
	assert.True(t, CategoryJackets.HasSize("XXXL"))
	assert.False(t, Category("hats").IsValid())
	assert.Nil(t, Category("hats").SizeLabels())

	labels := CategoryShirts.SizeLabels()
	labels[0] = "changed"
	assert.Equal(t, "S", CategoryPants.SizeLabels()[0])
}

func TestProduct_EffectivePriceAndRecompute(t *testing.T) {
	p := &Product{SellPrice: decimal.NewFromInt(120), Sizes: Sizes{"M": 2, "L": 3}}
	assert.True(t, decimal.NewFromInt(120).Equal(p.EffectivePrice()))
	assert.False(t, p.OnSale())

	sale := decimal.NewFromInt(90)
	p.SalePrice = &sale
	assert.True(t, decimal.NewFromInt(90).Equal(p.EffectivePrice()))

	p.Recompute()
	assert.Equal(t, 5, p.TotalQuantity)

	c := p.Clone()
	c.Sizes["M"] = 9
	*c.SalePrice = decimal.NewFromInt(1)
	assert.Equal(t, 2, p.Sizes["M"])
	assert.True(t, decimal.NewFromInt(90).Equal(*p.SalePrice))

	empty := &Product{}
	empty.Recompute()
	assert.NotNil(t, empty.Sizes)
	assert.Equal(t, 0, empty.TotalQuantity)
}

func TestOrder_TotalsAndQuantities(t *testing.T) {
	items := []OrderItem{
		{ProductID: "p1", Size: "M", Color: "red", Quantity: 2, Price: decimal.RequireFromString("10.50")},
		{ProductID: "p1", Size: "M", Color: "blue", Quantity: 1, Price: decimal.RequireFromString("10.50")},
		{ProductID: "p2", Size: "42", Quantity: 1, Price: decimal.NewFromInt(100)},
	}

	assert.True(t, decimal.RequireFromString("131.5").Equal(ItemsTotal(items)))
	assert.Equal(t, map[StockKey]int{
		{ProductID: "p1", Size: "M"}:  3,
		{ProductID: "p2", Size: "42"}: 1,
	}, Quantities(items))

	o := &Order{ID: "o1", Items: items}
	c := o.Clone()
	c.Items[0].Quantity = 7
	assert.Equal(t, 2, o.Items[0].Quantity)
}
