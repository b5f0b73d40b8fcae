package mongostore

import (
	"fmt"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productDocument struct {
	ID            string                `bson:"_id"`
	Name          string                `bson:"name"`
	Description   string                `bson:"description"`
	Category      string                `bson:"category"`
	Colors        []string              `bson:"colors"`
	Images        []string              `bson:"images"`
	PurchasePrice *primitive.Decimal128 `bson:"purchase_price,omitempty"`
	SellPrice     primitive.Decimal128  `bson:"sell_price"`
	SalePrice     *primitive.Decimal128 `bson:"sale_price,omitempty"`
	Sizes         map[string]int        `bson:"sizes"`
	TotalQuantity int                   `bson:"total_quantity"`
	CreatedAt     time.Time             `bson:"created_at"`
	UpdatedAt     time.Time             `bson:"updated_at"`
}

type orderItemDocument struct {
	ProductID   string               `bson:"product_id"`
	ProductName string               `bson:"product_name"`
	Size        string               `bson:"size"`
	Color       string               `bson:"color"`
	Quantity    int                  `bson:"quantity"`
	Price       primitive.Decimal128 `bson:"price"`
}

type orderDocument struct {
	ID           string               `bson:"_id"`
	CustomerName string               `bson:"customer_name"`
	FullAddress  string               `bson:"full_address"`
	City         string               `bson:"city"`
	Town         string               `bson:"town"`
	WhatsApp     string               `bson:"whatsapp"`
	Status       string               `bson:"status"`
	Items        []orderItemDocument  `bson:"items"`
	TotalPrice   primitive.Decimal128 `bson:"total_price"`
	CreatedAt    time.Time            `bson:"created_at"`
	UpdatedAt    time.Time            `bson:"updated_at"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert %s to decimal128: %w", d, err)
	}
	return v, nil
}

func toDecimal128Ptr(d *decimal.Decimal) (*primitive.Decimal128, error) {
	if d == nil {
		return nil, nil
	}
	v, err := toDecimal128(*d)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func fromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("convert decimal128 %s: %w", v, err)
	}
	return d, nil
}

func fromDecimal128Ptr(v *primitive.Decimal128) (*decimal.Decimal, error) {
	if v == nil {
		return nil, nil
	}
	d, err := fromDecimal128(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func newProductDocument(p *domain.Product) (*productDocument, error) {
	sell, err := toDecimal128(p.SellPrice)
	if err != nil {
		return nil, err
	}
	purchase, err := toDecimal128Ptr(p.PurchasePrice)
	if err != nil {
		return nil, err
	}
	sale, err := toDecimal128Ptr(p.SalePrice)
	if err != nil {
		return nil, err
	}

	return &productDocument{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Category:      string(p.Category),
		Colors:        append([]string{}, p.Colors...),
		Images:        append([]string{}, p.Images...),
		PurchasePrice: purchase,
		SellPrice:     sell,
		SalePrice:     sale,
		Sizes:         p.Sizes.Clone(),
		TotalQuantity: p.TotalQuantity,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

func (d *productDocument) toDomain() (*domain.Product, error) {
	sell, err := fromDecimal128(d.SellPrice)
	if err != nil {
		return nil, err
	}
	purchase, err := fromDecimal128Ptr(d.PurchasePrice)
	if err != nil {
		return nil, err
	}
	sale, err := fromDecimal128Ptr(d.SalePrice)
	if err != nil {
		return nil, err
	}

	p := &domain.Product{
		ID:            d.ID,
		Name:          d.Name,
		Description:   d.Description,
		Category:      domain.Category(d.Category),
		Colors:        d.Colors,
		Images:        d.Images,
		PurchasePrice: purchase,
		SellPrice:     sell,
		SalePrice:     sale,
		Sizes:         domain.Sizes(d.Sizes),
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	p.Recompute()
	return p, nil
}

func newOrderDocument(o *domain.Order) (*orderDocument, error) {
	total, err := toDecimal128(o.TotalPrice)
	if err != nil {
		return nil, err
	}

	items := make([]orderItemDocument, 0, len(o.Items))
	for _, item := range o.Items {
		price, err := toDecimal128(item.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, orderItemDocument{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			Price:       price,
		})
	}

	return &orderDocument{
		ID:           o.ID,
		CustomerName: o.Customer.Name,
		FullAddress:  o.Customer.FullAddress,
		City:         o.Customer.City,
		Town:         o.Customer.Town,
		WhatsApp:     o.Customer.WhatsApp,
		Status:       string(o.Status),
		Items:        items,
		TotalPrice:   total,
		CreatedAt:    o.CreatedAt,
		UpdatedAt:    o.UpdatedAt,
	}, nil
}

func (d *orderDocument) toDomain() (*domain.Order, error) {
	total, err := fromDecimal128(d.TotalPrice)
	if err != nil {
		return nil, err
	}

	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		price, err := fromDecimal128(item.Price)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Size:        item.Size,
			Color:       item.Color,
			Quantity:    item.Quantity,
			Price:       price,
		})
	}

	return &domain.Order{
		ID: d.ID,
		Customer: domain.Customer{
			Name:        d.CustomerName,
			FullAddress: d.FullAddress,
			City:        d.City,
			Town:        d.Town,
			WhatsApp:    d.WhatsApp,
		},
		Status:     domain.OrderStatus(d.Status),
		Items:      items,
		TotalPrice: total,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}, nil
}
