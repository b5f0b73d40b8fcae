package mongostore

import (
	"context"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.mongodb.org/mongo-driver/bson"
)

// tx issues every call with the session context it is given, which binds
// it to the running transaction.
type tx struct {
	store *Store
}

func (t *tx) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return t.store.findProduct(ctx, id)
}

func (t *tx) PutProductSizes(ctx context.Context, id string, sizes domain.Sizes) error {
	if sizes == nil {
		sizes = domain.Sizes{}
	}
	update := bson.M{"$set": bson.M{
		"sizes":          map[string]int(sizes),
		"total_quantity": sizes.Total(),
		"updated_at":     t.store.timestamp(),
	}}

	res, err := t.store.products.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return store.Unavailable("update product sizes", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrProductNotFound
	}
	return nil
}

func (t *tx) CreateProduct(ctx context.Context, product *domain.Product) error {
	product.Recompute()
	now := t.store.timestamp()
	product.CreatedAt = now
	product.UpdatedAt = now

	doc, err := newProductDocument(product)
	if err != nil {
		return err
	}
	if _, err := t.store.products.InsertOne(ctx, doc); err != nil {
		return store.Unavailable("insert product", err)
	}
	return nil
}

func (t *tx) UpdateProduct(ctx context.Context, product *domain.Product) error {
	existing, err := t.store.findProduct(ctx, product.ID)
	if err != nil {
		return err
	}

	product.Recompute()
	product.CreatedAt = existing.CreatedAt
	product.UpdatedAt = t.store.timestamp()

	doc, err := newProductDocument(product)
	if err != nil {
		return err
	}
	if _, err := t.store.products.ReplaceOne(ctx, bson.M{"_id": product.ID}, doc); err != nil {
		return store.Unavailable("replace product", err)
	}
	return nil
}

func (t *tx) DeleteProduct(ctx context.Context, id string) error {
	res, err := t.store.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Unavailable("delete product", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrProductNotFound
	}
	return nil
}

func (t *tx) CreateOrder(ctx context.Context, order *domain.Order) error {
	now := t.store.timestamp()
	order.CreatedAt = now
	order.UpdatedAt = now

	doc, err := newOrderDocument(order)
	if err != nil {
		return err
	}
	if _, err := t.store.orders.InsertOne(ctx, doc); err != nil {
		return store.Unavailable("insert order", err)
	}
	return nil
}

func (t *tx) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return t.store.findOrder(ctx, id)
}

func (t *tx) UpdateOrder(ctx context.Context, order *domain.Order) error {
	existing, err := t.store.findOrder(ctx, order.ID)
	if err != nil {
		return err
	}

	order.CreatedAt = existing.CreatedAt
	order.UpdatedAt = t.store.timestamp()

	doc, err := newOrderDocument(order)
	if err != nil {
		return err
	}
	if _, err := t.store.orders.ReplaceOne(ctx, bson.M{"_id": order.ID}, doc); err != nil {
		return store.Unavailable("replace order", err)
	}
	return nil
}

func (t *tx) DeleteOrder(ctx context.Context, id string) error {
	res, err := t.store.orders.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return store.Unavailable("delete order", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrOrderNotFound
	}
	return nil
}
