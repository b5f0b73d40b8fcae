// Package mongostore implements store.Store on MongoDB. Writes run in
// multi-document transactions, so the server must be a replica set.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
	"github.com/KoBrAIbrahim/originalBrand/internal/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	db       *mongo.Database
	products *mongo.Collection
	orders   *mongo.Collection
	outbox   *mongo.Collection
	now      func() time.Time
}

func NewStore(db *mongo.Database) *Store {
	return &Store{
		db:       db,
		products: db.Collection("products"),
		orders:   db.Collection("orders"),
		outbox:   db.Collection("outbox_events"),
		now:      time.Now,
	}
}

func (s *Store) CreateIndexes(ctx context.Context) error {
	_, err := s.products.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create product indexes: %w", err)
	}

	_, err = s.orders.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create order indexes: %w", err)
	}

	_, err = s.outbox.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "published_at", Value: 1}, {Key: "seq", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("failed to create outbox index: %w", err)
	}
	return nil
}

// WithTx runs fn in a session transaction. The driver retries fn on
// transient transaction errors such as write conflicts.
func (s *Store) WithTx(ctx context.Context, fn store.TxFunc) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return store.Unavailable("start session", err)
	}
	defer session.EndSession(context.Background())

	var fnErr error
	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		fnErr = fn(sc, &tx{store: s})
		return nil, fnErr
	})
	if err == nil {
		return nil
	}
	if fnErr != nil {
		return fnErr
	}
	return store.Unavailable("commit transaction", err)
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	return s.findProduct(ctx, id)
}

func (s *Store) ListProducts(ctx context.Context, category domain.Category) ([]*domain.Product, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = string(category)
	}

	cursor, err := s.products.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, store.Unavailable("find products", err)
	}
	defer cursor.Close(ctx)

	var docs []productDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, store.Unavailable("decode products", err)
	}

	products := make([]*domain.Product, 0, len(docs))
	for i := range docs {
		p, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return s.findOrder(ctx, id)
}

func (s *Store) ListOrders(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = string(status)
	}

	cursor, err := s.orders.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, store.Unavailable("find orders", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, store.Unavailable("decode orders", err)
	}

	orders := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].toDomain()
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Client().Disconnect(ctx)
}

func (s *Store) findProduct(ctx context.Context, id string) (*domain.Product, error) {
	var doc productDocument
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrProductNotFound
	}
	if err != nil {
		return nil, store.Unavailable("find product", err)
	}
	return doc.toDomain()
}

func (s *Store) findOrder(ctx context.Context, id string) (*domain.Order, error) {
	var doc orderDocument
	err := s.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrOrderNotFound
	}
	if err != nil {
		return nil, store.Unavailable("find order", err)
	}
	return doc.toDomain()
}

// timestamp returns the current time at BSON datetime precision.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})
}
