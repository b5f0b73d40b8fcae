package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/KoBrAIbrahim/originalBrand/internal/domain"
)

// MemoryStore implements Store with in-memory storage. Transactions are
// serialized and write to an overlay that is applied only on success.
type MemoryStore struct {
	mu       sync.RWMutex
	products map[string]*domain.Product // productID -> product
	orders   map[string]*domain.Order   // orderID -> order
	outbox   []*OutboxEvent             // unpublished, in append order
	now      func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
		now:      time.Now,
	}
}

func (s *MemoryStore) WithTx(ctx context.Context, fn TxFunc) error {
	if err := ctx.Err(); err != nil {
		return Unavailable("begin transaction", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memoryTx{
		store:    s,
		products: make(map[string]*domain.Product),
		orders:   make(map[string]*domain.Order),
		deleted:  make(map[string]bool),
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return Unavailable("commit transaction", err)
	}
	tx.commit()
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, exists := s.products[id]
	if !exists {
		return nil, ErrProductNotFound
	}
	return product.Clone(), nil
}

func (s *MemoryStore) ListProducts(_ context.Context, category domain.Category) ([]*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Product, 0, len(s.products))
	for _, product := range s.products {
		if category != "" && product.Category != category {
			continue
		}
		result = append(result, product.Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, exists := s.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	return order.Clone(), nil
}

func (s *MemoryStore) ListOrders(_ context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Order, 0, len(s.orders))
	for _, order := range s.orders {
		if status != "" && order.Status != status {
			continue
		}
		result = append(result, order.Clone())
	}
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *MemoryStore) UnpublishedEvents(_ context.Context, limit int) ([]*OutboxEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := len(s.outbox)
	if limit > 0 && limit < n {
		n = limit
	}
	result := make([]*OutboxEvent, 0, n)
	for _, event := range s.outbox[:n] {
		e := *event
		e.Payload = append([]byte(nil), event.Payload...)
		result = append(result, &e)
	}
	return result, nil
}

func (s *MemoryStore) MarkEventPublished(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, event := range s.outbox {
		if event.ID == id {
			s.outbox = append(s.outbox[:i], s.outbox[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("outbox event %s: %w", id, ErrNotFound)
}

func (s *MemoryStore) Close() error {
	return nil
}

// memoryTx reads through to the store and buffers writes until commit.
// The store's write lock is held for its whole lifetime.
type memoryTx struct {
	store    *MemoryStore
	products map[string]*domain.Product
	orders   map[string]*domain.Order
	deleted  map[string]bool // "p:<id>" or "o:<id>"
	events   []*OutboxEvent
}

func (t *memoryTx) product(id string) (*domain.Product, bool) {
	if t.deleted["p:"+id] {
		return nil, false
	}
	if p, ok := t.products[id]; ok {
		return p, true
	}
	p, ok := t.store.products[id]
	if !ok {
		return nil, false
	}
	p = p.Clone()
	t.products[id] = p
	return p, true
}

func (t *memoryTx) order(id string) (*domain.Order, bool) {
	if t.deleted["o:"+id] {
		return nil, false
	}
	if o, ok := t.orders[id]; ok {
		return o, true
	}
	o, ok := t.store.orders[id]
	if !ok {
		return nil, false
	}
	o = o.Clone()
	t.orders[id] = o
	return o, true
}

func (t *memoryTx) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	p, ok := t.product(id)
	if !ok {
		return nil, ErrProductNotFound
	}
	return p.Clone(), nil
}

func (t *memoryTx) PutProductSizes(_ context.Context, id string, sizes domain.Sizes) error {
	p, ok := t.product(id)
	if !ok {
		return ErrProductNotFound
	}
	p.Sizes = sizes.Clone()
	p.Recompute()
	p.UpdatedAt = t.store.now()
	return nil
}

func (t *memoryTx) CreateProduct(_ context.Context, product *domain.Product) error {
	now := t.store.now()
	p := product.Clone()
	p.Recompute()
	p.CreatedAt = now
	p.UpdatedAt = now
	delete(t.deleted, "p:"+p.ID)
	t.products[p.ID] = p

	product.TotalQuantity = p.TotalQuantity
	product.CreatedAt = now
	product.UpdatedAt = now
	return nil
}

func (t *memoryTx) UpdateProduct(_ context.Context, product *domain.Product) error {
	existing, ok := t.product(product.ID)
	if !ok {
		return ErrProductNotFound
	}
	p := product.Clone()
	p.Recompute()
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = t.store.now()
	t.products[p.ID] = p

	product.TotalQuantity = p.TotalQuantity
	product.CreatedAt = p.CreatedAt
	product.UpdatedAt = p.UpdatedAt
	return nil
}

func (t *memoryTx) DeleteProduct(_ context.Context, id string) error {
	if _, ok := t.product(id); !ok {
		return ErrProductNotFound
	}
	delete(t.products, id)
	t.deleted["p:"+id] = true
	return nil
}

func (t *memoryTx) CreateOrder(_ context.Context, order *domain.Order) error {
	now := t.store.now()
	o := order.Clone()
	o.CreatedAt = now
	o.UpdatedAt = now
	delete(t.deleted, "o:"+o.ID)
	t.orders[o.ID] = o

	order.CreatedAt = now
	order.UpdatedAt = now
	return nil
}

func (t *memoryTx) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	o, ok := t.order(id)
	if !ok {
		return nil, ErrOrderNotFound
	}
	return o.Clone(), nil
}

func (t *memoryTx) UpdateOrder(_ context.Context, order *domain.Order) error {
	existing, ok := t.order(order.ID)
	if !ok {
		return ErrOrderNotFound
	}
	o := order.Clone()
	o.CreatedAt = existing.CreatedAt
	o.UpdatedAt = t.store.now()
	t.orders[o.ID] = o

	order.CreatedAt = o.CreatedAt
	order.UpdatedAt = o.UpdatedAt
	return nil
}

func (t *memoryTx) DeleteOrder(_ context.Context, id string) error {
	if _, ok := t.order(id); !ok {
		return ErrOrderNotFound
	}
	delete(t.orders, id)
	t.deleted["o:"+id] = true
	return nil
}

func (t *memoryTx) AppendEvent(_ context.Context, event *OutboxEvent) error {
	e := *event
	e.Payload = append([]byte(nil), event.Payload...)
	e.CreatedAt = t.store.now()
	t.events = append(t.events, &e)

	event.CreatedAt = e.CreatedAt
	return nil
}

func (t *memoryTx) commit() {
	for key := range t.deleted {
		id := key[2:]
		if key[0] == 'p' {
			delete(t.store.products, id)
		} else {
			delete(t.store.orders, id)
		}
	}
	for id, p := range t.products {
		t.store.products[id] = p
	}
	for id, o := range t.orders {
		t.store.orders[id] = o
	}
	t.store.outbox = append(t.store.outbox, t.events...)
}
