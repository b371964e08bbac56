package repository

import (
	"context"
	"sort"
	"sync"

	"susurros/internal/domain"
)

// MemoryStore is an in-memory stand-in for the relational store with a
// simple ID generator. Used by tests and local runs without a database.
type MemoryStore struct {
	mu           sync.RWMutex
	nextProdID   int64
	nextCustID   int64
	nextOrderID  int64
	nextItemID   int64
	productsByID map[int64]domain.Product
	productIDs   map[string]int64
	customers    map[int64]domain.Customer
	ordersByID   map[int64]domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextProdID:   1,
		nextCustID:   1,
		nextOrderID:  1,
		nextItemID:   1,
		productsByID: make(map[int64]domain.Product),
		productIDs:   make(map[string]int64),
		customers:    make(map[int64]domain.Customer),
		ordersByID:   make(map[int64]domain.Order),
	}
}

// transaction-aware locking helpers
type txKey struct{}

func isTx(ctx context.Context) bool {
	v := ctx.Value(txKey{})
	if v == nil {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

func (m *MemoryStore) rlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RLock()
	}
}
func (m *MemoryStore) runlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.RUnlock()
	}
}
func (m *MemoryStore) wlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Lock()
	}
}
func (m *MemoryStore) wunlock(ctx context.Context) {
	if !isTx(ctx) {
		m.mu.Unlock()
	}
}

// Ensure interfaces
var _ ProductRepository = (*MemoryStore)(nil)

// ProductRepository implementation

func (m *MemoryStore) Create(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p.ID = m.nextProdID
	m.nextProdID++
	m.productsByID[p.ID] = *p
	m.productIDs[p.Name] = p.ID
	return nil
}

func (m *MemoryStore) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	p, ok := m.productsByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := p
	return &cp, nil
}

func (m *MemoryStore) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	id, ok := m.productIDs[name]
	if !ok {
		return nil, ErrNotFound
	}
	cp := m.productsByID[id]
	return &cp, nil
}

func (m *MemoryStore) Update(ctx context.Context, p *domain.Product) error {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	old, ok := m.productsByID[p.ID]
	if !ok {
		return ErrNotFound
	}
	if old.Name != p.Name {
		delete(m.productIDs, old.Name)
		m.productIDs[p.Name] = p.ID
	}
	m.productsByID[p.ID] = *p
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]domain.Product, error) {
	m.rlock(ctx)
	defer m.runlock(ctx)
	out := make([]domain.Product, 0, len(m.productsByID))
	for _, p := range m.productsByID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryStore) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	m.wlock(ctx)
	defer m.wunlock(ctx)
	p, ok := m.productsByID[id]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	m.productsByID[id] = p
	return true, nil
}

// CustomerRepository implementation on wrapper type
type MemoryCustomers struct{ store *MemoryStore }

func NewMemoryCustomers(store *MemoryStore) *MemoryCustomers { return &MemoryCustomers{store: store} }

var _ CustomerRepository = (*MemoryCustomers)(nil)

func (mc *MemoryCustomers) Create(ctx context.Context, c *domain.Customer) error {
	mc.store.wlock(ctx)
	defer mc.store.wunlock(ctx)
	c.ID = mc.store.nextCustID
	mc.store.nextCustID++
	mc.store.customers[c.ID] = *c
	return nil
}

// OrderRepository implementation on wrapper type
type MemoryOrders struct{ store *MemoryStore }

func NewMemoryOrders(store *MemoryStore) *MemoryOrders { return &MemoryOrders{store: store} }

var _ OrderRepository = (*MemoryOrders)(nil)

func (mo *MemoryOrders) Create(ctx context.Context, o *domain.Order) error {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o.ID = mo.store.nextOrderID
	mo.store.nextOrderID++
	for i := range o.Items {
		o.Items[i].ID = mo.store.nextItemID
		mo.store.nextItemID++
		o.Items[i].OrderID = o.ID
	}
	mo.store.ordersByID[o.ID] = cloneOrder(*o)
	return nil
}

func (mo *MemoryOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := mo.store.loadRelations(o)
	return &cp, nil
}

func (mo *MemoryOrders) List(ctx context.Context) ([]domain.Order, error) {
	mo.store.rlock(ctx)
	defer mo.store.runlock(ctx)
	out := make([]domain.Order, 0, len(mo.store.ordersByID))
	for _, o := range mo.store.ordersByID {
		out = append(out, mo.store.loadRelations(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (mo *MemoryOrders) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (bool, error) {
	mo.store.wlock(ctx)
	defer mo.store.wunlock(ctx)
	o, ok := mo.store.ordersByID[id]
	if !ok {
		return false, nil
	}
	o.Status = status
	mo.store.ordersByID[id] = o
	return true, nil
}

// loadRelations emulates the SQL store's eager loading: the returned copy
// carries the customer row and each line's product row.
func (m *MemoryStore) loadRelations(o domain.Order) domain.Order {
	cp := cloneOrder(o)
	if c, ok := m.customers[o.CustomerID]; ok {
		cp.Customer = c
	}
	for i := range cp.Items {
		if p, ok := m.productsByID[cp.Items[i].ProductID]; ok {
			cp.Items[i].Product = p
		}
	}
	return cp
}

func cloneOrder(o domain.Order) domain.Order {
	cp := o
	cp.Items = make([]domain.OrderItem, len(o.Items))
	copy(cp.Items, o.Items)
	return cp
}

// Tx manager using the write lock to emulate a transaction boundary. The
// context is flagged so repository calls skip their own locks inside fn.
type MemoryTx struct{ store *MemoryStore }

func NewMemoryTx(store *MemoryStore) *MemoryTx { return &MemoryTx{store: store} }

var _ TxManager = (*MemoryTx)(nil)

func (tx *MemoryTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	tx.store.mu.Lock()
	defer tx.store.mu.Unlock()
	ctx = context.WithValue(ctx, txKey{}, true)
	return fn(ctx)
}
