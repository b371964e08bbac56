package repository

import (
	"context"
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"susurros/internal/domain"
)

// Open connects to the sqlite database at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&domain.Product{},
		&domain.Customer{},
		&domain.Order{},
		&domain.OrderItem{},
	); err != nil {
		return nil, err
	}
	return db, nil
}

// gormTxKey carries the transaction handle opened by GormTx so repository
// calls inside WithTransaction join the same transaction.
type gormTxKey struct{}

func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(gormTxKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// GormProducts implements ProductRepository on the SQL store.
type GormProducts struct{ db *gorm.DB }

func NewGormProducts(db *gorm.DB) *GormProducts { return &GormProducts{db: db} }

var _ ProductRepository = (*GormProducts)(nil)

func (r *GormProducts) Create(ctx context.Context, p *domain.Product) error {
	return conn(ctx, r.db).Create(p).Error
}

func (r *GormProducts) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := conn(ctx, r.db).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProducts) GetByName(ctx context.Context, name string) (*domain.Product, error) {
	var p domain.Product
	err := conn(ctx, r.db).Where("name = ?", name).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProducts) Update(ctx context.Context, p *domain.Product) error {
	return conn(ctx, r.db).Save(p).Error
}

func (r *GormProducts) List(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	if err := conn(ctx, r.db).Order("name asc").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DecrementStock is the conditional decrement guarding against oversell:
// zero affected rows means the product is missing or short on stock.
func (r *GormProducts) DecrementStock(ctx context.Context, id int64, qty int) (bool, error) {
	res := conn(ctx, r.db).Model(&domain.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GormCustomers implements CustomerRepository on the SQL store.
type GormCustomers struct{ db *gorm.DB }

func NewGormCustomers(db *gorm.DB) *GormCustomers { return &GormCustomers{db: db} }

var _ CustomerRepository = (*GormCustomers)(nil)

func (r *GormCustomers) Create(ctx context.Context, c *domain.Customer) error {
	return conn(ctx, r.db).Create(c).Error
}

// GormOrders implements OrderRepository on the SQL store.
type GormOrders struct{ db *gorm.DB }

func NewGormOrders(db *gorm.DB) *GormOrders { return &GormOrders{db: db} }

var _ OrderRepository = (*GormOrders)(nil)

// Create inserts the order header together with its line items.
func (r *GormOrders) Create(ctx context.Context, o *domain.Order) error {
	return conn(ctx, r.db).Create(o).Error
}

func (r *GormOrders) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := conn(ctx, r.db).
		Preload("Customer").
		Preload("Items.Product").
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *GormOrders) List(ctx context.Context) ([]domain.Order, error) {
	var out []domain.Order
	err := conn(ctx, r.db).
		Preload("Customer").
		Preload("Items.Product").
		Order("order_date desc").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormOrders) UpdateStatus(ctx context.Context, id int64, status domain.OrderStatus) (bool, error) {
	res := conn(ctx, r.db).Model(&domain.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// GormTx implements TxManager with a real database transaction.
type GormTx struct{ db *gorm.DB }

func NewGormTx(db *gorm.DB) *GormTx { return &GormTx{db: db} }

var _ TxManager = (*GormTx)(nil)

func (t *GormTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, gormTxKey{}, tx))
	})
}
