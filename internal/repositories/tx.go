package repositories

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

// Propagation decides what Do does when no transaction is active.
type Propagation int

const (
	// PropagationRequired joins the active transaction or begins a new one.
	PropagationRequired Propagation = iota
	// PropagationSupports joins the active transaction or runs without one.
	PropagationSupports
)

type TxOptions struct {
	ReadOnly    bool
	Propagation Propagation
}

var (
	ReadOnly  = TxOptions{ReadOnly: true}
	ReadWrite = TxOptions{}
	Supports  = TxOptions{Propagation: PropagationSupports}
)

// Transactor runs fn inside a transaction boundary. Repositories called with
// the context passed to fn take part in that transaction.
type Transactor interface {
	Do(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error
}

type txKey struct{}

// TxManager is the gorm implementation of Transactor. A non-nil error from fn
// rolls the transaction back.
type TxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

func (m *TxManager) Do(ctx context.Context, opts TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	if opts.Propagation == PropagationSupports {
		return fn(ctx)
	}
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	}, &sql.TxOptions{ReadOnly: opts.ReadOnly})
}

// conn returns the transaction bound to ctx, or db scoped to ctx.
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return db.WithContext(ctx)
}

// InTransaction reports whether ctx carries an active transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}
