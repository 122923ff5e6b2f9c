package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Transactor runs fn inside one database transaction. Repositories join it
// through WithTx(tx). Returning an error from fn rolls everything back.
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type gormTransactor struct {
	db *gorm.DB
}

var _ Transactor = (*gormTransactor)(nil)

func NewTransactor(db *gorm.DB) *gormTransactor {
	return &gormTransactor{
		db: db,
	}
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return t.db.WithContext(ctx).Transaction(fn)
}

// forUpdate locks the selected rows until the surrounding transaction ends.
func forUpdate(db *gorm.DB, ctx context.Context) *gorm.DB {
	return db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
}
