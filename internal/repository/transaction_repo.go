package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

// TransactionRepo is append-only.
type TransactionRepo interface {
	WithTx(tx *gorm.DB) TransactionRepo
	Create(ctx context.Context, transaction *model.Transaction) error
	List(ctx context.Context, offset, limit int) ([]model.Transaction, int64, error)
	GetByUserID(ctx context.Context, userID uint) ([]model.Transaction, error)
}

type transactionRepoGorm struct {
	db *gorm.DB
}

var _ TransactionRepo = (*transactionRepoGorm)(nil)

func NewTransactionRepoGorm(db *gorm.DB) *transactionRepoGorm {
	return &transactionRepoGorm{
		db: db,
	}
}

func (r *transactionRepoGorm) WithTx(tx *gorm.DB) TransactionRepo {
	return &transactionRepoGorm{
		db: tx,
	}
}

func (r *transactionRepoGorm) Create(ctx context.Context, transaction *model.Transaction) error {
	return gorm.G[model.Transaction](r.db).Create(ctx, transaction)
}

func (r *transactionRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Transaction, int64, error) {
	transactions, err := gorm.G[model.Transaction](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	total, err := gorm.G[model.Transaction](r.db).Count(ctx, "*")
	if err != nil {
		return nil, 0, err
	}
	return transactions, total, nil
}

func (r *transactionRepoGorm) GetByUserID(ctx context.Context, userID uint) ([]model.Transaction, error) {
	return gorm.G[model.Transaction](r.db).Where("user_id = ?", userID).Order("id").Find(ctx)
}
