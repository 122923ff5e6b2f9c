package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
)

// LedgerService owns balances and the append-only transaction log.
//
// Deposit, Withdraw and GetBalance return a nil result with a nil error when
// the user does not exist; Withdraw does the same when the balance is too
// low. Nothing is written in those cases.
type LedgerService interface {
	Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*model.User, error)
	Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*model.User, error)
	GetBalance(ctx context.Context, userID uint) (*decimal.Decimal, error)
	RecordTransaction(ctx context.Context, userID uint, txType model.TransactionType, amount decimal.Decimal) (*model.Transaction, error)
	ListTransactions(ctx context.Context, p model.Pagination) (*model.PageResult[model.Transaction], error)
	GetUserTransactions(ctx context.Context, userID uint) ([]model.Transaction, error)

	// ChargeTx debits a user row already locked by the caller's transaction
	// and records the purchase.
	ChargeTx(ctx context.Context, tx *gorm.DB, user *model.User, amount decimal.Decimal) (*model.Transaction, error)
}

type ledgerService struct {
	tx              repository.Transactor
	userRepo        repository.UserRepo
	transactionRepo repository.TransactionRepo
}

var _ LedgerService = (*ledgerService)(nil)

func NewLedgerService(tx repository.Transactor, userRepo repository.UserRepo, transactionRepo repository.TransactionRepo) *ledgerService {
	return &ledgerService{
		tx:              tx,
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
	}
}

func (s *ledgerService) Deposit(ctx context.Context, userID uint, amount decimal.Decimal) (*model.User, error) {
	return s.move(ctx, userID, amount, model.TransactionDeposit)
}

func (s *ledgerService) Withdraw(ctx context.Context, userID uint, amount decimal.Decimal) (*model.User, error) {
	return s.move(ctx, userID, amount, model.TransactionWithdraw)
}

func (s *ledgerService) move(ctx context.Context, userID uint, amount decimal.Decimal, txType model.TransactionType) (*model.User, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	var result *model.User
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)
		user, err := users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}

		switch txType {
		case model.TransactionDeposit:
			user.Balance = user.Balance.Add(amount)
		case model.TransactionWithdraw:
			if user.Balance.LessThan(amount) {
				return nil
			}
			user.Balance = user.Balance.Sub(amount)
		}

		if err := users.Save(ctx, user); err != nil {
			return err
		}
		if err := s.transactionRepo.WithTx(tx).Create(ctx, &model.Transaction{
			UserID: user.ID,
			Type:   txType,
			Amount: amount,
		}); err != nil {
			return err
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ledgerService) GetBalance(ctx context.Context, userID uint) (*decimal.Decimal, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	balance := user.Balance
	return &balance, nil
}

func (s *ledgerService) RecordTransaction(ctx context.Context, userID uint, txType model.TransactionType, amount decimal.Decimal) (*model.Transaction, error) {
	return s.recordTx(ctx, nil, userID, txType, amount)
}

func (s *ledgerService) recordTx(ctx context.Context, tx *gorm.DB, userID uint, txType model.TransactionType, amount decimal.Decimal) (*model.Transaction, error) {
	if !txType.Valid() {
		return nil, service.Validation("Unknown transaction type")
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	transaction := &model.Transaction{
		UserID: userID,
		Type:   txType,
		Amount: amount,
	}
	if err := withTx(s.transactionRepo, tx).Create(ctx, transaction); err != nil {
		return nil, err
	}
	return transaction, nil
}

func (s *ledgerService) ChargeTx(ctx context.Context, tx *gorm.DB, user *model.User, amount decimal.Decimal) (*model.Transaction, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if user.Balance.LessThan(amount) {
		return nil, ErrInsufficientBalance
	}
	user.Balance = user.Balance.Sub(amount)
	if err := withTx(s.userRepo, tx).Save(ctx, user); err != nil {
		return nil, err
	}
	return s.recordTx(ctx, tx, user.ID, model.TransactionPurchase, amount)
}

func (s *ledgerService) ListTransactions(ctx context.Context, p model.Pagination) (*model.PageResult[model.Transaction], error) {
	p = p.Normalize()
	transactions, total, err := s.transactionRepo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(transactions, p, total), nil
}

func (s *ledgerService) GetUserTransactions(ctx context.Context, userID uint) ([]model.Transaction, error) {
	transactions, err := s.transactionRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	return transactions, nil
}
