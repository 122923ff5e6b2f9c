package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type RevokedTokenRepo interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

type revokedTokenRepoGorm struct {
	db *gorm.DB
}

var _ RevokedTokenRepo = (*revokedTokenRepoGorm)(nil)

func NewRevokedTokenRepoGorm(db *gorm.DB) *revokedTokenRepoGorm {
	return &revokedTokenRepoGorm{
		db: db,
	}
}

func (r *revokedTokenRepoGorm) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.RevokedToken{TokenHash: tokenHash, ExpiresAt: expiresAt}).Error
}

func (r *revokedTokenRepoGorm) IsRevoked(ctx context.Context, tokenHash string, now time.Time) (bool, error) {
	count, err := gorm.G[model.RevokedToken](r.db).
		Where("token_hash = ? AND expires_at > ?", tokenHash, now).
		Count(ctx, "*")
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *revokedTokenRepoGorm) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	return gorm.G[model.RevokedToken](r.db).Where("expires_at <= ?", now).Delete(ctx)
}
