package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type AuditoriumRepo interface {
	WithTx(tx *gorm.DB) AuditoriumRepo
	Create(ctx context.Context, auditorium *model.Auditorium) error
	GetByID(ctx context.Context, id uint) (*model.Auditorium, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Auditorium, error)
	GetByName(ctx context.Context, name string) (*model.Auditorium, error)
	List(ctx context.Context, offset, limit int) ([]model.Auditorium, int64, error)
	Count(ctx context.Context) (int64, error)
	// CountForUpdate locks every auditorium row and returns how many there are.
	CountForUpdate(ctx context.Context) (int64, error)
	Save(ctx context.Context, auditorium *model.Auditorium) error
	Delete(ctx context.Context, id uint) error
}

type auditoriumRepoGorm struct {
	db *gorm.DB
}

var _ AuditoriumRepo = (*auditoriumRepoGorm)(nil)

func NewAuditoriumRepoGorm(db *gorm.DB) *auditoriumRepoGorm {
	return &auditoriumRepoGorm{
		db: db,
	}
}

func (r *auditoriumRepoGorm) WithTx(tx *gorm.DB) AuditoriumRepo {
	return &auditoriumRepoGorm{
		db: tx,
	}
}

func (r *auditoriumRepoGorm) Create(ctx context.Context, auditorium *model.Auditorium) error {
	return gorm.G[model.Auditorium](r.db).Create(ctx, auditorium)
}

func (r *auditoriumRepoGorm) GetByID(ctx context.Context, id uint) (*model.Auditorium, error) {
	auditorium, err := gorm.G[model.Auditorium](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &auditorium, nil
}

func (r *auditoriumRepoGorm) GetByIDForUpdate(ctx context.Context, id uint) (*model.Auditorium, error) {
	var auditorium model.Auditorium
	if err := forUpdate(r.db, ctx).Where("id = ?", id).First(&auditorium).Error; err != nil {
		return nil, err
	}
	return &auditorium, nil
}

func (r *auditoriumRepoGorm) GetByName(ctx context.Context, name string) (*model.Auditorium, error) {
	auditorium, err := gorm.G[model.Auditorium](r.db).Where("name = ?", name).First(ctx)
	if err != nil {
		return nil, err
	}
	return &auditorium, nil
}

func (r *auditoriumRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Auditorium, int64, error) {
	auditoriums, err := gorm.G[model.Auditorium](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return auditoriums, total, nil
}

func (r *auditoriumRepoGorm) Count(ctx context.Context) (int64, error) {
	return gorm.G[model.Auditorium](r.db).Count(ctx, "*")
}

func (r *auditoriumRepoGorm) CountForUpdate(ctx context.Context) (int64, error) {
	var ids []uint
	if err := forUpdate(r.db, ctx).Model(&model.Auditorium{}).Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *auditoriumRepoGorm) Save(ctx context.Context, auditorium *model.Auditorium) error {
	return r.db.WithContext(ctx).Save(auditorium).Error
}

func (r *auditoriumRepoGorm) Delete(ctx context.Context, id uint) error {
	_, err := gorm.G[model.Auditorium](r.db).Where("id = ?", id).Delete(ctx)
	return err
}
