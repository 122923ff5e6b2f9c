package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type MovieRepo interface {
	WithTx(tx *gorm.DB) MovieRepo
	Create(ctx context.Context, movie *model.Movie) error
	GetByID(ctx context.Context, id uint) (*model.Movie, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Movie, error)
	GetByTitle(ctx context.Context, title string) (*model.Movie, error)
	List(ctx context.Context, offset, limit int) ([]model.Movie, int64, error)
	Save(ctx context.Context, movie *model.Movie) error
	Delete(ctx context.Context, id uint) error
}

type movieRepoGorm struct {
	db *gorm.DB
}

var _ MovieRepo = (*movieRepoGorm)(nil)

func NewMovieRepoGorm(db *gorm.DB) *movieRepoGorm {
	return &movieRepoGorm{
		db: db,
	}
}

func (r *movieRepoGorm) WithTx(tx *gorm.DB) MovieRepo {
	return &movieRepoGorm{
		db: tx,
	}
}

func (r *movieRepoGorm) Create(ctx context.Context, movie *model.Movie) error {
	if err := gorm.G[model.Movie](r.db).Create(ctx, movie); err != nil {
		return err
	}
	return nil
}

func (r *movieRepoGorm) GetByID(ctx context.Context, id uint) (*model.Movie, error) {
	movie, err := gorm.G[model.Movie](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepoGorm) GetByIDForUpdate(ctx context.Context, id uint) (*model.Movie, error) {
	var movie model.Movie
	if err := forUpdate(r.db, ctx).Where("id = ?", id).First(&movie).Error; err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepoGorm) GetByTitle(ctx context.Context, title string) (*model.Movie, error) {
	movie, err := gorm.G[model.Movie](r.db).Where("title = ?", title).First(ctx)
	if err != nil {
		return nil, err
	}
	return &movie, nil
}

func (r *movieRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Movie, int64, error) {
	movies, err := gorm.G[model.Movie](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	total, err := gorm.G[model.Movie](r.db).Count(ctx, "*")
	if err != nil {
		return nil, 0, err
	}
	return movies, total, nil
}

func (r *movieRepoGorm) Save(ctx context.Context, movie *model.Movie) error {
	return r.db.WithContext(ctx).Save(movie).Error
}

func (r *movieRepoGorm) Delete(ctx context.Context, id uint) error {
	_, err := gorm.G[model.Movie](r.db).Where("id = ?", id).Delete(ctx)
	return err
}
