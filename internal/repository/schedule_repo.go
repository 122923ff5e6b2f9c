package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type ScheduleRepo interface {
	WithTx(tx *gorm.DB) ScheduleRepo
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id uint) (*model.Schedule, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Schedule, error)
	List(ctx context.Context, offset, limit int) ([]model.Schedule, int64, error)
	GetByMovieID(ctx context.Context, movieID uint) ([]model.Schedule, error)
	// FindOverlapping returns schedules other than excludeID that share the
	// movie or the auditorium and whose [start, end] window touches [start, end].
	FindOverlapping(ctx context.Context, movieID, auditoriumID, excludeID uint, start, end time.Time) ([]model.Schedule, error)
	// ListBetween is inclusive on both ends.
	ListBetween(ctx context.Context, start, end time.Time) ([]model.Schedule, error)
	ListByMovieBetween(ctx context.Context, movieID uint, start, end time.Time) ([]model.Schedule, error)
	// ListByAuditoriumFrom returns schedules starting in [from, until).
	ListByAuditoriumFrom(ctx context.Context, auditoriumID uint, from, until time.Time) ([]model.Schedule, error)
	Save(ctx context.Context, schedule *model.Schedule) error
	Delete(ctx context.Context, id uint) error
}

type scheduleRepoGorm struct {
	db *gorm.DB
}

var _ ScheduleRepo = (*scheduleRepoGorm)(nil)

func NewScheduleRepoGorm(db *gorm.DB) *scheduleRepoGorm {
	return &scheduleRepoGorm{
		db: db,
	}
}

func (r *scheduleRepoGorm) WithTx(tx *gorm.DB) ScheduleRepo {
	return &scheduleRepoGorm{
		db: tx,
	}
}

func (r *scheduleRepoGorm) Create(ctx context.Context, schedule *model.Schedule) error {
	return gorm.G[model.Schedule](r.db).Create(ctx, schedule)
}

func (r *scheduleRepoGorm) GetByID(ctx context.Context, id uint) (*model.Schedule, error) {
	schedule, err := gorm.G[model.Schedule](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepoGorm) GetByIDForUpdate(ctx context.Context, id uint) (*model.Schedule, error) {
	var schedule model.Schedule
	if err := forUpdate(r.db, ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (r *scheduleRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Schedule, int64, error) {
	schedules, err := gorm.G[model.Schedule](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	total, err := gorm.G[model.Schedule](r.db).Count(ctx, "*")
	if err != nil {
		return nil, 0, err
	}
	return schedules, total, nil
}

func (r *scheduleRepoGorm) GetByMovieID(ctx context.Context, movieID uint) ([]model.Schedule, error) {
	return gorm.G[model.Schedule](r.db).Where("movie_id = ?", movieID).Order("start_at").Find(ctx)
}

func (r *scheduleRepoGorm) FindOverlapping(ctx context.Context, movieID, auditoriumID, excludeID uint, start, end time.Time) ([]model.Schedule, error) {
	return gorm.G[model.Schedule](r.db).
		Where("(movie_id = ? OR auditorium_id = ?) AND id <> ?", movieID, auditoriumID, excludeID).
		Where("start_at <= ? AND end_at >= ?", end, start).
		Order("start_at").
		Find(ctx)
}

func (r *scheduleRepoGorm) ListBetween(ctx context.Context, start, end time.Time) ([]model.Schedule, error) {
	return gorm.G[model.Schedule](r.db).
		Where("start_at >= ? AND start_at <= ?", start, end).
		Order("start_at").
		Find(ctx)
}

func (r *scheduleRepoGorm) ListByMovieBetween(ctx context.Context, movieID uint, start, end time.Time) ([]model.Schedule, error) {
	return gorm.G[model.Schedule](r.db).
		Where("movie_id = ? AND start_at >= ? AND start_at <= ?", movieID, start, end).
		Order("start_at").
		Find(ctx)
}

func (r *scheduleRepoGorm) ListByAuditoriumFrom(ctx context.Context, auditoriumID uint, from, until time.Time) ([]model.Schedule, error) {
	return gorm.G[model.Schedule](r.db).
		Where("auditorium_id = ? AND start_at >= ? AND start_at < ?", auditoriumID, from, until).
		Order("start_at").
		Find(ctx)
}

func (r *scheduleRepoGorm) Save(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Save(schedule).Error
}

func (r *scheduleRepoGorm) Delete(ctx context.Context, id uint) error {
	_, err := gorm.G[model.Schedule](r.db).Where("id = ?", id).Delete(ctx)
	return err
}
