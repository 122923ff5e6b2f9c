package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type TicketRepo interface {
	WithTx(tx *gorm.DB) TicketRepo
	Create(ctx context.Context, ticket *model.Ticket) error
	GetByID(ctx context.Context, id uint) (*model.Ticket, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.Ticket, error)
	List(ctx context.Context, offset, limit int) ([]model.Ticket, int64, error)
	GetByUserID(ctx context.Context, userID uint) ([]model.Ticket, error)
	CountBySchedule(ctx context.Context, scheduleID uint) (int64, error)
	Save(ctx context.Context, ticket *model.Ticket) error
	Delete(ctx context.Context, id uint) error
}

type ticketRepoGorm struct {
	db *gorm.DB
}

var _ TicketRepo = (*ticketRepoGorm)(nil)

func NewTicketRepoGorm(db *gorm.DB) *ticketRepoGorm {
	return &ticketRepoGorm{
		db: db,
	}
}

func (r *ticketRepoGorm) WithTx(tx *gorm.DB) TicketRepo {
	return &ticketRepoGorm{
		db: tx,
	}
}

func (r *ticketRepoGorm) Create(ctx context.Context, ticket *model.Ticket) error {
	return gorm.G[model.Ticket](r.db).Create(ctx, ticket)
}

func (r *ticketRepoGorm) GetByID(ctx context.Context, id uint) (*model.Ticket, error) {
	ticket, err := gorm.G[model.Ticket](r.db).Where("id = ?", id).First(ctx)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepoGorm) GetByIDForUpdate(ctx context.Context, id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := forUpdate(r.db, ctx).Where("id = ?", id).First(&ticket).Error; err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepoGorm) List(ctx context.Context, offset, limit int) ([]model.Ticket, int64, error) {
	tickets, err := gorm.G[model.Ticket](r.db).Order("id").Offset(offset).Limit(limit).Find(ctx)
	if err != nil {
		return nil, 0, err
	}
	total, err := gorm.G[model.Ticket](r.db).Count(ctx, "*")
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *ticketRepoGorm) GetByUserID(ctx context.Context, userID uint) ([]model.Ticket, error) {
	return gorm.G[model.Ticket](r.db).Where("user_id = ?", userID).Order("id").Find(ctx)
}

func (r *ticketRepoGorm) CountBySchedule(ctx context.Context, scheduleID uint) (int64, error) {
	return gorm.G[model.Ticket](r.db).Where("schedule_id = ?", scheduleID).Count(ctx, "*")
}

func (r *ticketRepoGorm) Save(ctx context.Context, ticket *model.Ticket) error {
	return r.db.WithContext(ctx).Save(ticket).Error
}

func (r *ticketRepoGorm) Delete(ctx context.Context, id uint) error {
	_, err := gorm.G[model.Ticket](r.db).Where("id = ?", id).Delete(ctx)
	return err
}
