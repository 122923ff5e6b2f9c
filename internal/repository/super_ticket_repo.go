package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

type SuperTicketRepo interface {
	WithTx(tx *gorm.DB) SuperTicketRepo
	Create(ctx context.Context, ticket *model.SuperTicket) error
	GetByID(ctx context.Context, id uint) (*model.SuperTicket, error)
	GetByIDForUpdate(ctx context.Context, id uint) (*model.SuperTicket, error)
	List(ctx context.Context, offset, limit int) ([]model.SuperTicket, int64, error)
	GetByUserID(ctx context.Context, userID uint) ([]model.SuperTicket, error)
	// Save persists the ticket row only; bookings are written with AddBooking
	// and ReplaceBookings.
	Save(ctx context.Context, ticket *model.SuperTicket) error
	Delete(ctx context.Context, id uint) error
	AddBooking(ctx context.Context, booking *model.SuperTicketBooking) error
	ReplaceBookings(ctx context.Context, superTicketID uint, scheduleIDs []uint) ([]model.SuperTicketBooking, error)
	CountBookingsBySchedule(ctx context.Context, scheduleID uint) (int64, error)
}

type superTicketRepoGorm struct {
	db *gorm.DB
}

var _ SuperTicketRepo = (*superTicketRepoGorm)(nil)

func NewSuperTicketRepoGorm(db *gorm.DB) *superTicketRepoGorm {
	return &superTicketRepoGorm{
		db: db,
	}
}

func (r *superTicketRepoGorm) WithTx(tx *gorm.DB) SuperTicketRepo {
	return &superTicketRepoGorm{
		db: tx,
	}
}

func orderedBookings(db *gorm.DB) *gorm.DB {
	return db.Order("position")
}

func (r *superTicketRepoGorm) Create(ctx context.Context, ticket *model.SuperTicket) error {
	return r.db.WithContext(ctx).Omit("Bookings").Create(ticket).Error
}

func (r *superTicketRepoGorm) GetByID(ctx context.Context, id uint) (*model.SuperTicket, error) {
	var ticket model.SuperTicket
	err := r.db.WithContext(ctx).
		Preload("Bookings", orderedBookings).
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *superTicketRepoGorm) GetByIDForUpdate(ctx context.Context, id uint) (*model.SuperTicket, error) {
	var ticket model.SuperTicket
	err := forUpdate(r.db, ctx).
		Preload("Bookings", orderedBookings).
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *superTicketRepoGorm) List(ctx context.Context, offset, limit int) ([]model.SuperTicket, int64, error) {
	var tickets []model.SuperTicket
	err := r.db.WithContext(ctx).
		Preload("Bookings", orderedBookings).
		Order("id").Offset(offset).Limit(limit).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	total, err := gorm.G[model.SuperTicket](r.db).Count(ctx, "*")
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (r *superTicketRepoGorm) GetByUserID(ctx context.Context, userID uint) ([]model.SuperTicket, error) {
	var tickets []model.SuperTicket
	err := r.db.WithContext(ctx).
		Preload("Bookings", orderedBookings).
		Where("user_id = ?", userID).
		Order("id").
		Find(&tickets).Error
	if err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *superTicketRepoGorm) Save(ctx context.Context, ticket *model.SuperTicket) error {
	return r.db.WithContext(ctx).Omit("Bookings").Save(ticket).Error
}

func (r *superTicketRepoGorm) Delete(ctx context.Context, id uint) error {
	if _, err := gorm.G[model.SuperTicketBooking](r.db).Where("super_ticket_id = ?", id).Delete(ctx); err != nil {
		return err
	}
	_, err := gorm.G[model.SuperTicket](r.db).Where("id = ?", id).Delete(ctx)
	return err
}

func (r *superTicketRepoGorm) AddBooking(ctx context.Context, booking *model.SuperTicketBooking) error {
	return gorm.G[model.SuperTicketBooking](r.db).Create(ctx, booking)
}

func (r *superTicketRepoGorm) ReplaceBookings(ctx context.Context, superTicketID uint, scheduleIDs []uint) ([]model.SuperTicketBooking, error) {
	if _, err := gorm.G[model.SuperTicketBooking](r.db).Where("super_ticket_id = ?", superTicketID).Delete(ctx); err != nil {
		return nil, err
	}
	bookings := make([]model.SuperTicketBooking, 0, len(scheduleIDs))
	for i, scheduleID := range scheduleIDs {
		bookings = append(bookings, model.SuperTicketBooking{
			SuperTicketID: superTicketID,
			ScheduleID:    scheduleID,
			Position:      i,
		})
	}
	if len(bookings) == 0 {
		return bookings, nil
	}
	if err := r.db.WithContext(ctx).Create(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *superTicketRepoGorm) CountBookingsBySchedule(ctx context.Context, scheduleID uint) (int64, error) {
	return gorm.G[model.SuperTicketBooking](r.db).Where("schedule_id = ?", scheduleID).Count(ctx, "*")
}
