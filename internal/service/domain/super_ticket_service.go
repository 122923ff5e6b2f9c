package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

type SuperTicketService interface {
	PurchaseSuperTicket(ctx context.Context, params PurchaseSuperTicketParams) (*SuperTicketPurchaseResult, error)
	BookSchedule(ctx context.Context, superTicketID, scheduleID uint) (*model.SuperTicket, error)
	ValidateSuperTicket(ctx context.Context, id uint) (bool, error)
	ListSuperTickets(ctx context.Context, p model.Pagination) (*model.PageResult[model.SuperTicket], error)
	GetSuperTicketByID(ctx context.Context, id uint) (*model.SuperTicket, error)
	GetSuperTicketsByUserID(ctx context.Context, userID uint) ([]model.SuperTicket, error)
	UpdateSuperTicket(ctx context.Context, id uint, params UpdateSuperTicketParams) (*model.SuperTicket, error)
	DeleteSuperTicket(ctx context.Context, id uint) (*model.SuperTicket, error)
}

type PurchaseSuperTicketParams struct {
	UserID uint
	// Price defaults to SuperTicketPrice when zero.
	Price decimal.Decimal
}

type SuperTicketPurchaseResult struct {
	SuperTicket *model.SuperTicket `json:"superTicket"`
	Transaction *model.Transaction `json:"transaction"`
}

type UpdateSuperTicketParams struct {
	Price         util.Optional[decimal.Decimal] `json:"price"`
	UsesRemaining util.Optional[int]             `json:"usesRemaining"`
	UsedSchedules util.Optional[[]uint]          `json:"usedSchedules"`
}

type superTicketService struct {
	tx              repository.Transactor
	repo            repository.SuperTicketRepo
	scheduleRepo    repository.ScheduleRepo
	auditoriumRepo  repository.AuditoriumRepo
	userRepo        repository.UserRepo
	scheduleService ScheduleService
	ledgerService   LedgerService
	clock           util.Clock
}

var _ SuperTicketService = (*superTicketService)(nil)

func NewSuperTicketService(tx repository.Transactor, superTicketRepo repository.SuperTicketRepo,
	scheduleRepo repository.ScheduleRepo, auditoriumRepo repository.AuditoriumRepo, userRepo repository.UserRepo,
	scheduleService ScheduleService, ledgerService LedgerService, clock util.Clock) *superTicketService {
	return &superTicketService{
		tx:              tx,
		repo:            superTicketRepo,
		scheduleRepo:    scheduleRepo,
		auditoriumRepo:  auditoriumRepo,
		userRepo:        userRepo,
		scheduleService: scheduleService,
		ledgerService:   ledgerService,
		clock:           clock,
	}
}

// PurchaseSuperTicket requires a balance of at least SuperTicketMinBalance,
// then charges the price and issues a ticket with SuperTicketUses uses.
func (s *superTicketService) PurchaseSuperTicket(ctx context.Context, params PurchaseSuperTicketParams) (*SuperTicketPurchaseResult, error) {
	price := params.Price
	if price.IsZero() {
		price = SuperTicketPrice
	}
	if !price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	var result *SuperTicketPurchaseResult
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		user, err := s.userRepo.WithTx(tx).GetByIDForUpdate(ctx, params.UserID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		if user.Balance.LessThan(SuperTicketMinBalance) {
			return ErrInsufficientBalance
		}
		transaction, err := s.ledgerService.ChargeTx(ctx, tx, user, price)
		if err != nil {
			return err
		}

		ticket := &model.SuperTicket{
			Price:         price,
			UsesRemaining: SuperTicketUses,
			UserID:        user.ID,
			Bookings:      []model.SuperTicketBooking{},
		}
		if err := s.repo.WithTx(tx).Create(ctx, ticket); err != nil {
			return err
		}
		result = &SuperTicketPurchaseResult{SuperTicket: ticket, Transaction: transaction}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BookSchedule spends one use of a super ticket on a schedule.
func (s *superTicketService) BookSchedule(ctx context.Context, superTicketID, scheduleID uint) (*model.SuperTicket, error) {
	var booked *model.SuperTicket
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		tickets := s.repo.WithTx(tx)
		ticket, err := tickets.GetByIDForUpdate(ctx, superTicketID)
		if err != nil {
			return notFound(err, ErrSuperTicketNotFound)
		}
		if len(ticket.Bookings) >= SuperTicketMaxSchedules {
			return ErrBookingLimitReached
		}
		if ticket.UsesRemaining <= 0 {
			return ErrNoUsesRemaining
		}
		if ticket.HasBooked(scheduleID) {
			return ErrScheduleAlreadyBooked
		}

		schedule, err := s.scheduleRepo.WithTx(tx).GetByIDForUpdate(ctx, scheduleID)
		if err != nil {
			return notFound(err, ErrScheduleNotFound)
		}
		auditorium, err := s.auditoriumRepo.WithTx(tx).GetByID(ctx, schedule.AuditoriumID)
		if err != nil {
			return notFound(err, ErrAuditoriumNotFound)
		}
		sold, err := s.scheduleService.GetTicketsSoldTx(ctx, tx, schedule.ID)
		if err != nil {
			return err
		}
		if sold >= int64(auditorium.Capacity) {
			return ErrScheduleFullyBooked
		}

		booking := model.SuperTicketBooking{
			SuperTicketID: ticket.ID,
			ScheduleID:    schedule.ID,
			Position:      len(ticket.Bookings),
		}
		if err := tickets.AddBooking(ctx, &booking); err != nil {
			return err
		}
		ticket.Bookings = append(ticket.Bookings, booking)
		ticket.UsesRemaining--
		if err := tickets.Save(ctx, ticket); err != nil {
			return err
		}
		booked = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booked, nil
}

// ValidateSuperTicket reports whether any booked schedule is inside its entry
// window right now. Schedules that no longer exist are skipped.
func (s *superTicketService) ValidateSuperTicket(ctx context.Context, id uint) (bool, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return false, notFound(err, ErrSuperTicketNotFound)
	}
	if len(ticket.Bookings) == 0 {
		return false, ErrNoSchedulesBooked
	}

	now := s.clock.Now().UTC()
	for _, scheduleID := range ticket.UsedSchedules() {
		schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return false, err
		}
		if withinEntryWindow(now, schedule.StartAt) {
			return true, nil
		}
	}
	return false, nil
}

func (s *superTicketService) ListSuperTickets(ctx context.Context, p model.Pagination) (*model.PageResult[model.SuperTicket], error) {
	p = p.Normalize()
	tickets, total, err := s.repo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(tickets, p, total), nil
}

func (s *superTicketService) GetSuperTicketByID(ctx context.Context, id uint) (*model.SuperTicket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSuperTicketNotFound)
	}
	return ticket, nil
}

func (s *superTicketService) GetSuperTicketsByUserID(ctx context.Context, userID uint) ([]model.SuperTicket, error) {
	tickets, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []model.SuperTicket{}
	}
	return tickets, nil
}

func (s *superTicketService) UpdateSuperTicket(ctx context.Context, id uint, params UpdateSuperTicketParams) (*model.SuperTicket, error) {
	var updated *model.SuperTicket
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		tickets := s.repo.WithTx(tx)
		ticket, err := tickets.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrSuperTicketNotFound)
		}
		if err := apply(&ticket.Price, params.Price, "price"); err != nil {
			return err
		}
		if !ticket.Price.IsPositive() {
			return ErrInvalidPrice
		}
		if err := apply(&ticket.UsesRemaining, params.UsesRemaining, "usesRemaining"); err != nil {
			return err
		}
		if ticket.UsesRemaining < 0 {
			return ErrInvalidUses
		}

		if scheduleIDs, ok := params.UsedSchedules.Get(); ok || params.UsedSchedules.IsNull() {
			if err := checkUsedSchedules(scheduleIDs); err != nil {
				return err
			}
			bookings, err := tickets.ReplaceBookings(ctx, ticket.ID, scheduleIDs)
			if err != nil {
				return err
			}
			ticket.Bookings = bookings
		}

		if err := tickets.Save(ctx, ticket); err != nil {
			return err
		}
		updated = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func checkUsedSchedules(scheduleIDs []uint) error {
	if len(scheduleIDs) > SuperTicketMaxSchedules {
		return ErrBookingLimitReached
	}
	seen := make(map[uint]struct{}, len(scheduleIDs))
	for _, id := range scheduleIDs {
		if _, dup := seen[id]; dup {
			return ErrDuplicateSchedules
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (s *superTicketService) DeleteSuperTicket(ctx context.Context, id uint) (*model.SuperTicket, error) {
	var deleted *model.SuperTicket
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		tickets := s.repo.WithTx(tx)
		ticket, err := tickets.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrSuperTicketNotFound)
		}
		if err := tickets.Delete(ctx, id); err != nil {
			return err
		}
		deleted = ticket
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}
