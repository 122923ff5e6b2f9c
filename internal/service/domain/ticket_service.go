package domain

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

type TicketService interface {
	PurchaseTicket(ctx context.Context, params PurchaseTicketParams) (*PurchaseResult, error)
	ValidateTicket(ctx context.Context, id uint) (bool, error)
	ListTickets(ctx context.Context, p model.Pagination) (*model.PageResult[model.Ticket], error)
	GetTicketByID(ctx context.Context, id uint) (*model.Ticket, error)
	GetTicketsByUserID(ctx context.Context, userID uint) ([]model.Ticket, error)
	UpdateTicket(ctx context.Context, id uint, params UpdateTicketParams) (*model.Ticket, error)
	DeleteTicket(ctx context.Context, id uint) (*model.Ticket, error)
}

type PurchaseTicketParams struct {
	UserID     uint
	ScheduleID uint
	Price      decimal.Decimal
}

type PurchaseResult struct {
	Ticket      *model.Ticket      `json:"ticket"`
	Transaction *model.Transaction `json:"transaction"`
}

type UpdateTicketParams struct {
	Price      util.Optional[decimal.Decimal] `json:"price"`
	ScheduleID util.Optional[uint]            `json:"scheduleId"`
	Used       util.Optional[bool]            `json:"used"`
}

type ticketService struct {
	tx              repository.Transactor
	repo            repository.TicketRepo
	scheduleRepo    repository.ScheduleRepo
	auditoriumRepo  repository.AuditoriumRepo
	userRepo        repository.UserRepo
	scheduleService ScheduleService
	ledgerService   LedgerService
	clock           util.Clock
}

var _ TicketService = (*ticketService)(nil)

func NewTicketService(tx repository.Transactor, ticketRepo repository.TicketRepo,
	scheduleRepo repository.ScheduleRepo, auditoriumRepo repository.AuditoriumRepo, userRepo repository.UserRepo,
	scheduleService ScheduleService, ledgerService LedgerService, clock util.Clock) *ticketService {
	return &ticketService{
		tx:              tx,
		repo:            ticketRepo,
		scheduleRepo:    scheduleRepo,
		auditoriumRepo:  auditoriumRepo,
		userRepo:        userRepo,
		scheduleService: scheduleService,
		ledgerService:   ledgerService,
		clock:           clock,
	}
}

// PurchaseTicket sells one seat. The schedule row is locked before counting
// seats and the user row before checking the balance, so concurrent buyers
// can neither oversell a schedule nor overdraw an account.
func (s *ticketService) PurchaseTicket(ctx context.Context, params PurchaseTicketParams) (*PurchaseResult, error) {
	if !params.Price.IsPositive() {
		return nil, ErrInvalidPrice
	}

	var result *PurchaseResult
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		schedule, err := s.scheduleRepo.WithTx(tx).GetByIDForUpdate(ctx, params.ScheduleID)
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
			return ErrCapacityReached
		}

		user, err := s.userRepo.WithTx(tx).GetByIDForUpdate(ctx, params.UserID)
		if err != nil {
			return notFound(err, ErrUserNotFound)
		}
		transaction, err := s.ledgerService.ChargeTx(ctx, tx, user, params.Price)
		if err != nil {
			return err
		}

		ticket := &model.Ticket{
			Price:      params.Price,
			ScheduleID: schedule.ID,
			UserID:     user.ID,
		}
		if err := s.repo.WithTx(tx).Create(ctx, ticket); err != nil {
			return err
		}
		result = &PurchaseResult{Ticket: ticket, Transaction: transaction}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ValidateTicket admits a ticket at the door. A valid ticket is marked used
// in the same transaction, so it is accepted exactly once.
func (s *ticketService) ValidateTicket(ctx context.Context, id uint) (bool, error) {
	valid := false
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		tickets := s.repo.WithTx(tx)
		ticket, err := tickets.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrTicketNotFound)
		}
		if ticket.ScheduleID == 0 || ticket.Used {
			return nil
		}
		schedule, err := s.scheduleRepo.WithTx(tx).GetByID(ctx, ticket.ScheduleID)
		if err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		if !withinEntryWindow(s.clock.Now().UTC(), schedule.StartAt) {
			return nil
		}

		ticket.Used = true
		if err := tickets.Save(ctx, ticket); err != nil {
			return err
		}
		valid = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return valid, nil
}

func (s *ticketService) ListTickets(ctx context.Context, p model.Pagination) (*model.PageResult[model.Ticket], error) {
	p = p.Normalize()
	tickets, total, err := s.repo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(tickets, p, total), nil
}

func (s *ticketService) GetTicketByID(ctx context.Context, id uint) (*model.Ticket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrTicketNotFound)
	}
	return ticket, nil
}

func (s *ticketService) GetTicketsByUserID(ctx context.Context, userID uint) ([]model.Ticket, error) {
	tickets, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	return tickets, nil
}

func (s *ticketService) UpdateTicket(ctx context.Context, id uint, params UpdateTicketParams) (*model.Ticket, error) {
	var updated *model.Ticket
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		tickets := s.repo.WithTx(tx)
		ticket, err := tickets.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrTicketNotFound)
		}
		if err := apply(&ticket.Price, params.Price, "price"); err != nil {
			return err
		}
		if !ticket.Price.IsPositive() {
			return ErrInvalidPrice
		}
		if err := apply(&ticket.ScheduleID, params.ScheduleID, "scheduleId"); err != nil {
			return err
		}
		if params.ScheduleID.Set {
			if _, err := s.scheduleRepo.WithTx(tx).GetByID(ctx, ticket.ScheduleID); err != nil {
				return notFound(err, ErrScheduleNotFound)
			}
		}
		if err := apply(&ticket.Used, params.Used, "used"); err != nil {
			return err
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

func (s *ticketService) DeleteTicket(ctx context.Context, id uint) (*model.Ticket, error) {
	var deleted *model.Ticket
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		tickets := s.repo.WithTx(tx)
		ticket, err := tickets.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrTicketNotFound)
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
