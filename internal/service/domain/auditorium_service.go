package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

type AuditoriumService interface {
	CreateAuditorium(ctx context.Context, auditorium *model.Auditorium) error
	ListAuditoriums(ctx context.Context, p model.Pagination) (*model.PageResult[model.Auditorium], error)
	GetAuditoriumByID(ctx context.Context, id uint) (*model.Auditorium, error)
	UpdateAuditorium(ctx context.Context, id uint, params UpdateAuditoriumParams) (*model.Auditorium, error)
	DeleteAuditorium(ctx context.Context, id uint) (*model.Auditorium, error)
	// GetAuditoriumSchedule lists the week of schedules starting at startDate,
	// each with the number of regular tickets sold for it.
	GetAuditoriumSchedule(ctx context.Context, id uint, startDate time.Time) ([]model.ScheduleSales, error)
}

type UpdateAuditoriumParams struct {
	Name               util.Optional[string] `json:"name"`
	Description        util.Optional[string] `json:"description"`
	ImageURL           util.Optional[string] `json:"imageUrl"`
	Type               util.Optional[string] `json:"type"`
	Capacity           util.Optional[int]    `json:"capacity"`
	HandicapAccessible util.Optional[bool]   `json:"handicapAccessible"`
	Maintenance        util.Optional[bool]   `json:"maintenance"`
}

type auditoriumService struct {
	tx           repository.Transactor
	repo         repository.AuditoriumRepo
	scheduleRepo repository.ScheduleRepo
	ticketRepo   repository.TicketRepo
}

var _ AuditoriumService = (*auditoriumService)(nil)

func NewAuditoriumService(tx repository.Transactor, auditoriumRepo repository.AuditoriumRepo,
	scheduleRepo repository.ScheduleRepo, ticketRepo repository.TicketRepo) *auditoriumService {
	return &auditoriumService{
		tx:           tx,
		repo:         auditoriumRepo,
		scheduleRepo: scheduleRepo,
		ticketRepo:   ticketRepo,
	}
}

func (s *auditoriumService) CreateAuditorium(ctx context.Context, auditorium *model.Auditorium) error {
	auditorium.Name = strings.TrimSpace(auditorium.Name)
	if auditorium.Name == "" {
		return service.Validation("Name is required")
	}
	if !validCapacity(auditorium.Capacity) {
		return ErrInvalidCapacity
	}
	if err := s.ensureNameFree(ctx, s.repo, auditorium.Name, 0); err != nil {
		return err
	}
	return s.repo.Create(ctx, auditorium)
}

func (s *auditoriumService) ensureNameFree(ctx context.Context, repo repository.AuditoriumRepo, name string, selfID uint) error {
	existing, err := repo.GetByName(ctx, name)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrAuditoriumNameInUse
	}
	return nil
}

func (s *auditoriumService) ListAuditoriums(ctx context.Context, p model.Pagination) (*model.PageResult[model.Auditorium], error) {
	p = p.Normalize()
	auditoriums, total, err := s.repo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(auditoriums, p, total), nil
}

func (s *auditoriumService) GetAuditoriumByID(ctx context.Context, id uint) (*model.Auditorium, error) {
	auditorium, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrAuditoriumNotFound)
	}
	return auditorium, nil
}

func (s *auditoriumService) UpdateAuditorium(ctx context.Context, id uint, params UpdateAuditoriumParams) (*model.Auditorium, error) {
	var updated *model.Auditorium
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		auditorium, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrAuditoriumNotFound)
		}

		if err := apply(&auditorium.Name, params.Name, "name"); err != nil {
			return err
		}
		applyClearable(&auditorium.Description, params.Description)
		applyClearable(&auditorium.ImageURL, params.ImageURL)
		applyClearable(&auditorium.Type, params.Type)
		if params.Capacity.IsNull() {
			return ErrInvalidCapacity
		}
		if err := apply(&auditorium.Capacity, params.Capacity, "capacity"); err != nil {
			return err
		}
		if err := apply(&auditorium.HandicapAccessible, params.HandicapAccessible, "handicapAccessible"); err != nil {
			return err
		}
		if err := apply(&auditorium.Maintenance, params.Maintenance, "maintenance"); err != nil {
			return err
		}

		auditorium.Name = strings.TrimSpace(auditorium.Name)
		if auditorium.Name == "" {
			return service.Validation("Name is required")
		}
		if !validCapacity(auditorium.Capacity) {
			return ErrInvalidCapacity
		}
		if params.Name.Set {
			if err := s.ensureNameFree(ctx, repo, auditorium.Name, auditorium.ID); err != nil {
				return err
			}
		}

		if err := repo.Save(ctx, auditorium); err != nil {
			return err
		}
		updated = auditorium
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *auditoriumService) DeleteAuditorium(ctx context.Context, id uint) (*model.Auditorium, error) {
	var deleted *model.Auditorium
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		auditorium, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrAuditoriumNotFound)
		}
		count, err := repo.CountForUpdate(ctx)
		if err != nil {
			return err
		}
		if count <= MinAuditoriums {
			return ErrMinimumAuditoriums
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = auditorium
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *auditoriumService) GetAuditoriumSchedule(ctx context.Context, id uint, startDate time.Time) ([]model.ScheduleSales, error) {
	if _, err := s.GetAuditoriumByID(ctx, id); err != nil {
		return nil, err
	}

	schedules, err := s.scheduleRepo.ListByAuditoriumFrom(ctx, id, startDate, startDate.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}

	sales := make([]model.ScheduleSales, 0, len(schedules))
	for _, schedule := range schedules {
		sold, err := s.ticketRepo.CountBySchedule(ctx, schedule.ID)
		if err != nil {
			return nil, err
		}
		sales = append(sales, model.ScheduleSales{Schedule: schedule, TicketsSold: sold})
	}
	return sales, nil
}
