package domain

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

type ScheduleService interface {
	CreateSchedule(ctx context.Context, params CreateScheduleParams) (*model.Schedule, error)
	ListSchedules(ctx context.Context, p model.Pagination) (*model.PageResult[model.Schedule], error)
	GetScheduleByID(ctx context.Context, id uint) (*model.ScheduleDetail, error)
	GetSchedulesByMovieID(ctx context.Context, movieID uint) ([]uint, error)
	GetScheduleBetween(ctx context.Context, start, end time.Time) ([]model.ScheduleSales, error)
	UpdateSchedule(ctx context.Context, id uint, params UpdateScheduleParams) (*model.Schedule, error)
	DeleteSchedule(ctx context.Context, id uint) (*model.Schedule, error)

	DoesOverlap(ctx context.Context, schedule *model.Schedule) (bool, error)
	IsCorrectDate(schedule *model.Schedule) bool
	IsWithinBusinessHours(start time.Time) bool

	GetTicketsSold(ctx context.Context, scheduleID uint) (int64, error)
	GetTicketsSoldTx(ctx context.Context, tx *gorm.DB, scheduleID uint) (int64, error)
	RefreshMovieScheduleEndsTx(ctx context.Context, tx *gorm.DB, movie *model.Movie) error
}

type CreateScheduleParams struct {
	Date         time.Time `json:"date" binding:"required"`
	MovieID      uint      `json:"movieId" binding:"required"`
	AuditoriumID uint      `json:"auditoriumId" binding:"required"`
}

type UpdateScheduleParams struct {
	Date         util.Optional[time.Time] `json:"date"`
	MovieID      util.Optional[uint]      `json:"movieId"`
	AuditoriumID util.Optional[uint]      `json:"auditoriumId"`
}

type scheduleService struct {
	tx              repository.Transactor
	repo            repository.ScheduleRepo
	movieRepo       repository.MovieRepo
	auditoriumRepo  repository.AuditoriumRepo
	ticketRepo      repository.TicketRepo
	superTicketRepo repository.SuperTicketRepo
	clock           util.Clock
	location        *time.Location
}

var _ ScheduleService = (*scheduleService)(nil)

func NewScheduleService(tx repository.Transactor, scheduleRepo repository.ScheduleRepo,
	movieRepo repository.MovieRepo, auditoriumRepo repository.AuditoriumRepo,
	ticketRepo repository.TicketRepo, superTicketRepo repository.SuperTicketRepo,
	clock util.Clock, location *time.Location) *scheduleService {
	if location == nil {
		location = time.Local
	}
	return &scheduleService{
		tx:              tx,
		repo:            scheduleRepo,
		movieRepo:       movieRepo,
		auditoriumRepo:  auditoriumRepo,
		ticketRepo:      ticketRepo,
		superTicketRepo: superTicketRepo,
		clock:           clock,
		location:        location,
	}
}

// CreateSchedule checks, in order: the movie and auditorium exist, the date
// is not in the past, the start is inside business hours, and nothing overlaps.
func (s *scheduleService) CreateSchedule(ctx context.Context, params CreateScheduleParams) (*model.Schedule, error) {
	schedule := &model.Schedule{
		StartAt:      params.Date.UTC(),
		MovieID:      params.MovieID,
		AuditoriumID: params.AuditoriumID,
	}

	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		movie, err := s.movieRepo.WithTx(tx).GetByIDForUpdate(ctx, schedule.MovieID)
		if err != nil {
			return notFound(err, ErrMovieNotFound)
		}
		if _, err := s.auditoriumRepo.WithTx(tx).GetByIDForUpdate(ctx, schedule.AuditoriumID); err != nil {
			return notFound(err, ErrAuditoriumNotFound)
		}
		if !s.IsCorrectDate(schedule) {
			return ErrScheduleInPast
		}
		if !s.IsWithinBusinessHours(schedule.StartAt) {
			return ErrOutsideBusinessHours
		}

		overlaps, err := s.doesOverlap(ctx, tx, schedule)
		if err != nil {
			return err
		}
		if overlaps {
			return ErrOverlappingSchedules
		}

		schedule.EndAt = occupiedUntil(schedule.StartAt, movie.Duration)
		return s.repo.WithTx(tx).Create(ctx, schedule)
	})
	if err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) ListSchedules(ctx context.Context, p model.Pagination) (*model.PageResult[model.Schedule], error) {
	p = p.Normalize()
	schedules, total, err := s.repo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(schedules, p, total), nil
}

func (s *scheduleService) GetScheduleByID(ctx context.Context, id uint) (*model.ScheduleDetail, error) {
	schedule, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrScheduleNotFound)
	}
	auditorium, err := s.auditoriumRepo.GetByID(ctx, schedule.AuditoriumID)
	if err != nil {
		return nil, notFound(err, ErrAuditoriumNotFound)
	}
	sold, err := s.GetTicketsSold(ctx, schedule.ID)
	if err != nil {
		return nil, err
	}
	return &model.ScheduleDetail{
		Schedule:           *schedule,
		AuditoriumCapacity: auditorium.Capacity,
		TicketsSold:        sold,
	}, nil
}

func (s *scheduleService) GetSchedulesByMovieID(ctx context.Context, movieID uint) ([]uint, error) {
	schedules, err := s.repo.GetByMovieID(ctx, movieID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(schedules))
	for _, schedule := range schedules {
		ids = append(ids, schedule.ID)
	}
	return ids, nil
}

func (s *scheduleService) GetScheduleBetween(ctx context.Context, start, end time.Time) ([]model.ScheduleSales, error) {
	schedules, err := s.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	if len(schedules) == 0 {
		return nil, ErrNoSchedulesFound
	}

	sales := make([]model.ScheduleSales, 0, len(schedules))
	for _, schedule := range schedules {
		sold, err := s.GetTicketsSold(ctx, schedule.ID)
		if err != nil {
			return nil, err
		}
		sales = append(sales, model.ScheduleSales{Schedule: schedule, TicketsSold: sold})
	}
	return sales, nil
}

func (s *scheduleService) UpdateSchedule(ctx context.Context, id uint, params UpdateScheduleParams) (*model.Schedule, error) {
	var updated *model.Schedule
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		schedule, err := s.repo.WithTx(tx).GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrScheduleNotFound)
		}

		if err := apply(&schedule.StartAt, params.Date, "date"); err != nil {
			return err
		}
		schedule.StartAt = schedule.StartAt.UTC()
		if err := apply(&schedule.MovieID, params.MovieID, "movieId"); err != nil {
			return err
		}
		if err := apply(&schedule.AuditoriumID, params.AuditoriumID, "auditoriumId"); err != nil {
			return err
		}

		// same lock order as CreateSchedule: movie, then auditorium
		end := schedule.StartAt
		movie, err := s.movieRepo.WithTx(tx).GetByIDForUpdate(ctx, schedule.MovieID)
		switch {
		case err == nil:
			end = occupiedUntil(schedule.StartAt, movie.Duration)
		case params.MovieID.Set:
			return notFound(err, ErrMovieNotFound)
		case !isNotFound(err):
			return err
		}
		if _, err := s.auditoriumRepo.WithTx(tx).GetByIDForUpdate(ctx, schedule.AuditoriumID); err != nil {
			if params.AuditoriumID.Set || !isNotFound(err) {
				return notFound(err, ErrAuditoriumNotFound)
			}
		}

		overlaps, err := s.doesOverlap(ctx, tx, schedule)
		if err != nil {
			return err
		}
		if overlaps {
			return ErrOverlappingSchedules
		}

		schedule.EndAt = end
		if err := s.repo.WithTx(tx).Save(ctx, schedule); err != nil {
			return err
		}
		updated = schedule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *scheduleService) DeleteSchedule(ctx context.Context, id uint) (*model.Schedule, error) {
	var deleted *model.Schedule
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		schedule, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrScheduleNotFound)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = schedule
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *scheduleService) DoesOverlap(ctx context.Context, schedule *model.Schedule) (bool, error) {
	return s.doesOverlap(ctx, nil, schedule)
}

// doesOverlap looks for another schedule of the same movie or in the same
// auditorium whose occupied window touches this one. A schedule whose movie
// is gone occupies only its start instant.
func (s *scheduleService) doesOverlap(ctx context.Context, tx *gorm.DB, schedule *model.Schedule) (bool, error) {
	end := schedule.StartAt
	movie, err := withTx(s.movieRepo, tx).GetByID(ctx, schedule.MovieID)
	switch {
	case err == nil:
		end = occupiedUntil(schedule.StartAt, movie.Duration)
	case !isNotFound(err):
		return false, err
	}

	conflicts, err := withTx(s.repo, tx).FindOverlapping(ctx,
		schedule.MovieID, schedule.AuditoriumID, schedule.ID, schedule.StartAt, end)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}

// IsCorrectDate compares calendar dates in the cinema's time zone, so any
// time later today is accepted.
func (s *scheduleService) IsCorrectDate(schedule *model.Schedule) bool {
	return !dateOf(schedule.StartAt, s.location).Before(dateOf(s.clock.Now(), s.location))
}

func (s *scheduleService) IsWithinBusinessHours(start time.Time) bool {
	local := start.In(s.location)
	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	hour := local.Hour()
	return hour >= OpeningHour && hour <= ClosingHour
}

func dateOf(t time.Time, location *time.Location) time.Time {
	local := t.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}

func (s *scheduleService) GetTicketsSold(ctx context.Context, scheduleID uint) (int64, error) {
	return s.GetTicketsSoldTx(ctx, nil, scheduleID)
}

// GetTicketsSoldTx counts regular tickets plus super ticket bookings.
func (s *scheduleService) GetTicketsSoldTx(ctx context.Context, tx *gorm.DB, scheduleID uint) (int64, error) {
	tickets, err := withTx(s.ticketRepo, tx).CountBySchedule(ctx, scheduleID)
	if err != nil {
		return 0, err
	}
	bookings, err := withTx(s.superTicketRepo, tx).CountBookingsBySchedule(ctx, scheduleID)
	if err != nil {
		return 0, err
	}
	return tickets + bookings, nil
}

func (s *scheduleService) RefreshMovieScheduleEndsTx(ctx context.Context, tx *gorm.DB, movie *model.Movie) error {
	repo := withTx(s.repo, tx)
	schedules, err := repo.GetByMovieID(ctx, movie.ID)
	if err != nil {
		return err
	}
	for i := range schedules {
		schedules[i].EndAt = occupiedUntil(schedules[i].StartAt, movie.Duration)
		if err := repo.Save(ctx, &schedules[i]); err != nil {
			return err
		}
	}
	return nil
}
