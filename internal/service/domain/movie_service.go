package domain

import (
	"context"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

type MovieService interface {
	CreateMovie(ctx context.Context, movie *model.Movie) error
	ListMovies(ctx context.Context, p model.Pagination) (*model.PageResult[model.Movie], error)
	GetMovieByID(ctx context.Context, id uint) (*model.Movie, error)
	UpdateMovie(ctx context.Context, id uint, params UpdateMovieParams) (*model.Movie, error)
	DeleteMovie(ctx context.Context, id uint) (*model.Movie, error)
	GetMovieScheduleBetween(ctx context.Context, id uint, start, end time.Time) ([]model.Schedule, error)
}

type UpdateMovieParams struct {
	Title       util.Optional[string] `json:"title"`
	Description util.Optional[string] `json:"description"`
	ImageURL    util.Optional[string] `json:"imageUrl"`
	Duration    util.Optional[int]    `json:"duration"`
}

type movieService struct {
	tx              repository.Transactor
	repo            repository.MovieRepo
	scheduleRepo    repository.ScheduleRepo
	scheduleService ScheduleService
}

var _ MovieService = (*movieService)(nil)

func NewMovieService(tx repository.Transactor, movieRepo repository.MovieRepo,
	scheduleRepo repository.ScheduleRepo, scheduleService ScheduleService) *movieService {
	return &movieService{
		tx:              tx,
		repo:            movieRepo,
		scheduleRepo:    scheduleRepo,
		scheduleService: scheduleService,
	}
}

func (s *movieService) CreateMovie(ctx context.Context, movie *model.Movie) error {
	movie.Title = strings.TrimSpace(movie.Title)
	if movie.Title == "" {
		return service.Validation("Title is required")
	}
	if movie.Duration <= 0 {
		return ErrInvalidDuration
	}
	if err := s.ensureTitleFree(ctx, s.repo, movie.Title, 0); err != nil {
		return err
	}
	movie.Slug = slug.Make(movie.Title)
	return s.repo.Create(ctx, movie)
}

func (s *movieService) ensureTitleFree(ctx context.Context, repo repository.MovieRepo, title string, selfID uint) error {
	existing, err := repo.GetByTitle(ctx, title)
	if err != nil {
		if isNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrMovieTitleInUse
	}
	return nil
}

func (s *movieService) ListMovies(ctx context.Context, p model.Pagination) (*model.PageResult[model.Movie], error) {
	p = p.Normalize()
	movies, total, err := s.repo.List(ctx, p.Offset(), p.Limit)
	if err != nil {
		return nil, err
	}
	return model.NewPageResult(movies, p, total), nil
}

func (s *movieService) GetMovieByID(ctx context.Context, id uint) (*model.Movie, error) {
	movie, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrMovieNotFound)
	}
	return movie, nil
}

// UpdateMovie applies the present fields. A new duration moves the end of
// every schedule of the movie in the same transaction.
func (s *movieService) UpdateMovie(ctx context.Context, id uint, params UpdateMovieParams) (*model.Movie, error) {
	var updated *model.Movie
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movie, err := repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, ErrMovieNotFound)
		}
		previousDuration := movie.Duration

		if err := apply(&movie.Title, params.Title, "title"); err != nil {
			return err
		}
		applyClearable(&movie.Description, params.Description)
		applyClearable(&movie.ImageURL, params.ImageURL)
		if err := apply(&movie.Duration, params.Duration, "duration"); err != nil {
			return err
		}

		movie.Title = strings.TrimSpace(movie.Title)
		if movie.Title == "" {
			return service.Validation("Title is required")
		}
		if movie.Duration <= 0 {
			return ErrInvalidDuration
		}
		if params.Title.Set {
			if err := s.ensureTitleFree(ctx, repo, movie.Title, movie.ID); err != nil {
				return err
			}
			movie.Slug = slug.Make(movie.Title)
		}

		if err := repo.Save(ctx, movie); err != nil {
			return err
		}
		if movie.Duration != previousDuration {
			if err := s.scheduleService.RefreshMovieScheduleEndsTx(ctx, tx, movie); err != nil {
				return err
			}
		}
		updated = movie
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *movieService) DeleteMovie(ctx context.Context, id uint) (*model.Movie, error) {
	var deleted *model.Movie
	err := s.tx.Transaction(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		movie, err := repo.GetByID(ctx, id)
		if err != nil {
			return notFound(err, ErrMovieNotFound)
		}
		if err := repo.Delete(ctx, id); err != nil {
			return err
		}
		deleted = movie
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (s *movieService) GetMovieScheduleBetween(ctx context.Context, id uint, start, end time.Time) ([]model.Schedule, error) {
	if _, err := s.GetMovieByID(ctx, id); err != nil {
		return nil, err
	}
	schedules, err := s.scheduleRepo.ListByMovieBetween(ctx, id, start, end)
	if err != nil {
		return nil, err
	}
	if schedules == nil {
		schedules = []model.Schedule{}
	}
	return schedules, nil
}
