package domain

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qs-lzh/cinema-booking/internal/auth"
	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

// monday is a Monday morning, inside business hours.
var monday = time.Date(2030, time.January, 7, 10, 0, 0, 0, time.UTC)

type testEnv struct {
	ctx   context.Context
	store *store
	clock *util.FixedClock

	auditoriumRepo  *fakeAuditoriumRepo
	movieRepo       *fakeMovieRepo
	scheduleRepo    *fakeScheduleRepo
	ticketRepo      *fakeTicketRepo
	superTicketRepo *fakeSuperTicketRepo
	userRepo        *fakeUserRepo
	transactionRepo *fakeTransactionRepo
	revokedRepo     *fakeRevokedTokenRepo

	auditoriums  *auditoriumService
	movies       *movieService
	schedules    *scheduleService
	tickets      *ticketService
	superTickets *superTicketService
	ledger       *ledgerService
	users        *userService
	tokens       *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := newStore()
	e := &testEnv{
		ctx:             context.Background(),
		store:           s,
		clock:           util.NewFixedClock(monday),
		auditoriumRepo:  &fakeAuditoriumRepo{s},
		movieRepo:       &fakeMovieRepo{s},
		scheduleRepo:    &fakeScheduleRepo{s},
		ticketRepo:      &fakeTicketRepo{s},
		superTicketRepo: &fakeSuperTicketRepo{s},
		userRepo:        &fakeUserRepo{s},
		transactionRepo: &fakeTransactionRepo{s},
		revokedRepo:     &fakeRevokedTokenRepo{s},
	}
	tx := fakeTx{s}

	e.schedules = NewScheduleService(tx, e.scheduleRepo, e.movieRepo, e.auditoriumRepo,
		e.ticketRepo, e.superTicketRepo, e.clock, time.UTC)
	e.auditoriums = NewAuditoriumService(tx, e.auditoriumRepo, e.scheduleRepo, e.ticketRepo)
	e.movies = NewMovieService(tx, e.movieRepo, e.scheduleRepo, e.schedules)
	e.ledger = NewLedgerService(tx, e.userRepo, e.transactionRepo)
	e.tickets = NewTicketService(tx, e.ticketRepo, e.scheduleRepo, e.auditoriumRepo, e.userRepo,
		e.schedules, e.ledger, e.clock)
	e.superTickets = NewSuperTicketService(tx, e.superTicketRepo, e.scheduleRepo, e.auditoriumRepo, e.userRepo,
		e.schedules, e.ledger, e.clock)
	e.users = NewUserService(tx, e.userRepo)
	e.tokens = auth.NewTokenManager("test-secret", time.Hour, e.clock)
	return e
}

func (e *testEnv) auditorium(capacity int) *model.Auditorium {
	a := &model.Auditorium{Name: fmt.Sprintf("Room %d", e.store.nextID+1), Capacity: capacity}
	_ = e.auditoriumRepo.Create(e.ctx, a)
	return a
}

func (e *testEnv) movie(duration int) *model.Movie {
	m := &model.Movie{Title: fmt.Sprintf("Movie %d", e.store.nextID+1), Duration: duration}
	_ = e.movieRepo.Create(e.ctx, m)
	return m
}

// schedule inserts a schedule directly, bypassing the creation rules.
func (e *testEnv) schedule(movie *model.Movie, auditorium *model.Auditorium, start time.Time) *model.Schedule {
	sc := &model.Schedule{
		StartAt:      start,
		EndAt:        occupiedUntil(start, movie.Duration),
		MovieID:      movie.ID,
		AuditoriumID: auditorium.ID,
	}
	_ = e.scheduleRepo.Create(e.ctx, sc)
	return sc
}

func (e *testEnv) user(balance int64) *model.User {
	u := &model.User{
		Name:    "user",
		Email:   fmt.Sprintf("user%d@example.com", e.store.nextID+1),
		Role:    model.RoleClient,
		Balance: decimal.NewFromInt(balance),
	}
	_ = e.userRepo.Create(e.ctx, u)
	return u
}

func (e *testEnv) ticket(user *model.User, schedule *model.Schedule) *model.Ticket {
	t := &model.Ticket{Price: decimal.NewFromInt(10), ScheduleID: schedule.ID, UserID: user.ID}
	_ = e.ticketRepo.Create(e.ctx, t)
	return t
}

func (e *testEnv) superTicket(user *model.User, uses int, schedules ...*model.Schedule) *model.SuperTicket {
	st := &model.SuperTicket{Price: SuperTicketPrice, UsesRemaining: uses, UserID: user.ID}
	_ = e.superTicketRepo.Create(e.ctx, st)
	for i, sc := range schedules {
		_ = e.superTicketRepo.AddBooking(e.ctx, &model.SuperTicketBooking{
			SuperTicketID: st.ID, ScheduleID: sc.ID, Position: i,
		})
	}
	return st
}

func (e *testEnv) balanceOf(u *model.User) decimal.Decimal {
	return e.store.users[u.ID].Balance
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}
