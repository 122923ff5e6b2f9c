package domain

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/repository"
)

// store is an in-memory database shared by the fake repositories.
type store struct {
	nextID       uint
	auditoriums  map[uint]*model.Auditorium
	movies       map[uint]*model.Movie
	schedules    map[uint]*model.Schedule
	tickets      map[uint]*model.Ticket
	superTickets map[uint]*model.SuperTicket
	bookings     []model.SuperTicketBooking
	users        map[uint]*model.User
	transactions []model.Transaction
	revoked      map[string]time.Time
}

func newStore() *store {
	return &store{
		auditoriums:  map[uint]*model.Auditorium{},
		movies:       map[uint]*model.Movie{},
		schedules:    map[uint]*model.Schedule{},
		tickets:      map[uint]*model.Ticket{},
		superTickets: map[uint]*model.SuperTicket{},
		users:        map[uint]*model.User{},
		revoked:      map[string]time.Time{},
	}
}

func (s *store) id() uint {
	s.nextID++
	return s.nextID
}

func cloneMap[T any](m map[uint]*T) map[uint]*T {
	out := make(map[uint]*T, len(m))
	for k, v := range m {
		cp := *v
		out[k] = &cp
	}
	return out
}

func (s *store) snapshot() *store {
	return &store{
		nextID:       s.nextID,
		auditoriums:  cloneMap(s.auditoriums),
		movies:       cloneMap(s.movies),
		schedules:    cloneMap(s.schedules),
		tickets:      cloneMap(s.tickets),
		superTickets: cloneMap(s.superTickets),
		bookings:     append([]model.SuperTicketBooking(nil), s.bookings...),
		users:        cloneMap(s.users),
		transactions: append([]model.Transaction(nil), s.transactions...),
		revoked:      s.revoked,
	}
}

// fakeTx rolls the store back when fn fails.
type fakeTx struct {
	s *store
}

func (t fakeTx) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	saved := t.s.snapshot()
	if err := fn(nil); err != nil {
		*t.s = *saved
		return err
	}
	return nil
}

func get[T any](m map[uint]*T, id uint) (*T, error) {
	v, ok := m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func put[T any](m map[uint]*T, id uint, v *T) {
	cp := *v
	m[id] = &cp
}

func sortedIDs[T any](m map[uint]*T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func filter[T any](m map[uint]*T, keep func(*T) bool) []T {
	out := []T{}
	for _, id := range sortedIDs(m) {
		if keep == nil || keep(m[id]) {
			out = append(out, *m[id])
		}
	}
	return out
}

func page[T any](rows []T, offset, limit int) ([]T, int64) {
	total := int64(len(rows))
	if offset >= len(rows) {
		return []T{}, total
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total
}

type fakeAuditoriumRepo struct{ s *store }

var _ repository.AuditoriumRepo = (*fakeAuditoriumRepo)(nil)

func (r *fakeAuditoriumRepo) WithTx(*gorm.DB) repository.AuditoriumRepo { return r }

func (r *fakeAuditoriumRepo) Create(_ context.Context, a *model.Auditorium) error {
	a.ID = r.s.id()
	put(r.s.auditoriums, a.ID, a)
	return nil
}

func (r *fakeAuditoriumRepo) GetByID(_ context.Context, id uint) (*model.Auditorium, error) {
	return get(r.s.auditoriums, id)
}

func (r *fakeAuditoriumRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Auditorium, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeAuditoriumRepo) GetByName(_ context.Context, name string) (*model.Auditorium, error) {
	rows := filter(r.s.auditoriums, func(a *model.Auditorium) bool { return a.Name == name })
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *fakeAuditoriumRepo) List(_ context.Context, offset, limit int) ([]model.Auditorium, int64, error) {
	rows, total := page(filter(r.s.auditoriums, nil), offset, limit)
	return rows, total, nil
}

func (r *fakeAuditoriumRepo) Count(context.Context) (int64, error) {
	return int64(len(r.s.auditoriums)), nil
}

func (r *fakeAuditoriumRepo) CountForUpdate(ctx context.Context) (int64, error) {
	return r.Count(ctx)
}

func (r *fakeAuditoriumRepo) Save(_ context.Context, a *model.Auditorium) error {
	put(r.s.auditoriums, a.ID, a)
	return nil
}

func (r *fakeAuditoriumRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.auditoriums, id)
	return nil
}

type fakeMovieRepo struct{ s *store }

var _ repository.MovieRepo = (*fakeMovieRepo)(nil)

func (r *fakeMovieRepo) WithTx(*gorm.DB) repository.MovieRepo { return r }

func (r *fakeMovieRepo) Create(_ context.Context, m *model.Movie) error {
	m.ID = r.s.id()
	put(r.s.movies, m.ID, m)
	return nil
}

func (r *fakeMovieRepo) GetByID(_ context.Context, id uint) (*model.Movie, error) {
	return get(r.s.movies, id)
}

func (r *fakeMovieRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Movie, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeMovieRepo) GetByTitle(_ context.Context, title string) (*model.Movie, error) {
	rows := filter(r.s.movies, func(m *model.Movie) bool { return m.Title == title })
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *fakeMovieRepo) List(_ context.Context, offset, limit int) ([]model.Movie, int64, error) {
	rows, total := page(filter(r.s.movies, nil), offset, limit)
	return rows, total, nil
}

func (r *fakeMovieRepo) Save(_ context.Context, m *model.Movie) error {
	put(r.s.movies, m.ID, m)
	return nil
}

func (r *fakeMovieRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.movies, id)
	return nil
}

type fakeScheduleRepo struct{ s *store }

var _ repository.ScheduleRepo = (*fakeScheduleRepo)(nil)

func (r *fakeScheduleRepo) WithTx(*gorm.DB) repository.ScheduleRepo { return r }

func (r *fakeScheduleRepo) Create(_ context.Context, sc *model.Schedule) error {
	sc.ID = r.s.id()
	put(r.s.schedules, sc.ID, sc)
	return nil
}

func (r *fakeScheduleRepo) GetByID(_ context.Context, id uint) (*model.Schedule, error) {
	return get(r.s.schedules, id)
}

func (r *fakeScheduleRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Schedule, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeScheduleRepo) List(_ context.Context, offset, limit int) ([]model.Schedule, int64, error) {
	rows, total := page(filter(r.s.schedules, nil), offset, limit)
	return rows, total, nil
}

func byStart(rows []model.Schedule) []model.Schedule {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].StartAt.Before(rows[j].StartAt) })
	return rows
}

func (r *fakeScheduleRepo) GetByMovieID(_ context.Context, movieID uint) ([]model.Schedule, error) {
	return byStart(filter(r.s.schedules, func(sc *model.Schedule) bool { return sc.MovieID == movieID })), nil
}

func (r *fakeScheduleRepo) FindOverlapping(_ context.Context, movieID, auditoriumID, excludeID uint, start, end time.Time) ([]model.Schedule, error) {
	return byStart(filter(r.s.schedules, func(sc *model.Schedule) bool {
		return (sc.MovieID == movieID || sc.AuditoriumID == auditoriumID) &&
			sc.ID != excludeID &&
			!sc.StartAt.After(end) && !sc.EndAt.Before(start)
	})), nil
}

func between(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

func (r *fakeScheduleRepo) ListBetween(_ context.Context, start, end time.Time) ([]model.Schedule, error) {
	return byStart(filter(r.s.schedules, func(sc *model.Schedule) bool { return between(sc.StartAt, start, end) })), nil
}

func (r *fakeScheduleRepo) ListByMovieBetween(_ context.Context, movieID uint, start, end time.Time) ([]model.Schedule, error) {
	return byStart(filter(r.s.schedules, func(sc *model.Schedule) bool {
		return sc.MovieID == movieID && between(sc.StartAt, start, end)
	})), nil
}

func (r *fakeScheduleRepo) ListByAuditoriumFrom(_ context.Context, auditoriumID uint, from, until time.Time) ([]model.Schedule, error) {
	return byStart(filter(r.s.schedules, func(sc *model.Schedule) bool {
		return sc.AuditoriumID == auditoriumID && !sc.StartAt.Before(from) && sc.StartAt.Before(until)
	})), nil
}

func (r *fakeScheduleRepo) Save(_ context.Context, sc *model.Schedule) error {
	put(r.s.schedules, sc.ID, sc)
	return nil
}

func (r *fakeScheduleRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.schedules, id)
	return nil
}

type fakeTicketRepo struct{ s *store }

var _ repository.TicketRepo = (*fakeTicketRepo)(nil)

func (r *fakeTicketRepo) WithTx(*gorm.DB) repository.TicketRepo { return r }

func (r *fakeTicketRepo) Create(_ context.Context, t *model.Ticket) error {
	t.ID = r.s.id()
	put(r.s.tickets, t.ID, t)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id uint) (*model.Ticket, error) {
	return get(r.s.tickets, id)
}

func (r *fakeTicketRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.Ticket, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeTicketRepo) List(_ context.Context, offset, limit int) ([]model.Ticket, int64, error) {
	rows, total := page(filter(r.s.tickets, nil), offset, limit)
	return rows, total, nil
}

func (r *fakeTicketRepo) GetByUserID(_ context.Context, userID uint) ([]model.Ticket, error) {
	return filter(r.s.tickets, func(t *model.Ticket) bool { return t.UserID == userID }), nil
}

func (r *fakeTicketRepo) CountBySchedule(_ context.Context, scheduleID uint) (int64, error) {
	return int64(len(filter(r.s.tickets, func(t *model.Ticket) bool { return t.ScheduleID == scheduleID }))), nil
}

func (r *fakeTicketRepo) Save(_ context.Context, t *model.Ticket) error {
	put(r.s.tickets, t.ID, t)
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.tickets, id)
	return nil
}

type fakeSuperTicketRepo struct{ s *store }

var _ repository.SuperTicketRepo = (*fakeSuperTicketRepo)(nil)

func (r *fakeSuperTicketRepo) WithTx(*gorm.DB) repository.SuperTicketRepo { return r }

func (r *fakeSuperTicketRepo) withBookings(t model.SuperTicket) model.SuperTicket {
	t.Bookings = []model.SuperTicketBooking{}
	for _, b := range r.s.bookings {
		if b.SuperTicketID == t.ID {
			t.Bookings = append(t.Bookings, b)
		}
	}
	sort.SliceStable(t.Bookings, func(i, j int) bool { return t.Bookings[i].Position < t.Bookings[j].Position })
	return t
}

func (r *fakeSuperTicketRepo) Create(_ context.Context, t *model.SuperTicket) error {
	t.ID = r.s.id()
	row := *t
	row.Bookings = nil
	r.s.superTickets[t.ID] = &row
	return nil
}

func (r *fakeSuperTicketRepo) GetByID(_ context.Context, id uint) (*model.SuperTicket, error) {
	t, err := get(r.s.superTickets, id)
	if err != nil {
		return nil, err
	}
	full := r.withBookings(*t)
	return &full, nil
}

func (r *fakeSuperTicketRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.SuperTicket, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeSuperTicketRepo) List(_ context.Context, offset, limit int) ([]model.SuperTicket, int64, error) {
	rows, total := page(filter(r.s.superTickets, nil), offset, limit)
	for i := range rows {
		rows[i] = r.withBookings(rows[i])
	}
	return rows, total, nil
}

func (r *fakeSuperTicketRepo) GetByUserID(_ context.Context, userID uint) ([]model.SuperTicket, error) {
	rows := filter(r.s.superTickets, func(t *model.SuperTicket) bool { return t.UserID == userID })
	for i := range rows {
		rows[i] = r.withBookings(rows[i])
	}
	return rows, nil
}

func (r *fakeSuperTicketRepo) Save(_ context.Context, t *model.SuperTicket) error {
	row := *t
	row.Bookings = nil
	r.s.superTickets[t.ID] = &row
	return nil
}

func (r *fakeSuperTicketRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.superTickets, id)
	kept := r.s.bookings[:0]
	for _, b := range r.s.bookings {
		if b.SuperTicketID != id {
			kept = append(kept, b)
		}
	}
	r.s.bookings = kept
	return nil
}

func (r *fakeSuperTicketRepo) AddBooking(_ context.Context, b *model.SuperTicketBooking) error {
	for _, existing := range r.s.bookings {
		if existing.SuperTicketID == b.SuperTicketID && existing.ScheduleID == b.ScheduleID {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	b.ID = r.s.id()
	r.s.bookings = append(r.s.bookings, *b)
	return nil
}

func (r *fakeSuperTicketRepo) ReplaceBookings(ctx context.Context, superTicketID uint, scheduleIDs []uint) ([]model.SuperTicketBooking, error) {
	kept := []model.SuperTicketBooking{}
	for _, b := range r.s.bookings {
		if b.SuperTicketID != superTicketID {
			kept = append(kept, b)
		}
	}
	r.s.bookings = kept
	out := []model.SuperTicketBooking{}
	for i, scheduleID := range scheduleIDs {
		b := model.SuperTicketBooking{SuperTicketID: superTicketID, ScheduleID: scheduleID, Position: i}
		if err := r.AddBooking(ctx, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeSuperTicketRepo) CountBookingsBySchedule(_ context.Context, scheduleID uint) (int64, error) {
	var n int64
	for _, b := range r.s.bookings {
		if b.ScheduleID == scheduleID {
			n++
		}
	}
	return n, nil
}

type fakeUserRepo struct{ s *store }

var _ repository.UserRepo = (*fakeUserRepo)(nil)

func (r *fakeUserRepo) WithTx(*gorm.DB) repository.UserRepo { return r }

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = r.s.id()
	put(r.s.users, u.ID, u)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	return get(r.s.users, id)
}

func (r *fakeUserRepo) GetByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	rows := filter(r.s.users, func(u *model.User) bool { return u.Email == email })
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

func (r *fakeUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	rows, total := page(filter(r.s.users, nil), offset, limit)
	return rows, total, nil
}

func (r *fakeUserRepo) Save(_ context.Context, u *model.User) error {
	put(r.s.users, u.ID, u)
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uint) error {
	delete(r.s.users, id)
	return nil
}

type fakeTransactionRepo struct{ s *store }

var _ repository.TransactionRepo = (*fakeTransactionRepo)(nil)

func (r *fakeTransactionRepo) WithTx(*gorm.DB) repository.TransactionRepo { return r }

func (r *fakeTransactionRepo) Create(_ context.Context, t *model.Transaction) error {
	t.ID = r.s.id()
	r.s.transactions = append(r.s.transactions, *t)
	return nil
}

func (r *fakeTransactionRepo) List(_ context.Context, offset, limit int) ([]model.Transaction, int64, error) {
	rows, total := page(append([]model.Transaction{}, r.s.transactions...), offset, limit)
	return rows, total, nil
}

func (r *fakeTransactionRepo) GetByUserID(_ context.Context, userID uint) ([]model.Transaction, error) {
	out := []model.Transaction{}
	for _, t := range r.s.transactions {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeRevokedTokenRepo struct{ s *store }

var _ repository.RevokedTokenRepo = (*fakeRevokedTokenRepo)(nil)

func (r *fakeRevokedTokenRepo) Revoke(_ context.Context, hash string, expiresAt time.Time) error {
	r.s.revoked[hash] = expiresAt
	return nil
}

func (r *fakeRevokedTokenRepo) IsRevoked(_ context.Context, hash string, now time.Time) (bool, error) {
	exp, ok := r.s.revoked[hash]
	return ok && exp.After(now), nil
}

func (r *fakeRevokedTokenRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	n := 0
	for hash, exp := range r.s.revoked {
		if !exp.After(now) {
			delete(r.s.revoked, hash)
			n++
		}
	}
	return n, nil
}
