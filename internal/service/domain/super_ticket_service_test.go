package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

func TestPurchaseSuperTicket(t *testing.T) {
	e := newTestEnv(t)
	buyer := e.user(150)

	result, err := e.superTickets.PurchaseSuperTicket(e.ctx, PurchaseSuperTicketParams{UserID: buyer.ID})
	require.NoError(t, err)

	ticket := result.SuperTicket
	assert.Equal(t, SuperTicketUses, ticket.UsesRemaining)
	assert.True(t, dec(100).Equal(ticket.Price))
	assert.Empty(t, ticket.UsedSchedules())
	assert.True(t, dec(50).Equal(e.balanceOf(buyer)))
	assert.Equal(t, model.TransactionPurchase, result.Transaction.Type)
}

func TestPurchaseSuperTicket_RequiresMinimumBalance(t *testing.T) {
	e := newTestEnv(t)
	buyer := e.user(99)

	_, err := e.superTickets.PurchaseSuperTicket(e.ctx, PurchaseSuperTicketParams{UserID: buyer.ID})
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	assert.Empty(t, e.store.superTickets)

	_, err = e.superTickets.PurchaseSuperTicket(e.ctx, PurchaseSuperTicketParams{UserID: 999})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestBookSchedule_AppendsAndSpendsUses(t *testing.T) {
	e := newTestEnv(t)
	room := e.auditorium(20)
	movie := e.movie(60)
	a := e.schedule(movie, room, tuesdayAt(9, 0))
	b := e.schedule(movie, room, tuesdayAt(11, 0))
	c := e.schedule(movie, room, tuesdayAt(13, 0))
	d := e.schedule(movie, room, tuesdayAt(15, 0))
	ticket := e.superTicket(e.user(0), 1, a, b)

	_, err := e.superTickets.BookSchedule(e.ctx, ticket.ID, a.ID)
	assert.ErrorIs(t, err, ErrScheduleAlreadyBooked)

	booked, err := e.superTickets.BookSchedule(e.ctx, ticket.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID, c.ID}, booked.UsedSchedules())
	assert.Equal(t, 0, booked.UsesRemaining)

	stored, err := e.superTickets.GetSuperTicketByID(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{a.ID, b.ID, c.ID}, stored.UsedSchedules())

	_, err = e.superTickets.BookSchedule(e.ctx, ticket.ID, d.ID)
	assert.ErrorIs(t, err, ErrNoUsesRemaining)
}

func TestBookSchedule_Limits(t *testing.T) {
	e := newTestEnv(t)
	room := e.auditorium(15)
	movie := e.movie(30)
	var schedules []*model.Schedule
	for i := range 11 {
		schedules = append(schedules, e.schedule(movie, room, tuesdayAt(9+i, 0)))
	}

	full := e.superTicket(e.user(0), 5, schedules[:10]...)
	_, err := e.superTickets.BookSchedule(e.ctx, full.ID, schedules[10].ID)
	assert.ErrorIs(t, err, ErrBookingLimitReached)

	for range 15 {
		e.ticket(e.user(0), schedules[10])
	}
	fresh := e.superTicket(e.user(0), 10)
	_, err = e.superTickets.BookSchedule(e.ctx, fresh.ID, schedules[10].ID)
	assert.ErrorIs(t, err, ErrScheduleFullyBooked)
	assert.ErrorIs(t, err, service.ErrCapacityExceeded)

	_, err = e.superTickets.BookSchedule(e.ctx, fresh.ID, 999)
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = e.superTickets.BookSchedule(e.ctx, 999, schedules[0].ID)
	assert.ErrorIs(t, err, ErrSuperTicketNotFound)
}

func TestValidateSuperTicket(t *testing.T) {
	e := newTestEnv(t)
	room := e.auditorium(20)
	movie := e.movie(60)
	early := e.schedule(movie, room, tuesdayAt(10, 0))
	late := e.schedule(movie, room, tuesdayAt(18, 0))

	empty := e.superTicket(e.user(0), 10)
	_, err := e.superTickets.ValidateSuperTicket(e.ctx, empty.ID)
	assert.ErrorIs(t, err, ErrNoSchedulesBooked)

	ticket := e.superTicket(e.user(0), 8, early, late)

	e.clock.Set(tuesdayAt(17, 50))
	valid, err := e.superTickets.ValidateSuperTicket(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	e.clock.Set(tuesdayAt(14, 0))
	valid, err = e.superTickets.ValidateSuperTicket(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, valid)

	// A deleted schedule is skipped rather than failing the check.
	delete(e.store.schedules, early.ID)
	e.clock.Set(tuesdayAt(18, 10))
	valid, err = e.superTickets.ValidateSuperTicket(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	_, err = e.superTickets.ValidateSuperTicket(e.ctx, 999)
	assert.ErrorIs(t, err, ErrSuperTicketNotFound)
}

func TestUpdateSuperTicket_UsedSchedules(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(0)
	ticket := e.superTicket(owner, 10)

	ids := make([]uint, 11)
	for i := range ids {
		ids[i] = uint(i + 1)
	}
	_, err := e.superTickets.UpdateSuperTicket(e.ctx, ticket.ID, UpdateSuperTicketParams{UsedSchedules: util.Some(ids)})
	assert.ErrorIs(t, err, ErrBookingLimitReached)

	_, err = e.superTickets.UpdateSuperTicket(e.ctx, ticket.ID, UpdateSuperTicketParams{UsedSchedules: util.Some([]uint{4, 2, 4})})
	assert.ErrorIs(t, err, ErrDuplicateSchedules)

	updated, err := e.superTickets.UpdateSuperTicket(e.ctx, ticket.ID, UpdateSuperTicketParams{
		UsedSchedules: util.Some([]uint{7, 3, 5}),
		UsesRemaining: util.Some(7),
	})
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 3, 5}, updated.UsedSchedules())
	assert.Equal(t, 7, updated.UsesRemaining)

	stored, err := e.superTickets.GetSuperTicketByID(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{7, 3, 5}, stored.UsedSchedules())

	cleared, err := e.superTickets.UpdateSuperTicket(e.ctx, ticket.ID, UpdateSuperTicketParams{UsedSchedules: util.Null[[]uint]()})
	require.NoError(t, err)
	assert.Empty(t, cleared.UsedSchedules())

	_, err = e.superTickets.UpdateSuperTicket(e.ctx, ticket.ID, UpdateSuperTicketParams{UsesRemaining: util.Some(-1)})
	assert.ErrorIs(t, err, ErrInvalidUses)
}

func TestSuperTicketQueries(t *testing.T) {
	e := newTestEnv(t)
	owner := e.user(0)
	sc := e.schedule(e.movie(60), e.auditorium(20), tuesdayAt(10, 0))
	kept := e.superTicket(owner, 9, sc)
	gone := e.superTicket(owner, 10)

	mine, err := e.superTickets.GetSuperTicketsByUserID(e.ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, []uint{sc.ID}, mine[0].UsedSchedules())

	_, err = e.superTickets.DeleteSuperTicket(e.ctx, gone.ID)
	require.NoError(t, err)

	all, err := e.superTickets.ListSuperTickets(e.ctx, model.Pagination{})
	require.NoError(t, err)
	require.Len(t, all.Rows, 1)
	assert.Equal(t, kept.ID, all.Rows[0].ID)

	_, err = e.superTickets.DeleteSuperTicket(e.ctx, gone.ID)
	assert.ErrorIs(t, err, ErrSuperTicketNotFound)
}
