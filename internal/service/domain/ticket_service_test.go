package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

func TestPurchaseTicket_DebitsBalanceAndRecordsPurchase(t *testing.T) {
	e := newTestEnv(t)
	buyer := e.user(50)
	sc := e.schedule(e.movie(120), e.auditorium(20), tuesdayAt(10, 0))

	result, err := e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: buyer.ID, ScheduleID: sc.ID, Price: dec(12)})
	require.NoError(t, err)

	assert.Equal(t, sc.ID, result.Ticket.ScheduleID)
	assert.Equal(t, buyer.ID, result.Ticket.UserID)
	assert.False(t, result.Ticket.Used)
	assert.True(t, dec(38).Equal(e.balanceOf(buyer)))

	require.NotNil(t, result.Transaction)
	assert.Equal(t, model.TransactionPurchase, result.Transaction.Type)
	assert.True(t, dec(12).Equal(result.Transaction.Amount))
	assert.Len(t, e.store.transactions, 1)
}

func TestPurchaseTicket_StopsAtAuditoriumCapacity(t *testing.T) {
	e := newTestEnv(t)
	sc := e.schedule(e.movie(120), e.auditorium(20), tuesdayAt(10, 0))

	for i := range 20 {
		buyer := e.user(100)
		_, err := e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: buyer.ID, ScheduleID: sc.ID, Price: dec(10)})
		require.NoError(t, err, "seat %d", i+1)
	}

	late := e.user(100)
	_, err := e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: late.ID, ScheduleID: sc.ID, Price: dec(10)})
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrCapacityExceeded)
	assert.Equal(t, "Auditorium capacity has been reached", err.Error())
	assert.True(t, dec(100).Equal(e.balanceOf(late)))
	assert.Len(t, e.store.tickets, 20)
}

func TestPurchaseTicket_LastSeat(t *testing.T) {
	e := newTestEnv(t)
	room := e.auditorium(15)
	sc := e.schedule(e.movie(90), room, tuesdayAt(10, 0))
	for range 14 {
		e.ticket(e.user(0), sc)
	}

	buyer := e.user(10)
	_, err := e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: buyer.ID, ScheduleID: sc.ID, Price: dec(10)})
	require.NoError(t, err)
	assert.True(t, e.balanceOf(buyer).IsZero())
}

func TestPurchaseTicket_SuperTicketBookingsTakeSeats(t *testing.T) {
	e := newTestEnv(t)
	room := e.auditorium(15)
	sc := e.schedule(e.movie(90), room, tuesdayAt(10, 0))
	for range 10 {
		e.ticket(e.user(0), sc)
	}
	for range 5 {
		e.superTicket(e.user(0), 9, sc)
	}

	buyer := e.user(10)
	_, err := e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: buyer.ID, ScheduleID: sc.ID, Price: dec(10)})
	assert.ErrorIs(t, err, ErrCapacityReached)
}

func TestPurchaseTicket_Failures(t *testing.T) {
	e := newTestEnv(t)
	buyer := e.user(5)
	sc := e.schedule(e.movie(90), e.auditorium(20), tuesdayAt(10, 0))

	_, err := e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: buyer.ID, ScheduleID: 999, Price: dec(1)})
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: 999, ScheduleID: sc.ID, Price: dec(1)})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: buyer.ID, ScheduleID: sc.ID, Price: dec(0)})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = e.tickets.PurchaseTicket(e.ctx, PurchaseTicketParams{UserID: buyer.ID, ScheduleID: sc.ID, Price: dec(10)})
	assert.ErrorIs(t, err, service.ErrInsufficientFunds)
	assert.True(t, dec(5).Equal(e.balanceOf(buyer)))
	assert.Empty(t, e.store.tickets)
	assert.Empty(t, e.store.transactions)
}

func TestValidateTicket_EntryWindow(t *testing.T) {
	start := tuesdayAt(18, 0)
	for _, tc := range []struct {
		name   string
		offset time.Duration
		valid  bool
	}{
		{"sixteen minutes early", -16 * time.Minute, false},
		{"fifteen minutes early", -15 * time.Minute, true},
		{"on time", 0, true},
		{"fifteen minutes late", 15 * time.Minute, true},
		{"rounds down", 15*time.Minute + 29*time.Second, true},
		{"rounds up", 15*time.Minute + 31*time.Second, false},
		{"sixteen minutes late", 16 * time.Minute, false},
	} {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestEnv(t)
			sc := e.schedule(e.movie(90), e.auditorium(20), start)
			ticket := e.ticket(e.user(0), sc)
			e.clock.Set(start.Add(tc.offset))

			valid, err := e.tickets.ValidateTicket(e.ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, tc.valid, valid)
			assert.Equal(t, tc.valid, e.store.tickets[ticket.ID].Used)
		})
	}
}

func TestValidateTicket_AdmitsOnce(t *testing.T) {
	e := newTestEnv(t)
	sc := e.schedule(e.movie(90), e.auditorium(20), tuesdayAt(18, 0))
	ticket := e.ticket(e.user(0), sc)
	e.clock.Set(tuesdayAt(18, 5))

	valid, err := e.tickets.ValidateTicket(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = e.tickets.ValidateTicket(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestValidateTicket_MissingTicketOrSchedule(t *testing.T) {
	e := newTestEnv(t)
	sc := e.schedule(e.movie(90), e.auditorium(20), tuesdayAt(18, 0))
	ticket := e.ticket(e.user(0), sc)
	e.clock.Set(tuesdayAt(18, 0))

	_, err := e.tickets.ValidateTicket(e.ctx, 999)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	delete(e.store.schedules, sc.ID)
	valid, err := e.tickets.ValidateTicket(e.ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, valid)
}

func TestUpdateTicket(t *testing.T) {
	e := newTestEnv(t)
	room := e.auditorium(20)
	movie := e.movie(90)
	sc := e.schedule(movie, room, tuesdayAt(10, 0))
	other := e.schedule(movie, room, tuesdayAt(15, 0))
	ticket := e.ticket(e.user(0), sc)

	updated, err := e.tickets.UpdateTicket(e.ctx, ticket.ID, UpdateTicketParams{
		ScheduleID: util.Some(other.ID),
		Used:       util.Some(true),
	})
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.ScheduleID)
	assert.True(t, updated.Used)
	assert.True(t, dec(10).Equal(updated.Price))

	_, err = e.tickets.UpdateTicket(e.ctx, ticket.ID, UpdateTicketParams{ScheduleID: util.Some(uint(999))})
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	_, err = e.tickets.UpdateTicket(e.ctx, ticket.ID, UpdateTicketParams{Price: util.Null[decimal.Decimal]()})
	assert.ErrorIs(t, err, service.ErrValidation)

	_, err = e.tickets.UpdateTicket(e.ctx, 999, UpdateTicketParams{})
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketQueries(t *testing.T) {
	e := newTestEnv(t)
	sc := e.schedule(e.movie(90), e.auditorium(20), tuesdayAt(10, 0))
	alice := e.user(0)
	bob := e.user(0)
	e.ticket(alice, sc)
	e.ticket(alice, sc)
	gone := e.ticket(bob, sc)

	mine, err := e.tickets.GetTicketsByUserID(e.ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	deleted, err := e.tickets.DeleteTicket(e.ctx, gone.ID)
	require.NoError(t, err)
	assert.Equal(t, gone.ID, deleted.ID)

	_, err = e.tickets.GetTicketByID(e.ctx, gone.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)

	none, err := e.tickets.GetTicketsByUserID(e.ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := e.tickets.ListTickets(e.ctx, model.Pagination{Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, all.TotalCount)
	assert.Len(t, all.Rows, 1)
}
