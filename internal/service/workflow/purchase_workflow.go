package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/model"
	"github.com/qs-lzh/cinema-booking/internal/mq"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
	"github.com/qs-lzh/cinema-booking/internal/util"
)

// noShowAfter is how long after the start a ticket is checked for a no-show.
// It leaves the whole entry window plus the rounding minute behind.
const noShowAfter = (domain.EntryWindowMinutes + 1) * time.Minute

// EventPublisher is implemented by mq.Producer.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event mq.BookingEventMessage) error
	ScheduleNoShowCheck(ctx context.Context, message mq.TicketNoShowDelayMessage, delay time.Duration) error
}

// PurchaseWorkflow runs a purchase and announces it once committed. A
// failed publish is logged and never undoes the purchase. With a nil
// publisher nothing is announced.
type PurchaseWorkflow struct {
	ticketService      domain.TicketService
	superTicketService domain.SuperTicketService
	scheduleService    domain.ScheduleService
	publisher          EventPublisher
	clock              util.Clock
	logger             *zap.Logger
}

func NewPurchaseWorkflow(ticketService domain.TicketService, superTicketService domain.SuperTicketService,
	scheduleService domain.ScheduleService, publisher EventPublisher, clock util.Clock, logger *zap.Logger) *PurchaseWorkflow {
	return &PurchaseWorkflow{
		ticketService:      ticketService,
		superTicketService: superTicketService,
		scheduleService:    scheduleService,
		publisher:          publisher,
		clock:              clock,
		logger:             logger,
	}
}

func (w *PurchaseWorkflow) PurchaseTicket(ctx context.Context, params domain.PurchaseTicketParams) (*domain.PurchaseResult, error) {
	result, err := w.ticketService.PurchaseTicket(ctx, params)
	if err != nil {
		return nil, err
	}
	if w.publisher == nil {
		return result, nil
	}

	// the purchase is committed, so publishing outlives a cancelled request
	ctx = context.WithoutCancel(ctx)
	ticket := result.Ticket
	w.announce(ctx, mq.BookingEventMessage{
		Type:       mq.EventTicketPurchased,
		UserID:     ticket.UserID,
		TicketID:   ticket.ID,
		ScheduleID: ticket.ScheduleID,
		Amount:     ticket.Price,
		OccurredAt: w.clock.Now().UTC(),
	})
	w.scheduleNoShowCheck(ctx, ticket)

	return result, nil
}

func (w *PurchaseWorkflow) PurchaseSuperTicket(ctx context.Context, params domain.PurchaseSuperTicketParams) (*domain.SuperTicketPurchaseResult, error) {
	result, err := w.superTicketService.PurchaseSuperTicket(ctx, params)
	if err != nil {
		return nil, err
	}
	if w.publisher == nil {
		return result, nil
	}

	w.announce(context.WithoutCancel(ctx), mq.BookingEventMessage{
		Type:          mq.EventSuperTicketPurchased,
		UserID:        result.SuperTicket.UserID,
		SuperTicketID: result.SuperTicket.ID,
		Amount:        result.SuperTicket.Price,
		OccurredAt:    w.clock.Now().UTC(),
	})
	return result, nil
}

func (w *PurchaseWorkflow) BookSchedule(ctx context.Context, superTicketID, scheduleID uint) (*model.SuperTicket, error) {
	ticket, err := w.superTicketService.BookSchedule(ctx, superTicketID, scheduleID)
	if err != nil {
		return nil, err
	}
	if w.publisher == nil {
		return ticket, nil
	}

	w.announce(context.WithoutCancel(ctx), mq.BookingEventMessage{
		Type:          mq.EventSuperTicketBooked,
		UserID:        ticket.UserID,
		SuperTicketID: ticket.ID,
		ScheduleID:    scheduleID,
		OccurredAt:    w.clock.Now().UTC(),
	})
	return ticket, nil
}

func (w *PurchaseWorkflow) announce(ctx context.Context, event mq.BookingEventMessage) {
	if err := w.publisher.PublishBookingEvent(ctx, event); err != nil {
		w.logger.Error("failed to publish booking event",
			zap.String("type", string(event.Type)),
			zap.Uint("user_id", event.UserID),
			zap.Error(err),
		)
	}
}

func (w *PurchaseWorkflow) scheduleNoShowCheck(ctx context.Context, ticket *model.Ticket) {
	schedule, err := w.scheduleService.GetScheduleByID(ctx, ticket.ScheduleID)
	if err != nil {
		w.logger.Warn("failed to load schedule for no-show check",
			zap.Uint("ticket_id", ticket.ID),
			zap.Error(err),
		)
		return
	}

	delay := schedule.StartAt.Add(noShowAfter).Sub(w.clock.Now())
	message := mq.TicketNoShowDelayMessage{TicketID: ticket.ID, ScheduleID: ticket.ScheduleID}
	if err := w.publisher.ScheduleNoShowCheck(ctx, message, delay); err != nil {
		w.logger.Error("failed to schedule no-show check",
			zap.Uint("ticket_id", ticket.ID),
			zap.Error(err),
		)
	}
}
