package workflow

import (
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/mq"
)

// BookingEventsWorkflow writes every booking event to the audit log.
type BookingEventsWorkflow struct {
	logger *zap.Logger
}

func NewBookingEventsWorkflow(logger *zap.Logger) *BookingEventsWorkflow {
	return &BookingEventsWorkflow{
		logger: logger.Named("booking-events"),
	}
}

func (w *BookingEventsWorkflow) Start(mqConn *amqp.Connection) error {
	return consume(mqConn, mq.BookingEventsImmediateQueue, w.logger, w.handleBookingEvent)
}

func (w *BookingEventsWorkflow) handleBookingEvent(msg amqp.Delivery) error {
	var event mq.BookingEventMessage
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		msg.Nack(false, false)
		return err
	}

	w.logger.Info("booking event",
		zap.String("type", string(event.Type)),
		zap.Uint("user_id", event.UserID),
		zap.Uint("ticket_id", event.TicketID),
		zap.Uint("super_ticket_id", event.SuperTicketID),
		zap.Uint("schedule_id", event.ScheduleID),
		zap.String("amount", event.Amount.StringFixed(2)),
		zap.Time("occurred_at", event.OccurredAt),
	)

	return msg.Ack(false)
}
