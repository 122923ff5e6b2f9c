package workflow

import (
	"context"
	"encoding/json"
	"errors"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/mq"
	"github.com/qs-lzh/cinema-booking/internal/service"
	"github.com/qs-lzh/cinema-booking/internal/service/domain"
)

// NoShowWorkflow reports tickets that were never validated once their entry
// window has closed.
type NoShowWorkflow struct {
	ticketService domain.TicketService
	logger        *zap.Logger
}

func NewNoShowWorkflow(ticketService domain.TicketService, logger *zap.Logger) *NoShowWorkflow {
	return &NoShowWorkflow{
		ticketService: ticketService,
		logger:        logger.Named("no-show"),
	}
}

func (w *NoShowWorkflow) Start(mqConn *amqp.Connection) error {
	return consume(mqConn, mq.TicketNoShowImmediateQueue, w.logger, w.handleNoShow)
}

func (w *NoShowWorkflow) handleNoShow(msg amqp.Delivery) error {
	var message mq.TicketNoShowDelayMessage
	if err := json.Unmarshal(msg.Body, &message); err != nil {
		msg.Nack(false, false)
		return err
	}

	ticket, err := w.ticketService.GetTicketByID(context.Background(), message.TicketID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			// refunded or deleted since the purchase
			return msg.Ack(false)
		}
		msg.Nack(false, true)
		return err
	}

	if !ticket.Used {
		w.logger.Info("ticket not used",
			zap.Uint("ticket_id", ticket.ID),
			zap.Uint("schedule_id", ticket.ScheduleID),
			zap.Uint("user_id", ticket.UserID),
		)
	}

	return msg.Ack(false)
}
