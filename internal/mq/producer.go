package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

func SendImmediateMessage(ctx context.Context, ch *amqp.Channel, queueName string, message any) error {
	return publish(ctx, ch, queueName, message, "")
}

// SendDelayedMessage parks message in delayQueueName until delay has passed,
// after which the broker dead-letters it into the target queue.
func SendDelayedMessage(ctx context.Context, ch *amqp.Channel, delayQueueName string, message any, delay time.Duration) error {
	return publish(ctx, ch, delayQueueName, message, expiration(delay))
}

// expiration formats delay the way the broker expects it: whole milliseconds.
func expiration(delay time.Duration) string {
	if delay < 0 {
		delay = 0
	}
	return strconv.FormatInt(delay.Milliseconds(), 10)
}

func publish(ctx context.Context, ch *amqp.Channel, queueName string, message any, expiration string) error {
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	err = ch.PublishWithContext(
		ctx,
		"",
		queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			Expiration:   expiration,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish message to queue %s: %w", queueName, err)
	}

	return nil
}

// Producer publishes on a fresh channel per call, which keeps it safe to
// share between request goroutines.
type Producer struct {
	conn *amqp.Connection
}

func NewProducer(conn *amqp.Connection) *Producer {
	return &Producer{conn: conn}
}

func (p *Producer) PublishBookingEvent(ctx context.Context, event BookingEventMessage) error {
	ch, err := NewChannel(p.conn)
	if err != nil {
		return err
	}
	defer ch.Close()
	return SendImmediateMessage(ctx, ch, BookingEventsImmediateQueue, event)
}

func (p *Producer) ScheduleNoShowCheck(ctx context.Context, message TicketNoShowDelayMessage, delay time.Duration) error {
	ch, err := NewChannel(p.conn)
	if err != nil {
		return err
	}
	defer ch.Close()
	return SendDelayedMessage(ctx, ch, TicketNoShowDelayQueue, message, delay)
}
