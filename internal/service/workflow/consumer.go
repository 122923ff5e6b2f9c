package workflow

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/qs-lzh/cinema-booking/internal/mq"
)

const prefetchCount = 10

// consume starts a goroutine that feeds every delivery of queueName to
// handle. It stops when the connection or channel closes.
func consume(conn *amqp.Connection, queueName string, logger *zap.Logger, handle func(amqp.Delivery) error) error {
	ch, err := mq.NewChannel(conn)
	if err != nil {
		return err
	}
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		ch.Close()
		return fmt.Errorf("failed to set qos on %s: %w", queueName, err)
	}

	msgs, err := ch.Consume(queueName, "", false, false, false, false, nil)
	if err != nil {
		ch.Close()
		return fmt.Errorf("failed to consume %s: %w", queueName, err)
	}

	go func() {
		defer ch.Close()
		for msg := range msgs {
			if err := handle(msg); err != nil {
				logger.Error("failed to handle message", zap.String("queue", queueName), zap.Error(err))
			}
		}
	}()

	return nil
}
