package mq

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

func InitQueues(mqConn *amqp.Connection) error {
	ch, err := NewChannel(mqConn)
	if err != nil {
		return err
	}
	defer ch.Close()

	// setup all needed queues(list in constants)
	if err := SetupImmediateQueue(ch, BookingEventsImmediateQueue); err != nil {
		return err
	}
	if err := SetupDelayQueue(ch, TicketNoShowDelayQueue, TicketNoShowExchange,
		TicketNoShowImmediateQueue, TicketNoShowRoutingKey); err != nil {
		return err
	}

	return nil
}

func NewMQConn(url string) (*amqp.Connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to rabbitmq: %w", err)
	}
	return conn, nil
}

func NewChannel(conn *amqp.Connection) (*amqp.Channel, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	return ch, nil
}

func SetupImmediateQueue(ch *amqp.Channel, immediateQueueName string) error {
	_, err := ch.QueueDeclare(immediateQueueName, true, false, false, false, nil)
	return err
}

// the delay queue consists three part: delay queue, dead letter exchange, target queue
// produce to the delay queue with a per-message expiration, and consume from the target queue
func SetupDelayQueue(ch *amqp.Channel, delayQueueName, exchangeName, targetQueueName string, routingKey string) error {
	delayArgs := amqp.Table{
		"x-dead-letter-exchange":    exchangeName,
		"x-dead-letter-routing-key": routingKey,
	}

	if _, err := ch.QueueDeclare(
		delayQueueName, true, false, false, false, delayArgs); err != nil {
		return err
	}

	if err := ch.ExchangeDeclare(exchangeName, "direct", true, false, false, false, nil); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(targetQueueName, true, false, false, false, nil); err != nil {
		return err
	}

	return ch.QueueBind(targetQueueName, routingKey, exchangeName, false, nil)
}
