package middleware

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	QUEUE_DURABILITY = true
)

type MiddlewareHandler struct {
	RabbitConn *RabbitConnection
	Channel    MiddlewareChannel
}

func NewMiddlewareHandler(rabbitConn *RabbitConnection) (*MiddlewareHandler, error) {
	ch, err := rabbitConn.CreateNewChannel()
	if err != nil {
		return nil, err
	}

	return &MiddlewareHandler{
		RabbitConn: rabbitConn,
		Channel:    ch,
	}, nil
}

func (mh *MiddlewareHandler) Close() error {
	if !mh.Channel.IsClosed() {
		if err := mh.Channel.Close(); err != nil {
			return err
		}
	}
	if err := mh.RabbitConn.Close(); err != nil {
		return err
	}
	return nil
}

func (mh *MiddlewareHandler) DeclareQueue(queueName string) (*amqp.Queue, error) {
	q, err := mh.Channel.QueueDeclare(
		queueName,        // name
		QUEUE_DURABILITY, // durable
		false,            // delete when unused
		false,            // exclusive
		false,            // no-wait
		nil,              // arguments
	)

	return &q, err
}

// SetPrefetch limits unacknowledged deliveries per consumer.
func (mh *MiddlewareHandler) SetPrefetch(count int) error {
	return mh.Channel.Qos(
		count, // prefetch count
		0,     // prefetch size
		false, // global
	)
}

func (mh *MiddlewareHandler) CreateQueue(queueName string) (*MessageMiddlewareQueue, error) {
	_, err := mh.DeclareQueue(queueName)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return NewMessageMiddlewareQueue(queueName, mh.Channel, nil), nil
}
