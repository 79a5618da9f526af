package middleware

import (
	"context"
	"fmt"
)

// Notifier announces files to the processing workers.
type Notifier interface {
	Notify(ctx context.Context, notification FileNotification) error
	Close() error
}

type QueueNotifier struct {
	handler *MiddlewareHandler
	queue   *MessageMiddlewareQueue
}

func NewQueueNotifier(rabbitConf RabbitConfig, queueName string) (*QueueNotifier, error) {
	rabbitConn, err := NewRabbitConnection(&rabbitConf)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	handler, err := NewMiddlewareHandler(rabbitConn)
	if err != nil {
		rabbitConn.Close()
		return nil, fmt.Errorf("failed to create middleware handler: %w", err)
	}

	queue, err := handler.CreateQueue(queueName)
	if err != nil {
		handler.Close()
		return nil, err
	}

	return &QueueNotifier{
		handler: handler,
		queue:   queue,
	}, nil
}

func (q *QueueNotifier) Notify(ctx context.Context, notification FileNotification) error {
	if status := q.queue.SendWithContext(ctx, notification.ToBytes()); status != MessageMiddlewareSuccess {
		return fmt.Errorf("failed to notify %s on queue %s: %s", notification, q.queue.Name(), status)
	}
	return nil
}

func (q *QueueNotifier) Close() error {
	return q.handler.Close()
}
