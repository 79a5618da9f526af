package middleware

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type MiddlewareChannel = *amqp.Channel

type ConsumeChannel = *<-chan amqp.Delivery

type MessageMiddlewareError int

const (
	MessageMiddlewareSuccess MessageMiddlewareError = iota
	MessageMiddlewareMessageError
	MessageMiddlewareDisconnectedError
	MessageMiddlewareCloseError
)

func (e MessageMiddlewareError) String() string {
	switch e {
	case MessageMiddlewareSuccess:
		return "success"
	case MessageMiddlewareMessageError:
		return "message error"
	case MessageMiddlewareDisconnectedError:
		return "disconnected"
	case MessageMiddlewareCloseError:
		return "close error"
	default:
		return "unknown"
	}
}

type OnMessageCallback func(message amqp.Delivery) error

type MessageMiddlewareQueue struct {
	queueName      string
	channel        MiddlewareChannel
	consumeChannel ConsumeChannel
	consumerTag    string
	consumeDone    chan struct{}
}

// MessageMiddleware is implemented by every queue handle.
type MessageMiddleware interface {
	// StartConsuming invokes onMessageCallback for every delivery. A lost
	// connection is reported as MessageMiddlewareDisconnectedError on errChan,
	// a failing callback as MessageMiddlewareMessageError.
	StartConsuming(onMessageCallback OnMessageCallback, errChan chan<- MessageMiddlewareError)

	// StopConsuming cancels the consumer and returns once the last callback
	// returned. It has no effect when not consuming.
	StopConsuming() (middlewareError MessageMiddlewareError)

	// Get fetches a single delivery without waiting. ok is false when the
	// queue is empty.
	Get() (delivery amqp.Delivery, ok bool, middlewareError MessageMiddlewareError)

	Send(message []byte) (middlewareError MessageMiddlewareError)

	Close() (middlewareError MessageMiddlewareError)
}
