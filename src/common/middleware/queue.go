package middleware

import (
	"context"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"sales-analysis/src/common/logger"
)

const (
	CONTENT_TYPE_TEXT   = "text/plain"
	CONSUMER_TAG_PREFIX = "worker-"
)

var middleware_logger = logger.GetLoggerWithPrefix("[QUEUE]")

func NewMessageMiddlewareQueue(queueName string, channel MiddlewareChannel, consumeChannel ConsumeChannel) *MessageMiddlewareQueue {
	return &MessageMiddlewareQueue{
		queueName:      queueName,
		channel:        channel,
		consumeChannel: consumeChannel,
	}
}

func (m *MessageMiddlewareQueue) Name() string {
	return m.queueName
}

func (m *MessageMiddlewareQueue) StartConsuming(onMessageCallback OnMessageCallback, errChan chan<- MessageMiddlewareError) {
	consumerTag := CONSUMER_TAG_PREFIX + uuid.NewString()
	consumeChannel, err := m.channel.Consume(
		m.queueName, // queue
		consumerTag, // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)

	if err != nil {
		middleware_logger.Errorf("failed to start consuming channel: %v", err)
		errChan <- MessageMiddlewareDisconnectedError
		return
	}
	m.consumeChannel = &consumeChannel
	m.consumerTag = consumerTag
	m.consumeDone = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		for msg := range consumeChannel {
			err := onMessageCallback(msg)
			if err != nil {
				middleware_logger.Errorf("Error while processing message: %v", err)
				errChan <- MessageMiddlewareMessageError
			}
		}
	}(m.consumeDone)
}

func (m *MessageMiddlewareQueue) StopConsuming() (middlewareError MessageMiddlewareError) {
	if m.consumeChannel == nil {
		return MessageMiddlewareSuccess
	}

	err := m.channel.Cancel(
		m.consumerTag, // Consumer
		false,         // noWait
	)

	if err != nil {
		return MessageMiddlewareDisconnectedError
	}
	<-m.consumeDone

	m.consumeChannel = nil
	m.consumerTag = ""
	return MessageMiddlewareSuccess
}

func (m *MessageMiddlewareQueue) Get() (delivery amqp.Delivery, ok bool, middlewareError MessageMiddlewareError) {
	delivery, ok, err := m.channel.Get(
		m.queueName, // queue
		false,       // auto-ack
	)

	if err != nil {
		middleware_logger.Errorf("failed to get message from %s: %v", m.queueName, err)
		return amqp.Delivery{}, false, MessageMiddlewareDisconnectedError
	}
	return delivery, ok, MessageMiddlewareSuccess
}

func (m *MessageMiddlewareQueue) Send(message []byte) (middlewareError MessageMiddlewareError) {
	return m.SendWithContext(context.Background(), message)
}

func (m *MessageMiddlewareQueue) SendWithContext(ctx context.Context, message []byte) (middlewareError MessageMiddlewareError) {
	err := m.channel.PublishWithContext(
		ctx,
		"",          // exchange
		m.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType: CONTENT_TYPE_TEXT,
			MessageId:   uuid.NewString(),
			Body:        message,
		},
	)

	if err != nil {
		middleware_logger.Errorf("error in sending to %s: %v", m.queueName, err)
		return MessageMiddlewareMessageError
	}

	return MessageMiddlewareSuccess
}

func (m *MessageMiddlewareQueue) Close() (middlewareError MessageMiddlewareError) {
	if m.channel.IsClosed() {
		return MessageMiddlewareSuccess
	}
	err := m.channel.Close()
	if err != nil {
		return MessageMiddlewareCloseError
	}

	return MessageMiddlewareSuccess
}
