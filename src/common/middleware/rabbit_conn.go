package middleware

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

type RabbitConnection struct {
	conn *amqp.Connection
}

func NewRabbitConnection(conf *RabbitConfig) (*RabbitConnection, error) {
	conn, err := amqp.Dial(conf.URL())
	if err != nil {
		return nil, err
	}

	return &RabbitConnection{
		conn: conn,
	}, nil
}

func (rc *RabbitConnection) CreateNewChannel() (MiddlewareChannel, error) {
	ch, err := rc.conn.Channel()
	if err != nil {
		return nil, err
	}

	return ch, nil
}

func (rc *RabbitConnection) IsClosed() bool {
	return rc.conn.IsClosed()
}

func (rc *RabbitConnection) Close() error {
	if rc.conn.IsClosed() {
		return nil
	}
	if err := rc.conn.Close(); err != nil {
		return err
	}

	return nil
}
