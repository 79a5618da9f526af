package pubsub

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/op/go-logging"
	"github.com/redis/go-redis/v9"

	"sales-analysis/src/common/logger"
	"sales-analysis/src/common/middleware"
)

const (
	DIAL_TIMEOUT = 5 * time.Second
	PING_TIMEOUT = 5 * time.Second
)

type RedisConfig struct {
	Addr    string
	Channel string
}

func NewRedisConfig(addr, channel string) RedisConfig {
	return RedisConfig{
		Addr:    addr,
		Channel: channel,
	}
}

func connect(conf RedisConfig) (*redis.Client, error) {
	if conf.Addr == "" {
		return nil, errors.New("missing redis address")
	}
	if conf.Channel == "" {
		return nil, errors.New("missing redis channel")
	}

	client := redis.NewClient(&redis.Options{
		Addr:        conf.Addr,
		DialTimeout: DIAL_TIMEOUT,
	})

	ctx, cancel := context.WithTimeout(context.Background(), PING_TIMEOUT)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// RedisNotifier publishes file notifications on a Redis channel.
type RedisNotifier struct {
	client  *redis.Client
	channel string
}

func NewRedisNotifier(conf RedisConfig) (*RedisNotifier, error) {
	client, err := connect(conf)
	if err != nil {
		return nil, err
	}

	return &RedisNotifier{
		client:  client,
		channel: conf.Channel,
	}, nil
}

func (n *RedisNotifier) Notify(ctx context.Context, notification middleware.FileNotification) error {
	receivers, err := n.client.Publish(ctx, n.channel, notification.String()).Result()
	if err != nil {
		return fmt.Errorf("failed to publish %s on %s: %w", notification, n.channel, err)
	}
	if receivers == 0 {
		logger.GetLoggerWithPrefix("[REDIS]").Warningf("No subscriber received %s on %s", notification, n.channel)
	}
	return nil
}

func (n *RedisNotifier) Close() error {
	return n.client.Close()
}

type EventHandler func(ctx context.Context, payload string)

// Subscriber delivers every message of a Redis channel to a handler.
type Subscriber struct {
	log     *logging.Logger
	client  *redis.Client
	channel string
}

func NewSubscriber(conf RedisConfig) (*Subscriber, error) {
	client, err := connect(conf)
	if err != nil {
		return nil, err
	}

	return &Subscriber{
		log:     logger.GetLoggerWithPrefix("[REDIS]"),
		client:  client,
		channel: conf.Channel,
	}, nil
}

// Listen blocks, handling one message at a time, until ctx is done or the
// subscription is closed by the server.
func (s *Subscriber) Listen(ctx context.Context, handle EventHandler) error {
	sub := s.client.Subscribe(ctx, s.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	s.log.Infof("Subscribed to channel %s", s.channel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok || msg == nil {
				return errors.New("redis subscription closed")
			}
			handle(ctx, msg.Payload)
		}
	}
}

func (s *Subscriber) Close() error {
	return s.client.Close()
}
