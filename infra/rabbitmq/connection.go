package rabbitmq

import (
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const dialAttempts = 5

// dial connects to the broker, backing off one extra second per attempt.
func dial(url string) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error

	for attempt := 1; attempt <= dialAttempts; attempt++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}

		zap.L().Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		time.Sleep(time.Second * time.Duration(attempt))
	}

	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", dialAttempts, err)
}

func declareTopicExchange(channel *amqp.Channel, name string) error {
	return channel.ExchangeDeclare(
		name,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

const (
	headerTraceID       = "x-trace-id"
	headerCorrelationID = "x-correlation-id"
	headerService       = "x-service"
)

func closeAll(kind string, channel *amqp.Channel, conn *amqp.Connection) error {
	if channel != nil {
		if err := channel.Close(); err != nil {
			zap.L().Error("Failed to close channel", zap.String("kind", kind), zap.Error(err))
		}
	}

	if conn != nil {
		if err := conn.Close(); err != nil {
			zap.L().Error("Failed to close connection", zap.String("kind", kind), zap.Error(err))
			return err
		}
	}

	zap.L().Info("RabbitMQ connection closed", zap.String("kind", kind))
	return nil
}
