package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rna/pkg/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	defaultPrefetchCount  = 10
	defaultWorkerPoolSize = 1
	defaultHandlerTimeout = 30 * time.Second
)

var ErrDeliveriesClosed = errors.New("delivery channel closed")

// EventHandler processes one consumed event. Errors wrapping
// events.ErrUnprocessable dead-letter the message; other errors requeue it
// once and dead-letter it on the second failure.
type EventHandler func(ctx context.Context, event *events.Event) error

type ConsumerConfig struct {
	Exchange       string   // e.g. "rna.answer"
	QueueName      string   // e.g. "rna.answer.recorded.v1"
	RoutingKeys    []string // e.g. ["answer.recorded.v1"]
	ServiceName    string
	PrefetchCount  int
	WorkerPoolSize int
	HandlerTimeout time.Duration
}

func (c ConsumerConfig) withDefaults() ConsumerConfig {
	if c.PrefetchCount <= 0 {
		c.PrefetchCount = defaultPrefetchCount
	}
	if c.WorkerPoolSize <= 0 {
		c.WorkerPoolSize = defaultWorkerPoolSize
	}
	if c.HandlerTimeout <= 0 {
		c.HandlerTimeout = defaultHandlerTimeout
	}
	return c
}

type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	config  ConsumerConfig
}

// NewConsumer declares the exchange, the queue, and a dead letter pair
// (<exchange>.dlx, <queue>.dlq) bound with the same routing keys.
func NewConsumer(url string, config ConsumerConfig) (*Consumer, error) {
	config = config.withDefaults()

	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := setupTopology(channel, config); err != nil {
		channel.Close()
		conn.Close()
		return nil, err
	}

	zap.L().Info("RabbitMQ consumer created",
		zap.String("queue", config.QueueName),
		zap.String("exchange", config.Exchange),
		zap.Strings("routingKeys", config.RoutingKeys),
		zap.Int("workers", config.WorkerPoolSize),
	)

	return &Consumer{conn: conn, channel: channel, config: config}, nil
}

func setupTopology(channel *amqp.Channel, config ConsumerConfig) error {
	if err := channel.Qos(config.PrefetchCount, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	dlxName := config.Exchange + ".dlx"
	dlqName := config.QueueName + ".dlq"

	for _, exchange := range []string{config.Exchange, dlxName} {
		if err := declareTopicExchange(channel, exchange); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
		}
	}

	if _, err := channel.QueueDeclare(config.QueueName, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange": dlxName,
	}); err != nil {
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	if _, err := channel.QueueDeclare(dlqName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare DLQ: %w", err)
	}

	for _, routingKey := range config.RoutingKeys {
		if err := channel.QueueBind(dlqName, routingKey, dlxName, false, nil); err != nil {
			return fmt.Errorf("failed to bind DLQ: %w", err)
		}
		if err := channel.QueueBind(config.QueueName, routingKey, config.Exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue: %w", err)
		}
	}

	return nil
}

// Consume dispatches deliveries to WorkerPoolSize workers until ctx is
// cancelled or the broker closes the channel. In-flight messages finish
// before it returns.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	msgs, err := c.channel.Consume(
		c.config.QueueName,
		c.config.ServiceName, // consumer tag
		false,                // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	zap.L().Info("Started consuming messages", zap.String("queue", c.config.QueueName))

	return runWorkers(ctx, c.config.WorkerPoolSize, msgs, func(msg amqp.Delivery) {
		processDelivery(ctx, msg, handler, c.config.HandlerTimeout)
	})
}

func runWorkers(ctx context.Context, size int, msgs <-chan amqp.Delivery, process func(amqp.Delivery)) error {
	var wg sync.WaitGroup
	closed := make(chan struct{}, size)

	for range size {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						closed <- struct{}{}
						return
					}
					process(msg)
				}
			}
		}()
	}

	wg.Wait()

	select {
	case <-closed:
		zap.L().Warn("Message channel closed")
		return ErrDeliveriesClosed
	default:
		zap.L().Info("Consumer context cancelled, stopping...")
		return ctx.Err()
	}
}

// processDelivery acks handled messages. Malformed and unprocessable messages
// go straight to the DLQ; other failures are requeued once.
func processDelivery(ctx context.Context, msg amqp.Delivery, handler EventHandler, timeout time.Duration) {
	traceID, _ := msg.Headers[headerTraceID].(string)
	service, _ := msg.Headers[headerService].(string)

	logger := zap.L().With(
		zap.String("routingKey", msg.RoutingKey),
		zap.String("traceId", traceID),
		zap.String("sourceService", service),
	)

	var event events.Event
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		logger.Error("Failed to unmarshal event", zap.Error(err))
		nack(logger, msg, false)
		return
	}

	handlerCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := handler(handlerCtx, &event); err != nil {
		requeue := shouldRequeue(ctx, msg, err)
		logger.Error("Failed to process event",
			zap.String("event", event.Event),
			zap.Bool("redelivered", msg.Redelivered),
			zap.Bool("requeue", requeue),
			zap.Error(err),
		)
		nack(logger, msg, requeue)
		return
	}

	if err := msg.Ack(false); err != nil {
		logger.Error("Failed to acknowledge message", zap.Error(err))
		return
	}

	logger.Info("Processed event", zap.String("event", event.Event))
}

// shouldRequeue puts a failed message back unless it can never succeed or it
// already failed once. Failures caused by shutdown are always requeued.
func shouldRequeue(ctx context.Context, msg amqp.Delivery, err error) bool {
	if errors.Is(err, events.ErrUnprocessable) {
		return false
	}
	if ctx.Err() != nil {
		return true
	}
	return !msg.Redelivered
}

func nack(logger *zap.Logger, msg amqp.Delivery, requeue bool) {
	if err := msg.Nack(false, requeue); err != nil {
		logger.Error("Failed to reject message", zap.Error(err))
	}
}

func (c *Consumer) Close() error {
	return closeAll("consumer", c.channel, c.conn)
}
