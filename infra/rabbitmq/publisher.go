package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rna/pkg/events"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const confirmTimeout = 5 * time.Second

var errNotAcknowledged = errors.New("message was not acknowledged by broker")

// Publisher implements events.Publisher with publisher confirms.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	service string

	mu       sync.Mutex
	declared map[string]bool
}

var _ events.Publisher = (*Publisher)(nil)

func NewPublisher(url, service string) (*Publisher, error) {
	conn, err := dial(url)
	if err != nil {
		return nil, err
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	zap.L().Info("RabbitMQ publisher connected", zap.String("service", service))

	return &Publisher{
		conn:     conn,
		channel:  channel,
		service:  service,
		declared: make(map[string]bool),
	}, nil
}

// DeclareExchanges declares the topic exchanges the service publishes to.
func (p *Publisher) DeclareExchanges(names ...string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, name := range names {
		if p.declared[name] {
			continue
		}
		if err := declareTopicExchange(p.channel, name); err != nil {
			return fmt.Errorf("failed to declare exchange %s: %w", name, err)
		}
		p.declared[name] = true
	}

	return nil
}

func (p *Publisher) Publish(ctx context.Context, exchange string, event *events.Event, headers events.Headers) error {
	if err := p.DeclareExchanges(exchange); err != nil {
		return err
	}

	body, err := event.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	// Confirms are tracked per channel, so each publish gets its own.
	publishCh, err := p.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to create publish channel: %w", err)
	}
	defer publishCh.Close()

	if err := publishCh.Confirm(false); err != nil {
		return fmt.Errorf("failed to enable confirms: %w", err)
	}
	confirms := publishCh.NotifyPublish(make(chan amqp.Confirmation, 1))

	publishCtx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	routingKey := event.GetRoutingKey()
	if err := publishCh.PublishWithContext(publishCtx, exchange, routingKey, false, false, p.message(event, headers, body)); err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	select {
	case confirm := <-confirms:
		if !confirm.Ack {
			return errNotAcknowledged
		}
	case <-publishCtx.Done():
		return fmt.Errorf("publish confirmation timeout: %w", publishCtx.Err())
	}

	zap.L().Info("Event published",
		zap.String("exchange", exchange),
		zap.String("routingKey", routingKey),
		zap.String("traceId", headers.TraceID),
	)

	return nil
}

func (p *Publisher) message(event *events.Event, headers events.Headers, body []byte) amqp.Publishing {
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    event.Timestamp,
		Headers: amqp.Table{
			headerTraceID:       headers.TraceID,
			headerCorrelationID: headers.CorrelationID,
			headerService:       p.service,
		},
	}
}

func (p *Publisher) IsHealthy() bool {
	if p == nil || p.conn == nil || p.channel == nil {
		return false
	}

	return !p.conn.IsClosed() && !p.channel.IsClosed()
}

func (p *Publisher) Close() error {
	return closeAll("publisher", p.channel, p.conn)
}
