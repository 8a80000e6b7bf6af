// Package messaging provides the RabbitMQ event bus used for cross-service
// domain events.
//
// Event delivery is best effort. Publishing while the broker is unreachable
// drops the message with a log line; the surrounding store write still
// succeeds. The reconnect policy is a fixed delay with no backoff and no
// retry cap, which is a documented limitation of this design.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// State describes the bus connection lifecycle.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the state name for logs and health checks.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Handler processes a decoded event body. A nil return acknowledges the
// message; an error is logged and the message is acknowledged anyway, since
// no redelivery contract exists.
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Bus defines the publish/subscribe contract consumed by the service layer.
type Bus interface {
	// Publish sends payload as JSON under routingKey. It never returns
	// transport errors: when the bus is not connected the message is
	// dropped and logged.
	Publish(ctx context.Context, routingKey string, payload any) error

	// Subscribe registers a handler for all messages matching the topic
	// pattern. Registration survives reconnects.
	Subscribe(pattern string, handler Handler)

	// State reports the current connection state.
	State() State
}

type subscription struct {
	pattern string
	handler Handler
}

// RabbitMQBus is an explicitly owned bus client with a restartable
// background connection loop.
type RabbitMQBus struct {
	url            string
	exchange       string
	reconnectDelay time.Duration
	logger         zerolog.Logger

	mu      sync.RWMutex
	state   State
	channel *amqp.Channel
	subs    []subscription
}

// NewRabbitMQBus creates a bus for the given broker URL and topic exchange.
// The bus starts disconnected; call Run to establish the connection.
func NewRabbitMQBus(url, exchange string, reconnectDelay time.Duration, logger zerolog.Logger) *RabbitMQBus {
	return &RabbitMQBus{
		url:            url,
		exchange:       exchange,
		reconnectDelay: reconnectDelay,
		logger:         logger.With().Str("component", "bus").Logger(),
		state:          StateDisconnected,
	}
}

// Run drives the connection state machine until ctx is cancelled. Each cycle
// dials the broker, declares the durable topic exchange, re-establishes all
// registered subscriptions and then blocks until the connection drops.
func (b *RabbitMQBus) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		conn, closed, err := b.connect(ctx)
		if err != nil {
			b.logger.Error().Err(err).
				Dur("retry_in", b.reconnectDelay).
				Msg("bus connection failed")
		} else {
			b.logger.Info().Str("exchange", b.exchange).Msg("bus connected")

			select {
			case <-ctx.Done():
				b.setState(StateDisconnected, nil)
				conn.Close()
				return
			case closeErr := <-closed:
				b.logger.Warn().Err(closeErr).
					Dur("retry_in", b.reconnectDelay).
					Msg("bus connection lost")
			}
		}

		b.setState(StateDisconnected, nil)

		select {
		case <-ctx.Done():
			return
		case <-time.After(b.reconnectDelay):
		}
	}
}

// connect performs one dial attempt and returns the connection close channel.
func (b *RabbitMQBus) connect(ctx context.Context) (*amqp.Connection, chan *amqp.Error, error) {
	b.setState(StateConnecting, nil)

	conn, err := amqp.Dial(b.url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to dial broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		b.exchange, // name
		"topic",    // kind
		true,       // durable
		false,      // auto-delete
		false,      // internal
		false,      // no-wait
		nil,        // args
	); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	b.setState(StateConnected, channel)

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, sub := range subs {
		if err := b.consume(ctx, channel, sub); err != nil {
			conn.Close()
			return nil, nil, err
		}
	}

	closed := make(chan *amqp.Error, 1)
	conn.NotifyClose(closed)

	return conn, closed, nil
}

// consume binds an exclusive server-named queue to the pattern and pumps
// deliveries into the handler until the channel closes.
func (b *RabbitMQBus) consume(ctx context.Context, channel *amqp.Channel, sub subscription) error {
	queue, err := channel.QueueDeclare(
		"",    // server-named
		false, // durable
		false, // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to declare queue for %q: %w", sub.pattern, err)
	}

	if err := channel.QueueBind(queue.Name, sub.pattern, b.exchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue for %q: %w", sub.pattern, err)
	}

	deliveries, err := channel.Consume(queue.Name, "", false, true, false, false, nil)
	if err != nil {
		return fmt.Errorf("failed to consume for %q: %w", sub.pattern, err)
	}

	go func() {
		for delivery := range deliveries {
			if err := sub.handler(ctx, delivery.RoutingKey, delivery.Body); err != nil {
				b.logger.Error().Err(err).
					Str("routing_key", delivery.RoutingKey).
					Msg("event handler failed")
			}
			if err := delivery.Ack(false); err != nil {
				b.logger.Error().Err(err).
					Str("routing_key", delivery.RoutingKey).
					Msg("failed to ack event")
			}
		}
	}()

	b.logger.Info().
		Str("pattern", sub.pattern).
		Str("queue", queue.Name).
		Msg("subscribed")

	return nil
}

// Publish sends payload as JSON under routingKey with persistent delivery.
func (b *RabbitMQBus) Publish(ctx context.Context, routingKey string, payload any) error {
	b.mu.RLock()
	channel := b.channel
	state := b.state
	b.mu.RUnlock()

	if state != StateConnected || channel == nil {
		b.logger.Warn().
			Str("routing_key", routingKey).
			Str("state", state.String()).
			Msg("bus not connected, event dropped")
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	err = channel.PublishWithContext(ctx, b.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		// Transport failures are decoupled from the write path.
		b.logger.Error().Err(err).
			Str("routing_key", routingKey).
			Msg("failed to publish event, dropped")
		return nil
	}

	b.logger.Debug().Str("routing_key", routingKey).Msg("event published")
	return nil
}

// Subscribe registers a handler for the topic pattern. When already
// connected the subscription is established immediately, otherwise it is
// picked up by the next successful connect.
func (b *RabbitMQBus) Subscribe(pattern string, handler Handler) {
	b.mu.Lock()
	b.subs = append(b.subs, subscription{pattern: pattern, handler: handler})
	channel := b.channel
	state := b.state
	b.mu.Unlock()

	if state == StateConnected && channel != nil {
		if err := b.consume(context.Background(), channel, subscription{pattern: pattern, handler: handler}); err != nil {
			b.logger.Error().Err(err).
				Str("pattern", pattern).
				Msg("failed to establish subscription, will retry on reconnect")
		}
	}
}

// State reports the current connection state.
func (b *RabbitMQBus) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

func (b *RabbitMQBus) setState(state State, channel *amqp.Channel) {
	b.mu.Lock()
	b.state = state
	b.channel = channel
	b.mu.Unlock()
}
