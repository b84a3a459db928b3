package events

import (
	"context"
	"delivery-sim-service/internal/domain"
	"errors"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

const AMQPExchange = "simulations_fanout"

// Channel is the subset of *amqp.Channel the publisher uses.
type Channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPPublisher fans completed simulations out to every queue bound to the exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       Channel
	exchange string
}

// DialAMQP connects to the broker and declares the fanout exchange.
func DialAMQP(url string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp publisher: dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp publisher: open channel: %w", err)
	}

	p, err := NewAMQPPublisher(ch)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func NewAMQPPublisher(ch Channel) (*AMQPPublisher, error) {
	if ch == nil {
		return nil, errors.New("amqp publisher: nil channel")
	}

	if err := ch.ExchangeDeclare(AMQPExchange, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("amqp publisher: declare exchange: %w", err)
	}

	return &AMQPPublisher{ch: ch, exchange: AMQPExchange}, nil
}

func (p *AMQPPublisher) PublishSimulation(ctx context.Context, res *domain.SimulationResult) error {
	body, err := encodeEvent(res)
	if err != nil {
		return fmt.Errorf("amqp publish: %w", err)
	}

	// amqp channels are not safe for concurrent publishes
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		MessageId:    res.ID,
		Type:         EventSimulationCompleted,
		Timestamp:    res.CreatedAt,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("amqp publish %s: %w", res.ID, err)
	}
	return nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	err := p.ch.Close()
	if p.conn != nil && !p.conn.IsClosed() {
		err = errors.Join(err, p.conn.Close())
	}
	return err
}
