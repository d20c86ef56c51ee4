package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

var (
	// ErrBufferFull is returned by Publish when the outgoing buffer is full.
	ErrBufferFull = errors.New("event buffer full")
	// ErrClosed is returned by Publish after Close.
	ErrClosed = errors.New("publisher closed")
)

const (
	dialTimeout    = 5 * time.Second
	publishTimeout = 5 * time.Second
)

// Publisher delivers events to a durable RabbitMQ queue from a single
// background goroutine.  Publish never blocks on the broker: events are
// buffered and a broker outage only costs the events that fail to send.
// The connection is opened lazily and re-dialed after any failure.
type Publisher struct {
	url   string
	queue string
	log   *zap.Logger

	mu     sync.RWMutex
	closed bool
	events chan Event
	done   chan struct{}

	conn *amqp.Connection
	ch   *amqp.Channel
}

// NewPublisher starts a publisher for the given broker url and queue name.
// buffer bounds the number of events waiting to be sent.
func NewPublisher(url, queue string, buffer int, log *zap.Logger) *Publisher {
	p := newPublisher(url, queue, buffer, log)
	go p.run()
	return p
}

func newPublisher(url, queue string, buffer int, log *zap.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if buffer < 1 {
		buffer = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		url:    url,
		queue:  queue,
		log:    log.Named("publisher"),
		events: make(chan Event, buffer),
		done:   make(chan struct{}),
	}
}

// Publish stamps the event with a message id and enqueues it.
func (p *Publisher) Publish(ctx context.Context, ev Event) error {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.OccurredAt.IsZero() {
		ev.OccurredAt = time.Now().UTC()
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events, flushes what is buffered and closes the
// broker connection.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()

	<-p.done
	p.reset()
	return nil
}

func (p *Publisher) run() {
	defer close(p.done)
	for ev := range p.events {
		err := p.send(ev)
		if err != nil {
			// one retry on a fresh connection
			p.reset()
			err = p.send(ev)
		}
		if err != nil {
			p.reset()
			p.log.Warn("publish failed", zap.String("event_id", ev.ID), zap.String("type", ev.Type), zap.Error(err))
		}
	}
}

func (p *Publisher) send(ev Event) error {
	if err := p.connect(); err != nil {
		return err
	}
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	// default exchange, routing key = queue name
	return p.ch.PublishWithContext(ctx, "", p.queue, false, false, msg)
}

func (p *Publisher) connect() error {
	if p.ch != nil && !p.ch.IsClosed() {
		return nil
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(dialTimeout)})
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	p.conn, p.ch = conn, ch
	return nil
}

func (p *Publisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// encode builds the persistent JSON message for ev.
func encode(ev Event) (amqp.Publishing, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    ev.ID,
		Type:         ev.Type,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	}, nil
}
