package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// defaultDialTimeout bounds connect and handshake when ctx has no deadline.
const defaultDialTimeout = 5 * time.Second

// AMQPPublisher publishes persistent JSON messages to a durable queue on the
// default exchange.  The connection is opened on first use and re-opened
// after the broker drops it.
type AMQPPublisher struct {
	url   string
	queue string

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(url, queue string) *AMQPPublisher {
	return &AMQPPublisher{url: url, queue: queue}
}

func (p *AMQPPublisher) Publish(ctx context.Context, ev BookingEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ch, err := p.channel(ctx)
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, "", p.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         ev.Type,
		Body:         body,
	})
	if err != nil {
		p.mu.Lock()
		if p.ch == ch {
			p.reset()
		}
		p.mu.Unlock()
		return fmt.Errorf("publish %s: %w", ev.Type, err)
	}
	return nil
}

// channel returns the live channel, dialing a new one if needed.  The dial
// runs outside p.mu so a dead broker costs each caller at most its own ctx.
func (p *AMQPPublisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	if p.live() {
		ch := p.ch
		p.mu.Unlock()
		return ch, nil
	}
	p.mu.Unlock()

	conn, ch, err := p.dial(ctx)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.live() {
		// lost the race to a concurrent dial
		_ = ch.Close()
		_ = conn.Close()
		return p.ch, nil
	}
	p.reset()
	p.conn, p.ch = conn, ch
	return ch, nil
}

// live reports whether conn and ch are usable.  Callers hold p.mu.
func (p *AMQPPublisher) live() bool {
	return p.ch != nil && !p.ch.IsClosed() && p.conn != nil && !p.conn.IsClosed()
}

func (p *AMQPPublisher) dial(ctx context.Context) (*amqp.Connection, *amqp.Channel, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}
	timeout := defaultDialTimeout
	if dl, ok := ctx.Deadline(); ok {
		timeout = time.Until(dl)
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: contextDialer(ctx, timeout)})
	if err != nil {
		return nil, nil, fmt.Errorf("dial broker: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, fmt.Errorf("declare %s: %w", p.queue, err)
	}
	return conn, ch, nil
}

// contextDialer connects under ctx and sets a deadline covering the AMQP
// handshake.  The client clears the deadline once the connection is open.
func contextDialer(ctx context.Context, timeout time.Duration) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

func (p *AMQPPublisher) reset() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

// Close releases the broker connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reset()
	return nil
}
