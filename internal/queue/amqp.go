package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/roach88/genxdata/internal/dataset"
)

// AMQPProducer publishes to one queue through the default exchange.
type AMQPProducer struct {
	cfg    AMQPConfig
	ser    Serializer
	conn   *amqp.Connection
	ch     *amqp.Channel
	logger *slog.Logger
}

// NewAMQPProducer builds an unconnected AMQP producer.
func NewAMQPProducer(cfg Config, ser Serializer, logger *slog.Logger) (Producer, error) {
	return &AMQPProducer{cfg: cfg.AMQP, ser: ser, logger: logger}, nil
}

// Connect dials the broker, opens a channel and declares the queue.
func (p *AMQPProducer) Connect(ctx context.Context) error {
	conn, err := amqp.DialConfig(p.cfg.ConnectionURL(), amqp.Config{
		Vhost: p.cfg.VirtualHost,
		Dial:  amqp.DefaultDial(10 * time.Second),
	})
	if err != nil {
		return fmt.Errorf("connect amqp %s: %w", p.cfg.MaskedURL(), err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open amqp channel: %w", err)
	}
	durable := p.cfg.Durable == nil || *p.cfg.Durable
	if _, err := ch.QueueDeclare(p.cfg.Queue, durable, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("declare queue %s: %w", p.cfg.Queue, err)
	}
	p.conn, p.ch = conn, ch
	p.logger.Info("connected to amqp", slog.String("destination", p.Destination()))
	return nil
}

// Disconnect closes the channel and connection. Safe to call twice.
func (p *AMQPProducer) Disconnect(context.Context) error {
	var err error
	if p.ch != nil {
		err = errors.Join(err, p.ch.Close())
		p.ch = nil
	}
	if p.conn != nil {
		err = errors.Join(err, p.conn.Close())
		p.conn = nil
	}
	return err
}

// SendDataframe sends f as one persistent message.
func (p *AMQPProducer) SendDataframe(ctx context.Context, f *dataset.Frame, info *dataset.BatchInfo) error {
	return p.SendMessage(ctx, NewMessage(f, info))
}

// SendMessage serializes and publishes msg.
func (p *AMQPProducer) SendMessage(ctx context.Context, msg Message) error {
	if p.ch == nil {
		return errors.New("amqp producer is not connected")
	}
	body, err := p.ser.Marshal(msg)
	if err != nil {
		return fmt.Errorf("serialize message: %w", err)
	}
	return p.ch.PublishWithContext(ctx, "", p.cfg.Queue, false, false, amqp.Publishing{
		ContentType:  p.ser.ContentType(),
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
}

// Destination returns the masked broker URL and queue.
func (p *AMQPProducer) Destination() string {
	return p.cfg.MaskedURL() + "/" + p.cfg.Queue
}
