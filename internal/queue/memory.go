package queue

import (
	"context"
	"errors"
	"sync"

	"github.com/roach88/genxdata/internal/dataset"
)

// MemoryProducer keeps messages in memory. It backs the "memory" transport
// used for dry runs and tests.
type MemoryProducer struct {
	mu        sync.Mutex
	connected bool
	messages  []Message
	closes    int

	// FailOn, when set, is consulted before each send; a non-nil result
	// is returned instead of recording the message.
	FailOn func(msg Message) error

	// ConnectErr and DisconnectErr are returned by Connect and Disconnect.
	ConnectErr    error
	DisconnectErr error
}

// NewMemoryProducer creates an empty in-memory producer.
func NewMemoryProducer() *MemoryProducer {
	return &MemoryProducer{}
}

func (p *MemoryProducer) Connect(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ConnectErr != nil {
		return p.ConnectErr
	}
	p.connected = true
	return nil
}

func (p *MemoryProducer) Disconnect(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		p.closes++
	}
	p.connected = false
	return p.DisconnectErr
}

func (p *MemoryProducer) SendDataframe(ctx context.Context, f *dataset.Frame, info *dataset.BatchInfo) error {
	return p.SendMessage(ctx, NewMessage(f, info))
}

func (p *MemoryProducer) SendMessage(_ context.Context, msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return errors.New("memory producer is not connected")
	}
	if p.FailOn != nil {
		if err := p.FailOn(msg); err != nil {
			return err
		}
	}
	p.messages = append(p.messages, msg)
	return nil
}

func (p *MemoryProducer) Destination() string { return TypeMemory }

// Messages returns a copy of the sent messages.
func (p *MemoryProducer) Messages() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Message(nil), p.messages...)
}

// Disconnects reports how many times an open connection was closed.
func (p *MemoryProducer) Disconnects() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closes
}
