package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/genxdata/internal/dataset"
)

// Producer sends messages to one transport destination.
type Producer interface {
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	SendDataframe(ctx context.Context, f *dataset.Frame, info *dataset.BatchInfo) error
	SendMessage(ctx context.Context, msg Message) error

	// Destination names the target for logs and summaries.
	Destination() string
}

// Constructor builds an unconnected producer.
type Constructor func(cfg Config, ser Serializer, logger *slog.Logger) (Producer, error)

// Factory maps transport types to constructors.
type Factory struct {
	ctors  map[string]Constructor
	logger *slog.Logger
}

// NewFactory creates a factory with the kafka, amqp and memory transports
// registered. A nil logger uses slog.Default().
func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Factory{ctors: make(map[string]Constructor), logger: logger}
	f.Register(TypeKafka, NewKafkaProducer)
	f.Register(TypeAMQP, NewAMQPProducer)
	f.Register(TypeMemory, func(Config, Serializer, *slog.Logger) (Producer, error) {
		return NewMemoryProducer(), nil
	})
	return f
}

// Register adds or replaces the constructor for a transport type.
func (f *Factory) Register(kind string, ctor Constructor) {
	f.ctors[strings.ToLower(kind)] = ctor
}

// Types lists the registered transport types.
func (f *Factory) Types() []string {
	out := make([]string, 0, len(f.ctors))
	for k := range f.ctors {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Create builds the producer for cfg. It does not connect.
func (f *Factory) Create(cfg Config) (Producer, error) {
	ctor, ok := f.ctors[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("no producer registered for transport %q", cfg.Type)
	}
	ser, err := SerializerFor(cfg.Serializer)
	if err != nil {
		return nil, err
	}
	return ctor(cfg, ser, f.logger.With(slog.String("component", "queue"), slog.String("transport", cfg.Type)))
}

// CreateFromMap parses a raw stream section and builds its producer.
func (f *Factory) CreateFromMap(raw map[string]any) (Producer, Config, error) {
	cfg, err := ParseConfig(raw)
	if err != nil {
		return nil, Config{}, err
	}
	p, err := f.Create(cfg)
	if err != nil {
		return nil, Config{}, err
	}
	return p, cfg, nil
}
