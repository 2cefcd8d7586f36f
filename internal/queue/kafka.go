package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/segmentio/kafka-go"

	"github.com/roach88/genxdata/internal/dataset"
)

// KafkaProducer publishes to a Kafka topic.
type KafkaProducer struct {
	cfg    KafkaConfig
	ser    Serializer
	writer *kafka.Writer
	logger *slog.Logger
}

// NewKafkaProducer builds an unconnected Kafka producer.
func NewKafkaProducer(cfg Config, ser Serializer, logger *slog.Logger) (Producer, error) {
	if _, err := kafkaAcks(cfg.Kafka.Acks); err != nil {
		return nil, err
	}
	if _, err := kafkaCompression(cfg.Kafka.Compression); err != nil {
		return nil, err
	}
	return &KafkaProducer{cfg: cfg.Kafka, ser: ser, logger: logger}, nil
}

// Connect dials the first reachable broker to fail early, then prepares
// the writer.
func (p *KafkaProducer) Connect(ctx context.Context) error {
	brokers := p.cfg.Brokers()
	var dialErr error
	for _, b := range brokers {
		conn, err := kafka.DialContext(ctx, "tcp", b)
		if err != nil {
			dialErr = errors.Join(dialErr, err)
			continue
		}
		conn.Close()
		dialErr = nil
		break
	}
	if dialErr != nil {
		return fmt.Errorf("connect kafka %s: %w", strings.Join(brokers, ","), dialErr)
	}

	acks, _ := kafkaAcks(p.cfg.Acks)
	codec, _ := kafkaCompression(p.cfg.Compression)
	clientID := p.cfg.ClientID
	if clientID == "" {
		clientID = "genxdata-producer"
	}
	p.writer = &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        p.cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: acks,
		Compression:  codec,
		Transport:    &kafka.Transport{ClientID: clientID},
	}
	p.logger.Info("connected to kafka", slog.String("destination", p.Destination()))
	return nil
}

// Disconnect flushes and closes the writer. Safe to call twice.
func (p *KafkaProducer) Disconnect(context.Context) error {
	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}

// SendDataframe sends f as one message keyed by its batch index.
func (p *KafkaProducer) SendDataframe(ctx context.Context, f *dataset.Frame, info *dataset.BatchInfo) error {
	return p.SendMessage(ctx, NewMessage(f, info))
}

// SendMessage serializes and writes msg.
func (p *KafkaProducer) SendMessage(ctx context.Context, msg Message) error {
	if p.writer == nil {
		return errors.New("kafka producer is not connected")
	}
	body, err := p.ser.Marshal(msg)
	if err != nil {
		return fmt.Errorf("serialize message: %w", err)
	}
	km := kafka.Message{
		Value:   body,
		Headers: []kafka.Header{{Key: "content-type", Value: []byte(p.ser.ContentType())}},
	}
	if msg.BatchInfo != nil {
		km.Key = []byte(strconv.Itoa(msg.BatchInfo.BatchIndex))
	}
	return p.writer.WriteMessages(ctx, km)
}

// Destination returns brokers/topic.
func (p *KafkaProducer) Destination() string {
	return strings.Join(p.cfg.Brokers(), ",") + "/" + p.cfg.Topic
}

func kafkaAcks(s string) (kafka.RequiredAcks, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "-1":
		return kafka.RequireAll, nil
	case "1", "one":
		return kafka.RequireOne, nil
	case "0", "none":
		return kafka.RequireNone, nil
	default:
		return 0, fmt.Errorf("invalid kafka acks %q", s)
	}
}

func kafkaCompression(s string) (kafka.Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	default:
		return 0, fmt.Errorf("invalid kafka compression %q", s)
	}
}
