package queue

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/genxdata/internal/gerrors"
)

// Transport types.
const (
	TypeKafka  = "kafka"
	TypeAMQP   = "amqp"
	TypeMemory = "memory"
)

// Config is a normalized stream configuration.
type Config struct {
	Type       string
	Serializer string
	BatchSize  int
	ChunkSize  int
	AMQP       AMQPConfig
	Kafka      KafkaConfig
}

// AMQPConfig addresses one durable queue on a broker.
type AMQPConfig struct {
	URL         string `yaml:"url"`
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	VirtualHost string `yaml:"virtual_host"`
	Queue       string `yaml:"queue"`
	Durable     *bool  `yaml:"durable"`
}

// KafkaConfig addresses one topic.
type KafkaConfig struct {
	BootstrapServers any    `yaml:"bootstrap_servers"`
	Topic            string `yaml:"topic"`
	ClientID         string `yaml:"client_id"`
	Acks             string `yaml:"acks"`
	Compression      string `yaml:"compression"`
}

// streamFields are accepted at the top level of either form.
type streamFields struct {
	Type       string `yaml:"type"`
	Serializer string `yaml:"serializer"`
	BatchSize  int    `yaml:"batch_size"`
	ChunkSize  int    `yaml:"chunk_size"`
}

// ParseConfig accepts the flat form ({type: kafka, topic: ..., ...}) or the
// nested form ({kafka: {topic: ...}, batch_size: ...}).
func ParseConfig(raw map[string]any) (Config, error) {
	if len(raw) == 0 {
		return Config{}, gerrors.NewConfigValidationError("stream config is empty", "stream")
	}
	var top streamFields
	if err := decodeSection(raw, &top); err != nil {
		return Config{}, err
	}

	kind, section := "", raw
	for _, name := range []string{TypeKafka, TypeAMQP, TypeMemory} {
		if nested, ok := raw[name].(map[string]any); ok {
			kind, section = name, nested
			break
		}
	}
	if kind == "" {
		kind = strings.ToLower(strings.TrimSpace(top.Type))
	}

	cfg := Config{Type: kind, Serializer: top.Serializer, BatchSize: top.BatchSize, ChunkSize: top.ChunkSize}
	if s, ok := section["serializer"].(string); ok && cfg.Serializer == "" {
		cfg.Serializer = s
	}
	switch kind {
	case TypeKafka:
		if err := decodeSection(section, &cfg.Kafka); err != nil {
			return Config{}, err
		}
	case TypeAMQP:
		if err := decodeSection(section, &cfg.AMQP); err != nil {
			return Config{}, err
		}
	case TypeMemory:
	case "":
		return Config{}, gerrors.NewConfigValidationError(
			"stream config needs a transport: flat 'type' or a nested 'kafka'/'amqp' section", "type")
	default:
		return Config{}, gerrors.NewConfigValidationError(
			fmt.Sprintf("unsupported stream transport %q", kind), "type")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the transport-specific required fields.
func (c Config) Validate() error {
	if _, err := SerializerFor(c.Serializer); err != nil {
		return gerrors.NewConfigValidationError(err.Error(), "serializer")
	}
	switch c.Type {
	case TypeAMQP:
		if c.AMQP.Queue == "" {
			return gerrors.NewConfigValidationError("amqp stream config requires queue", "queue")
		}
		if c.AMQP.URL == "" && (c.AMQP.Host == "" || c.AMQP.Port == 0) {
			return gerrors.NewConfigValidationError(
				"amqp stream config requires url or host and port", "url", "host", "port")
		}
	case TypeKafka:
		if len(c.Kafka.Brokers()) == 0 {
			return gerrors.NewConfigValidationError("kafka stream config requires bootstrap_servers", "bootstrap_servers")
		}
		if c.Kafka.Topic == "" {
			return gerrors.NewConfigValidationError("kafka stream config requires topic", "topic")
		}
	}
	return nil
}

// Destination names where messages go, without credentials.
func (c Config) Destination() string {
	switch c.Type {
	case TypeAMQP:
		return c.AMQP.MaskedURL() + "/" + c.AMQP.Queue
	case TypeKafka:
		return strings.Join(c.Kafka.Brokers(), ",") + "/" + c.Kafka.Topic
	default:
		return c.Type
	}
}

// Brokers normalizes bootstrap_servers given as a string, a comma list or
// a sequence.
func (k KafkaConfig) Brokers() []string {
	var out []string
	switch v := k.BootstrapServers.(type) {
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	case []any:
		for _, e := range v {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// ConnectionURL returns url, or builds one from host and port.
func (a AMQPConfig) ConnectionURL() string {
	if a.URL != "" {
		return a.URL
	}
	u := url.URL{Scheme: "amqp", Host: fmt.Sprintf("%s:%d", a.Host, a.Port), Path: "/" + strings.TrimPrefix(a.VirtualHost, "/")}
	if a.Username != "" {
		u.User = url.UserPassword(a.Username, a.Password)
	}
	return u.String()
}

// MaskedURL is ConnectionURL with any password replaced.
func (a AMQPConfig) MaskedURL() string {
	u, err := url.Parse(a.ConnectionURL())
	if err != nil {
		return "amqp://(invalid)"
	}
	return u.Redacted()
}

func decodeSection(section map[string]any, out any) error {
	var node yaml.Node
	if err := node.Encode(section); err != nil {
		return gerrors.NewConfigValidationError(fmt.Sprintf("stream config not encodable: %v", err))
	}
	if err := node.Decode(out); err != nil {
		return gerrors.NewConfigValidationError(fmt.Sprintf("stream config has invalid field types: %v", err), keys(section)...)
	}
	return nil
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
