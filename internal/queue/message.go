package queue

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/genxdata/internal/dataset"
)

// Message is the body sent for one batch.
type Message struct {
	BatchInfo *dataset.BatchInfo `json:"batch_info" msgpack:"batch_info"`
	Data      []dataset.Record   `json:"data" msgpack:"data"`
	Metadata  MessageMetadata    `json:"metadata" msgpack:"metadata"`
}

// MessageMetadata describes the shape of Data.
type MessageMetadata struct {
	Rows    int               `json:"rows" msgpack:"rows"`
	Columns []string          `json:"columns" msgpack:"columns"`
	DTypes  map[string]string `json:"dtypes" msgpack:"dtypes"`
}

// NewMessage builds the message for frame f.
func NewMessage(f *dataset.Frame, info *dataset.BatchInfo) Message {
	return Message{
		BatchInfo: info,
		Data:      f.Records(),
		Metadata: MessageMetadata{
			Rows:    f.Len(),
			Columns: f.Columns(),
			DTypes:  f.DTypes(),
		},
	}
}

// Serializer encodes messages for the wire.
type Serializer interface {
	Marshal(msg Message) ([]byte, error)
	ContentType() string
}

// JSONSerializer encodes messages as JSON. Records keep column order.
type JSONSerializer struct{}

func (JSONSerializer) Marshal(msg Message) ([]byte, error) { return json.Marshal(msg) }
func (JSONSerializer) ContentType() string                  { return "application/json" }

// MsgpackSerializer encodes messages as MessagePack.
type MsgpackSerializer struct{}

func (MsgpackSerializer) Marshal(msg Message) ([]byte, error) { return msgpack.Marshal(msg) }
func (MsgpackSerializer) ContentType() string                  { return "application/msgpack" }

// SerializerFor resolves a serializer name. Empty selects JSON.
func SerializerFor(name string) (Serializer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSONSerializer{}, nil
	case "msgpack", "messagepack":
		return MsgpackSerializer{}, nil
	default:
		return nil, fmt.Errorf("unknown serializer %q (want json or msgpack)", name)
	}
}
