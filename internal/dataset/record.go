package dataset

import (
	"bytes"
	"encoding/json"

	"github.com/vmihailenco/msgpack/v5"
)

// Record is one row with its column order preserved through encoding.
type Record struct {
	names  []string
	values []any
}

// NewRecord pairs names with values. Both slices must have equal length.
func NewRecord(names []string, values []any) Record {
	return Record{names: names, values: values}
}

// Names returns the column names of the record.
func (r Record) Names() []string { return r.names }

// Get returns the value of a named column.
func (r Record) Get(name string) (any, bool) {
	for i, n := range r.names {
		if n == name {
			return r.values[i], true
		}
	}
	return nil, false
}

// MarshalJSON encodes the record as an object with keys in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeMsgpack encodes the record as a msgpack map in column order.
func (r Record) EncodeMsgpack(enc *msgpack.Encoder) error {
	if err := enc.EncodeMapLen(len(r.names)); err != nil {
		return err
	}
	for i, name := range r.names {
		if err := enc.EncodeString(name); err != nil {
			return err
		}
		if err := enc.Encode(r.values[i]); err != nil {
			return err
		}
	}
	return nil
}
