package strategy

import (
	"fmt"
	"math/big"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// UUIDConfig configures UUID_STRATEGY.
type UUIDConfig struct {
	Common      `yaml:",inline"`
	Version     int    `yaml:"version"`
	Hyphens     bool   `yaml:"hyphens"`
	Uppercase   bool   `yaml:"uppercase"`
	Prefix      string `yaml:"prefix"`
	NumbersOnly bool   `yaml:"numbers_only"`
}

// Validate checks the version.
func (c *UUIDConfig) Validate() error {
	switch c.Version {
	case 4, 5, 7:
		return nil
	}
	return fieldErr("version", "must be 4, 5 or 7, got %d", c.Version)
}

// UUID emits formatted UUIDs. Version 5 derives IDs from a namespace bound to
// the column and seed plus a running counter, so seeded runs repeat and
// chunks continue the counter. Versions 4 and 7 read from the seeded source.
type UUID struct {
	base
	cfg       UUIDConfig
	namespace uuid.UUID
	counter   int64
}

func newUUID(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*UUIDConfig)
	u := &UUID{base: newBase("UUID_STRATEGY", opts), cfg: *c}
	u.namespace = uuid.NewSHA1(uuid.NameSpaceDNS, fmt.Appendf(nil, "genxdata:%s:%d", opts.Column, u.seed))
	return u, nil
}

// GenerateChunk emits count UUIDs.
func (u *UUID) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	src := rngReader{u.rng}
	for i := range out {
		var (
			id  uuid.UUID
			err error
		)
		switch u.cfg.Version {
		case 5:
			id = uuid.NewSHA1(u.namespace, strconv.AppendInt(nil, u.counter, 10))
			u.counter++
		case 7:
			id, err = uuid.NewV7FromReader(src)
		default:
			id, err = uuid.NewRandomFromReader(src)
		}
		if err != nil {
			return nil, fmt.Errorf("uuid v%d: %w", u.cfg.Version, err)
		}
		out[i] = u.format(id)
	}
	return out, nil
}

func (u *UUID) format(id uuid.UUID) string {
	var s string
	if u.cfg.NumbersOnly {
		s = new(big.Int).SetBytes(id[:]).String()
	} else {
		s = id.String()
		if !u.cfg.Hyphens {
			s = strings.ReplaceAll(s, "-", "")
		}
		if u.cfg.Uppercase {
			s = strings.ToUpper(s)
		}
	}
	return u.cfg.Prefix + s
}

// ResetState rewinds the counter and random source.
func (u *UUID) ResetState() {
	u.base.ResetState()
	u.counter = 0
}

// CurrentState includes the v5 counter.
func (u *UUID) CurrentState() State {
	st := u.base.CurrentState()
	st["counter"] = u.counter
	st["version"] = u.cfg.Version
	return st
}

// rngReader adapts a seeded source to io.Reader for uuid's *FromReader.
type rngReader struct{ rng *rand.Rand }

func (r rngReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r.rng.Uint32())
	}
	return len(p), nil
}
