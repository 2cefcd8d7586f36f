package strategy

import (
	"math"
)

// SeriesConfig configures SERIES_STRATEGY.
type SeriesConfig struct {
	Common `yaml:",inline"`
	Start  float64 `yaml:"start"`
	Step   float64 `yaml:"step"`
}

// Validate checks the series params.
func (c *SeriesConfig) Validate() error {
	if math.IsNaN(c.Start) || math.IsInf(c.Start, 0) {
		return fieldErr("start", "must be a finite number")
	}
	if math.IsNaN(c.Step) || math.IsInf(c.Step, 0) {
		return fieldErr("step", "must be a finite number")
	}
	return nil
}

// Series emits start, start+step, start+2*step, ... and continues numbering
// across chunks. Integral start and step produce int64 values.
type Series struct {
	base
	cfg     SeriesConfig
	integer bool
	next    float64
}

func newSeries(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*SeriesConfig)
	return &Series{
		base:    newBase("SERIES_STRATEGY", opts),
		cfg:     *c,
		integer: isIntegral(c.Start) && isIntegral(c.Step),
		next:    c.Start,
	}, nil
}

// GenerateChunk continues the series from the last emitted value.
func (s *Series) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		if s.integer {
			out[i] = int64(s.next)
		} else {
			out[i] = s.next
		}
		s.next += s.cfg.Step
	}
	return out, nil
}

// ResetState restarts numbering at start.
func (s *Series) ResetState() {
	s.base.ResetState()
	s.next = s.cfg.Start
}

// CurrentState includes the next value to be emitted.
func (s *Series) CurrentState() State {
	st := s.base.CurrentState()
	st["next_value"] = s.next
	st["step"] = s.cfg.Step
	return st
}

func isIntegral(f float64) bool {
	return f == math.Trunc(f) && math.Abs(f) < 1<<53
}

// RandomNumberRangeConfig configures RANDOM_NUMBER_RANGE_STRATEGY.
type RandomNumberRangeConfig struct {
	Common    `yaml:",inline"`
	Start     float64 `yaml:"start"`
	End       float64 `yaml:"end"`
	Step      float64 `yaml:"step"`
	Precision int     `yaml:"precision"`
}

// Validate checks the range bounds.
func (c *RandomNumberRangeConfig) Validate() error {
	if c.Start >= c.End {
		return fieldErr("start", "start (%g) must be less than end (%g)", c.Start, c.End)
	}
	if c.Step <= 0 {
		return fieldErr("step", "must be positive, got %g", c.Step)
	}
	if c.Precision < 0 || c.Precision > 15 {
		return fieldErr("precision", "must be between 0 and 15, got %d", c.Precision)
	}
	if gridFirst(c.Start, c.Precision) >= c.End {
		return fieldErr("end", "range [%g, %g) holds no value at precision %d", c.Start, c.End, c.Precision)
	}
	return nil
}

// maxEnumerable bounds the value space Domain will list.
const maxEnumerable = 1 << 16

// RandomNumberRange draws uniformly from [start, end). With precision 0 and
// integral bounds it draws from the stepped grid start, start+step, ...;
// otherwise it draws floats rounded to precision digits, snapped back into
// the range when rounding crosses a bound.
type RandomNumberRange struct {
	base
	cfg         RandomNumberRangeConfig
	integer     bool
	slots       int64
	first, last float64
}

func newRandomNumberRange(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*RandomNumberRangeConfig)
	r := &RandomNumberRange{
		base:    newBase("RANDOM_NUMBER_RANGE_STRATEGY", opts),
		cfg:     *c,
		integer: c.Precision == 0 && isIntegral(c.Start) && isIntegral(c.Step),
	}
	r.slots = int64(math.Ceil((c.End - c.Start) / c.Step))
	r.first = gridFirst(c.Start, c.Precision)
	r.last = gridLast(c.End, c.Precision)
	return r, nil
}

// GenerateChunk draws count values.
func (r *RandomNumberRange) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		if r.integer {
			out[i] = int64(r.cfg.Start) + r.rng.Int64N(r.slots)*int64(r.cfg.Step)
			continue
		}
		v := roundTo(r.cfg.Start+r.rng.Float64()*(r.cfg.End-r.cfg.Start), r.cfg.Precision)
		switch {
		case v >= r.cfg.End:
			v = r.last
		case v < r.cfg.Start:
			v = r.first
		}
		out[i] = v
	}
	return out, nil
}

// Domain lists the stepped grid for integer ranges.
func (r *RandomNumberRange) Domain() ([]any, bool) {
	if !r.integer || r.slots > maxEnumerable {
		return nil, false
	}
	out := make([]any, r.slots)
	for i := range out {
		out[i] = int64(r.cfg.Start) + int64(i)*int64(r.cfg.Step)
	}
	return out, true
}

// CurrentState includes the bounds.
func (r *RandomNumberRange) CurrentState() State {
	st := r.base.CurrentState()
	st["lower_bound"] = r.cfg.Start
	st["upper_bound"] = r.cfg.End
	st["is_integer"] = r.integer
	return st
}

func roundTo(v float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Round(v*p) / p
}

// gridFirst returns the smallest multiple of 10^-precision >= start.
func gridFirst(start float64, precision int) float64 {
	p := math.Pow10(precision)
	return math.Ceil(start*p) / p
}

// gridLast returns the largest multiple of 10^-precision < end.
func gridLast(end float64, precision int) float64 {
	p := math.Pow10(precision)
	return (math.Ceil(end*p) - 1) / p
}

// NumberRangeItem is one weighted range of DISTRIBUTED_NUMBER_RANGE_STRATEGY.
type NumberRangeItem struct {
	Start        float64 `yaml:"start"`
	End          float64 `yaml:"end"`
	Distribution float64 `yaml:"distribution"`
}

// DistributedNumberRangeConfig configures DISTRIBUTED_NUMBER_RANGE_STRATEGY.
type DistributedNumberRangeConfig struct {
	Common `yaml:",inline"`
	Ranges []NumberRangeItem `yaml:"ranges"`
}

// Validate checks each range and the weight total.
func (c *DistributedNumberRangeConfig) Validate() error {
	weights := make([]float64, len(c.Ranges))
	for i, r := range c.Ranges {
		if r.Start >= r.End {
			return prefixField(fieldErr("start", "start (%g) must be less than end (%g)", r.Start, r.End),
				indexed("ranges", i))
		}
		if math.Ceil(r.Start) >= math.Ceil(r.End) {
			return prefixField(fieldErr("end", "range [%g, %g) holds no integer", r.Start, r.End),
				indexed("ranges", i))
		}
		weights[i] = r.Distribution
	}
	return checkWeights("DISTRIBUTED_NUMBER_RANGE_STRATEGY", "ranges", weights)
}

// DistributedNumberRange picks a range by weight, then an integer uniformly
// within [start, end) of that range.
type DistributedNumberRange struct {
	base
	cfg     DistributedNumberRangeConfig
	weights []float64
}

func newDistributedNumberRange(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*DistributedNumberRangeConfig)
	d := &DistributedNumberRange{base: newBase("DISTRIBUTED_NUMBER_RANGE_STRATEGY", opts), cfg: *c}
	for _, r := range c.Ranges {
		d.weights = append(d.weights, r.Distribution)
	}
	return d, nil
}

// GenerateChunk draws count values against the fixed distribution.
func (d *DistributedNumberRange) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		r := d.cfg.Ranges[pickWeighted(d.rng, d.weights, 100)]
		lo, hi := int64(math.Ceil(r.Start)), int64(math.Ceil(r.End))
		out[i] = lo + d.rng.Int64N(hi-lo)
	}
	return out, nil
}
