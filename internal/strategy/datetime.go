package strategy

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	defaultDateFormat = "%Y-%m-%d"
	defaultTimeFormat = "%H:%M:%S"
	secondsPerDay     = 24 * 60 * 60
)

// dateSpan is a validated [start, end) interval with its output format.
type dateSpan struct {
	start, end time.Time
	out        timeFormat
	clock      bool
}

func newDateSpan(startField, start, end, format, output string) (dateSpan, error) {
	in, err := newTimeFormat("format", format)
	if err != nil {
		return dateSpan{}, err
	}
	if output == "" {
		output = format
	}
	out, err := newTimeFormat("output_format", output)
	if err != nil {
		return dateSpan{}, err
	}
	s, err := in.parse(startField, start)
	if err != nil {
		return dateSpan{}, err
	}
	e, err := in.parse("end_date", end)
	if err != nil {
		return dateSpan{}, err
	}
	if !s.Before(e) {
		return dateSpan{}, fieldErr(startField, "start (%s) must be before end (%s)", start, end)
	}
	return dateSpan{start: s, end: e, out: out, clock: hasClock(format)}, nil
}

// draw returns a formatted instant in [start, end). Date-only input formats
// draw whole days.
func (d dateSpan) draw(rng interface{ Int64N(int64) int64 }) string {
	if d.clock {
		secs := int64(d.end.Sub(d.start) / time.Second)
		return d.out.format(d.start.Add(time.Duration(rng.Int64N(max(secs, 1))) * time.Second))
	}
	days := int64(d.end.Sub(d.start).Hours() / 24)
	return d.out.format(d.start.AddDate(0, 0, int(rng.Int64N(max(days, 1)))))
}

// DateRangeConfig configures RANDOM_DATE_RANGE_STRATEGY.
type DateRangeConfig struct {
	Common       `yaml:",inline"`
	StartDate    string `yaml:"start_date"`
	EndDate      string `yaml:"end_date"`
	Format       string `yaml:"format"`
	OutputFormat string `yaml:"output_format"`
}

// Validate parses both bounds.
func (c *DateRangeConfig) Validate() error {
	_, err := newDateSpan("start_date", c.StartDate, c.EndDate, c.Format, c.OutputFormat)
	return err
}

// RandomDateRange draws dates uniformly from [start_date, end_date).
type RandomDateRange struct {
	base
	span dateSpan
}

func newRandomDateRange(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*DateRangeConfig)
	span, err := newDateSpan("start_date", c.StartDate, c.EndDate, c.Format, c.OutputFormat)
	if err != nil {
		return nil, err
	}
	return &RandomDateRange{base: newBase("RANDOM_DATE_RANGE_STRATEGY", opts), span: span}, nil
}

// GenerateChunk draws count formatted dates.
func (r *RandomDateRange) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		out[i] = r.span.draw(r.rng)
	}
	return out, nil
}

// DateRangeItem is one weighted span of DISTRIBUTED_DATE_RANGE_STRATEGY.
type DateRangeItem struct {
	StartDate    string  `yaml:"start_date"`
	EndDate      string  `yaml:"end_date"`
	Format       string  `yaml:"format"`
	OutputFormat string  `yaml:"output_format"`
	Distribution float64 `yaml:"distribution"`
}

// DistributedDateRangeConfig configures DISTRIBUTED_DATE_RANGE_STRATEGY.
type DistributedDateRangeConfig struct {
	Common `yaml:",inline"`
	Ranges []DateRangeItem `yaml:"ranges"`
}

func (c *DistributedDateRangeConfig) spans() ([]dateSpan, []float64, error) {
	spans := make([]dateSpan, len(c.Ranges))
	weights := make([]float64, len(c.Ranges))
	for i, r := range c.Ranges {
		format := r.Format
		if format == "" {
			format = defaultDateFormat
		}
		s, err := newDateSpan("start_date", r.StartDate, r.EndDate, format, r.OutputFormat)
		if err != nil {
			return nil, nil, prefixField(err, indexed("ranges", i))
		}
		spans[i] = s
		weights[i] = r.Distribution
	}
	return spans, weights, nil
}

// Validate checks each span and the weight total.
func (c *DistributedDateRangeConfig) Validate() error {
	_, weights, err := c.spans()
	if err != nil {
		return err
	}
	return checkWeights("DISTRIBUTED_DATE_RANGE_STRATEGY", "ranges", weights)
}

// DistributedDateRange picks a span by weight, then a date inside it.
type DistributedDateRange struct {
	base
	spans   []dateSpan
	weights []float64
}

func newDistributedDateRange(cfg ParamConfig, opts Options) (Strategy, error) {
	spans, weights, err := cfg.(*DistributedDateRangeConfig).spans()
	if err != nil {
		return nil, err
	}
	return &DistributedDateRange{
		base:    newBase("DISTRIBUTED_DATE_RANGE_STRATEGY", opts),
		spans:   spans,
		weights: weights,
	}, nil
}

// GenerateChunk draws count dates against the fixed distribution.
func (d *DistributedDateRange) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		out[i] = d.spans[pickWeighted(d.rng, d.weights, 100)].draw(d.rng)
	}
	return out, nil
}

// DateSeriesConfig configures DATE_SERIES_STRATEGY.
type DateSeriesConfig struct {
	Common       `yaml:",inline"`
	StartDate    string `yaml:"start_date"`
	Freq         string `yaml:"freq"`
	Format       string `yaml:"format"`
	OutputFormat string `yaml:"output_format"`
}

// Validate parses start_date and freq.
func (c *DateSeriesConfig) Validate() error {
	in, err := newTimeFormat("format", c.Format)
	if err != nil {
		return err
	}
	if _, err := in.parse("start_date", c.StartDate); err != nil {
		return err
	}
	if c.OutputFormat != "" {
		if _, err := newTimeFormat("output_format", c.OutputFormat); err != nil {
			return err
		}
	}
	_, err = parseFreq(c.Freq)
	return err
}

// frequency advances a timestamp by n units.
type frequency struct {
	n    int
	unit string
}

func (f frequency) advance(t time.Time) time.Time {
	switch f.unit {
	case "s":
		return t.Add(time.Duration(f.n) * time.Second)
	case "min":
		return t.Add(time.Duration(f.n) * time.Minute)
	case "h":
		return t.Add(time.Duration(f.n) * time.Hour)
	case "w":
		return t.AddDate(0, 0, 7*f.n)
	case "m":
		return t.AddDate(0, f.n, 0)
	case "q":
		return t.AddDate(0, 3*f.n, 0)
	case "y":
		return t.AddDate(f.n, 0, 0)
	default:
		return t.AddDate(0, 0, f.n)
	}
}

var freqUnits = map[string]string{
	"s": "s", "sec": "s",
	"t": "min", "min": "min",
	"h": "h",
	"d": "d", "b": "d",
	"w": "w",
	"m": "m", "ms": "m", "me": "m",
	"q": "q", "qs": "q", "qe": "q",
	"y": "y", "ys": "y", "ye": "y", "a": "y",
}

// parseFreq accepts pandas-style aliases with an optional multiplier, e.g.
// "D", "2h", "15min", "M".
func parseFreq(freq string) (frequency, error) {
	f := strings.ToLower(strings.TrimSpace(freq))
	if f == "" {
		f = "d"
	}
	i := 0
	for i < len(f) && f[i] >= '0' && f[i] <= '9' {
		i++
	}
	n := 1
	if i > 0 {
		v, err := strconv.Atoi(f[:i])
		if err != nil || v <= 0 {
			return frequency{}, fieldErr("freq", "invalid multiplier in %q", freq)
		}
		n = v
	}
	unit, ok := freqUnits[f[i:]]
	if !ok {
		return frequency{}, fieldErr("freq", "unsupported frequency %q", freq)
	}
	return frequency{n: n, unit: unit}, nil
}

// DateSeries emits evenly spaced dates from start_date and continues from the
// last emitted date across chunks.
type DateSeries struct {
	base
	start time.Time
	next  time.Time
	freq  frequency
	out   timeFormat
}

func newDateSeries(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*DateSeriesConfig)
	in, err := newTimeFormat("format", c.Format)
	if err != nil {
		return nil, err
	}
	start, err := in.parse("start_date", c.StartDate)
	if err != nil {
		return nil, err
	}
	output := c.OutputFormat
	if output == "" {
		output = c.Format
	}
	out, err := newTimeFormat("output_format", output)
	if err != nil {
		return nil, err
	}
	freq, err := parseFreq(c.Freq)
	if err != nil {
		return nil, err
	}
	return &DateSeries{
		base:  newBase("DATE_SERIES_STRATEGY", opts),
		start: start,
		next:  start,
		freq:  freq,
		out:   out,
	}, nil
}

// GenerateChunk emits the next count dates.
func (d *DateSeries) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		out[i] = d.out.format(d.next)
		d.next = d.freq.advance(d.next)
	}
	return out, nil
}

// ResetState restarts the series at start_date.
func (d *DateSeries) ResetState() {
	d.base.ResetState()
	d.next = d.start
}

// CurrentState includes the next date.
func (d *DateSeries) CurrentState() State {
	st := d.base.CurrentState()
	st["next_value"] = d.out.format(d.next)
	st["freq"] = fmt.Sprintf("%d%s", d.freq.n, d.freq.unit)
	return st
}

// timeSpan is a validated clock interval in seconds of day. end may exceed
// one day for overnight spans.
type timeSpan struct {
	start, end int64
	out        timeFormat
}

func newTimeSpan(startField, endField, start, end, format, output string) (timeSpan, error) {
	in, err := newTimeFormat("format", format)
	if err != nil {
		return timeSpan{}, err
	}
	if output == "" {
		output = format
	}
	out, err := newTimeFormat("output_format", output)
	if err != nil {
		return timeSpan{}, err
	}
	s, err := in.parse(startField, start)
	if err != nil {
		return timeSpan{}, err
	}
	e, err := in.parse(endField, end)
	if err != nil {
		return timeSpan{}, err
	}
	ss, es := secondsOfDay(s), secondsOfDay(e)
	if es == ss {
		return timeSpan{}, fieldErr(startField, "start (%s) must differ from end (%s)", start, end)
	}
	if es < ss {
		// Overnight, e.g. 22:00:00 to 06:00:00.
		es += secondsPerDay
	}
	return timeSpan{start: ss, end: es, out: out}, nil
}

func secondsOfDay(t time.Time) int64 {
	return int64(t.Hour()*3600 + t.Minute()*60 + t.Second())
}

// draw returns a formatted time in [start, end], both ends inclusive.
func (t timeSpan) draw(rng interface{ Int64N(int64) int64 }) string {
	secs := (t.start + rng.Int64N(t.end-t.start+1)) % secondsPerDay
	clock := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(secs) * time.Second)
	return t.out.format(clock)
}

// TimeRangeConfig configures TIME_RANGE_STRATEGY.
type TimeRangeConfig struct {
	Common       `yaml:",inline"`
	StartTime    string `yaml:"start_time"`
	EndTime      string `yaml:"end_time"`
	Format       string `yaml:"format"`
	OutputFormat string `yaml:"output_format"`
}

// Validate parses both bounds.
func (c *TimeRangeConfig) Validate() error {
	_, err := newTimeSpan("start_time", "end_time", c.StartTime, c.EndTime, c.Format, c.OutputFormat)
	return err
}

// TimeRange draws clock times from [start_time, end_time], wrapping past
// midnight when start_time is later than end_time.
type TimeRange struct {
	base
	span timeSpan
}

func newTimeRange(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*TimeRangeConfig)
	span, err := newTimeSpan("start_time", "end_time", c.StartTime, c.EndTime, c.Format, c.OutputFormat)
	if err != nil {
		return nil, err
	}
	return &TimeRange{base: newBase("TIME_RANGE_STRATEGY", opts), span: span}, nil
}

// GenerateChunk draws count formatted times.
func (t *TimeRange) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		out[i] = t.span.draw(t.rng)
	}
	return out, nil
}

// TimeRangeItem is one weighted span of DISTRIBUTED_TIME_RANGE_STRATEGY.
type TimeRangeItem struct {
	Start        string  `yaml:"start"`
	End          string  `yaml:"end"`
	Format       string  `yaml:"format"`
	OutputFormat string  `yaml:"output_format"`
	Distribution float64 `yaml:"distribution"`
}

// DistributedTimeRangeConfig configures DISTRIBUTED_TIME_RANGE_STRATEGY.
type DistributedTimeRangeConfig struct {
	Common `yaml:",inline"`
	Ranges []TimeRangeItem `yaml:"ranges"`
}

func (c *DistributedTimeRangeConfig) spans() ([]timeSpan, []float64, error) {
	spans := make([]timeSpan, len(c.Ranges))
	weights := make([]float64, len(c.Ranges))
	for i, r := range c.Ranges {
		format := r.Format
		if format == "" {
			format = defaultTimeFormat
		}
		s, err := newTimeSpan("start", "end", r.Start, r.End, format, r.OutputFormat)
		if err != nil {
			return nil, nil, prefixField(err, indexed("ranges", i))
		}
		spans[i] = s
		weights[i] = r.Distribution
	}
	return spans, weights, nil
}

// Validate checks each span and the weight total.
func (c *DistributedTimeRangeConfig) Validate() error {
	_, weights, err := c.spans()
	if err != nil {
		return err
	}
	return checkWeights("DISTRIBUTED_TIME_RANGE_STRATEGY", "ranges", weights)
}

// DistributedTimeRange picks a span by weight, then a time inside it.
type DistributedTimeRange struct {
	base
	spans   []timeSpan
	weights []float64
}

func newDistributedTimeRange(cfg ParamConfig, opts Options) (Strategy, error) {
	spans, weights, err := cfg.(*DistributedTimeRangeConfig).spans()
	if err != nil {
		return nil, err
	}
	return &DistributedTimeRange{
		base:    newBase("DISTRIBUTED_TIME_RANGE_STRATEGY", opts),
		spans:   spans,
		weights: weights,
	}, nil
}

// GenerateChunk draws count times against the fixed distribution.
func (d *DistributedTimeRange) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		out[i] = d.spans[pickWeighted(d.rng, d.weights, 100)].draw(d.rng)
	}
	return out, nil
}
