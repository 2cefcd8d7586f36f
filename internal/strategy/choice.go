package strategy

import (
	"fmt"
	"sort"
)

// DistributedChoiceConfig configures DISTRIBUTED_CHOICE_STRATEGY.
type DistributedChoiceConfig struct {
	Common  `yaml:",inline"`
	Choices map[string]float64 `yaml:"choices"`
}

// Validate checks the weight table.
func (c *DistributedChoiceConfig) Validate() error {
	keys := c.keys()
	weights := make([]float64, len(keys))
	for i, k := range keys {
		weights[i] = c.Choices[k]
		if weights[i] <= 0 {
			return fieldErr(fmt.Sprintf("choices.%s", k), "weight must be positive, got %g", weights[i])
		}
	}
	return checkWeights("DISTRIBUTED_CHOICE_STRATEGY", "choices", weights)
}

// keys returns the choices in a stable order so seeded runs repeat.
func (c *DistributedChoiceConfig) keys() []string {
	keys := make([]string, 0, len(c.Choices))
	for k := range c.Choices {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DistributedChoice draws values independently against a fixed weight table.
// Chunks keep drawing against the same table; nothing is renormalized.
type DistributedChoice struct {
	base
	values  []string
	weights []float64
}

func newDistributedChoice(cfg ParamConfig, opts Options) (Strategy, error) {
	c := cfg.(*DistributedChoiceConfig)
	d := &DistributedChoice{base: newBase("DISTRIBUTED_CHOICE_STRATEGY", opts)}
	for _, k := range c.keys() {
		d.values = append(d.values, k)
		d.weights = append(d.weights, c.Choices[k])
	}
	return d, nil
}

// GenerateChunk draws count choices.
func (d *DistributedChoice) GenerateChunk(count int) ([]any, error) {
	out := make([]any, count)
	for i := range out {
		out[i] = d.values[pickWeighted(d.rng, d.weights, 100)]
	}
	return out, nil
}

// Domain lists every choice.
func (d *DistributedChoice) Domain() ([]any, bool) {
	out := make([]any, len(d.values))
	for i, v := range d.values {
		out[i] = v
	}
	return out, true
}
