package processor

import (
	"fmt"
	"log/slog"
	"math/rand/v2"

	"github.com/zeebo/xxh3"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/mask"
	"github.com/roach88/genxdata/internal/perf"
	"github.com/roach88/genxdata/internal/strategy"
)

// Options carries the collaborators shared by both processors.
type Options struct {
	// Factory resolves strategies. Nil uses strategy.DefaultFactory.
	Factory *strategy.Factory

	// Masks evaluates masks. Nil creates a fresh evaluator.
	Masks *mask.Evaluator

	// Perf receives timings. Nil disables timing.
	Perf *perf.Tracker

	// Seed fixes every strategy without its own seed, and the shuffle.
	Seed *uint64

	Logger *slog.Logger
}

// Result describes a completed run.
type Result struct {
	// Frame is the generated dataset. Chunked runs leave it nil.
	Frame *dataset.Frame

	Rows    int
	Columns []string

	// Chunks and Batches are set by chunked runs.
	Chunks  int
	Batches int

	// States holds the final strategy states keyed by "spec:column".
	States map[string]strategy.State

	// Seeds holds the seed each strategy drew from, keyed like States.
	// Replaying them as spec seeds reproduces the run.
	Seeds map[string]uint64
}

// runner holds what both processors share: the spec loop, strategy
// instances and mask evaluation.
type runner struct {
	cfg     *config.Config
	mode    strategy.Mode
	factory *strategy.Factory
	masks   *mask.Evaluator
	perf    *perf.Tracker
	seed    *uint64
	states  *StateMap
	logger  *slog.Logger
}

func newRunner(cfg *config.Config, mode strategy.Mode, opts Options) *runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	factory := opts.Factory
	if factory == nil {
		factory = strategy.DefaultFactory(logger)
	}
	masks := opts.Masks
	if masks == nil {
		masks = mask.NewEvaluator(logger)
	}
	return &runner{
		cfg:     cfg,
		mode:    mode,
		factory: factory,
		masks:   masks,
		perf:    opts.Perf,
		seed:    opts.Seed,
		states:  NewStateMap(),
		logger:  logger.With(slog.String("component", "processor"), slog.String("mode", mode.String())),
	}
}

// validate checks the config structure, every spec's params and every mask
// before any row is generated. A mask may only reference columns produced
// by earlier specs.
func (r *runner) validate() error {
	if err := config.Validate(r.cfg); err != nil {
		return err
	}
	var known []string
	for i, spec := range r.cfg.Configs {
		if spec.Disabled {
			continue
		}
		if _, err := r.factory.ValidateParams(spec.Strategy.Name, spec.Strategy.Params); err != nil {
			return gerrors.AttachSpec(err, i, spec.ColumnNames)
		}
		if spec.Mask != "" {
			if _, err := r.masks.Validate(spec.Mask, known); err != nil {
				return gerrors.AttachSpec(err, i, spec.ColumnNames)
			}
		}
		known = append(known, spec.ColumnNames...)
	}
	return nil
}

// strategyFor returns the instance for (spec, column), creating it on
// first use.
func (r *runner) strategyFor(index int, spec config.ColumnSpec, column string) (strategy.Strategy, string, error) {
	key := stateKey(index, column)
	if s, ok := r.states.Instance(key); ok {
		return s, key, nil
	}
	opts := strategy.Options{Column: column, Logger: r.logger}
	switch {
	case spec.Seed != nil:
		seed := uint64(*spec.Seed)
		opts.Seed = &seed
	case r.seed != nil && !hasParamSeed(spec):
		seed := xxh3.HashString(fmt.Sprintf("%d|%s", *r.seed, key))
		opts.Seed = &seed
	}
	s, err := r.factory.Create(r.mode, spec.Strategy.Name, spec.Strategy.Params, opts)
	if err != nil {
		return nil, key, err
	}
	r.states.Put(key, s)
	return s, key, nil
}

func hasParamSeed(spec config.ColumnSpec) bool {
	_, ok := spec.Strategy.Params["seed"]
	return ok
}

// applySpecs populates f spec by spec. Masks are evaluated against f as it
// stands when the spec runs.
func (r *runner) applySpecs(f *dataset.Frame) error {
	for i, spec := range r.cfg.Configs {
		if spec.Disabled {
			r.logger.Info("spec disabled", slog.Any("columns", spec.ColumnNames))
			continue
		}
		if err := r.applySpec(f, i, spec); err != nil {
			return gerrors.AttachSpec(err, i, spec.ColumnNames)
		}
	}
	return nil
}

func (r *runner) applySpec(f *dataset.Frame, index int, spec config.ColumnSpec) error {
	var selector []bool
	if spec.Mask != "" {
		var err error
		if selector, err = r.masks.Evaluate(spec.Mask, f); err != nil {
			return err
		}
	}
	for _, column := range spec.ColumnNames {
		s, key, err := r.strategyFor(index, spec, column)
		if err != nil {
			return err
		}

		opts := strategy.ApplyOptions{Mode: r.mode}
		if spec.IsUnique() {
			opts.Enforce = newUniqueFilter(column, r.logger).enforce
		}

		stop := r.time("strategy."+s.Name()+"."+column, f.Len())
		_, err = strategy.Apply(s, f, column, selector, opts)
		stop()
		if err != nil {
			return err
		}
		r.states.Record(key)
	}
	return nil
}

// finish drops intermediate columns and optionally shuffles rows.
func (r *runner) finish(f *dataset.Frame, shuffle bool) {
	if shuffle {
		seed := rand.Uint64()
		if r.seed != nil {
			seed = *r.seed
		}
		f.Shuffle(rand.New(rand.NewPCG(seed, ^seed)))
	}
	if drop := r.cfg.IntermediateColumns(); len(drop) > 0 {
		f.Drop(drop...)
	}
}

func (r *runner) time(op string, rows int) func() {
	if r.perf == nil {
		return func() {}
	}
	return r.perf.Start(op, rows)
}

// Validate runs the checks a processor performs before generating: config
// structure, strategy params and mask references.
func Validate(cfg *config.Config, opts Options) error {
	return newRunner(cfg, strategy.ModeNormal, opts).validate()
}
