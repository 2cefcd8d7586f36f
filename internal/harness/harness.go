package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/mask"
	"github.com/roach88/genxdata/internal/processor"
	"github.com/roach88/genxdata/internal/store"
	"github.com/roach88/genxdata/internal/testutil"
	"github.com/roach88/genxdata/internal/writer"
)

// datasetTable is the store table the generated dataset is loaded into.
const datasetTable = "dataset"

// defaultSeed seeds scenarios that do not set one.
const defaultSeed uint64 = 1

// Harness is the scenario execution engine.
// It runs scenarios with a deterministic clock and seed.
type Harness struct {
	store  *store.Store
	clock  *testutil.DeterministicClock
	masks  *mask.Evaluator
	logger *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
// 1. Load the config and apply scenario overrides
// 2. Generate with the normal or chunked processor
// 3. Check run-level expectations
// 4. Load the dataset into the store
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.OpenMemory()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	logger := testutil.Logger() // Suppress logs in tests
	h := &Harness{
		store:  st,
		clock:  testutil.NewDeterministicClock(time.Millisecond),
		masks:  mask.NewEvaluator(logger),
		logger: logger,
	}
	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	cfg, err := config.Load(scenario.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if scenario.Rows > 0 {
		cfg.NumOfRows = scenario.Rows
	}

	result := NewResult()
	result.Frame, result.Batches, result.Err = h.generate(ctx, cfg, scenario)

	if !h.checkExpect(scenario.Expect, result) || result.Err != nil {
		return result, nil
	}

	if err := h.store.WriteFrame(ctx, datasetTable, 0, result.Frame); err != nil {
		return nil, fmt.Errorf("failed to store dataset: %w", err)
	}
	for i, a := range scenario.Assertions {
		if err := h.evaluate(ctx, result.Frame, a); err != nil {
			result.AddError(fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return result, nil
}

// generate runs the processor the scenario asks for and returns the full
// dataset.
func (h *Harness) generate(ctx context.Context, cfg *config.Config, scenario *Scenario) (*dataset.Frame, int, error) {
	seed := defaultSeed
	if scenario.Seed != nil {
		seed = *scenario.Seed
	}
	opts := processor.Options{Seed: &seed, Logger: h.logger}

	if scenario.Batch == nil {
		res, err := processor.NewNormal(cfg, opts).Run(ctx, nil)
		if err != nil {
			return nil, 0, err
		}
		return res.Frame, 1, nil
	}

	c, err := processor.NewChunked(cfg, scenario.Batch.BatchSize, scenario.Batch.ChunkSize, opts)
	if err != nil {
		return nil, 0, err
	}
	col := &collector{frame: dataset.New(0)}
	if _, err := c.WithClock(h.clock.Now).Run(ctx, col); err != nil {
		return nil, 0, err
	}
	return col.frame, col.batches, nil
}

// checkExpect records unmet run-level expectations. It returns false when
// the run outcome makes assertions meaningless.
func (h *Harness) checkExpect(expect ExpectClause, result *Result) bool {
	if expect.Error != "" {
		switch {
		case result.Err == nil:
			result.AddError(fmt.Sprintf("expected error %s, run succeeded", expect.Error))
		case string(gerrors.CodeOf(result.Err)) != expect.Error:
			result.AddError(fmt.Sprintf("expected error %s, got %v", expect.Error, result.Err))
		}
		return false
	}
	if result.Err != nil {
		var ge *gerrors.Error
		if errors.As(result.Err, &ge) {
			result.AddError(fmt.Sprintf("run failed with %s: %v", ge.Code, result.Err))
		} else {
			result.AddError(fmt.Sprintf("run failed: %v", result.Err))
		}
		return false
	}

	f := result.Frame
	if expect.Rows > 0 && f.Len() != expect.Rows {
		result.AddError(fmt.Sprintf("expected %d rows, got %d", expect.Rows, f.Len()))
	}
	if len(expect.Columns) > 0 && !slices.Equal(expect.Columns, f.Columns()) {
		result.AddError(fmt.Sprintf("expected columns %v, got %v", expect.Columns, f.Columns()))
	}
	if expect.Batches > 0 && result.Batches != expect.Batches {
		result.AddError(fmt.Sprintf("expected %d batches, got %d", expect.Batches, result.Batches))
	}
	return true
}

func (h *Harness) evaluate(ctx context.Context, f *dataset.Frame, a Assertion) error {
	switch a.Type {
	case AssertColumnUnique:
		return assertColumnUnique(f, a)
	case AssertColumnValues:
		return assertColumnValues(f, a)
	case AssertColumnRange:
		return assertColumnRange(f, a)
	case AssertMaskedValues:
		return assertMaskedValues(h.masks, f, a)
	case AssertFinalState:
		return assertFinalState(ctx, h.store, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// collector concatenates chunked output in memory.
type collector struct {
	frame   *dataset.Frame
	batches int
}

func (c *collector) Write(_ context.Context, f *dataset.Frame, meta writer.Meta) (writer.WriteResult, error) {
	if err := c.frame.Append(f); err != nil {
		return writer.WriteResult{}, err
	}
	c.batches++
	res := writer.WriteResult{Rows: f.Len()}
	if meta.Batch != nil {
		res.BatchIndex = meta.Batch.BatchIndex
	}
	return res, nil
}

func (c *collector) Finalize(context.Context) (writer.Summary, error) {
	return writer.Summary{
		Writer:           "harness",
		TotalRowsWritten: c.frame.Len(),
		BatchesWritten:   c.batches,
	}, nil
}
