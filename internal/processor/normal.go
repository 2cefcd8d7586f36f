package processor

import (
	"context"
	"log/slog"

	"github.com/roach88/genxdata/internal/config"
	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/strategy"
	"github.com/roach88/genxdata/internal/writer"
)

// Normal generates the whole dataset in a single pass.
type Normal struct {
	r *runner
}

// NewNormal creates a single-pass processor for cfg.
func NewNormal(cfg *config.Config, opts Options) *Normal {
	return &Normal{r: newRunner(cfg, strategy.ModeNormal, opts)}
}

// Run validates, generates num_of_rows rows and, when w is non-nil, hands
// the frame to w. The first error aborts the run and no frame is returned.
func (n *Normal) Run(ctx context.Context, w writer.Writer) (*Result, error) {
	r := n.r
	if err := r.validate(); err != nil {
		return nil, err
	}
	rows := r.cfg.NumOfRows
	r.logger.Info("generating", slog.Int("rows", rows), slog.Int("specs", len(r.cfg.Configs)))

	stop := r.time("generate", rows)
	f := dataset.New(rows)
	if err := r.applySpecs(f); err != nil {
		stop()
		return nil, err
	}
	r.finish(f, r.cfg.Shuffle)
	stop()

	if w != nil {
		stopWrite := r.time("write", f.Len())
		_, err := w.Write(ctx, f, writer.Meta{Name: r.cfg.Name()})
		stopWrite()
		if err != nil {
			return nil, err
		}
	}

	r.logger.Info("generation complete", slog.Int("rows", f.Len()), slog.Int("columns", f.Width()))
	return &Result{
		Frame:   f,
		Rows:    f.Len(),
		Columns: f.Columns(),
		States:  r.states.Snapshot(),
		Seeds:   r.states.Seeds(),
	}, nil
}
