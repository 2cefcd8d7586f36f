package writer

import (
	"context"
	"log/slog"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/gerrors"
	"github.com/roach88/genxdata/internal/queue"
)

// StreamWriter sends each frame as one message through a producer.
type StreamWriter struct {
	producer  queue.Producer
	transport string
	logger    *slog.Logger

	connected bool
	batches   int
	rows      int
	finalized bool
	summary   Summary
}

// NewStreamWriter parses the stream section, builds its producer from
// factory and connects it.
func NewStreamWriter(ctx context.Context, raw map[string]any, factory *queue.Factory, logger *slog.Logger) (*StreamWriter, error) {
	p, cfg, err := factory.CreateFromMap(raw)
	if err != nil {
		return nil, err
	}
	return NewStreamWriterFor(ctx, p, cfg.Type, logger)
}

// NewStreamWriterFor connects an existing producer.
func NewStreamWriterFor(ctx context.Context, p queue.Producer, transport string, logger *slog.Logger) (*StreamWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := p.Connect(ctx); err != nil {
		return nil, gerrors.NewTransportError(transport, gerrors.OpConnect, p.Destination(), err)
	}
	return &StreamWriter{
		producer:  p,
		transport: transport,
		connected: true,
		logger:    logger.With(slog.String("component", "stream_writer"), slog.String("transport", transport)),
	}, nil
}

// Write makes exactly one send attempt. Empty frames are skipped.
func (s *StreamWriter) Write(ctx context.Context, f *dataset.Frame, meta Meta) (WriteResult, error) {
	res := WriteResult{Destination: s.producer.Destination()}
	if meta.Batch != nil {
		res.BatchIndex = meta.Batch.BatchIndex
	}
	if f.Len() == 0 {
		s.logger.Warn("skipping empty frame")
		return res, nil
	}
	if err := s.producer.SendDataframe(ctx, f, meta.Batch); err != nil {
		return WriteResult{}, gerrors.NewTransportWriteError(s.transport, s.producer.Destination(), err)
	}
	s.batches++
	s.rows += f.Len()
	res.Rows = f.Len()
	s.logger.Info("sent batch", slog.Int("rows", f.Len()), slog.Int("batch_index", res.BatchIndex))
	return res, nil
}

// Finalize disconnects the producer once. A disconnect failure is returned
// with the summary; later calls return the summary alone.
func (s *StreamWriter) Finalize(ctx context.Context) (Summary, error) {
	if s.finalized {
		return s.summary, nil
	}
	var err error
	if s.connected {
		if derr := s.producer.Disconnect(ctx); derr != nil {
			err = gerrors.NewTransportError(s.transport, gerrors.OpDisconnect, s.producer.Destination(), derr)
		}
		s.connected = false
	}
	s.summary = Summary{
		Writer:           "stream",
		Format:           s.transport,
		TotalRowsWritten: s.rows,
		BatchesWritten:   s.batches,
		Destination:      s.producer.Destination(),
	}
	s.finalized = true
	return s.summary, err
}
