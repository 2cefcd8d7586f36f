package testutil

import (
	"io"
	"log/slog"

	"github.com/roach88/genxdata/internal/config"
)

// Logger returns a logger that discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Config builds a config generating rows rows from specs.
func Config(rows int, specs ...config.ColumnSpec) *config.Config {
	return &config.Config{
		Metadata:  map[string]any{"name": "test"},
		NumOfRows: rows,
		Configs:   specs,
	}
}

// Spec binds columns to the named strategy.
func Spec(strategy string, params map[string]any, columns ...string) config.ColumnSpec {
	return config.ColumnSpec{
		ColumnNames: columns,
		Strategy:    config.StrategySpec{Name: strategy, Params: params},
	}
}

// Seed returns a pointer to v.
func Seed(v int64) *int64 { return &v }
