package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/genxdata/internal/dataset"
)

// BatchRecord is one row of genxdata_batches.
type BatchRecord struct {
	Table      string
	BatchIndex int
	Rows       int
}

// ReadFrame loads table in rowid order. Values come back as the driver
// returns them (int64, float64, string or nil).
func (s *Store) ReadFrame(ctx context.Context, table string) (*dataset.Frame, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s ORDER BY rowid ASC", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read frame: columns: %w", err)
	}
	cols := make([][]any, len(names))
	for rows.Next() {
		cells := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("read frame: scan: %w", err)
		}
		for i, c := range cells {
			if b, ok := c.([]byte); ok {
				c = string(b)
			}
			cols[i] = append(cols[i], c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read frame: iterate: %w", err)
	}
	return dataset.FromColumns(names, cols)
}

// Batches returns the batches recorded for table, oldest first.
func (s *Store) Batches(ctx context.Context, table string) ([]BatchRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT table_name, batch_index, row_count
		FROM genxdata_batches
		WHERE table_name = ?
		ORDER BY id ASC
	`, table)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	out := []BatchRecord{}
	for rows.Next() {
		var b BatchRecord
		if err := rows.Scan(&b.Table, &b.BatchIndex, &b.Rows); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batches: %w", err)
	}
	return out, nil
}

// Count returns the number of rows in table.
func (s *Store) Count(ctx context.Context, table string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(table))).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}
