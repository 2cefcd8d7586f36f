package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/roach88/genxdata/internal/dataset"
)

// WriteFrame appends f to table, creating it on first use, and records the
// batch in genxdata_batches. All rows commit in one transaction.
func (s *Store) WriteFrame(ctx context.Context, table string, batchIndex int, f *dataset.Frame) error {
	cols := f.Columns()
	if len(cols) == 0 {
		return fmt.Errorf("write frame: %s has no columns", table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write frame: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, createTableSQL(table, f)); err != nil {
		return fmt.Errorf("write frame: create %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, cols))
	if err != nil {
		return fmt.Errorf("write frame: prepare: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for i := range f.Len() {
		for j, v := range f.Values(i) {
			args[j] = sqlValue(v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("write frame: row %d: %w", i, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO genxdata_batches (table_name, batch_index, row_count, written_at)
		VALUES (?, ?, ?, ?)
	`, table, batchIndex, f.Len(), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("write frame: record batch: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write frame: commit: %w", err)
	}
	return nil
}

func createTableSQL(table string, f *dataset.Frame) string {
	var defs []string
	for _, name := range f.Columns() {
		defs = append(defs, quoteIdent(name)+" "+affinity(f.Kind(name)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func insertSQL(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		marks[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func affinity(k dataset.Kind) string {
	switch k {
	case dataset.KindInt, dataset.KindBool:
		return "INTEGER"
	case dataset.KindFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// sqlValue maps a cell to a driver value. Mixed-kind columns are stored
// as their text form.
func sqlValue(v any) any {
	switch dataset.KindOf(v) {
	case dataset.KindNull:
		return nil
	case dataset.KindInt:
		i, _ := dataset.AsInt64(v)
		return i
	case dataset.KindFloat:
		f, _ := dataset.AsFloat64(v)
		return f
	case dataset.KindBool:
		if v.(bool) {
			return int64(1)
		}
		return int64(0)
	default:
		return dataset.Format(v)
	}
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// HasTable reports whether table exists.
func (s *Store) HasTable(ctx context.Context, table string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("lookup table %s: %w", table, err)
	}
	return n > 0, nil
}

// DropTable removes table and its batch records.
func (s *Store) DropTable(ctx context.Context, table string) error {
	if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return fmt.Errorf("drop table %s: %w", table, err)
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM genxdata_batches WHERE table_name = ?", table); err != nil {
		return fmt.Errorf("clear batches for %s: %w", table, err)
	}
	return nil
}
