package writer

import (
	"context"
	"fmt"
	"os"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress"
	"github.com/xuri/excelize/v2"

	"github.com/roach88/genxdata/internal/dataset"
	"github.com/roach88/genxdata/internal/store"
)

// encodeExcel writes one sheet with a header row. params: sheet_name.
func encodeExcel(_ context.Context, path string, f *dataset.Frame, p Params, _ Meta) error {
	x := excelize.NewFile()
	defer x.Close()

	sheet := p.String("sheet_name", "Sheet1")
	if sheet != "Sheet1" {
		if err := x.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}
	header := make([]any, f.Width())
	for i, c := range f.Columns() {
		header[i] = c
	}
	if err := x.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i := range f.Len() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := f.Values(i)
		if err := x.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return x.SaveAs(path)
}

// encodeSQLite appends f to a table. params: table (default "data"),
// if_exists (replace, append or fail; default replace).
func encodeSQLite(ctx context.Context, path string, f *dataset.Frame, p Params, meta Meta) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	table := p.String("table", "data")
	exists, err := s.HasTable(ctx, table)
	if err != nil {
		return err
	}
	switch mode := p.String("if_exists", "replace"); mode {
	case "replace":
		if exists {
			if err := s.DropTable(ctx, table); err != nil {
				return err
			}
		}
	case "append":
	case "fail":
		if exists {
			return fmt.Errorf("table %q already exists", table)
		}
	default:
		return fmt.Errorf("invalid if_exists %q (want replace, append or fail)", mode)
	}
	batch := 0
	if meta.Batch != nil {
		batch = meta.Batch.BatchIndex
	}
	return s.WriteFrame(ctx, table, batch, f)
}

// parquetCodecs maps the compression param to a codec.
var parquetCodecs = map[string]compress.Codec{
	"snappy": &parquet.Snappy,
	"gzip":   &parquet.Gzip,
	"zstd":   &parquet.Zstd,
	"none":   &parquet.Uncompressed,
}

// encodeParquet writes one row group of optional leaf columns. Parquet
// groups order fields by name. params: compression (default snappy).
func encodeParquet(_ context.Context, path string, f *dataset.Frame, p Params, meta Meta) error {
	codec, ok := parquetCodecs[p.String("compression", "snappy")]
	if !ok {
		return fmt.Errorf("invalid parquet compression %q", p.String("compression", ""))
	}
	group := parquet.Group{}
	kinds := map[string]dataset.Kind{}
	for _, name := range f.Columns() {
		k := f.Kind(name)
		kinds[name] = k
		group[name] = parquet.Optional(parquetNode(k))
	}
	name := meta.Name
	if name == "" {
		name = "genxdata"
	}
	schema := parquet.NewSchema(name, group)

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	w := parquet.NewWriter(fh, schema, parquet.Compression(codec))

	leaves := schema.Columns()
	rows := make([]parquet.Row, f.Len())
	for i := range rows {
		row := make(parquet.Row, len(leaves))
		for c, leaf := range leaves {
			col := leaf[0]
			row[c] = parquetValue(f.Column(col)[i], kinds[col]).Level(0, 1, c)
			if row[c].IsNull() {
				row[c] = parquet.NullValue().Level(0, 0, c)
			}
		}
		rows[i] = row
	}
	if _, err := w.WriteRows(rows); err != nil {
		w.Close()
		fh.Close()
		return err
	}
	if err := w.Close(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

func parquetNode(k dataset.Kind) parquet.Node {
	switch k {
	case dataset.KindInt:
		return parquet.Int(64)
	case dataset.KindFloat:
		return parquet.Leaf(parquet.DoubleType)
	case dataset.KindBool:
		return parquet.Leaf(parquet.BooleanType)
	default:
		return parquet.String()
	}
}

func parquetValue(v any, k dataset.Kind) parquet.Value {
	if v == nil {
		return parquet.NullValue()
	}
	switch k {
	case dataset.KindInt:
		i, _ := dataset.AsInt64(v)
		return parquet.Int64Value(i)
	case dataset.KindFloat:
		f, _ := dataset.AsFloat64(v)
		return parquet.DoubleValue(f)
	case dataset.KindBool:
		b, _ := v.(bool)
		return parquet.BooleanValue(b)
	default:
		return parquet.ByteArrayValue([]byte(dataset.Format(v)))
	}
}

// encodeFeather writes an Arrow IPC file with one record batch.
func encodeFeather(_ context.Context, path string, f *dataset.Frame, _ Params, _ Meta) error {
	mem := memory.NewGoAllocator()
	fields := make([]arrow.Field, f.Width())
	for i, name := range f.Columns() {
		fields[i] = arrow.Field{Name: name, Type: arrowType(f.Kind(name)), Nullable: true}
	}
	schema := arrow.NewSchema(fields, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()
	for i, name := range f.Columns() {
		appendArrow(b.Field(i), f.Column(name))
	}
	rec := b.NewRecord()
	defer rec.Release()

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := ipc.NewFileWriter(fh, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err != nil {
		fh.Close()
		return err
	}
	if err := w.Write(rec); err != nil {
		w.Close()
		fh.Close()
		return err
	}
	if err := w.Close(); err != nil {
		fh.Close()
		return err
	}
	return fh.Close()
}

func arrowType(k dataset.Kind) arrow.DataType {
	switch k {
	case dataset.KindInt:
		return arrow.PrimitiveTypes.Int64
	case dataset.KindFloat:
		return arrow.PrimitiveTypes.Float64
	case dataset.KindBool:
		return arrow.FixedWidthTypes.Boolean
	default:
		return arrow.BinaryTypes.String
	}
}

func appendArrow(b array.Builder, values []any) {
	for _, v := range values {
		if v == nil {
			b.AppendNull()
			continue
		}
		switch tb := b.(type) {
		case *array.Int64Builder:
			i, _ := dataset.AsInt64(v)
			tb.Append(i)
		case *array.Float64Builder:
			f, _ := dataset.AsFloat64(v)
			tb.Append(f)
		case *array.BooleanBuilder:
			bv, _ := v.(bool)
			tb.Append(bv)
		case *array.StringBuilder:
			tb.Append(dataset.Format(v))
		}
	}
}
