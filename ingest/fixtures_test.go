// Copyright (C) 2025 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package ingest

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/arrow/util"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/require"

	"github.com/cardinalhq/rebatch/filereader"
)

// ingestSchema uses fixed-width columns only, so every batch of the same row
// count has the same byte size. Flush boundary tests depend on that.
func ingestSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "value", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
}

func buildBatch(t *testing.T, schema *arrow.Schema, start, n int) arrow.Record {
	t.Helper()

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i := range n {
		id := int64(start + i)
		b.Field(0).(*array.Int64Builder).Append(id)
		b.Field(1).(*array.Float64Builder).Append(float64(id) * 3)
	}
	return b.NewRecord()
}

// writeBatchFile writes batches of the given row counts to path, with ids
// continuing from startID. It returns the next unused id.
func writeBatchFile(t *testing.T, format filereader.Format, path string, schema *arrow.Schema, startID int, batchRows []int) int {
	t.Helper()

	recs := make([]arrow.Record, 0, len(batchRows))
	defer func() {
		for _, rec := range recs {
			rec.Release()
		}
	}()
	for _, n := range batchRows {
		recs = append(recs, buildBatch(t, schema, startID, n))
		startID += n
	}

	f, err := os.Create(path)
	require.NoError(t, err)

	switch format {
	case filereader.FormatArrowStream:
		w := ipc.NewWriter(f, ipc.WithSchema(schema))
		for _, rec := range recs {
			require.NoError(t, w.Write(rec))
		}
		require.NoError(t, w.Close())
	case filereader.FormatFeather:
		w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
		require.NoError(t, err)
		for _, rec := range recs {
			require.NoError(t, w.Write(rec))
		}
		require.NoError(t, w.Close())
	case filereader.FormatParquet:
		writerProps := parquet.NewWriterProperties(parquet.WithDictionaryDefault(false))
		arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
		w, err := pqarrow.NewFileWriter(schema, f, writerProps, arrowProps)
		require.NoError(t, err)
		for _, rec := range recs {
			require.NoError(t, w.Write(rec))
		}
		// Close writes the footer and closes the file handle it was given.
		require.NoError(t, w.Close())
		return startID
	default:
		t.Fatalf("unknown format %v", format)
	}
	require.NoError(t, f.Close())
	return startID
}

func batchPath(t *testing.T, dir string, format filereader.Format, base string) string {
	t.Helper()
	return filepath.Join(dir, base+"."+format.String())
}

// batchSizeBytes measures the in-memory size of one decoded n-row batch by
// reading it back through a reader, so it matches what the ingester counts.
func batchSizeBytes(t *testing.T, format filereader.Format, schema *arrow.Schema, n int) int64 {
	t.Helper()

	ctx := context.Background()
	path := batchPath(t, t.TempDir(), format, "probe")
	writeBatchFile(t, format, path, schema, 0, []int{n})

	r, err := filereader.OpenFile(ctx, format, path, filereader.ReaderOptions{})
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	rec, err := r.Next(ctx)
	require.NoError(t, err)
	defer rec.Release()
	return util.TotalRecordSize(rec)
}

// tableIDs flattens the id column of a combined table, walking every chunk in
// order.
func tableIDs(t *testing.T, table arrow.Table) []int64 {
	t.Helper()

	idxs := table.Schema().FieldIndices("id")
	require.NotEmpty(t, idxs, "table has no id column")

	var ids []int64
	for _, chunk := range table.Column(idxs[0]).Data().Chunks() {
		col, ok := chunk.(*array.Int64)
		require.True(t, ok, "id column is not int64")
		for i := 0; i < col.Len(); i++ {
			ids = append(ids, col.Value(i))
		}
	}
	return ids
}

// drainTables pulls the ingester to exhaustion and returns the per-table row
// counts plus all id values in arrival order.
func drainTables(t *testing.T, in *Ingester) (rows []int64, ids []int64) {
	t.Helper()

	ctx := context.Background()
	for {
		table, err := in.Next(ctx)
		if errors.Is(err, io.EOF) {
			return rows, ids
		}
		require.NoError(t, err)
		rows = append(rows, table.NumRows())
		ids = append(ids, tableIDs(t, table)...)
		table.Release()
	}
}

func seqIDs(start, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(start + i)
	}
	return out
}
