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

package filereader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"
	"github.com/stretchr/testify/require"
)

func testSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String},
		{Name: "value", Type: arrow.PrimitiveTypes.Float64},
	}, nil)
}

// buildRecord builds one batch of n rows with ids start..start+n-1.
// The caller releases the returned record.
func buildRecord(t *testing.T, schema *arrow.Schema, start, n int) arrow.Record {
	t.Helper()

	b := array.NewRecordBuilder(memory.NewGoAllocator(), schema)
	defer b.Release()

	for i := range n {
		id := int64(start + i)
		b.Field(0).(*array.Int64Builder).Append(id)
		b.Field(1).(*array.StringBuilder).Append(fmt.Sprintf("row-%d", id))
		b.Field(2).(*array.Float64Builder).Append(float64(id) / 2)
	}
	return b.NewRecord()
}

func writeArrowStreamFile(t *testing.T, path string, schema *arrow.Schema, recs []arrow.Record) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	w := ipc.NewWriter(f, ipc.WithSchema(schema))
	for _, rec := range recs {
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func writeFeatherFile(t *testing.T, path string, schema *arrow.Schema, recs []arrow.Record) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	require.NoError(t, err)
	for _, rec := range recs {
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func writeParquetFile(t *testing.T, path string, schema *arrow.Schema, recs []arrow.Record) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	writerProps := parquet.NewWriterProperties(parquet.WithDictionaryDefault(false))
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())
	w, err := pqarrow.NewFileWriter(schema, f, writerProps, arrowProps)
	require.NoError(t, err)
	for _, rec := range recs {
		require.NoError(t, w.Write(rec))
	}
	// Close writes the footer and closes the file handle it was given.
	require.NoError(t, w.Close())
}

// writeFormatFile writes recs to path in the given format.
func writeFormatFile(t *testing.T, format Format, path string, schema *arrow.Schema, recs []arrow.Record) {
	t.Helper()

	switch format {
	case FormatArrowStream:
		writeArrowStreamFile(t, path, schema, recs)
	case FormatFeather:
		writeFeatherFile(t, path, schema, recs)
	case FormatParquet:
		writeParquetFile(t, path, schema, recs)
	default:
		t.Fatalf("unknown format %v", format)
	}
}

// fixturePath builds a file name carrying the format's suffix.
func fixturePath(t *testing.T, dir string, format Format, base string) string {
	t.Helper()
	return filepath.Join(dir, base+"."+format.String())
}

func int64Values(t *testing.T, rec arrow.Record, name string) []int64 {
	t.Helper()

	idxs := rec.Schema().FieldIndices(name)
	require.NotEmpty(t, idxs, "column %s not found", name)
	col, ok := rec.Column(idxs[0]).(*array.Int64)
	require.True(t, ok, "column %s is not int64", name)

	out := make([]int64, col.Len())
	for i := range out {
		out[i] = col.Value(i)
	}
	return out
}

// drainIDs pulls the reader to exhaustion and returns the id column values
// in arrival order.
func drainIDs(t *testing.T, r RecordReader) []int64 {
	t.Helper()

	ctx := context.Background()
	var ids []int64
	for {
		rec, err := r.Next(ctx)
		if errors.Is(err, io.EOF) {
			return ids
		}
		require.NoError(t, err)
		ids = append(ids, int64Values(t, rec, "id")...)
		rec.Release()
	}
}

func sequentialIDs(start, n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(start + i)
	}
	return out
}

var allFormats = []Format{FormatArrowStream, FormatFeather, FormatParquet}
