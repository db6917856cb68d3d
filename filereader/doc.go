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

// Package filereader reads record batches from on-disk columnar files.
//
// Three physical formats are supported, selected by file suffix:
//
//   - ArrowStreamReader: Arrow IPC stream files (.arrow)
//   - FeatherReader: Arrow IPC files, i.e. Feather V2 (.feather)
//   - ParquetReader: parquet files (.parquet)
//
// All three expose the same contract:
//
//	type RecordReader interface {
//	    Next(ctx context.Context) (arrow.Record, error) // io.EOF when drained
//	    Schema() *arrow.Schema
//	    Close() error
//	}
//
// Batches arrive at the file's native boundaries, in file order, and are
// never restartable. Records returned by Next are retained for the caller;
// release them when done.
//
// Example usage:
//
//	reader, err := filereader.OpenFile(ctx, filereader.FormatParquet, path, filereader.ReaderOptions{
//	    Columns: []string{"id", "value"},
//	})
//	if err != nil {
//	    return err
//	}
//	defer reader.Close()
//
//	for {
//	    rec, err := reader.Next(ctx)
//	    if errors.Is(err, io.EOF) {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    // use rec, then rec.Release()
//	}
//
// # Destructive ingestion
//
// Opening a reader with Destructive set removes the source file when Close is
// called after the batch sequence was fully exhausted. Close after a read
// error or early abandonment releases the handle but leaves the file alone.
//
// # Errors
//
// Open and decode failures wrap ErrUnreadableFile. Requesting a column the
// file does not carry fails at open time with ErrSchemaMismatch. Both are
// unrecoverable for the run.
package filereader
