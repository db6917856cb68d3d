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
	"fmt"
	"io"
	"log/slog"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/util"

	"github.com/cardinalhq/rebatch/filereader"
)

// DefaultTargetBytes is the flush budget used when Options.TargetBytes is
// not set.
const DefaultTargetBytes = 1 << 30 // 1 GiB

// Options configures an Ingester.
type Options struct {
	// TargetBytes is the byte budget for one combined table. A flush happens
	// as soon as the pending buffer grows past it, so it is a lower bound on
	// the size of every emitted table except the last, not an upper bound.
	// Zero means DefaultTargetBytes.
	TargetBytes int64
	// Columns optionally restricts reads to the named columns in every file.
	// The column set must exist in every file of the run.
	Columns []string
	// Destructive removes each source file once its batches are exhausted.
	Destructive bool
	// BatchSize is the row count per decoded parquet batch.
	BatchSize int
}

// Ingester re-chunks a set of same-format columnar files into byte-bounded
// arrow tables, regardless of the batch boundaries the file writers chose.
// It is pull-based and single-threaded: work happens only inside Next, one
// source file is open at a time, and batches are concatenated strictly in
// input-file order then native batch order.
type Ingester struct {
	paths  []string
	format filereader.Format
	opts   Options

	cur          filereader.RecordReader
	nextFile     int
	pending      []arrow.Record
	pendingBytes int64
	drained      bool
	closed       bool
	rowCount     int64
}

// Next produces the next combined table. It returns io.EOF once every file
// is exhausted and the final partial flush, if any, has been emitted.
// Ownership of the returned table transfers to the caller, who must Release
// it; the ingester keeps no reference.
//
// A read or open failure ends the run: output already emitted is a valid
// prefix, and no further tables follow.
func (in *Ingester) Next(ctx context.Context) (arrow.Table, error) {
	if in.closed {
		return nil, errors.New("ingester is closed")
	}
	if in.drained {
		return nil, io.EOF
	}

	for {
		if in.cur == nil {
			if in.nextFile >= len(in.paths) {
				if len(in.pending) > 0 {
					return in.flush(ctx), nil
				}
				in.drained = true
				return nil, io.EOF
			}
			rdr, err := filereader.OpenFile(ctx, in.format, in.paths[in.nextFile], filereader.ReaderOptions{
				Columns:     in.opts.Columns,
				Destructive: in.opts.Destructive,
				BatchSize:   in.opts.BatchSize,
			})
			if err != nil {
				return nil, err
			}
			in.cur = rdr
			in.nextFile++
		}

		rec, err := in.cur.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Current file is exhausted: release its handle (and delete
				// the file in destructive mode) before opening the next one.
				cerr := in.cur.Close()
				in.cur = nil
				if cerr != nil {
					return nil, fmt.Errorf("failed to close %s: %w", in.paths[in.nextFile-1], cerr)
				}
				continue
			}
			_ = in.cur.Close()
			in.cur = nil
			return nil, err
		}

		in.pending = append(in.pending, rec)
		in.pendingBytes += util.TotalRecordSize(rec)
		in.rowCount += rec.NumRows()

		// Append-then-check: the budget is a flush trigger, not a cap. A
		// single native batch larger than TargetBytes flushes on its own and
		// overshoots.
		if in.pendingBytes > in.opts.TargetBytes {
			return in.flush(ctx), nil
		}
	}
}

// flush concatenates the pending batches, in arrival order, into one table
// and resets the buffer and its byte counter.
func (in *Ingester) flush(ctx context.Context) arrow.Table {
	table := array.NewTableFromRecords(in.pending[0].Schema(), in.pending)

	slog.Debug("flushing combined table",
		slog.Int64("rows", table.NumRows()),
		slog.Int64("bytes", in.pendingBytes),
		slog.Int("batches", len(in.pending)))
	tablesOutCounter.Add(ctx, 1)
	rowsOutCounter.Add(ctx, table.NumRows())
	bytesFlushedCounter.Add(ctx, in.pendingBytes)

	for _, rec := range in.pending {
		rec.Release()
	}
	in.pending = in.pending[:0]
	in.pendingBytes = 0

	return table
}

// Close releases buffered records and the in-flight reader. It is idempotent
// and safe mid-iteration: partial consumption is allowed, and closing before
// a file's batches were exhausted never deletes that file.
func (in *Ingester) Close() error {
	if in.closed {
		return nil
	}
	in.closed = true

	for _, rec := range in.pending {
		rec.Release()
	}
	in.pending = nil
	in.pendingBytes = 0

	if in.cur != nil {
		err := in.cur.Close()
		in.cur = nil
		if err != nil {
			return err
		}
	}
	return nil
}

// TotalRowsReturned returns the total number of rows pulled from source files
// so far, including rows still sitting in the pending buffer.
func (in *Ingester) TotalRowsReturned() int64 {
	return in.rowCount
}

// RemainingFileCount returns the number of source files that have not been
// fully consumed yet.
func (in *Ingester) RemainingFileCount() int {
	if in.closed || in.drained {
		return 0
	}
	remaining := len(in.paths) - in.nextFile
	if in.cur != nil {
		remaining++
	}
	return remaining
}
