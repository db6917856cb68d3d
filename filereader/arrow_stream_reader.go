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

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// ArrowStreamReader reads record batches from an Arrow IPC stream file
// (.arrow). The stream framing carries the schema up front and no trailing
// footer, so batches are decoded strictly in write order.
type ArrowStreamReader struct {
	f           *os.File
	rdr         *ipc.Reader
	proj        *projection
	path        string
	destructive bool
	closed      bool
	exhausted   bool
	rowCount    int64
}

var _ RecordReader = (*ArrowStreamReader)(nil)

// NewArrowStreamReader opens an Arrow IPC stream file for reading.
func NewArrowStreamReader(_ context.Context, path string, opts ReaderOptions) (*ArrowStreamReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}

	rdr, err := ipc.NewReader(f, ipc.WithAllocator(memory.DefaultAllocator))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, path, err)
	}

	proj, err := newProjection(rdr.Schema(), opts.Columns)
	if err != nil {
		rdr.Release()
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &ArrowStreamReader{
		f:           f,
		rdr:         rdr,
		proj:        proj,
		path:        path,
		destructive: opts.Destructive,
	}, nil
}

// Next returns the next record batch from the stream.
func (r *ArrowStreamReader) Next(ctx context.Context) (arrow.Record, error) {
	if r.closed {
		return nil, errors.New("reader is closed")
	}
	if r.exhausted {
		return nil, io.EOF
	}

	rec, err := r.rdr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.exhausted = true
			return nil, io.EOF
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, r.path, err)
	}

	r.rowCount += rec.NumRows()
	recordsInCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("reader", "ArrowStreamReader"),
	))
	rowsInCounter.Add(ctx, rec.NumRows(), otelmetric.WithAttributes(
		attribute.String("reader", "ArrowStreamReader"),
	))

	return r.proj.apply(rec), nil
}

// Schema returns the schema of returned records, after projection.
func (r *ArrowStreamReader) Schema() *arrow.Schema {
	if r.proj != nil {
		return r.proj.schema
	}
	return r.rdr.Schema()
}

// Close releases the decoder and file handle. In destructive mode the source
// file is removed, but only when the stream was fully exhausted.
func (r *ArrowStreamReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	r.rdr.Release()
	if err := r.f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", r.path, err)
	}
	return removeIfExhausted(r.path, r.destructive, r.exhausted)
}

// TotalRowsReturned returns the total number of rows returned via Next().
func (r *ArrowStreamReader) TotalRowsReturned() int64 {
	return r.rowCount
}
