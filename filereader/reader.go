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
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// DefaultBatchSize is the row count per decoded batch for formats that
// re-chunk on read (parquet).
const DefaultBatchSize = 8192

// Format identifies one of the supported on-disk columnar formats.
type Format int

const (
	FormatUnknown Format = iota
	// FormatArrowStream is the Arrow IPC stream format (.arrow): schema up
	// front, record batches in write order, no trailing footer.
	FormatArrowStream
	// FormatFeather is the Arrow IPC file format (.feather). Feather V2 files
	// are Arrow files with a footer locating each batch.
	FormatFeather
	// FormatParquet is the parquet file format (.parquet), decoded row group
	// by row group.
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatArrowStream:
		return "arrow"
	case FormatFeather:
		return "feather"
	case FormatParquet:
		return "parquet"
	default:
		return "unknown"
	}
}

// RecordReader is the core interface for reading record batches from a
// columnar file. All format readers expose the same lazy, finite,
// non-restartable sequence regardless of how the file is physically laid out.
type RecordReader interface {
	// Next returns the next record batch from the file, drawn at the file's
	// native batch boundaries. It returns io.EOF when there are no more
	// batches. Returned records are retained for the caller, who must
	// Release them.
	Next(ctx context.Context) (arrow.Record, error)

	// Schema returns the schema of returned records, after any column
	// projection.
	Schema() *arrow.Schema

	// Close releases the decoder and the underlying file handle. When the
	// reader was opened with Destructive set and the batch sequence was fully
	// exhausted, Close also removes the source file from storage.
	Close() error
}

// ReaderOptions provides options for opening format readers.
type ReaderOptions struct {
	// Columns restricts reads to the named columns. Nil reads every column.
	Columns []string
	// Destructive removes the source file once its batches are exhausted.
	Destructive bool
	// BatchSize is the row count per decoded batch for formats that re-chunk
	// on read (default: DefaultBatchSize). Ignored by the IPC formats, whose
	// batch boundaries come from the file itself.
	BatchSize int
}

// FormatForFile determines the file format from the path suffix.
// Supported suffixes:
//   - .arrow: Arrow IPC stream
//   - .feather: Arrow IPC file (Feather V2)
//   - .parquet: parquet
func FormatForFile(path string) (Format, error) {
	switch {
	case strings.HasSuffix(path, ".arrow"):
		return FormatArrowStream, nil
	case strings.HasSuffix(path, ".feather"):
		return FormatFeather, nil
	case strings.HasSuffix(path, ".parquet"):
		return FormatParquet, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// OpenFile opens path with the reader variant matching format.
func OpenFile(ctx context.Context, format Format, path string, opts ReaderOptions) (RecordReader, error) {
	switch format {
	case FormatArrowStream:
		return NewArrowStreamReader(ctx, path, opts)
	case FormatFeather:
		return NewFeatherReader(ctx, path, opts)
	case FormatParquet:
		return NewParquetReader(ctx, path, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// removeIfExhausted performs the destructive unlink. Deleting is only legal
// once every batch in the file has been yielded: a file that failed mid-read
// or was abandoned early must survive.
func removeIfExhausted(path string, destructive, exhausted bool) error {
	if !destructive || !exhausted {
		return nil
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	}
	filesDeletedCounter.Add(context.Background(), 1)
	return nil
}
