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
	"fmt"
	"sort"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
)

// projection restricts records to a fixed set of column indices. Indices are
// kept in file-schema order, not request order, so the projected schema is
// stable no matter how the caller lists columns.
type projection struct {
	indices []int
	schema  *arrow.Schema
}

// newProjection resolves the requested column names against the file schema.
// A nil or empty request returns a nil projection, meaning read everything.
// A name with no match in the schema fails with ErrSchemaMismatch.
func newProjection(schema *arrow.Schema, columns []string) (*projection, error) {
	if len(columns) == 0 {
		return nil, nil
	}

	indices := make([]int, 0, len(columns))
	seen := make(map[int]struct{}, len(columns))
	for _, name := range columns {
		matches := schema.FieldIndices(name)
		if len(matches) == 0 {
			return nil, fmt.Errorf("%w: column %q not in file schema", ErrSchemaMismatch, name)
		}
		for _, idx := range matches {
			if _, ok := seen[idx]; ok {
				continue
			}
			seen[idx] = struct{}{}
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)

	fields := make([]arrow.Field, len(indices))
	for i, idx := range indices {
		fields[i] = schema.Field(idx)
	}
	md := schema.Metadata()
	return &projection{
		indices: indices,
		schema:  arrow.NewSchema(fields, &md),
	}, nil
}

// apply returns rec restricted to the projected columns. The returned record
// is retained for the caller even when no projection is configured, so
// ownership is uniform on both paths.
func (p *projection) apply(rec arrow.Record) arrow.Record {
	if p == nil {
		rec.Retain()
		return rec
	}
	cols := make([]arrow.Array, len(p.indices))
	for i, idx := range p.indices {
		cols[i] = rec.Column(idx)
	}
	return array.NewRecord(p.schema, cols, rec.NumRows())
}
