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

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	recordsInCounter    otelmetric.Int64Counter
	rowsInCounter       otelmetric.Int64Counter
	filesDeletedCounter otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/rebatch/filereader")

	var err error
	recordsInCounter, err = meter.Int64Counter(
		"rebatch.reader.records.in",
		otelmetric.WithDescription("Number of record batches decoded from source files"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create records.in counter: %w", err))
	}

	rowsInCounter, err = meter.Int64Counter(
		"rebatch.reader.rows.in",
		otelmetric.WithDescription("Number of rows decoded from source files"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rows.in counter: %w", err))
	}

	filesDeletedCounter, err = meter.Int64Counter(
		"rebatch.reader.files.deleted",
		otelmetric.WithDescription("Number of source files removed after destructive ingestion"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create files.deleted counter: %w", err))
	}
}
