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
	"fmt"

	"go.opentelemetry.io/otel"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	tablesOutCounter    otelmetric.Int64Counter
	rowsOutCounter      otelmetric.Int64Counter
	bytesFlushedCounter otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/rebatch/ingest")

	var err error
	tablesOutCounter, err = meter.Int64Counter(
		"rebatch.ingest.tables.out",
		otelmetric.WithDescription("Number of combined tables flushed to the caller"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create tables.out counter: %w", err))
	}

	rowsOutCounter, err = meter.Int64Counter(
		"rebatch.ingest.rows.out",
		otelmetric.WithDescription("Number of rows flushed to the caller"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create rows.out counter: %w", err))
	}

	bytesFlushedCounter, err = meter.Int64Counter(
		"rebatch.ingest.bytes.flushed",
		otelmetric.WithDescription("Accumulated batch bytes at each flush point"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create bytes.flushed counter: %w", err))
	}
}
