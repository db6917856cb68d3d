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

import "github.com/cardinalhq/rebatch/filereader"

// Config holds ingestion tunables. The budget is fixed for the lifetime of
// one ingestion run.
type Config struct {
	TargetBytes int64 `mapstructure:"target_bytes"`
	BatchSize   int   `mapstructure:"batch_size"`
	Destructive bool  `mapstructure:"destructive"`
}

// DefaultConfig returns default settings.
func DefaultConfig() Config {
	return Config{
		TargetBytes: DefaultTargetBytes,
		BatchSize:   filereader.DefaultBatchSize,
		Destructive: false,
	}
}

// Options converts the configuration into ingester options. Column
// projection is per-run and stays a direct argument.
func (c Config) Options() Options {
	return Options{
		TargetBytes: c.TargetBytes,
		BatchSize:   c.BatchSize,
		Destructive: c.Destructive,
	}
}
