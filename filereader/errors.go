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

import "errors"

// These errors are data or configuration problems, not transient faults, so
// they are unrecoverable for the ingestion run that hit them. Readers wrap
// them with file context; match with errors.Is.
var (
	// ErrUnsupportedFormat indicates a file suffix matching none of the
	// supported formats.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrUnreadableFile indicates a file that could not be opened or decoded.
	ErrUnreadableFile = errors.New("unreadable file")

	// ErrSchemaMismatch indicates a requested column that does not exist in a
	// file's schema.
	ErrSchemaMismatch = errors.New("schema mismatch")
)
