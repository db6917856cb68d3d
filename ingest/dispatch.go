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
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cardinalhq/rebatch/filereader"
)

// ErrMixedFormats indicates an input set whose files do not all share one
// format suffix. The input set is a precondition, so this fails before any
// file is opened.
var ErrMixedFormats = errors.New("mixed input formats")

// DetectFormat determines the single shared format of the given paths from
// their suffixes. More than one distinct suffix fails with ErrMixedFormats;
// a suffix matching no supported format fails with
// filereader.ErrUnsupportedFormat. No file is opened.
func DetectFormat(paths []string) (filereader.Format, error) {
	if len(paths) == 0 {
		return filereader.FormatUnknown, errors.New("at least one input file is required")
	}

	suffixes := make(map[string]struct{}, 1)
	for _, p := range paths {
		suffixes[filepath.Ext(p)] = struct{}{}
	}
	if len(suffixes) > 1 {
		found := make([]string, 0, len(suffixes))
		for s := range suffixes {
			found = append(found, s)
		}
		sort.Strings(found)
		return filereader.FormatUnknown, fmt.Errorf("%w: %s", ErrMixedFormats, strings.Join(found, ", "))
	}

	return filereader.FormatForFile(paths[0])
}

// NewIngester validates that paths share one supported format and returns an
// Ingester wired with the matching reader variant, preserving the caller's
// input ordering.
func NewIngester(paths []string, opts Options) (*Ingester, error) {
	format, err := DetectFormat(paths)
	if err != nil {
		return nil, err
	}

	if opts.TargetBytes <= 0 {
		opts.TargetBytes = DefaultTargetBytes
	}

	files := make([]string, len(paths))
	copy(files, paths)

	return &Ingester{
		paths:  files,
		format: format,
		opts:   opts,
	}, nil
}
