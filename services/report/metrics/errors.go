// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import "errors"

// Sentinel errors for the metrics package.
var (
	// ErrEmptySeries indicates a run has no qualifying samples or a
	// degenerate time range. Callers must treat it as "skip this artifact",
	// never as a failure.
	ErrEmptySeries = errors.New("no qualifying samples")

	// ErrInvalidConfig indicates an invalid engine configuration.
	ErrInvalidConfig = errors.New("invalid engine configuration")

	// ErrMixedWorkerAxes indicates a scaling group mixes writer-scaled and
	// reader-scaled runs. Such groups are an unsupported configuration and
	// are rejected rather than silently mis-grouped.
	ErrMixedWorkerAxes = errors.New("mixed reader and writer runs in scaling group")
)
