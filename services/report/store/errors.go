// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import "errors"

// Sentinel errors for the store package.
var (
	// ErrMalformedInput indicates a run summary or sample record is missing
	// a required field. Fatal for the offending run only.
	ErrMalformedInput = errors.New("malformed run input")

	// ErrRunNotFound indicates the named run directory does not exist or is
	// missing its summary/samples files.
	ErrRunNotFound = errors.New("run not found")
)
