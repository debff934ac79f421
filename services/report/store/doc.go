// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store holds the immutable data model for one benchmark run and
// loads runs from a raw results directory.
//
// # Overview
//
// A benchmark run is recorded on disk as a directory containing two files:
//
//	<raw>/<run-name>/summary.json    run-level summary metadata
//	<raw>/<run-name>/samples.jsonl   one JSON object per attempted operation
//
// The store package parses these into Run values. It performs no statistical
// transformation; that is the job of the report/metrics package. A Run is
// immutable once loaded and is the unit of all downstream aggregation.
//
// # Error Handling
//
// A summary missing one of its required fields (adapter, workload,
// duration_s, throughput_eps), or a sample line missing t_ms, ok, or
// latency_us, makes that single run malformed (ErrMalformedInput). Loading a
// directory of runs never aborts on a malformed run: the offending run is
// logged and skipped so one bad historical run cannot take down a whole
// report batch.
//
// # Thread Safety
//
// Run values are safe for concurrent read access after loading.
package store
