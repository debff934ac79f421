// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import "fmt"

// Config holds the engine parameters that earlier report-script generations
// carried as scattered per-version literals.
//
// Description:
//
//	Config controls time bucketing, smoothing, and edge trimming for every
//	series the engine produces. Use DefaultConfig() to get the canonical
//	values, then override specific fields as needed.
//
// Thread Safety: Safe for concurrent read access after initialization.
type Config struct {
	// BinSizeMS is the throughput bucket width in milliseconds.
	// Default: 50
	BinSizeMS int

	// SmoothingSigma is the Gaussian smoothing width in bucket units for
	// the smoothed throughput series. Zero disables smoothing (the
	// smoothed series then equals the raw series).
	// Default: 2.0
	SmoothingSigma float64

	// TrimEdges drops the first and last resample window when computing a
	// scaling throughput estimate, excluding partial warm-up and cool-down
	// windows. Default: true
	TrimEdges bool
}

// DefaultConfig returns a configuration with the canonical engine values.
//
// Outputs:
//   - *Config: Configuration with default values. Never nil.
//
// Example:
//
//	cfg := metrics.DefaultConfig()
//	cfg.BinSizeMS = 100 // coarser buckets
func DefaultConfig() *Config {
	return &Config{
		BinSizeMS:      50,
		SmoothingSigma: 2.0,
		TrimEdges:      true,
	}
}

// Validate checks that the configuration is valid.
//
// Outputs:
//   - error: Wraps ErrInvalidConfig naming the offending field, or nil.
func (c *Config) Validate() error {
	if c.BinSizeMS <= 0 {
		return fmt.Errorf("bin size must be positive: %w", ErrInvalidConfig)
	}
	if c.SmoothingSigma < 0 {
		return fmt.Errorf("smoothing sigma must be non-negative: %w", ErrInvalidConfig)
	}
	return nil
}

// rateFactor converts a per-bucket event count to events/sec.
func (c *Config) rateFactor() float64 {
	return 1000.0 / float64(c.BinSizeMS)
}
