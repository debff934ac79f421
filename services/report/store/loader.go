// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

const (
	summaryFileName = "summary.json"
	samplesFileName = "samples.jsonl"

	// Sample lines are small JSON objects, but keep headroom for future
	// fields without tripping bufio.ErrTooLong.
	maxSampleLineBytes = 1 << 20
)

// summaryWire mirrors summary.json. Required fields are pointers so that a
// missing key can be distinguished from a zero value.
type summaryWire struct {
	Adapter       *string           `json:"adapter"`
	Workload      *string           `json:"workload"`
	Writers       int               `json:"writers"`
	Readers       int               `json:"readers"`
	EventsWritten uint64            `json:"events_written"`
	EventsRead    uint64            `json:"events_read"`
	DurationS     *float64          `json:"duration_s"`
	ThroughputEPS *float64          `json:"throughput_eps"`
	Latency       LatencySummary    `json:"latency"`
	Container     *ContainerMetrics `json:"container"`
}

// sampleWire mirrors one samples.jsonl line, with required fields as
// pointers for missing-key detection.
type sampleWire struct {
	TMS       *int64   `json:"t_ms"`
	Op        string   `json:"op"`
	OK        *bool    `json:"ok"`
	LatencyUS *float64 `json:"latency_us"`
}

// Loader reads benchmark runs from a raw results directory.
//
// Description:
//
//	Loader walks the immediate subdirectories of a raw results directory in
//	lexical order. Each subdirectory containing both summary.json and
//	samples.jsonl becomes one Run; subdirectories missing either file are
//	ignored without comment, matching how partially-written runs are left
//	behind by an interrupted benchmark.
//
// Thread Safety: Safe for concurrent use.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a run loader.
//
// Outputs:
//   - *Loader: The new loader, using slog.Default() until SetLogger is
//     called. Never nil.
func NewLoader() *Loader {
	return &Loader{logger: slog.Default()}
}

// SetLogger sets the logger for the loader. Nil values are ignored.
func (l *Loader) SetLogger(logger *slog.Logger) {
	if logger != nil {
		l.logger = logger
	}
}

// LoadAll loads every well-formed run under rawDir.
//
// Description:
//
//	Malformed runs are logged at warn level and skipped; a single bad run
//	never aborts the batch. The returned slice preserves lexical directory
//	order.
//
// Inputs:
//   - rawDir: Path to the raw results directory. Must exist.
//
// Outputs:
//   - []*Run: Loaded runs, possibly empty. Never nil on success.
//   - error: Non-nil only if rawDir itself cannot be read.
func (l *Loader) LoadAll(rawDir string) ([]*Run, error) {
	entries, err := os.ReadDir(rawDir)
	if err != nil {
		return nil, fmt.Errorf("reading raw results dir %s: %w", rawDir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	runs := make([]*Run, 0, len(names))
	for _, name := range names {
		run, err := l.LoadRun(filepath.Join(rawDir, name))
		if err != nil {
			if errors.Is(err, ErrRunNotFound) {
				continue
			}
			l.logger.Warn("skipping run", "run", name, "error", err)
			continue
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// LoadRun loads a single run directory.
//
// Inputs:
//   - runDir: Path to one run directory containing summary.json and
//     samples.jsonl.
//
// Outputs:
//   - *Run: The loaded run. Never nil on success.
//   - error: ErrRunNotFound if either file is absent; ErrMalformedInput if
//     a required field is missing; otherwise the underlying I/O error.
func (l *Loader) LoadRun(runDir string) (*Run, error) {
	summaryPath := filepath.Join(runDir, summaryFileName)
	samplesPath := filepath.Join(runDir, samplesFileName)
	for _, p := range []string{summaryPath, samplesPath} {
		if _, err := os.Stat(p); err != nil {
			return nil, fmt.Errorf("%s: %w", p, ErrRunNotFound)
		}
	}

	summaryData, err := os.ReadFile(summaryPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", summaryPath, err)
	}
	run, err := ParseSummary(summaryData)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", summaryPath, err)
	}
	run.Name = filepath.Base(runDir)

	f, err := os.Open(samplesPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", samplesPath, err)
	}
	defer f.Close()

	run.Samples, err = ParseSamples(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", samplesPath, err)
	}
	return run, nil
}

// ParseSummary parses summary.json bytes into a Run without samples.
//
// Description:
//
//	Every field is copied out of the decoded form, so the returned Run
//	shares no state with the raw bytes or any intermediate value. The four
//	required fields (adapter, workload, duration_s, throughput_eps) must be
//	present; writers, readers, latency, and container are optional.
//
// Outputs:
//   - *Run: Run with summary fields populated and Samples nil.
//   - error: Wraps ErrMalformedInput naming the missing field.
func ParseSummary(data []byte) (*Run, error) {
	var w summaryWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding summary: %w", err)
	}
	switch {
	case w.Adapter == nil:
		return nil, fmt.Errorf("summary missing %q: %w", "adapter", ErrMalformedInput)
	case w.Workload == nil:
		return nil, fmt.Errorf("summary missing %q: %w", "workload", ErrMalformedInput)
	case w.DurationS == nil:
		return nil, fmt.Errorf("summary missing %q: %w", "duration_s", ErrMalformedInput)
	case w.ThroughputEPS == nil:
		return nil, fmt.Errorf("summary missing %q: %w", "throughput_eps", ErrMalformedInput)
	}

	run := &Run{
		Adapter:       *w.Adapter,
		Workload:      *w.Workload,
		Writers:       w.Writers,
		Readers:       w.Readers,
		EventsWritten: w.EventsWritten,
		EventsRead:    w.EventsRead,
		DurationS:     *w.DurationS,
		ThroughputEPS: *w.ThroughputEPS,
		Latency:       w.Latency,
	}
	if w.Container != nil {
		c := *w.Container
		run.Container = &c
	}
	return run, nil
}

// ParseSamples parses a samples.jsonl stream.
//
// Description:
//
//	Every non-blank input line becomes exactly one Sample; nothing is
//	silently dropped. Failed operations (ok=false) are preserved so that
//	downstream filters, not the loader, decide what qualifies.
//
// Outputs:
//   - []Sample: One sample per input record, in input order.
//   - error: Wraps ErrMalformedInput with the offending line number if a
//     record is missing t_ms, ok, or latency_us.
func ParseSamples(r io.Reader) ([]Sample, error) {
	var samples []Sample
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxSampleLineBytes)

	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}

		var w sampleWire
		if err := json.Unmarshal(raw, &w); err != nil {
			return nil, fmt.Errorf("decoding sample line %d: %w", line, err)
		}
		switch {
		case w.TMS == nil:
			return nil, fmt.Errorf("sample line %d missing %q: %w", line, "t_ms", ErrMalformedInput)
		case w.OK == nil:
			return nil, fmt.Errorf("sample line %d missing %q: %w", line, "ok", ErrMalformedInput)
		case w.LatencyUS == nil:
			return nil, fmt.Errorf("sample line %d missing %q: %w", line, "latency_us", ErrMalformedInput)
		}

		samples = append(samples, Sample{
			TMS:       *w.TMS,
			Op:        w.Op,
			OK:        *w.OK,
			LatencyUS: *w.LatencyUS,
		})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scanning samples: %w", err)
	}
	return samples, nil
}
