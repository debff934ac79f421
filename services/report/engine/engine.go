// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package engine orchestrates the metrics core over a batch of loaded runs,
// producing the complete value set a report renderer consumes.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/metrics"
	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

const tracerName = "report.engine"

// RunArtifacts holds the per-run series computed for an individual report.
type RunArtifacts struct {
	Run *store.Run

	// CDF is nil when the run had no successful samples.
	CDF []metrics.CDFPoint

	// Series is nil when the run's time range was degenerate.
	Series *metrics.TimeSeries
}

// Report is the complete set of computed values for one report invocation.
// It contains plain structured values only; rendering and templating are
// collaborators that consume it.
type Report struct {
	// PerRun holds one artifact set per input run, in input order.
	PerRun []RunArtifacts

	// WorkerGroups holds per-worker-count comparison entries, one
	// AdapterSeries per run in the group.
	WorkerGroups map[int][]metrics.AdapterSeries

	// Axis is the concurrency axis the run set scales on.
	Axis metrics.WorkerAxis

	// ThroughputScaling and P99Scaling hold per-adapter scaling curves.
	// Both are nil unless the run set spans more than one worker count.
	ThroughputScaling map[string][]metrics.ScalingPoint
	P99Scaling        map[string][]metrics.ScalingPoint

	// Resources ranks adapters by composite resource score. Nil when no
	// run carries container metrics.
	Resources []metrics.CompositeScore
}

// WorkerCounts returns the sorted worker counts present in the report.
func (r *Report) WorkerCounts() []int {
	counts := make([]int, 0, len(r.WorkerGroups))
	for wc := range r.WorkerGroups {
		counts = append(counts, wc)
	}
	sort.Ints(counts)
	return counts
}

// Engine computes a Report from a batch of runs.
//
// Description:
//
//	Engine applies the metrics core to each run and to the cross-run
//	groupings. Per-run artifacts are computed concurrently; every
//	computation is a pure function of its input run, so ordering between
//	runs carries no meaning and the output is deterministic regardless of
//	scheduling.
//
// Thread Safety: Safe for concurrent use.
type Engine struct {
	cfg    *metrics.Config
	logger *slog.Logger
}

// New creates an engine with the given configuration.
//
// Inputs:
//   - cfg: Engine configuration. Nil uses metrics.DefaultConfig().
//
// Outputs:
//   - *Engine: The new engine. Never nil on success.
//   - error: Non-nil if cfg fails validation.
func New(cfg *metrics.Config) (*Engine, error) {
	if cfg == nil {
		cfg = metrics.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating engine config: %w", err)
	}
	return &Engine{cfg: cfg, logger: slog.Default()}, nil
}

// SetLogger sets the logger for the engine. Nil values are ignored.
func (e *Engine) SetLogger(logger *slog.Logger) {
	if logger != nil {
		e.logger = logger
	}
}

// Generate computes the full report value set for a batch of runs.
//
// Description:
//
//	Produces per-run artifacts, per-worker-count comparison groups,
//	scaling curves (only when the batch spans more than one worker count),
//	and the resource ranking. Runs yielding no data are logged and carried
//	with nil artifacts; renderers skip those sections.
//
// Inputs:
//   - ctx: Context for cancellation. Must not be nil.
//   - runs: Loaded runs. May be empty.
//
// Outputs:
//   - *Report: The computed report. Never nil on success.
//   - error: Non-nil on cancellation or if the batch mixes writer-scaled
//     and reader-scaled runs (metrics.ErrMixedWorkerAxes).
func (e *Engine) Generate(ctx context.Context, runs []*store.Run) (*Report, error) {
	if ctx == nil {
		return nil, errors.New("context must not be nil")
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "engine.Generate",
		trace.WithAttributes(attribute.Int("report.runs", len(runs))),
	)
	defer span.End()

	report := &Report{
		PerRun: make([]RunArtifacts, len(runs)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, run := range runs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.PerRun[i] = e.runArtifacts(run)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "per-run computation interrupted")
		return nil, fmt.Errorf("computing per-run artifacts: %w", err)
	}

	report.WorkerGroups = make(map[int][]metrics.AdapterSeries)
	for wc, group := range metrics.GroupByWorkerCount(runs) {
		report.WorkerGroups[wc] = metrics.CompareRuns(group, e.cfg)
	}

	var err error
	report.Resources = metrics.RankResources(runs)
	report.Axis, err = e.computeScaling(report, runs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "scaling aggregation failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("report.worker_groups", len(report.WorkerGroups)),
		attribute.Int("report.ranked_adapters", len(report.Resources)),
	)
	span.SetStatus(codes.Ok, "report computed")
	return report, nil
}

// runArtifacts computes one run's latency CDF and throughput series,
// logging and tolerating empty results.
func (e *Engine) runArtifacts(run *store.Run) RunArtifacts {
	art := RunArtifacts{Run: run}

	cdf, err := metrics.LatencyCDF(run.Samples)
	if err == nil {
		art.CDF = cdf
	} else {
		e.logger.Debug("no latency data", "run", run.Name, "adapter", run.Adapter)
	}

	ts, err := metrics.ThroughputSeries(run.Samples, e.cfg)
	if err == nil {
		art.Series = ts
	} else {
		e.logger.Debug("no throughput data", "run", run.Name, "adapter", run.Adapter)
	}
	return art
}

// computeScaling fills the scaling curves when the batch spans more than
// one worker count. ErrMixedWorkerAxes is surfaced rather than guessed
// around: a mixed reader/writer batch is an unsupported study.
func (e *Engine) computeScaling(report *Report, runs []*store.Run) (metrics.WorkerAxis, error) {
	var err error
	var axis metrics.WorkerAxis

	if len(report.WorkerGroups) <= 1 {
		// A single worker count has no scaling dimension; still resolve
		// the axis for labeling.
		report.ThroughputScaling = nil
		report.P99Scaling = nil
		_, axis, err = metrics.P99Scaling(runs)
		if err != nil {
			return "", fmt.Errorf("resolving worker axis: %w", err)
		}
		return axis, nil
	}

	report.ThroughputScaling, axis, err = metrics.ThroughputScaling(runs, e.cfg)
	if err != nil {
		return "", fmt.Errorf("aggregating throughput scaling: %w", err)
	}
	report.P99Scaling, _, err = metrics.P99Scaling(runs)
	if err != nil {
		return "", fmt.Errorf("aggregating p99 scaling: %w", err)
	}
	return axis, nil
}
