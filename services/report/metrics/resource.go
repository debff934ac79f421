// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package metrics

import (
	"sort"

	"github.com/samber/lo"

	"github.com/pyeventsourcing/eventstore-benchmarks/services/report/store"
)

const bytesPerMB = 1024 * 1024

// ResourceUsage is one adapter's container resource footprint aggregated
// across its runs.
type ResourceUsage struct {
	Adapter string `json:"adapter"`

	// ImageSizeMB is the maximum image size observed across runs.
	ImageSizeMB float64 `json:"image_size_mb"`

	// StartupTimeS is the mean startup time across runs.
	StartupTimeS float64 `json:"startup_time_s"`

	// PeakCPUPercent is the maximum peak CPU observed across runs.
	PeakCPUPercent float64 `json:"peak_cpu_percent"`

	// PeakMemoryMB is the maximum peak memory observed across runs.
	PeakMemoryMB float64 `json:"peak_memory_mb"`
}

// CompositeScore ranks one adapter's resource footprint. Lower is better.
type CompositeScore struct {
	Adapter string `json:"adapter"`

	// Score is the unweighted mean of the four max-normalized usage
	// metrics, in [0, 1].
	Score float64 `json:"score"`

	// Usage holds the aggregated values behind the score, for display.
	Usage ResourceUsage `json:"usage"`
}

// RankResources normalizes and combines container resource metrics into a
// single ranking score per adapter.
//
// Description:
//
//	Runs without an image size or peak CPU figure are ignored. Per adapter,
//	duplicate runs aggregate as max image size, mean startup time, max peak
//	CPU, and max peak memory. Each of the four metrics is then normalized
//	by its maximum across adapters (an all-zero metric normalizes to zero
//	and contributes no discrimination), and the composite score is their
//	unweighted mean. Smaller footprints win: the result is sorted ascending
//	by score, ties broken by adapter name for determinism.
//
// Outputs:
//   - []CompositeScore: Ascending by score; nil when no run carries
//     container metrics, which downstream consumers render as "no resource
//     data" rather than an error.
//
// Thread Safety: This function is stateless and safe for concurrent use.
func RankResources(runs []*store.Run) []CompositeScore {
	type acc struct {
		imageMB    float64
		startupSum float64
		peakCPU    float64
		peakMemMB  float64
		count      int
	}

	byAdapter := make(map[string]*acc)
	for _, r := range runs {
		if !r.HasContainerData() {
			continue
		}
		a := byAdapter[r.Adapter]
		if a == nil {
			a = &acc{}
			byAdapter[r.Adapter] = a
		}
		c := r.Container
		a.imageMB = max(a.imageMB, c.ImageSizeBytes/bytesPerMB)
		a.startupSum += c.StartupTimeS
		a.peakCPU = max(a.peakCPU, c.PeakCPUPercent)
		a.peakMemMB = max(a.peakMemMB, c.PeakMemoryBytes/bytesPerMB)
		a.count++
	}
	if len(byAdapter) == 0 {
		return nil
	}

	adapters := lo.Keys(byAdapter)
	sort.Strings(adapters)

	usages := lo.Map(adapters, func(adapter string, _ int) ResourceUsage {
		a := byAdapter[adapter]
		return ResourceUsage{
			Adapter:        adapter,
			ImageSizeMB:    a.imageMB,
			StartupTimeS:   a.startupSum / float64(a.count),
			PeakCPUPercent: a.peakCPU,
			PeakMemoryMB:   a.peakMemMB,
		}
	})

	var maxImage, maxStartup, maxCPU, maxMem float64
	for _, u := range usages {
		maxImage = max(maxImage, u.ImageSizeMB)
		maxStartup = max(maxStartup, u.StartupTimeS)
		maxCPU = max(maxCPU, u.PeakCPUPercent)
		maxMem = max(maxMem, u.PeakMemoryMB)
	}

	scores := lo.Map(usages, func(u ResourceUsage, _ int) CompositeScore {
		norms := []float64{
			normalize(u.ImageSizeMB, maxImage),
			normalize(u.StartupTimeS, maxStartup),
			normalize(u.PeakCPUPercent, maxCPU),
			normalize(u.PeakMemoryMB, maxMem),
		}
		return CompositeScore{
			Adapter: u.Adapter,
			Score:   mean(norms),
			Usage:   u,
		}
	})

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Score != scores[j].Score {
			return scores[i].Score < scores[j].Score
		}
		return scores[i].Adapter < scores[j].Adapter
	})
	return scores
}

// normalize divides value by maxValue, guarding against a zero maximum.
func normalize(value, maxValue float64) float64 {
	if maxValue == 0 {
		return 0
	}
	return value / maxValue
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
