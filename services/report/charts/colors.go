// Copyright (C) 2025 the eventstore-benchmarks authors
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package charts

import "image/color"

// Palette maps adapter names to chart colors. It is injected configuration,
// not process-wide state; callers may supply their own mapping.
type Palette map[string]color.RGBA

// fallbackCycle colors adapters absent from the palette, assigned in sorted
// adapter order so the mapping is stable between invocations.
var fallbackCycle = []color.RGBA{
	{R: 31, G: 119, B: 180, A: 255},
	{R: 255, G: 127, B: 14, A: 255},
	{R: 44, G: 160, B: 44, A: 255},
	{R: 214, G: 39, B: 40, A: 255},
	{R: 148, G: 103, B: 189, A: 255},
	{R: 140, G: 86, B: 75, A: 255},
}

// DefaultPalette returns the stock adapter color mapping.
func DefaultPalette() Palette {
	return Palette{
		"eventsourcingdb": {R: 31, G: 119, B: 180, A: 255},
		"kurrentdb":       {R: 44, G: 160, B: 44, A: 255},
		"axonserver":      {R: 214, G: 39, B: 40, A: 255},
		"umadb":           {R: 148, G: 103, B: 189, A: 255},
		"dummy":           {R: 127, G: 127, B: 127, A: 255},
	}
}

// Color returns the color for an adapter, falling back to a stable cycle
// position for unmapped adapters.
func (p Palette) Color(adapter string, fallbackIndex int) color.RGBA {
	if c, ok := p[adapter]; ok {
		return c
	}
	return fallbackCycle[fallbackIndex%len(fallbackCycle)]
}
