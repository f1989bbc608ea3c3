package colour

import (
	"math"
	"slices"
)

const (
	// Significant bits kept per channel when building the histogram.
	sigBits = 5
	rShift  = 8 - sigBits
	histMax = 1 << sigBits

	// Share of the target produced by population-ordered splitting before
	// switching to population*volume ordering.
	fractByPopulation = 0.75
)

// MedianCut implements modified median cut quantisation.
type MedianCut struct{}

// NewMedianCut creates a MedianCut clusterer.
func NewMedianCut() *MedianCut {
	return &MedianCut{}
}

// histCell is one occupied bucket of the quantised colour histogram.
type histCell struct {
	key   [3]int
	count int
	sum   [3]int
}

// colourBox is a set of histogram cells bounded by lo and hi on each axis.
type colourBox struct {
	cells []*histCell
	lo    [3]int
	hi    [3]int
	count int
}

func newColourBox(cells []*histCell) *colourBox {
	b := &colourBox{
		cells: cells,
		lo:    [3]int{histMax, histMax, histMax},
		hi:    [3]int{-1, -1, -1},
	}
	for _, c := range cells {
		for axis := 0; axis < 3; axis++ {
			b.lo[axis] = min(b.lo[axis], c.key[axis])
			b.hi[axis] = max(b.hi[axis], c.key[axis])
		}
		b.count += c.count
	}
	return b
}

func (b *colourBox) volume() int {
	return (b.hi[0] - b.lo[0] + 1) * (b.hi[1] - b.lo[1] + 1) * (b.hi[2] - b.lo[2] + 1)
}

// splittable reports whether the box spans more than one cell.
func (b *colourBox) splittable() bool {
	return b.hi[0] > b.lo[0] || b.hi[1] > b.lo[1] || b.hi[2] > b.lo[2]
}

// mean returns the population-weighted mean colour of the box.
func (b *colourBox) mean() RGB {
	var sum [3]int
	for _, c := range b.cells {
		for axis := 0; axis < 3; axis++ {
			sum[axis] += c.sum[axis]
		}
	}
	n := float64(b.count)
	return RGB{
		R: uint8(math.Round(float64(sum[0]) / n)),
		G: uint8(math.Round(float64(sum[1]) / n)),
		B: uint8(math.Round(float64(sum[2]) / n)),
	}
}

// split cuts the box along its widest axis near the population median.
// The bounds are tight, so both halves are non-empty.
func (b *colourBox) split() (*colourBox, *colourBox) {
	widths := [3]int{b.hi[0] - b.lo[0], b.hi[1] - b.lo[1], b.hi[2] - b.lo[2]}
	axis := 2
	switch {
	case widths[0] >= widths[1] && widths[0] >= widths[2]:
		axis = 0
	case widths[1] >= widths[2]:
		axis = 1
	}

	var partial [histMax]int
	for _, c := range b.cells {
		partial[c.key[axis]] += c.count
	}

	lo, hi := b.lo[axis], b.hi[axis]
	median := lo
	acc := 0
	for v := lo; v <= hi; v++ {
		acc += partial[v]
		if acc > b.count/2 {
			median = v
			break
		}
	}

	// Cut towards the larger side so that the resulting boxes stay compact.
	left, right := median-lo, hi-median
	var cut int
	if left <= right {
		cut = min(hi-1, median+right/2)
	} else {
		cut = max(lo, median-1-left/2)
	}

	var lower, upper []*histCell
	for _, c := range b.cells {
		if c.key[axis] <= cut {
			lower = append(lower, c)
		} else {
			upper = append(upper, c)
		}
	}
	return newColourBox(lower), newColourBox(upper)
}

// Cluster implements Clusterer.
func (m *MedianCut) Cluster(samples []RGB, count int) (*Palette, error) {
	if len(samples) == 0 || count < 2 {
		return nil, nil
	}

	cells := histogram(samples)
	if len(cells) < count {
		return nil, nil
	}

	boxes := []*colourBox{newColourBox(cells)}
	boxes = splitBoxes(boxes, int(math.Ceil(fractByPopulation*float64(count))), func(b *colourBox) int {
		return b.count
	})
	boxes = splitBoxes(boxes, count, func(b *colourBox) int {
		return b.count * b.volume()
	})

	slices.SortStableFunc(boxes, func(a, b *colourBox) int {
		return b.count - a.count
	})

	colors := make([]RGB, len(boxes))
	weights := make([]float64, len(boxes))
	for i, b := range boxes {
		colors[i] = b.mean()
		weights[i] = float64(b.count) / float64(len(samples))
	}
	return NewPaletteWithWeights(colors, weights), nil
}

// histogram buckets samples into cells in first-seen order.
func histogram(samples []RGB) []*histCell {
	index := make(map[[3]int]*histCell)
	var cells []*histCell
	for _, s := range samples {
		key := [3]int{int(s.R) >> rShift, int(s.G) >> rShift, int(s.B) >> rShift}
		c, ok := index[key]
		if !ok {
			c = &histCell{key: key}
			index[key] = c
			cells = append(cells, c)
		}
		c.count++
		c.sum[0] += int(s.R)
		c.sum[1] += int(s.G)
		c.sum[2] += int(s.B)
	}
	return cells
}

// splitBoxes repeatedly splits the highest priority splittable box until
// target boxes exist or nothing can be split.
func splitBoxes(boxes []*colourBox, target int, priority func(*colourBox) int) []*colourBox {
	for len(boxes) < target {
		best := -1
		for i, b := range boxes {
			if !b.splittable() {
				continue
			}
			if best < 0 || priority(b) > priority(boxes[best]) {
				best = i
			}
		}
		if best < 0 {
			break
		}
		lower, upper := boxes[best].split()
		boxes[best] = lower
		boxes = append(boxes, upper)
	}
	return boxes
}
