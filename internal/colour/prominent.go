package colour

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/EdlinOrg/prominentcolor"
)

// Prominent clusters samples with the prominentcolor k-means implementation.
// prominentcolor seeds from the global random source, so unlike the other
// built-in clusterers its output can vary between runs.
type Prominent struct {
	maxSamples int
}

// NewProminent creates a Prominent clusterer.
func NewProminent() *Prominent {
	return &Prominent{maxSamples: 5000}
}

// Cluster implements Clusterer.
func (p *Prominent) Cluster(samples []RGB, count int) (*Palette, error) {
	if len(samples) == 0 || count < 2 {
		return nil, nil
	}

	samples = limitSamples(samples, p.maxSamples)
	if distinctColours(samples) < count {
		return nil, nil
	}

	// Samples are already filtered, so skip cropping, resizing and background masks.
	items, err := prominentcolor.KmeansWithAll(
		count,
		samplesImage(samples),
		prominentcolor.ArgumentNoCropping,
		0,
		[]prominentcolor.ColorBackgroundMask{},
	)
	if err != nil {
		if tooFewColours(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("prominentcolor: %w", err)
	}
	if len(items) != count {
		return nil, nil
	}

	pal := make(color.Palette, len(items))
	counts := make([]int, len(items))
	total := 0
	for i, item := range items {
		pal[i] = RGB{R: uint8(item.Color.R), G: uint8(item.Color.G), B: uint8(item.Color.B)}
		counts[i] = item.Cnt
		total += item.Cnt
	}
	return rankedPalette(pal, counts, total), nil
}

// tooFewColours reports whether err is one of the errors prominentcolor
// returns when the input cannot form the requested number of clusters.
// The library exposes no sentinel values, so its messages are matched.
func tooFewColours(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "k larger than len(allColors)") ||
		strings.Contains(msg, "no non-alpha pixels found")
}
