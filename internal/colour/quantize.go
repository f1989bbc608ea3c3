package colour

import (
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

// Quantize clusters samples with the go-quantize median cut quantizer,
// averaging each bucket.
type Quantize struct {
	quantizer  quantize.MedianCutQuantizer
	maxSamples int
}

// NewQuantize creates a Quantize clusterer.
func NewQuantize() *Quantize {
	return &Quantize{
		quantizer:  quantize.MedianCutQuantizer{Aggregation: quantize.Mean},
		maxSamples: 20000,
	}
}

// Cluster implements Clusterer.
func (q *Quantize) Cluster(samples []RGB, count int) (*Palette, error) {
	if len(samples) == 0 || count < 2 {
		return nil, nil
	}

	samples = limitSamples(samples, q.maxSamples)
	if distinctColours(samples) < count {
		return nil, nil
	}

	pal := q.quantizer.Quantize(make(color.Palette, 0, count), samplesImage(samples))
	if len(pal) != count {
		return nil, nil
	}
	return rankByPopulation(pal, samples), nil
}
