package colour

import (
	"fmt"
	"image"
	"image/color"
	"slices"
	"strings"
)

// Clusterer groups colour samples into representative colours.
type Clusterer interface {
	// Cluster partitions samples into exactly count colours, ordered with
	// the dominant colour first. It returns a nil palette and nil error when
	// the samples cannot be partitioned, for example when they hold fewer
	// distinct colours than requested. samples is never empty.
	Cluster(samples []RGB, count int) (*Palette, error)
}

// ClustererFunc adapts a function to the Clusterer interface.
type ClustererFunc func(samples []RGB, count int) (*Palette, error)

// Cluster calls f.
func (f ClustererFunc) Cluster(samples []RGB, count int) (*Palette, error) {
	return f(samples, count)
}

// Algorithm names a built-in clustering algorithm.
type Algorithm string

const (
	// AlgorithmMedianCut uses modified median cut over a 5-bit histogram.
	AlgorithmMedianCut Algorithm = "mediancut"

	// AlgorithmKMeans uses k-means++ seeded from the sample content.
	AlgorithmKMeans Algorithm = "kmeans"

	// AlgorithmProminent uses the prominentcolor k-means implementation.
	AlgorithmProminent Algorithm = "prominent"

	// AlgorithmQuantize uses the go-quantize median cut quantizer.
	AlgorithmQuantize Algorithm = "quantize"

	// PluginPrefix marks an algorithm served by an external plugin binary,
	// e.g. "plugin:/usr/lib/swatch/cluster-octree".
	PluginPrefix = "plugin:"
)

// ValidAlgorithms returns the built-in algorithm names.
func ValidAlgorithms() []Algorithm {
	return []Algorithm{
		AlgorithmMedianCut,
		AlgorithmKMeans,
		AlgorithmProminent,
		AlgorithmQuantize,
	}
}

// IsValidAlgorithm checks if the given algorithm name is a built-in algorithm.
func IsValidAlgorithm(alg Algorithm) bool {
	return slices.Contains(ValidAlgorithms(), alg)
}

// IsPlugin reports whether alg refers to an external plugin, returning its path.
func (alg Algorithm) IsPlugin() (string, bool) {
	path, ok := strings.CutPrefix(string(alg), PluginPrefix)
	return path, ok && path != ""
}

// NewClusterer creates the built-in Clusterer for alg.
// Plugin algorithms are resolved by the plugin executor instead.
func NewClusterer(alg Algorithm) (Clusterer, error) {
	switch alg {
	case AlgorithmMedianCut, "":
		return NewMedianCut(), nil
	case AlgorithmKMeans:
		return NewKMeans(), nil
	case AlgorithmProminent:
		return NewProminent(), nil
	case AlgorithmQuantize:
		return NewQuantize(), nil
	default:
		if _, ok := alg.IsPlugin(); ok {
			return nil, fmt.Errorf("plugin algorithm %q must be loaded through the plugin executor", alg)
		}
		return nil, fmt.Errorf("unknown algorithm: %s (valid algorithms: %v)", alg, ValidAlgorithms())
	}
}

// samplesImage lays samples out as a single-row image for clustering
// libraries that operate on image.Image.
func samplesImage(samples []RGB) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, len(samples), 1))
	for i, s := range samples {
		img.Pix[i*4] = s.R
		img.Pix[i*4+1] = s.G
		img.Pix[i*4+2] = s.B
		img.Pix[i*4+3] = 0xff
	}
	return img
}

// limitSamples returns at most limit samples picked at an even stride.
func limitSamples(samples []RGB, limit int) []RGB {
	if limit <= 0 || len(samples) <= limit {
		return samples
	}
	step := (len(samples) + limit - 1) / limit
	out := make([]RGB, 0, limit)
	for i := 0; i < len(samples); i += step {
		out = append(out, samples[i])
	}
	return out
}

// rankByPopulation assigns every sample to its nearest palette colour and
// returns the palette ordered by descending population, with weights.
func rankByPopulation(pal color.Palette, samples []RGB) *Palette {
	counts := make([]int, len(pal))
	for _, s := range samples {
		counts[pal.Index(s)]++
	}
	return rankedPalette(pal, counts, len(samples))
}

// rankedPalette orders colours by count, keeping the original order for ties.
func rankedPalette(pal color.Palette, counts []int, total int) *Palette {
	order := make([]int, len(pal))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return counts[b] - counts[a]
	})

	colors := make([]RGB, len(pal))
	weights := make([]float64, len(pal))
	for i, idx := range order {
		colors[i] = ToRGB(pal[idx])
		if total > 0 {
			weights[i] = float64(counts[idx]) / float64(total)
		}
	}
	return NewPaletteWithWeights(colors, weights)
}

// distinctColours counts the unique colours in samples.
func distinctColours(samples []RGB) int {
	seen := make(map[RGB]struct{}, 256)
	for _, s := range samples {
		seen[s] = struct{}{}
	}
	return len(seen)
}
