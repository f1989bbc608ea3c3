package colour

import (
	"crypto/sha256"
	"encoding/binary"
	"image/color"
	"math"
	"math/rand"
)

// KMeans implements colour clustering using k-means++.
//
// The random source is seeded from a hash of the samples, so the same input
// always produces the same palette.
type KMeans struct {
	maxIterations int
	convergence   float64
	maxSamples    int
}

// NewKMeans creates a KMeans clusterer with default settings.
func NewKMeans() *KMeans {
	return &KMeans{
		maxIterations: 20,
		convergence:   2.0,
		maxSamples:    5000,
	}
}

// point3D represents a point in 3D RGB color space.
type point3D struct {
	R, G, B float64
}

// distance calculates the Euclidean distance between two points in RGB space.
func (p point3D) distance(other point3D) float64 {
	dr := p.R - other.R
	dg := p.G - other.G
	db := p.B - other.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func (p point3D) rgb() RGB {
	return RGB{
		R: uint8(math.Round(math.Max(0, math.Min(255, p.R)))),
		G: uint8(math.Round(math.Max(0, math.Min(255, p.G)))),
		B: uint8(math.Round(math.Max(0, math.Min(255, p.B)))),
	}
}

// Cluster implements Clusterer.
func (e *KMeans) Cluster(samples []RGB, count int) (*Palette, error) {
	if len(samples) == 0 || count < 2 {
		return nil, nil
	}

	samples = limitSamples(samples, e.maxSamples)
	if distinctColours(samples) < count {
		return nil, nil
	}

	rng := rand.New(rand.NewSource(contentSeed(samples))) // #nosec G404 -- clustering, not security

	points := make([]point3D, len(samples))
	for i, s := range samples {
		points[i] = point3D{R: float64(s.R), G: float64(s.G), B: float64(s.B)}
	}

	centroids, assignments := e.kmeans(rng, points, count)

	counts := make([]int, count)
	for _, a := range assignments {
		counts[a]++
	}

	pal := make(color.Palette, count)
	for i, c := range centroids {
		pal[i] = c.rgb()
	}
	return rankedPalette(pal, counts, len(points)), nil
}

// contentSeed derives a deterministic seed from the samples.
func contentSeed(samples []RGB) int64 {
	hasher := sha256.New()
	buf := make([]byte, 3)
	for _, s := range samples {
		buf[0], buf[1], buf[2] = s.R, s.G, s.B
		hasher.Write(buf)
	}
	hash := hasher.Sum(nil)
	return int64(binary.LittleEndian.Uint64(hash[:8]))
}

// kmeans performs k-means clustering and returns the centroids with the
// final assignment of every point.
func (e *KMeans) kmeans(rng *rand.Rand, points []point3D, k int) ([]point3D, []int) {
	centroids := e.initializeCentroids(rng, points, k)

	assignments := make([]int, len(points))
	for i, point := range points {
		assignments[i] = e.findNearestCentroid(point, centroids)
	}

	for iter := 0; iter < e.maxIterations; iter++ {
		newCentroids := e.recalculateCentroids(rng, points, assignments, k)

		totalMovement := 0.0
		for i := range centroids {
			totalMovement += centroids[i].distance(newCentroids[i])
		}
		centroids = newCentroids

		changed := 0
		for i, point := range points {
			nearest := e.findNearestCentroid(point, centroids)
			if assignments[i] != nearest {
				assignments[i] = nearest
				changed++
			}
		}

		// Converged when fewer than 1% of points moved or centroids barely shifted.
		if float64(changed)/float64(len(points)) < 0.01 || totalMovement/float64(k) < e.convergence {
			break
		}
	}

	return centroids, assignments
}

// initializeCentroids picks starting centroids with k-means++.
func (e *KMeans) initializeCentroids(rng *rand.Rand, points []point3D, k int) []point3D {
	centroids := make([]point3D, 0, k)
	centroids = append(centroids, points[rng.Intn(len(points))])

	distances := make([]float64, len(points))
	for len(centroids) < k {
		totalDistance := 0.0
		for i, point := range points {
			minDist := math.MaxFloat64
			for _, centroid := range centroids {
				minDist = min(minDist, point.distance(centroid))
			}
			distances[i] = minDist * minDist
			totalDistance += distances[i]
		}

		if totalDistance == 0 {
			last := centroids[len(centroids)-1]
			centroids = append(centroids, point3D{R: last.R + 0.1, G: last.G + 0.1, B: last.B + 0.1})
			continue
		}

		target := rng.Float64() * totalDistance
		cumulative := 0.0
		chosen := len(points) - 1
		for i, dist := range distances {
			cumulative += dist
			if cumulative > target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, points[chosen])
	}

	return centroids
}

// findNearestCentroid finds the index of the nearest centroid to a point.
func (e *KMeans) findNearestCentroid(point point3D, centroids []point3D) int {
	minDist := math.MaxFloat64
	nearest := 0
	for i, centroid := range centroids {
		if dist := point.distance(centroid); dist < minDist {
			minDist = dist
			nearest = i
		}
	}
	return nearest
}

// recalculateCentroids moves every centroid to the mean of its points.
// Empty clusters are reseeded from a random point.
func (e *KMeans) recalculateCentroids(rng *rand.Rand, points []point3D, assignments []int, k int) []point3D {
	sums := make([]point3D, k)
	counts := make([]int, k)

	for i, point := range points {
		cluster := assignments[i]
		sums[cluster].R += point.R
		sums[cluster].G += point.G
		sums[cluster].B += point.B
		counts[cluster]++
	}

	centroids := make([]point3D, k)
	for i := 0; i < k; i++ {
		if counts[i] > 0 {
			centroids[i] = point3D{
				R: sums[i].R / float64(counts[i]),
				G: sums[i].G / float64(counts[i]),
				B: sums[i].B / float64(counts[i]),
			}
		} else {
			centroids[i] = points[rng.Intn(len(points))]
		}
	}

	return centroids
}
