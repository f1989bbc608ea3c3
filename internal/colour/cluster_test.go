package colour

import (
	"errors"
	"strings"
	"testing"
)

// weightedSamples returns 70 red, 20 blue and 10 green samples, interleaved.
func weightedSamples() []RGB {
	var samples []RGB
	for i := 0; i < 100; i++ {
		switch {
		case i%10 < 7:
			samples = append(samples, RGB{R: 255})
		case i%10 < 9:
			samples = append(samples, RGB{B: 255})
		default:
			samples = append(samples, RGB{G: 255})
		}
	}
	return samples
}

func builtinClusterers(t *testing.T) map[Algorithm]Clusterer {
	t.Helper()
	out := make(map[Algorithm]Clusterer)
	for _, alg := range ValidAlgorithms() {
		c, err := NewClusterer(alg)
		if err != nil {
			t.Fatalf("NewClusterer(%s) error = %v", alg, err)
		}
		out[alg] = c
	}
	return out
}

func TestMedianCutExactCount(t *testing.T) {
	samples := Sample(hueStripes(400, 10), 10, DefaultConfig().Filters())
	mc := NewMedianCut()

	for count := MinColorCount; count <= MaxColorCount; count++ {
		palette, err := mc.Cluster(samples, count)
		if err != nil {
			t.Fatalf("Cluster(%d) error = %v", count, err)
		}
		if palette.Len() != count {
			t.Errorf("Cluster(%d) returned %d colours", count, palette.Len())
		}
		total := 0.0
		for _, w := range palette.Weights {
			total += w
		}
		if total < 0.999 || total > 1.001 {
			t.Errorf("Cluster(%d) weights sum to %f", count, total)
		}
	}
}

func TestMedianCutDominantFirst(t *testing.T) {
	palette, err := NewMedianCut().Cluster(weightedSamples(), 2)
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if palette.Len() != 2 {
		t.Fatalf("Expected 2 colours, got %d", palette.Len())
	}
	if palette.Colors[0] != (RGB{R: 255}) {
		t.Errorf("Expected red first, got %v", palette.Colors[0])
	}
	if palette.Weights[0] != 0.7 {
		t.Errorf("Expected weight 0.7, got %f", palette.Weights[0])
	}
}

func TestMedianCutBoxMeans(t *testing.T) {
	// Box colours are exact sample means, not cell centres.
	samples := []RGB{{R: 200}, {R: 202}, {B: 100}, {B: 104}}
	palette, err := NewMedianCut().Cluster(samples, 2)
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if palette.Len() != 2 {
		t.Fatalf("Expected 2 colours, got %d", palette.Len())
	}
	got := map[RGB]bool{palette.Colors[0]: true, palette.Colors[1]: true}
	if !got[RGB{R: 201}] || !got[RGB{B: 102}] {
		t.Errorf("unexpected colours %v", palette.Colors)
	}
}

func TestClusterersCannotPartition(t *testing.T) {
	solid := make([]RGB, 50)
	for i := range solid {
		solid[i] = RGB{R: 12, G: 34, B: 56}
	}

	for alg, c := range builtinClusterers(t) {
		t.Run(string(alg), func(t *testing.T) {
			palette, err := c.Cluster(solid, 5)
			if err != nil {
				t.Fatalf("Cluster() error = %v", err)
			}
			if palette != nil {
				t.Errorf("Expected nil palette for a single colour, got %d colours", palette.Len())
			}

			palette, err = c.Cluster(weightedSamples(), 10)
			if err != nil {
				t.Fatalf("Cluster() error = %v", err)
			}
			if palette != nil {
				t.Errorf("Expected nil palette for three colours, got %d colours", palette.Len())
			}
		})
	}
}

func TestClusterersContract(t *testing.T) {
	samples := Sample(hueStripes(400, 10), 1, DefaultConfig().Filters())

	for alg, c := range builtinClusterers(t) {
		t.Run(string(alg), func(t *testing.T) {
			for _, count := range []int{2, 5, 10} {
				first, err := c.Cluster(samples, count)
				if err != nil {
					t.Fatalf("Cluster(%d) error = %v", count, err)
				}
				if first == nil {
					continue
				}
				if first.Len() != count {
					t.Errorf("Cluster(%d) returned %d colours", count, first.Len())
				}

				// Only the in-tree clusterers guarantee identical output across runs.
				if alg == AlgorithmProminent || alg == AlgorithmQuantize {
					continue
				}
				second, err := c.Cluster(samples, count)
				if err != nil {
					t.Fatalf("Cluster(%d) error = %v", count, err)
				}
				samePalette(t, first, second)
			}
		})
	}
}

func TestKMeansFindsClusters(t *testing.T) {
	palette, err := NewKMeans().Cluster(weightedSamples(), 3)
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if palette.Len() != 3 {
		t.Fatalf("Expected 3 colours, got %d", palette.Len())
	}
	if palette.Colors[0] != (RGB{R: 255}) {
		t.Errorf("Expected red first, got %v", palette.Colors[0])
	}
}

func TestNewClusterer(t *testing.T) {
	if c, err := NewClusterer(""); err != nil || c == nil {
		t.Errorf("NewClusterer(\"\") = %v, %v; want median cut", c, err)
	}
	if _, ok := mustClusterer(t, "").(*MedianCut); !ok {
		t.Error("Expected empty algorithm to select median cut")
	}

	_, err := NewClusterer("octree")
	if err == nil || !strings.Contains(err.Error(), "unknown algorithm") {
		t.Errorf("Expected unknown algorithm error, got %v", err)
	}

	_, err = NewClusterer("plugin:/opt/cluster")
	if err == nil || !strings.Contains(err.Error(), "plugin executor") {
		t.Errorf("Expected plugin error, got %v", err)
	}
}

func TestAlgorithmIsPlugin(t *testing.T) {
	tests := []struct {
		alg      Algorithm
		wantPath string
		wantOK   bool
	}{
		{alg: "plugin:/usr/bin/octree", wantPath: "/usr/bin/octree", wantOK: true},
		{alg: "plugin:", wantOK: false},
		{alg: AlgorithmKMeans, wantOK: false},
	}

	for _, tt := range tests {
		path, ok := tt.alg.IsPlugin()
		if ok != tt.wantOK || (ok && path != tt.wantPath) {
			t.Errorf("IsPlugin(%q) = %q, %v", tt.alg, path, ok)
		}
	}

	if IsValidAlgorithm("plugin:/x") {
		t.Error("plugin algorithms are not built-in")
	}
	if !IsValidAlgorithm(AlgorithmQuantize) {
		t.Error("quantize should be valid")
	}
}

func TestLimitSamples(t *testing.T) {
	samples := make([]RGB, 10)
	if got := limitSamples(samples, 20); len(got) != 10 {
		t.Errorf("Expected 10 samples, got %d", len(got))
	}
	if got := limitSamples(samples, 3); len(got) > 3 || len(got) == 0 {
		t.Errorf("Expected at most 3 samples, got %d", len(got))
	}
}

func mustClusterer(t *testing.T, alg Algorithm) Clusterer {
	t.Helper()
	c, err := NewClusterer(alg)
	if err != nil {
		t.Fatalf("NewClusterer(%s) error = %v", alg, err)
	}
	return c
}

func TestTooFewColours(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: errors.New("Failed, k larger than len(allColors): 5 vs 3\n"), want: true},
		{err: errors.New("Failed, no non-alpha pixels found (either fully transparent image, or the ColorBackgroundMask removed all pixels)"), want: true},
		{err: errors.New("image: unknown format"), want: false},
	}

	for _, tt := range tests {
		if got := tooFewColours(tt.err); got != tt.want {
			t.Errorf("tooFewColours(%q) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
