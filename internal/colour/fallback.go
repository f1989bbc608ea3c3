package colour

import "math"

// Average returns the mean colour of samples with each channel rounded to
// the nearest integer, or nil when there are no samples.
func Average(samples []RGB) *RGB {
	if len(samples) == 0 {
		return nil
	}

	var rTotal, gTotal, bTotal int
	for _, s := range samples {
		rTotal += int(s.R)
		gTotal += int(s.G)
		bTotal += int(s.B)
	}

	n := float64(len(samples))
	return &RGB{
		R: uint8(math.Round(float64(rTotal) / n)),
		G: uint8(math.Round(float64(gTotal) / n)),
		B: uint8(math.Round(float64(bTotal) / n)),
	}
}
