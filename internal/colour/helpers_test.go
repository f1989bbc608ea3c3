package colour

import (
	"math"
	"testing"
)

// solidBuffer returns a buffer of n identical pixels.
func solidBuffer(n int, r, g, b, a uint8) PixelBuffer {
	pix := make([]byte, n*4)
	for i := 0; i < n; i++ {
		pix[i*4] = r
		pix[i*4+1] = g
		pix[i*4+2] = b
		pix[i*4+3] = a
	}
	return NewPixelBuffer(pix)
}

// hueStripes returns a width x height buffer of fully saturated vertical
// hue stripes covering the whole colour wheel.
func hueStripes(width, height int) PixelBuffer {
	pix := make([]byte, 0, width*height*4)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b := hueRGB(360 * float64(x) / float64(width))
			pix = append(pix, r, g, b, 255)
		}
	}
	return NewPixelBuffer(pix)
}

// hueRGB converts a hue in degrees to a fully saturated, full value colour.
func hueRGB(h float64) (uint8, uint8, uint8) {
	x := 1 - math.Abs(math.Mod(h/60, 2)-1)
	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = 1, x, 0
	case h < 120:
		r, g, b = x, 1, 0
	case h < 180:
		r, g, b = 0, 1, x
	case h < 240:
		r, g, b = 0, x, 1
	case h < 300:
		r, g, b = x, 0, 1
	default:
		r, g, b = 1, 0, x
	}
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}

// closeTo reports whether every channel of got is within tolerance of want.
func closeTo(got, want RGB, tolerance int) bool {
	diff := func(a, b uint8) int {
		d := int(a) - int(b)
		if d < 0 {
			return -d
		}
		return d
	}
	return diff(got.R, want.R) <= tolerance && diff(got.G, want.G) <= tolerance && diff(got.B, want.B) <= tolerance
}

func samePalette(t *testing.T, a, b *Palette) {
	t.Helper()
	if a.Len() != b.Len() {
		t.Fatalf("palette lengths differ: %d vs %d", a.Len(), b.Len())
	}
	for i := range a.Colors {
		if a.Colors[i] != b.Colors[i] {
			t.Fatalf("colour %d differs: %v vs %v", i, a.Colors[i], b.Colors[i])
		}
	}
}
