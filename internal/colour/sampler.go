package colour

// PixelBuffer is a flat RGBA byte sequence, four bytes per pixel.
type PixelBuffer struct {
	Pix        []byte
	PixelCount int
}

// NewPixelBuffer wraps pix, deriving the pixel count from its length.
func NewPixelBuffer(pix []byte) PixelBuffer {
	return PixelBuffer{Pix: pix, PixelCount: len(pix) / 4}
}

// FilterSet holds the per-pixel rejection criteria applied while sampling.
type FilterSet struct {
	IgnoreWhite    bool
	WhiteThreshold int
	AlphaThreshold int
	MinSaturation  float64
}

// Sample walks buf with the given stride and returns the colours of the
// pixels that pass every filter, in scan order.
//
// Filters short-circuit in a fixed order: transparency, whiteness, then
// saturation.
func Sample(buf PixelBuffer, quality int, f FilterSet) []RGB {
	if quality < 1 {
		quality = 1
	}
	count := min(buf.PixelCount, len(buf.Pix)/4)

	samples := make([]RGB, 0, count/quality+1)
	for i := 0; i < count; i += quality {
		offset := i * 4
		r := buf.Pix[offset]
		g := buf.Pix[offset+1]
		b := buf.Pix[offset+2]
		a := buf.Pix[offset+3]

		if int(a) < f.AlphaThreshold {
			continue
		}

		if f.IgnoreWhite && int(r) > f.WhiteThreshold && int(g) > f.WhiteThreshold && int(b) > f.WhiteThreshold {
			continue
		}

		if f.MinSaturation > 0 {
			hi := max(r, g, b)
			lo := min(r, g, b)
			if hi == 0 || float64(hi-lo)/float64(hi) < f.MinSaturation {
				continue
			}
		}

		samples = append(samples, RGB{R: r, G: g, B: b})
	}
	return samples
}
