// Package colour provides palette and dominant colour extraction from raw pixel data.
package colour

import (
	"encoding/json"
	"fmt"
	"image/color"
)

// RGB represents an opaque colour with 8-bit channels.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBA implements color.Color. RGB is always fully opaque.
func (rgb RGB) RGBA() (r, g, b, a uint32) {
	r = uint32(rgb.R)
	r |= r << 8
	g = uint32(rgb.G)
	g |= g << 8
	b = uint32(rgb.B)
	b |= b << 8
	return r, g, b, 0xffff
}

// String returns the RGB color as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB color as a hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// Triplet returns the channels as an [r, g, b] array.
func (rgb RGB) Triplet() [3]int {
	return [3]int{int(rgb.R), int(rgb.G), int(rgb.B)}
}

// ToRGB converts a color.Color to RGB, discarding alpha.
func ToRGB(c color.Color) RGB {
	nc := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: nc.R, G: nc.G, B: nc.B}
}

// Palette is an ordered set of representative colours. The first colour is
// the dominant one.
type Palette struct {
	Colors []RGB

	// Weights holds the relative population of each colour, summing to 1.
	// Nil when the producer did not report populations.
	Weights []float64
}

// NewPalette creates a new Palette with the given colors.
func NewPalette(colors []RGB) *Palette {
	return &Palette{
		Colors: colors,
	}
}

// NewPaletteWithWeights creates a Palette whose colours carry relative weights.
func NewPaletteWithWeights(colors []RGB, weights []float64) *Palette {
	return &Palette{
		Colors:  colors,
		Weights: weights,
	}
}

// Len returns the number of colors in the palette.
func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Colors)
}

// Dominant returns the first colour of the palette.
func (p *Palette) Dominant() (RGB, bool) {
	if p.Len() == 0 {
		return RGB{}, false
	}
	return p.Colors[0], true
}

// ToHex converts the palette colors to hex strings.
func (p *Palette) ToHex() []string {
	hexColors := make([]string, len(p.Colors))
	for i, c := range p.Colors {
		hexColors[i] = c.Hex()
	}
	return hexColors
}

// Triplets returns the palette as [r, g, b] arrays.
func (p *Palette) Triplets() [][3]int {
	out := make([][3]int, len(p.Colors))
	for i, c := range p.Colors {
		out[i] = c.Triplet()
	}
	return out
}

// ColorJSON represents a color in JSON output format.
type ColorJSON struct {
	Hex    string   `json:"hex"`
	RGB    RGB      `json:"rgb"`
	Weight *float64 `json:"weight,omitempty"`
}

// PaletteJSON represents the palette in JSON format.
type PaletteJSON struct {
	Count  int         `json:"count"`
	Colors []ColorJSON `json:"colors"`
}

// JSON returns the JSON representation of the palette.
func (p *Palette) JSON() PaletteJSON {
	colors := make([]ColorJSON, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = ColorJSON{
			Hex: c.Hex(),
			RGB: c,
		}
		if len(p.Weights) == len(p.Colors) {
			w := p.Weights[i]
			colors[i].Weight = &w
		}
	}
	return PaletteJSON{
		Count:  len(p.Colors),
		Colors: colors,
	}
}

// ToJSON converts the palette to indented JSON.
func (p *Palette) ToJSON() ([]byte, error) {
	return json.MarshalIndent(p.JSON(), "", "  ")
}

// String returns a human-readable string representation of the palette.
func (p *Palette) String() string {
	if p.Len() == 0 {
		return "Empty palette"
	}

	result := fmt.Sprintf("Palette with %d colors:\n", len(p.Colors))
	for i, c := range p.Colors {
		result += fmt.Sprintf("  %2d: %s (%s)\n", i+1, c.Hex(), c.String())
	}
	return result
}

// Get returns the color at the specified index.
func (p *Palette) Get(index int) (RGB, error) {
	if index < 0 || index >= p.Len() {
		return RGB{}, fmt.Errorf("index out of bounds: %d (palette has %d colors)", index, p.Len())
	}
	return p.Colors[index], nil
}

// All returns an iterator over all colors in the palette.
func (p *Palette) All() func(func(int, RGB) bool) {
	return func(yield func(int, RGB) bool) {
		for i, c := range p.Colors {
			if !yield(i, c) {
				return
			}
		}
	}
}
