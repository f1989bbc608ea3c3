package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/term"

	"github.com/jmylchreest/swatch/internal/colour"
)

// Format selects how colours are printed.
type Format string

const (
	FormatHex   Format = "hex"
	FormatRGB   Format = "rgb"
	FormatHSL   Format = "hsl"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ValidFormats returns the supported output formats.
func ValidFormats() []Format {
	return []Format{FormatHex, FormatRGB, FormatHSL, FormatJSON, FormatTable}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range ValidFormats() {
		if f == valid {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q (valid formats: %v)", s, ValidFormats())
}

// FormatColour renders a single colour as text in f. JSON and table fall
// back to hex.
func FormatColour(c colour.RGB, f Format) string {
	switch f {
	case FormatRGB:
		return c.String()
	case FormatHSL:
		return hsl(c)
	default:
		return c.Hex()
	}
}

func hsl(c colour.RGB) string {
	h, s, l := toColorful(c).Hsl()
	return fmt.Sprintf("hsl(%.0f, %.0f%%, %.0f%%)", h, s*100, l*100)
}

func toColorful(c colour.RGB) colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// result is the extraction outcome for one input.
type result struct {
	Source  string
	Palette *colour.Palette
}

// sourceJSON is the JSON shape of one input's palette.
type sourceJSON struct {
	Source string             `json:"source"`
	Count  int                `json:"count"`
	Colors []colour.ColorJSON `json:"colors,omitempty"`
	Color  *colour.ColorJSON  `json:"color,omitempty"`
}

// printer writes results in the chosen format.
type printer struct {
	out      io.Writer
	format   Format
	preview  bool
	dominant bool
}

func newPrinter(out io.Writer, format Format, preview, dominant bool) *printer {
	return &printer{
		out:      out,
		format:   format,
		preview:  preview && isTerminal(out),
		dominant: dominant,
	}
}

// Print writes all results. Inputs without a colour print nothing in text
// formats and null colours in JSON.
func (p *printer) Print(results []result) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(results)
	case FormatTable:
		return p.printTable(results)
	}

	for _, r := range results {
		if r.Palette == nil {
			continue
		}
		if len(results) > 1 {
			if _, err := fmt.Fprintf(p.out, "%s:\n", r.Source); err != nil {
				return err
			}
		}
		for _, c := range r.Palette.Colors {
			line := FormatColour(c, p.format)
			if p.preview {
				line = swatch(c) + " " + line
			}
			if _, err := fmt.Fprintln(p.out, line); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *printer) printJSON(results []result) error {
	out := make([]sourceJSON, len(results))
	for i, r := range results {
		out[i] = sourceJSON{Source: r.Source}
		if r.Palette.Len() == 0 {
			continue
		}
		pj := r.Palette.JSON()
		if p.dominant {
			out[i].Count = 1
			out[i].Color = &pj.Colors[0]
			continue
		}
		out[i].Count = pj.Count
		out[i].Colors = pj.Colors
	}

	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	if len(out) == 1 {
		return enc.Encode(out[0])
	}
	return enc.Encode(out)
}

func (p *printer) printTable(results []result) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SOURCE", "#", "HEX", "RGB", "HSL", "WEIGHT")

	var swatches []colour.RGB
	for _, r := range results {
		if r.Palette == nil {
			continue
		}
		for i, c := range r.Palette.Colors {
			weight := "-"
			if len(r.Palette.Weights) == r.Palette.Len() {
				weight = strconv.FormatFloat(r.Palette.Weights[i], 'f', 3, 64)
			}
			t.Row(r.Source, strconv.Itoa(i+1), c.Hex(), c.String(), hsl(c), weight)
			swatches = append(swatches, c)
		}
	}

	if p.preview {
		t.StyleFunc(func(row, col int) lipgloss.Style {
			if row < 0 || col != 2 || row >= len(swatches) {
				return lipgloss.NewStyle()
			}
			c := swatches[row]
			return lipgloss.NewStyle().
				Background(lipgloss.Color(c.Hex())).
				Foreground(contrastText(c))
		})
	}

	_, err := fmt.Fprintln(p.out, t.Render())
	return err
}

// swatch renders a block of colour c.
func swatch(c colour.RGB) string {
	return lipgloss.NewStyle().Background(lipgloss.Color(c.Hex())).Render("    ")
}

// contrastText picks black or white text for a background of c.
func contrastText(c colour.RGB) lipgloss.Color {
	_, _, l := toColorful(c).Hcl()
	if l > 0.6 {
		return lipgloss.Color("#000000")
	}
	return lipgloss.Color("#ffffff")
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
