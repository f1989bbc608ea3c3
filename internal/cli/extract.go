package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/swatch/internal/colour"
	"github.com/jmylchreest/swatch/internal/extract"
	"github.com/jmylchreest/swatch/internal/image"
)

// stdinInput reads the image from standard input.
const stdinInput = "-"

func newPaletteCmd(a *app) *cobra.Command {
	flags := newExtractFlags(true)

	cmd := &cobra.Command{
		Use:   "palette <image|dir|url|->...",
		Short: "Extract a colour palette",
		Long: `Extract a palette of 2 to 20 representative colours, most dominant first.

When clustering cannot produce the requested number of colours, for example
for a single-colour image, the palette holds one colour: the average of the
sampled pixels.

Examples:
  swatch palette wallpaper.jpg
  swatch palette -c 6 -q 1 --format json wallpaper.jpg
  swatch palette --preview -a kmeans ~/Pictures/wallpapers
  curl -s https://example.com/a.png | swatch palette -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, a, flags, args, false)
		},
	}
	flags.register(cmd)
	return cmd
}

func newColorCmd(a *app) *cobra.Command {
	flags := newExtractFlags(false)

	cmd := &cobra.Command{
		Use:     "color <image|dir|url|->...",
		Aliases: []string{"colour", "dominant"},
		Short:   "Extract the dominant colour",
		Long: `Extract the single most dominant colour: the first colour of a five colour
palette.

Examples:
  swatch color wallpaper.jpg
  swatch color --format hsl https://example.com/photo.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, a, flags, args, true)
		},
	}
	flags.register(cmd)
	return cmd
}

// runExtract extracts every input and prints the results. Options are
// validated before any input is read.
func runExtract(cmd *cobra.Command, a *app, flags *extractFlags, args []string, dominant bool) error {
	opts := flags.options(a)
	if dominant {
		opts = colour.DominantOptions(opts)
	}
	if _, err := colour.Normalize(opts); err != nil {
		return err
	}

	format, err := flags.outputFormat(a)
	if err != nil {
		return err
	}

	inputs, err := image.ExpandInputs(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no images found in %v", args)
	}

	ctx := contextOf(cmd)

	service, closer, err := flags.service(ctx, a)
	if err != nil {
		return err
	}
	defer closer.Close()

	results := make([]result, 0, len(inputs))
	for _, in := range inputs {
		palette, err := extractOne(ctx, service, cmd.InOrStdin(), in, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		if palette == nil {
			a.logger.Warn("no colour found", "source", in)
		}
		if dominant && palette.Len() > 1 {
			palette = colour.NewPalette(palette.Colors[:1])
		}
		results = append(results, result{Source: in, Palette: palette})
	}

	return writeResults(cmd, flags.output, func(w io.Writer) error {
		return newPrinter(w, format, flags.preview, dominant).Print(results)
	})
}

func extractOne(ctx context.Context, service *extract.Service, stdin io.Reader, in string, opts colour.Options) (*colour.Palette, error) {
	var src any = in
	if in == stdinInput {
		src = stdin
	}
	return service.Palette(ctx, src, opts)
}

// writeResults writes to path when set and to the command output otherwise.
func writeResults(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}

	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
