package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ironsheep/background-remover/internal/bgremove"
	"github.com/ironsheep/background-remover/internal/imaging"
	"github.com/ironsheep/background-remover/internal/pipeline"
)

type removeFlags struct {
	input  string
	output string

	method           string
	threshold        float64
	replaceWith      string
	replacementColor string
	reference        string
	referenceColor   string
	softEdge         float64
}

func newRemoveCmd() *cobra.Command {
	var f removeFlags

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the background of one image",
		Long: `Remove the background of one image and write the result as PNG.

The background colour is taken from the top-left pixel (or the mean of the
four corners with --reference corners) unless --reference-color is given.
Pixels within --threshold (0-100) of it are replaced.

The output defaults to <name>-no-bg.png next to the input. Use "-" for
stdin or stdout.`,
		Example: `  bgremover remove -i shoe.jpg
  bgremover remove -i shoe.jpg -o out.png --threshold 45
  bgremover remove -i logo.png --replace color --color "#ffffff"
  cat in.png | bgremover remove -i - -o - > out.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRemove(cmd, f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.input, "input", "i", "", "input image (PNG, JPEG, GIF, WebP, BMP) or - for stdin")
	flags.StringVarP(&f.output, "output", "o", "", "output PNG path or - for stdout")
	flags.StringVar(&f.method, "method", "", "removal method: color (ai and manual are coming soon)")
	flags.Float64VarP(&f.threshold, "threshold", "t", bgremove.DefaultThreshold, "color threshold 0-100")
	flags.StringVar(&f.replaceWith, "replace", "", "replace background with: transparent or color")
	flags.StringVar(&f.replacementColor, "color", "", "replacement color for --replace color")
	flags.StringVar(&f.reference, "reference", "", "reference sampling: top-left or corners")
	flags.StringVar(&f.referenceColor, "reference-color", "", "explicit background color")
	flags.Float64Var(&f.softEdge, "soft-edge", 0, "feather radius in pixels (0 = hard edges)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

// overrides returns only what was set on the command line, so config file
// defaults apply to everything else.
func (f removeFlags) overrides(cmd *cobra.Command) bgremove.Overrides {
	ov := bgremove.Overrides{
		Method:           f.method,
		ReplaceWith:      f.replaceWith,
		ReplacementColor: f.replacementColor,
		Reference:        f.reference,
		ReferenceColor:   f.referenceColor,
	}
	if cmd.Flags().Changed("threshold") {
		t := f.threshold
		ov.ColorThreshold = &t
	}
	if cmd.Flags().Changed("soft-edge") {
		r := f.softEdge
		ov.SoftEdge = &r
	}
	return ov
}

func runRemove(cmd *cobra.Command, f removeFlags) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)
	prog := newProgress(logger)

	opts, err := cfg.Removal.Apply(f.overrides(cmd))
	if err != nil {
		return err
	}
	if _, err := opts.Validate(); err != nil {
		return err
	}

	data, name, err := readInput(cmd.InOrStdin(), f.input, cfg.MaxFileSize())
	if err != nil {
		return err
	}

	out, err := pipeline.Run(ctx, data, name, pipeline.Options{
		Removal:     opts,
		MaxFileSize: cfg.MaxFileSize(),
		Remover:     cfg.NewRemover(logger),
	})
	if err != nil {
		return err
	}

	logger.Debug("removed background",
		"reference", out.Reference.Hex(),
		"background_pixels", out.BackgroundPixels,
		"size", out.Size)

	if f.output == "-" {
		_, err := cmd.OutOrStdout().Write(out.Data)
		return err
	}

	dest := outputPath(f.input, f.output, out.Filename)
	if err := pipeline.WriteFile(dest, out.Data); err != nil {
		return err
	}

	prog.done(fmt.Sprintf("Wrote %s (%dx%d)", dest, out.Width, out.Height))
	return nil
}

func readInput(stdin io.Reader, input string, maxBytes int64) ([]byte, string, error) {
	if input == "-" {
		if maxBytes > 0 {
			// One byte past the limit is enough for the pipeline to reject it.
			stdin = io.LimitReader(stdin, maxBytes+1)
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, "image", nil
	}
	data, err := pipeline.ReadFile(input, maxBytes)
	if err != nil {
		return nil, "", err
	}
	return data, input, nil
}

// outputPath resolves where the result goes: an explicit file, a file inside
// an explicit directory, or <name>-no-bg.png next to the input.
func outputPath(input, output, filename string) string {
	if output != "" {
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			return filepath.Join(output, filename)
		}
		return output
	}
	if input == "-" {
		return filename
	}
	return filepath.Join(filepath.Dir(input), imaging.OutputFilename(input, pipeline.OutputSuffix, "png"))
}
