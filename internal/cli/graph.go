package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenesync/pkg/replay"
)

// graphOptions holds flags for the graph command.
type graphOptions struct {
	cacheFlags
	output   string
	format   string
	detailed bool
	frames   int
	scale    float64
}

// graphCommand creates the graph command for exporting the mounted tree.
func (c *CLI) graphCommand() *cobra.Command {
	var opts graphOptions

	cmd := &cobra.Command{
		Use:   "graph <scene.toml>",
		Short: "Export the mounted node tree and its dataset wiring",
		Long: `Replay a scene and export the resulting node tree as a graph.

Parent-child edges follow the scene description. Dashed edges connect each
UseDataSet to the RegisterDataSet publishing its ID. Visible representations
are green and hidden ones grey.

The format defaults to the output file's extension, or DOT on stdout.`,
		Example: `  # DOT on stdout
  scenesync graph examples/scenes/ct_two_views.toml

  # Detailed SVG of the state after the second frame
  scenesync graph examples/scenes/ct_two_views.toml -o tree.svg --detailed --frames 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGraph(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.cacheFlags.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: dot, svg, png, pdf")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label nodes with their state")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 0, "replay at most n frames before exporting (0 = all)")
	cmd.Flags().Float64Var(&opts.scale, "scale", replay.DefaultPNGScale, "PNG scale factor")

	return cmd
}

// graphFormat picks the export format from the flag or the output path.
func graphFormat(format, output string) (string, error) {
	if format == "" {
		format = replay.FormatDOT
		if ext := strings.TrimPrefix(filepath.Ext(output), "."); ext != "" {
			format = strings.ToLower(ext)
		}
	}
	if err := replay.ValidateFormat(format); err != nil {
		return "", err
	}
	return format, nil
}

func (c *CLI) runGraph(ctx context.Context, w io.Writer, path string, opts graphOptions) error {
	format, err := graphFormat(opts.format, opts.output)
	if err != nil {
		return err
	}
	if format != replay.FormatDOT && opts.output == "" {
		return fmt.Errorf("%s output needs --output", format)
	}

	runner, cc, err := c.newRunner(ctx, opts.cacheFlags)
	if err != nil {
		return err
	}
	defer cc.Close()

	var spinner *Spinner
	if opts.output != "" {
		spinner = newSpinner(ctx, os.Stderr, "Rendering "+format+"...")
		spinner.Start()
	}
	data, res, err := runner.Graph(ctx,
		replay.Options{Path: path, Frames: opts.frames, Refresh: opts.refresh, Logger: c.Logger},
		replay.GraphOptions{Format: format, Detailed: opts.detailed, Scale: opts.scale})
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("graph %s: %w", path, err)
	}

	if opts.output == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(opts.output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", opts.output, err)
	}
	printSuccess(w, "Exported %s after %d frames", format, res.Stats.Frames)
	if res.CacheInfo.GraphHit {
		printDetail(w, "%s", iconCached)
	}
	printFile(w, opts.output)
	return nil
}
