package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/scenesync/pkg/replay"
)

// runOptions holds flags for the run command.
type runOptions struct {
	cacheFlags
	json   bool
	frames int
}

// runCommand creates the run command for replaying a scene file.
func (c *CLI) runCommand() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <scene.toml>",
		Short: "Replay a scene and print the state after every frame",
		Long: `Replay a scene file on the headless engine.

The scene is mounted, then each frame is applied in order. After every step
the state of each representation is printed, together with the errors its
nodes reported. Results are cached by scene content.`,
		Example: `  # Replay every frame
  scenesync run examples/scenes/ct_two_views.toml

  # Only the first two frames, as JSON
  scenesync run examples/scenes/ct_two_views.toml --frames 2 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	opts.cacheFlags.register(cmd)
	cmd.Flags().BoolVar(&opts.json, "json", false, "print the replay as JSON")
	cmd.Flags().IntVarP(&opts.frames, "frames", "n", 0, "replay at most n frames (0 = all)")

	return cmd
}

func (c *CLI) runReplay(ctx context.Context, w io.Writer, path string, opts runOptions) error {
	runner, cc, err := c.newRunner(ctx, opts.cacheFlags)
	if err != nil {
		return err
	}
	defer cc.Close()

	prog := newProgress(c.Logger)
	res, err := runner.Execute(ctx, replay.Options{
		Path:    path,
		Frames:  opts.frames,
		Refresh: opts.refresh,
		Logger:  c.Logger,
	})
	if err != nil {
		return fmt.Errorf("replay %s: %w", path, err)
	}
	prog.done(fmt.Sprintf("Replayed %d frames", res.Stats.Frames))

	if opts.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	printSuccess(w, "Replayed %s", path)
	printStats(w, res.Stats, res.CacheInfo.SnapshotHit)
	for _, fr := range res.Frames {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleTitle.Render(frameTitle(fr)))
		if fr.Frame != nil && len(fr.Frame.Props) > 0 {
			printDetail(w, "props: %v", fr.Frame.Props)
		}
		fmt.Fprintln(w, stateTable(fr.Snapshot, -1))
		printIssues(w, fr.Issues)
	}
	fmt.Fprintln(w)
	printNextStep(w, "Inspect the wiring", fmt.Sprintf("%s graph %s --detailed -f svg", appName, path))
	return nil
}
