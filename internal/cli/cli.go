// Package cli implements the scenesync command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/scenesync/pkg/buildinfo"
	"github.com/matzehuels/scenesync/pkg/cache"
	"github.com/matzehuels/scenesync/pkg/replay"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "scenesync"

	// defaultAddr is where "serve" listens unless --addr is given.
	defaultAddr = "127.0.0.1:8080"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Scenesync replays declarative visualization scenes",
		Long:         `Scenesync mounts declarative scene descriptions on a headless engine, replays their frames and shows how every representation, view and shared dataset reacts.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.runCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// cacheFlags select the replay cache backend.
type cacheFlags struct {
	noCache bool
	refresh bool
	redis   string
}

func (f *cacheFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and replay again")
	cmd.Flags().StringVar(&f.redis, "redis", "", "cache in redis instead of on disk (redis://host:port/db)")
}

// newRunner creates a replay runner for CLI use. The returned cache must be
// closed by the caller.
func (c *CLI) newRunner(ctx context.Context, f cacheFlags) (*replay.Runner, cache.Cache, error) {
	cc, keyer, err := newCache(ctx, f)
	if err != nil {
		return nil, nil, err
	}
	return replay.NewRunner(cc, keyer, c.Logger), cc, nil
}

func newCache(ctx context.Context, f cacheFlags) (cache.Cache, cache.Keyer, error) {
	switch {
	case f.noCache:
		return cache.NewNullCache(), nil, nil
	case f.redis != "":
		rc, err := cache.NewRedisCache(ctx, f.redis)
		if err != nil {
			return nil, nil, err
		}
		// Redis is shared with other tools, so keys carry the app name.
		return rc, cache.NewScopedKeyer(nil, appName+":"), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, nil, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/scenesync/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
