// Package cli implements the klayout-converter command-line interface.
//
// This package provides commands for converting IC layout files to JSON
// polygon data, inspecting layout contents, visualizing cell hierarchies,
// and managing the result cache. The CLI is built using cobra and supports
// verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - convert: Convert a layout file to JSON polygon data
//   - inspect: Show the layers and cells of a layout file
//   - hierarchy: Export the cell-reference graph as DOT or SVG
//   - serve: Run the conversion HTTP server
//   - cache: Manage the result cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vale981/klayout-converter/pkg/buildinfo"
	"github.com/vale981/klayout-converter/pkg/cache"
	"github.com/vale981/klayout-converter/pkg/config"
	"github.com/vale981/klayout-converter/pkg/convert"
)

// appName is the application name used for directories and display.
const appName = "klayout-converter"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
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
		Short:        "Convert IC layout files to JSON polygon data",
		Long:         `klayout-converter reads GDSII layout files and extracts the polygons of one cell as JSON, with hulls, holes and device names resolved.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.convertCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a conversion runner with the cache backend selected by
// the config.
func (c *CLI) newRunner(cmd *cobra.Command, noCache bool, cfg *config.Config) (*convert.Runner, error) {
	store, err := c.newCache(cmd, noCache, cfg)
	if err != nil {
		return nil, err
	}
	return convert.NewRunner(store, c.Logger), nil
}

func (c *CLI) newCache(cmd *cobra.Command, noCache bool, cfg *config.Config) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Backend == "redis" {
		return cache.NewRedisCache(cmd.Context(), cfg.Cache.RedisAddr)
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard
// (~/.cache/klayout-converter/).
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
