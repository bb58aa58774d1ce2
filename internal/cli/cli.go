package cli

import (
	"io"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerpack/pkg/buildinfo"
	"github.com/matzehuels/stickerpack/pkg/cache"
	"github.com/matzehuels/stickerpack/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stickerpack"
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

	// FS is the filesystem all paths are resolved on. Paths are made
	// absolute before use, so it is rooted at "/".
	FS billy.Filesystem
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		FS:     osfs.New("/"),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stickerpack turns a folder of images into sticker variants",
		Long: `Stickerpack resizes a folder of images into layered baseline documents,
fans them out into one collection per visible template group, merges the
group into every copy and relabels the caption from the filename.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.runCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.mergeCommand())
	root.AddCommand(c.relabelCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.iconsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The export cache lives
// under the output root.
func (c *CLI) newRunner(opts pipeline.Options, noCache bool) (*pipeline.Runner, error) {
	ec, err := c.newCache(opts, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(c.FS, ec, c.Logger), nil
}

func (c *CLI) newCache(opts pipeline.Options, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(c.FS, cacheDir(opts))
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the export cache directory for opts.
func cacheDir(opts pipeline.Options) string {
	out := opts.Output
	if out == "" {
		out = pipeline.DefaultOutput
	}
	return path.Join(out, cache.DefaultDir)
}

// absPath resolves p against the working directory and returns it as a
// slash path usable on the root filesystem.
func absPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}
