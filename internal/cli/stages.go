package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerpack/pkg/pipeline"
)

// stageFunc runs one pipeline entry point, e.g. (*pipeline.Runner).Execute.
type stageFunc func(r *pipeline.Runner, ctx context.Context, opts pipeline.Options) (*pipeline.Report, error)

// runCommand creates the run command for the full pipeline.
func (c *CLI) runCommand() *cobra.Command {
	return c.stageCommand(&cobra.Command{
		Use:   "run",
		Short: "Resize, compose and optionally export every input image",
		Long: `Run the whole pipeline.

Every image in the input folder is resized and saved as a layered baseline
document. Then, for every visible group of the template, the baseline is
copied into a collection named after the group and the group is merged on
top of each copy. The label group's text is replaced by each document's
filename. With --export, every variant is flattened into output/png.

A failing image never stops the others; the command exits non-zero if any
image failed.`,
	}, flagsAll, "Running pipeline", (*pipeline.Runner).Execute)
}

// resizeCommand creates the resize command.
func (c *CLI) resizeCommand() *cobra.Command {
	return c.stageCommand(&cobra.Command{
		Use:   "resize",
		Short: "Resize input images into baseline documents",
	}, flagsResize, "Resizing images", (*pipeline.Runner).Resize)
}

// composeCommand creates the compose command.
func (c *CLI) composeCommand() *cobra.Command {
	return c.stageCommand(&cobra.Command{
		Use:   "compose",
		Short: "Fan out the baseline and merge every template group",
		Long: `Fan out the baseline and merge every template group.

Each variant collection is rebuilt from the baseline before its group is
merged, so repeated runs never stack layers.`,
	}, flagsCompose, "Composing variants", (*pipeline.Runner).Compose)
}

// mergeCommand creates the merge command.
func (c *CLI) mergeCommand() *cobra.Command {
	return c.stageCommand(&cobra.Command{
		Use:   "merge",
		Short: "Merge template groups into existing variant collections",
		Long: `Merge template groups into existing variant collections.

Unlike compose, merge does not rebuild the collections first. Without a
merge guard, running it twice adds the group twice; use --merge-guard name
or --merge-guard ledger to skip documents that already have it.`,
	}, flagsCompose, "Merging groups", (*pipeline.Runner).Merge)
}

// exportCommand creates the export command.
func (c *CLI) exportCommand() *cobra.Command {
	return c.stageCommand(&cobra.Command{
		Use:   "export",
		Short: "Flatten variant documents into PNG files",
		Long: `Flatten variant documents into PNG files.

Every collection under the output root except the baseline is written to
output/png as {prefix}_{name}.png. The prefix defaults to the collection
name. Unchanged documents are served from the export cache.`,
	}, flagsExport, "Exporting PNG files", (*pipeline.Runner).Export)
}

// stageCommand wires flags, option resolution and report printing around fn.
func (c *CLI) stageCommand(cmd *cobra.Command, set flagSet, activity string, fn stageFunc) *cobra.Command {
	var f optionFlags
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opts, err := c.resolveOptions(cmd, &f)
		if err != nil {
			return err
		}
		return c.runStage(cmd.Context(), opts, f.noCache, activity, fn)
	}
	f.register(cmd, set)
	return cmd
}

// runStage executes fn with a spinner and prints its report.
func (c *CLI) runStage(ctx context.Context, opts pipeline.Options, noCache bool, activity string, fn stageFunc) error {
	runner, err := c.newRunner(opts, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, activity+"...")
	spinner.Start()

	rep, err := fn(runner, ctx, opts)
	if err != nil {
		spinner.StopWithError(activity + " failed")
		return err
	}
	spinner.Stop()
	prog.done(activity + " finished")

	return printReport(rep)
}
