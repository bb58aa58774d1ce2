package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerpack/pkg/raster"
)

// iconsCommand creates the icons command for app icon sets.
func (c *CLI) iconsCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "icons [square.png] [rect.png]",
		Short: "Render app icon sets from a square and a 4:3 source",
		Long: `Render app icon sets from a square and a 4:3 source.

The square source (ideally 1024×1024) is resized to 1024, 87 and 58 pixels.
The 4:3 source (ideally 1024×768) is resized to 1024×768 down to 54×40.
Files are written to the output folder as {width}x{height}.png.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runIcons(cmd.Context(), args[0], args[1], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "icons", "output folder")

	return cmd
}

// runIcons renders both icon tables into output.
func (c *CLI) runIcons(ctx context.Context, square, rect, output string) error {
	dir, err := absPath(output)
	if err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	var written []string
	for _, job := range []struct {
		src   string
		specs []raster.IconSpec
	}{
		{square, raster.SquareIcons},
		{rect, raster.RectIcons},
	} {
		p, err := absPath(job.src)
		if err != nil {
			return err
		}
		img, err := raster.Load(c.FS, p)
		if err != nil {
			return err
		}
		c.Logger.Debug("rendering icons", "source", job.src, "size", img.Bounds().Size(), "sizes", len(job.specs))
		paths, err := raster.Icons(ctx, c.FS, img, job.specs, dir)
		written = append(written, paths...)
		if err != nil {
			return fmt.Errorf("render icons from %s: %w", job.src, err)
		}
	}
	prog.done(fmt.Sprintf("Rendered %d icons", len(written)))

	printSuccess("Rendered %d icons", len(written))
	for _, p := range written {
		printFile(p)
	}
	return nil
}
