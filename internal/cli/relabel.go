package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/compose"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/pipeline"
)

// relabelCommand creates the relabel command for a single collection.
func (c *CLI) relabelCommand() *cobra.Command {
	var (
		group     string
		traversal string
	)

	cmd := &cobra.Command{
		Use:   "relabel [collection]",
		Short: "Set caption text from document filenames",
		Long: `Set caption text from document filenames.

Every text layer directly inside the label group of each document in the
collection is set to the document's filename without extension, with
percent-escapes decoded ("caf%C3%A9.ldoc" becomes "café"). Documents
without the group are skipped with a warning.

With --traversal nested, immediate sub-collections are processed too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := compose.ParseTraversal(traversal)
			if err != nil {
				return err
			}
			return c.runRelabel(cmd.Context(), args[0], group, t)
		},
	}

	cmd.Flags().StringVarP(&group, "group", "g", pipeline.DefaultLabelGroup, "label group name")
	cmd.Flags().StringVar(&traversal, "traversal", string(compose.Flat), "traversal: flat, nested")

	return cmd
}

// runRelabel relabels the collection at dir and prints the outcome.
func (c *CLI) runRelabel(ctx context.Context, dir, group string, t compose.Traversal) error {
	abs, err := absPath(dir)
	if err != nil {
		return err
	}
	coll, err := collection.Open(c.FS, abs)
	if err != nil {
		return err
	}

	eng := engine.New(c.FS, c.Logger)
	defer eng.CloseAll()

	prog := newProgress(c.Logger)
	o, err := compose.RelabelByFilename(ctx, eng, coll, group, compose.RelabelOptions{
		Traversal: t,
		Logger:    c.Logger,
	})
	if err != nil {
		return fmt.Errorf("relabel %s: %w", dir, err)
	}
	prog.done(fmt.Sprintf("Relabeled %s", coll.Name()))

	headline, detail := relabelSummary(o, group)
	if o.Failed() {
		printError("%s", headline)
	} else {
		printSuccess("%s", headline)
	}
	if detail != "" {
		printDetail("%s", detail)
	}
	if len(o.Failures) > 0 {
		printNewline()
		fmt.Println(failureTable(o.Failures))
	}
	if o.Failed() {
		return &reportError{failed: len(o.FailedDocs()), total: relabelTotal(o)}
	}
	return nil
}

// relabelSummary returns the status line and an optional detail line for a
// relabel outcome.
func relabelSummary(o *compose.Outcome, group string) (headline, detail string) {
	if o.Failed() {
		headline = fmt.Sprintf("Relabel failed for %d of %d documents", len(o.FailedDocs()), relabelTotal(o))
	} else {
		headline = fmt.Sprintf("Relabeled %d documents", o.Count())
	}
	if n := len(o.Unchanged); n > 0 {
		detail = fmt.Sprintf("%d without text layers in group %q", n, group)
	}
	return headline, detail
}

func relabelTotal(o *compose.Outcome) int {
	return o.Count() + len(o.Unchanged) + len(o.Failures)
}
