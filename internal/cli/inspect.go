package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/tree"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/errors"
	"github.com/matzehuels/stickerpack/pkg/template"
)

var (
	styleLayerHidden = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
	styleLayerKind   = lipgloss.NewStyle().Foreground(colorGray)
)

// inspectCommand creates the inspect command for documents and templates.
func (c *CLI) inspectCommand() *cobra.Command {
	var naming string

	cmd := &cobra.Command{
		Use:   "inspect [file]",
		Short: "Show the layer tree of a document or template",
		Long: `Show the layer tree of a layered document or TOML template manifest.

The top of the stack is printed first. Hidden layers are struck through.
Visible top-level groups are listed with the collection they produce.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := collection.ParseNaming(naming)
			if err != nil {
				return err
			}
			return c.runInspect(cmd.Context(), args[0], n)
		},
	}

	cmd.Flags().StringVar(&naming, "naming", string(collection.DefaultNaming), "variant naming: byGroupName, bySlotIndex")

	return cmd
}

// runInspect opens the file read-only and prints its layers and groups.
func (c *CLI) runInspect(_ context.Context, file string, naming collection.Naming) error {
	abs, err := absPath(file)
	if err != nil {
		return err
	}
	eng := engine.New(c.FS, c.Logger)
	defer eng.CloseAll()

	h, err := template.Open(eng, abs)
	if err != nil {
		return err
	}
	doc := h.Document()

	printKeyValue("Document", doc.Name)
	printKeyValue("Canvas", fmt.Sprintf("%d×%d", doc.Width, doc.Height))
	printKeyValue("Layers", fmt.Sprintf("%d", doc.Count()))
	printNewline()
	fmt.Println(layerTree(doc).String())

	groups, err := template.ActiveGroups(doc, c.Logger)
	if err != nil && !errors.Is(err, errors.ErrCodeTemplateEmpty) {
		return err
	}
	if len(groups) == 0 {
		return nil
	}
	printNewline()
	printInfo("%d active groups", len(groups))
	for _, g := range groups {
		printDetail("%s %s %s", g.Name, iconArrow, naming.VariantName(g.Slot, g.Name))
	}
	return nil
}

// layerTree renders a document's layer stack, topmost first.
func layerTree(doc *document.Document) *tree.Tree {
	t := tree.Root(StyleTitle.Render(doc.Name)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, n := range doc.Layers {
		t.Child(layerNode(n, true))
	}
	return t
}

// layerNode returns a tree for groups and a label for leaves. visible is
// false below a hidden group.
func layerNode(n document.Node, visible bool) any {
	visible = visible && n.Visible()
	label := layerLabel(n, visible)

	g, ok := n.(*document.Group)
	if !ok || len(g.Children) == 0 {
		return label
	}
	sub := tree.Root(label).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(StyleDim)
	for _, c := range g.Children {
		sub.Child(layerNode(c, visible))
	}
	return sub
}

func layerLabel(n document.Node, visible bool) string {
	var b strings.Builder
	name := n.Name()
	if visible {
		b.WriteString(StyleValue.Render(name))
	} else {
		b.WriteString(styleLayerHidden.Render(name))
	}
	b.WriteString(" ")
	b.WriteString(styleLayerKind.Render(n.Kind().String()))

	switch n := n.(type) {
	case *document.Text:
		b.WriteString(" ")
		b.WriteString(StyleHighlight.Render(fmt.Sprintf("%q", n.Content)))
	case *document.Pixel:
		if r := n.Bounds(); !r.Empty() {
			b.WriteString(StyleDim.Render(fmt.Sprintf(" %d×%d", r.Dx(), r.Dy())))
		}
	}
	return b.String()
}
