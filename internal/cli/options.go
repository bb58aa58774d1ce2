package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stickerpack/pkg/pipeline"
)

// flagSet selects which option flags a command registers.
type flagSet int

const (
	flagsResize flagSet = 1 << iota
	flagsCompose
	flagsExport

	flagsAll = flagsResize | flagsCompose | flagsExport
)

// optionFlags holds the command-line overrides for pipeline.Options.
type optionFlags struct {
	config          string
	input           string
	template        string
	output          string
	maxDimension    int
	baseline        string
	labelGroup      string
	naming          string
	traversal       string
	mergeGuard      string
	export          bool
	prefixes        map[string]string
	includeBaseline bool
	refresh         bool
	noCache         bool
}

// register adds the flags in set to cmd. Flags have no defaults of their
// own; unset flags leave config and environment values alone.
func (f *optionFlags) register(cmd *cobra.Command, set flagSet) {
	flags := cmd.Flags()
	flags.StringVarP(&f.config, "config", "c", "", "config file (default: ./"+pipeline.DefaultConfigFile+" if present)")
	flags.StringVarP(&f.output, "output", "o", "", "output root (default: "+pipeline.DefaultOutput+")")
	flags.StringVar(&f.baseline, "baseline", "", "baseline collection name (default: "+pipeline.DefaultBaseline+")")

	if set&flagsResize != 0 {
		flags.StringVarP(&f.input, "input", "i", "", "input image folder (default: "+pipeline.DefaultInput+")")
		flags.IntVar(&f.maxDimension, "max-dimension", 0, "longer side after resizing in pixels (default: 618)")
	}
	if set&flagsCompose != 0 {
		flags.StringVarP(&f.template, "template", "t", "", "template document or TOML manifest")
		flags.StringVar(&f.labelGroup, "label-group", "", "template group relabeled from filenames (default: "+pipeline.DefaultLabelGroup+")")
		flags.StringVar(&f.naming, "naming", "", "variant naming: byGroupName (default), bySlotIndex")
		flags.StringVar(&f.traversal, "traversal", "", "relabel traversal: flat (default), nested")
		flags.StringVar(&f.mergeGuard, "merge-guard", "", "skip repeated merges: none (default), name, ledger")
	}
	if set&flagsExport != 0 {
		if set != flagsExport {
			flags.BoolVar(&f.export, "export", false, "export PNG files after composing")
		}
		flags.StringToStringVar(&f.prefixes, "prefix", nil, "PNG filename prefix per collection, e.g. logo1=\"I Heart\"")
		flags.BoolVar(&f.includeBaseline, "include-baseline", false, "also export the baseline collection")
		flags.BoolVar(&f.refresh, "refresh", false, "ignore cached PNG files")
		flags.BoolVar(&f.noCache, "no-cache", false, "disable the export cache")
	}
}

// resolveOptions loads the config file and environment, applies changed
// flags on top and makes all paths absolute.
func (c *CLI) resolveOptions(cmd *cobra.Command, f *optionFlags) (pipeline.Options, error) {
	loaded, err := pipeline.LoadOptions(f.config)
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := *loaded

	flags := cmd.Flags()
	changed := func(name string) bool {
		fl := flags.Lookup(name)
		return fl != nil && fl.Changed
	}
	if changed("input") {
		opts.Input = f.input
	}
	if changed("template") {
		opts.Template = f.template
	}
	if changed("output") {
		opts.Output = f.output
	}
	if changed("max-dimension") {
		opts.MaxDimension = f.maxDimension
	}
	if changed("baseline") {
		opts.Baseline = f.baseline
	}
	if changed("label-group") {
		opts.LabelGroup = f.labelGroup
	}
	if changed("naming") {
		opts.Naming = f.naming
	}
	if changed("traversal") {
		opts.Traversal = f.traversal
	}
	if changed("merge-guard") {
		opts.MergeGuard = f.mergeGuard
	}
	if changed("export") {
		opts.Export.Enabled = f.export
	}
	if changed("include-baseline") {
		opts.Export.IncludeBaseline = f.includeBaseline
	}
	if len(f.prefixes) > 0 {
		if opts.Export.Prefixes == nil {
			opts.Export.Prefixes = make(map[string]string, len(f.prefixes))
		}
		for coll, prefix := range f.prefixes {
			opts.Export.Prefixes[coll] = prefix
		}
	}
	opts.Export.Refresh = f.refresh

	opts.Logger = c.Logger
	opts.SetDefaults()
	for _, p := range []*string{&opts.Input, &opts.Output, &opts.Template} {
		if *p == "" {
			continue
		}
		abs, err := absPath(*p)
		if err != nil {
			return pipeline.Options{}, err
		}
		*p = abs
	}
	return opts, nil
}
