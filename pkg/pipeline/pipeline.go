// Package pipeline drives the sticker variant pipeline end to end.
//
// This package sequences the resize, compose and export stages against the
// configured input, template and output locations. The CLI calls it for both
// full runs and single stages, so all defaults live here.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Resize: scale every input image and save it as a baseline document
//  2. Compose: per active template group, fan the baseline out into a variant
//     collection and merge the group into every document; then relabel the
//     label variant from filenames
//  3. Export: flatten variant documents into prefixed PNG files
//
// Each stage can be run independently or as part of the complete pipeline.
// Every image is tracked through the states of [Track]; a failing image never
// blocks its siblings, and the [Report] fails if any image failed. Fatal
// errors (missing input, unusable template, invalid configuration) abort the
// run.
//
// # Usage
//
//	runner := pipeline.NewRunner(osfs.New(root), nil, logger)
//	opts, err := pipeline.LoadOptions("stickerpack.toml")
//	if err != nil {
//	    return err
//	}
//	report, err := runner.Execute(ctx, *opts)
//	if err != nil {
//	    return err // fatal
//	}
//	if report.Failed() {
//	    // itemize report.Failures
//	}
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stickerpack/pkg/collection"
	"github.com/matzehuels/stickerpack/pkg/compose"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMaxDimension is the length of the longer side after resizing.
	DefaultMaxDimension = 618

	// DefaultInput is the input image folder.
	DefaultInput = "input"

	// DefaultOutput is the output root.
	DefaultOutput = "output"

	// DefaultBaseline names the unmerged baseline collection. It must not
	// match the slug of the template's "plain" group.
	DefaultBaseline = "psd-plain"

	// DefaultLabelGroup is the template group whose text follows the filename.
	DefaultLabelGroup = "label"

	// DefaultExportDir is the PNG folder under the output root.
	DefaultExportDir = "png"
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// It is read from TOML and STICKERPACK_* environment variables (see
// LoadOptions); CLI flags are applied on top.
type Options struct {
	Input        string `toml:"input" env:"INPUT"`
	Template     string `toml:"template" env:"TEMPLATE"`
	Output       string `toml:"output" env:"OUTPUT"`
	MaxDimension int    `toml:"max_dimension" env:"MAX_DIMENSION"`
	LabelGroup   string `toml:"label_group" env:"LABEL_GROUP"`
	Naming       string `toml:"naming" env:"NAMING"`
	Baseline     string `toml:"baseline" env:"BASELINE"`
	Traversal    string `toml:"traversal" env:"TRAVERSAL"`
	MergeGuard   string `toml:"merge_guard" env:"MERGE_GUARD"`

	Export ExportOptions `toml:"export" envPrefix:"EXPORT_"`

	// Runtime options (not serialized)
	Logger *log.Logger `toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ExportOptions configures the PNG export stage.
type ExportOptions struct {
	Enabled bool `toml:"enabled" env:"ENABLED"`

	// Prefixes maps collection names to filename prefixes. Collections
	// without an entry use their own name.
	Prefixes map[string]string `toml:"prefixes" env:"PREFIXES"`

	// IncludeBaseline also exports the baseline collection.
	IncludeBaseline bool `toml:"include_baseline" env:"INCLUDE_BASELINE"`

	// Refresh ignores cached PNGs.
	Refresh bool `toml:"-"`
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForResize(); err != nil {
		return err
	}
	if err := o.ValidateForCompose(); err != nil {
		return err
	}
	if err := o.ValidateForExport(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetDefaults fills every unset field with its default.
func (o *Options) SetDefaults() {
	if o.Input == "" {
		o.Input = DefaultInput
	}
	if o.Output == "" {
		o.Output = DefaultOutput
	}
	if o.MaxDimension == 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.Baseline == "" {
		o.Baseline = DefaultBaseline
	}
	if o.LabelGroup == "" {
		o.LabelGroup = DefaultLabelGroup
	}
	if o.Naming == "" {
		o.Naming = string(collection.DefaultNaming)
	}
	if o.Traversal == "" {
		o.Traversal = string(compose.Flat)
	}
	if o.MergeGuard == "" {
		o.MergeGuard = string(compose.GuardNone)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForResize checks the fields the resize stage needs.
func (o *Options) ValidateForResize() error {
	o.SetDefaults()
	if err := errors.ValidatePath(o.Input); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "input")
	}
	if err := o.validateOutput(); err != nil {
		return err
	}
	return errors.ValidateDimension("max_dimension", o.MaxDimension)
}

// ValidateForCompose checks the fields the compose stage needs.
func (o *Options) ValidateForCompose() error {
	o.SetDefaults()
	if o.Template == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "template is required")
	}
	if err := errors.ValidatePath(o.Template); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "template")
	}
	if err := o.validateOutput(); err != nil {
		return err
	}
	if err := errors.ValidateName(o.LabelGroup); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "label_group")
	}
	if _, err := collection.ParseNaming(o.Naming); err != nil {
		return err
	}
	if _, err := compose.ParseTraversal(o.Traversal); err != nil {
		return err
	}
	_, err := compose.ParseGuard(o.MergeGuard)
	return err
}

// ValidateForExport checks the fields the export stage needs.
func (o *Options) ValidateForExport() error {
	o.SetDefaults()
	if err := o.validateOutput(); err != nil {
		return err
	}
	for coll, prefix := range o.Export.Prefixes {
		if err := errors.ValidateName(prefix); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "export prefix for %s", coll)
		}
	}
	return nil
}

func (o *Options) validateOutput() error {
	if err := errors.ValidatePath(o.Output); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "output")
	}
	if err := errors.ValidateName(o.Baseline); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "baseline")
	}
	if o.Baseline == DefaultExportDir {
		return errors.New(errors.ErrCodeInvalidConfig, "baseline cannot be named %q", DefaultExportDir)
	}
	return nil
}

// ExportPrefix returns the PNG filename prefix for a collection.
func (o *Options) ExportPrefix(coll string) string {
	if p, ok := o.Export.Prefixes[coll]; ok && p != "" {
		return p
	}
	return coll
}

// NamingScheme returns the parsed naming scheme. Call after validation.
func (o *Options) NamingScheme() collection.Naming {
	n, _ := collection.ParseNaming(o.Naming)
	return n
}
