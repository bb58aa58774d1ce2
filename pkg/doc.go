// Package pkg provides the core libraries for Stickerpack sticker variants.
//
// # Overview
//
// Stickerpack turns a folder of images into sets of sticker variants. Every
// image becomes a layered baseline document; every visible group of an
// overlay template becomes a collection holding one copy of each baseline
// with the group merged on top. The pkg directory is organized into three
// main areas:
//
//  1. Documents - the layered document model and the engine that edits it
//  2. Composition - templates, collections, fan-out, merge and relabel
//  3. Pipeline - orchestration, state tracking, export and caching
//
// # Architecture
//
// The typical data flow through Stickerpack:
//
//	input/*.png
//	     ↓
//	[raster] resize → baseline documents (output/psd-plain)
//	     ↓
//	[template] active groups of the overlay template
//	     ↓
//	[compose] fan-out → merge → relabel (output/<group>)
//	     ↓
//	[raster] flatten → output/png/{prefix}_{name}.png
//
// # Main Packages
//
// ## Documents
//
// [document] - Layered documents: groups, text and pixel layers stored as
// JSON with the .ldoc extension. Layers[0] is the top of the stack.
//
// [engine] - Opens, creates, saves and closes documents. Exactly one open
// document is active at a time; layer duplication and saving require it.
//
// ## Composition
//
// [collection] - Folder-like containers of documents with stable, sorted
// listing, and the naming schemes for variant collections.
//
// [template] - Loads overlay templates (documents or TOML manifests) and
// returns their visible top-level groups.
//
// [compose] - Fan-out, merge and relabel over collections, with per-document
// outcomes that never abort a whole collection.
//
// [ledger] - Persistent record of completed merges, used by the ledger merge
// guard to make repeated merges idempotent.
//
// ## Pipeline
//
// [pipeline] - The resize → compose → export sequence with a per-image state
// machine and a run report. Used by the CLI for full runs and single stages.
//
// [raster] - Image decoding, resizing, flattening documents to PNG and app
// icon size tables.
//
// [fonts] - The embedded font used to draw text layers.
//
// [cache] - Content-addressed export cache so unchanged documents are not
// flattened again.
//
// [observability] - Hooks for stage, failure and cache events.
//
// [errors] - Error codes separating fatal, per-document and warning
// conditions.
//
// # Common Workflows
//
// Run the whole pipeline on the local filesystem:
//
//	runner := pipeline.NewRunner(osfs.New("/"), nil, logger)
//	report, err := runner.Execute(ctx, pipeline.Options{
//	    Input:    "/work/input",
//	    Template: "/work/layers.ldoc",
//	    Output:   "/work/output",
//	})
//
// Merge one group into an existing collection:
//
//	eng := engine.New(fs, logger)
//	tmpl, _ := template.Open(eng, "layers.ldoc")
//	groups, _ := template.ActiveGroups(tmpl.Document(), logger)
//	out, _ := collection.Open(fs, "output/logo1")
//	outcome, _ := compose.MergeGroup(ctx, eng, out, tmpl, groups[0], compose.MergeOptions{})
package pkg
