package pipeline

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/matzehuels/stickerpack/pkg/errors"
)

func TestSetDefaults(t *testing.T) {
	var o Options
	o.SetDefaults()
	if o.Input != DefaultInput || o.Output != DefaultOutput || o.MaxDimension != DefaultMaxDimension {
		t.Errorf("paths/dimension defaults = %q %q %d", o.Input, o.Output, o.MaxDimension)
	}
	if o.Baseline != "psd-plain" || o.LabelGroup != "label" {
		t.Errorf("baseline/label defaults = %q %q", o.Baseline, o.LabelGroup)
	}
	if o.Naming != "byGroupName" || o.Traversal != "flat" || o.MergeGuard != "none" {
		t.Errorf("scheme defaults = %q %q %q", o.Naming, o.Traversal, o.MergeGuard)
	}
	if o.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"minimal", Options{Template: "layers.ldoc"}, false},
		{"missing template", Options{}, true},
		{"negative dimension", Options{Template: "t", MaxDimension: -1}, true},
		{"huge dimension", Options{Template: "t", MaxDimension: 100000}, true},
		{"bad naming", Options{Template: "t", Naming: "byColor"}, true},
		{"bad traversal", Options{Template: "t", Traversal: "deep"}, true},
		{"bad guard", Options{Template: "t", MergeGuard: "always"}, true},
		{"baseline with slash", Options{Template: "t", Baseline: "a/b"}, true},
		{"baseline is export dir", Options{Template: "t", Baseline: "png"}, true},
		{"bad prefix", Options{Template: "t", Export: ExportOptions{Prefixes: map[string]string{"label": "a/b"}}}, true},
		{"slot naming", Options{Template: "t", Naming: "bySlotIndex", Traversal: "nested", MergeGuard: "ledger"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateAndSetDefaults() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("error code = %s, want INVALID_CONFIG", errors.GetCode(err))
			}
		})
	}
}

func TestValidateAndSetDefaultsIdempotent(t *testing.T) {
	o := Options{Template: "layers.ldoc"}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	o.Template = ""
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Errorf("second call should be a no-op, got %v", err)
	}
}

func TestExportPrefix(t *testing.T) {
	o := Options{Export: ExportOptions{Prefixes: map[string]string{"logo1": "I Heart", "empty": ""}}}
	for coll, want := range map[string]string{"logo1": "I Heart", "label": "label", "empty": "empty"} {
		if got := o.ExportPrefix(coll); got != want {
			t.Errorf("ExportPrefix(%q) = %q, want %q", coll, got, want)
		}
	}
	if got := ExportName("I Heart", "caf%C3%A9.ldoc"); got != "I Heart_caf%C3%A9.png" {
		t.Errorf("ExportName = %q", got)
	}
}

func TestLoadOptions(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "stickerpack.toml")
	data := `
input = "photos"
template = "layers.ldoc"
max_dimension = 512
naming = "bySlotIndex"

[export]
enabled = true
include_baseline = true

[export.prefixes]
logo1 = "I Heart"
label = "Label"
`
	if err := os.WriteFile(p, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STICKERPACK_OUTPUT", "dist")
	t.Setenv("STICKERPACK_MAX_DIMENSION", "300")

	o, err := LoadOptions(p)
	if err != nil {
		t.Fatalf("LoadOptions: %v", err)
	}
	if o.Input != "photos" || o.Template != "layers.ldoc" || o.Naming != "bySlotIndex" {
		t.Errorf("file values = %+v", o)
	}
	if o.Output != "dist" || o.MaxDimension != 300 {
		t.Errorf("env overrides: output=%q max=%d", o.Output, o.MaxDimension)
	}
	if !o.Export.Enabled || !o.Export.IncludeBaseline {
		t.Errorf("export = %+v", o.Export)
	}
	want := map[string]string{"logo1": "I Heart", "label": "Label"}
	if !reflect.DeepEqual(o.Export.Prefixes, want) {
		t.Errorf("prefixes = %v, want %v", o.Export.Prefixes, want)
	}
}

func TestLoadOptionsRejectsUnknownKeys(t *testing.T) {
	p := filepath.Join(t.TempDir(), "c.toml")
	_ = os.WriteFile(p, []byte("templat = \"x\"\n"), 0o644)
	if _, err := LoadOptions(p); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("got %v, want INVALID_CONFIG", err)
	}
	if _, err := LoadOptions(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("missing file: got %v, want INVALID_CONFIG", err)
	}
}

func TestApplyEnvFrom(t *testing.T) {
	o := Options{Output: "out"}
	err := ApplyEnvFrom(&o, map[string]string{
		"STICKERPACK_LABEL_GROUP":     "caption",
		"STICKERPACK_MERGE_GUARD":     "name",
		"STICKERPACK_EXPORT_ENABLED":  "true",
		"STICKERPACK_EXPORT_PREFIXES": "label:Label,logo1:I Heart",
	})
	if err != nil {
		t.Fatalf("ApplyEnvFrom: %v", err)
	}
	if o.Output != "out" {
		t.Errorf("unset variable overwrote Output: %q", o.Output)
	}
	if o.LabelGroup != "caption" || o.MergeGuard != "name" || !o.Export.Enabled {
		t.Errorf("options = %+v", o)
	}
	if o.Export.Prefixes["logo1"] != "I Heart" {
		t.Errorf("prefixes = %v", o.Export.Prefixes)
	}

	if err := ApplyEnvFrom(&o, map[string]string{"STICKERPACK_MAX_DIMENSION": "big"}); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad int: got %v, want INVALID_CONFIG", err)
	}
}
