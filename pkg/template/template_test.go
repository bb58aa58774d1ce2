package template

import (
	"context"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/matzehuels/stickerpack/pkg/document"
	"github.com/matzehuels/stickerpack/pkg/engine"
	"github.com/matzehuels/stickerpack/pkg/errors"
)

func scenarioTemplate() *document.Document {
	d := document.New("layers.ldoc", 100, 100)
	plain := document.NewGroup("plain")
	plain.SetVisible(false)
	d.Append(plain)
	d.Append(document.NewGroup("label", document.NewText("caption", "XYZ")))
	d.Append(document.NewPixel("stray", nil))
	d.Append(document.NewGroup("logo1"))
	return d
}

func writeTemplate(t *testing.T, e *engine.Engine, p string, d *document.Document) {
	t.Helper()
	data, err := document.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	if err := util.WriteFile(e.FS(), p, data, 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadActiveGroups(t *testing.T) {
	e := engine.New(memfs.New(), nil)
	writeTemplate(t, e, "input/layers/layers.ldoc", scenarioTemplate())

	groups, err := LoadActiveGroups(context.Background(), e, "input/layers/layers.ldoc", nil)
	if err != nil {
		t.Fatalf("LoadActiveGroups: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}

	want := []Group{{Index: 1, Slot: 1, Name: "label"}, {Index: 3, Slot: 2, Name: "logo1"}}
	for i, w := range want {
		g := groups[i]
		if g.Index != w.Index || g.Slot != w.Slot || g.Name != w.Name {
			t.Errorf("group %d = {%d %d %s}, want {%d %d %s}", i, g.Index, g.Slot, g.Name, w.Index, w.Slot, w.Name)
		}
		if g.Ref == nil || g.Ref.Name() != w.Name {
			t.Errorf("group %d has bad Ref", i)
		}
	}

	if e.OpenCount() != 0 {
		t.Errorf("template left open (%d documents)", e.OpenCount())
	}
}

func TestLoadActiveGroupsErrors(t *testing.T) {
	e := engine.New(memfs.New(), nil)
	ctx := context.Background()

	if _, err := LoadActiveGroups(ctx, e, "missing.ldoc", nil); !errors.Is(err, errors.ErrCodeTemplateOpen) {
		t.Errorf("missing template: got %v, want TEMPLATE_OPEN", err)
	}

	writeTemplate(t, e, "empty.ldoc", document.New("empty.ldoc", 1, 1))
	if _, err := LoadActiveGroups(ctx, e, "empty.ldoc", nil); !errors.Is(err, errors.ErrCodeTemplateEmpty) {
		t.Errorf("empty template: got %v, want TEMPLATE_EMPTY", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := LoadActiveGroups(cancelled, e, "empty.ldoc", nil); err == nil {
		t.Error("cancelled context should fail")
	}
}

func TestAllHiddenYieldsNoGroups(t *testing.T) {
	d := document.New("t.ldoc", 1, 1)
	g := document.NewGroup("only")
	g.SetVisible(false)
	d.Append(g)

	groups, err := ActiveGroups(d, nil)
	if err != nil {
		t.Fatalf("ActiveGroups: %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("got %d groups, want 0", len(groups))
	}
}

func TestResolve(t *testing.T) {
	d := scenarioTemplate()
	groups, _ := ActiveGroups(d, nil)

	g, err := groups[0].Resolve(d)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if g != d.Layers[1] {
		t.Error("Resolve returned a different node")
	}

	d.Layers = d.Layers[:1]
	if _, err := groups[0].Resolve(d); !errors.Is(err, errors.ErrCodeMerge) {
		t.Errorf("vanished group: got %v, want MERGE", err)
	}
}
