package compose

import (
	"bytes"
	"context"
	"reflect"
	"testing"

	"github.com/go-git/go-billy/v5/util"
)

func TestFanOutCopiesEveryMember(t *testing.T) {
	f := newFixture(t, "a.ldoc", "b.ldoc", "c.ldoc")
	out, o, err := FanOut(context.Background(), f.baseline, "out/logo1", nil)
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}

	want, _ := f.baseline.List()
	got, err := out.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("output members = %v, want %v", got, want)
	}
	if !reflect.DeepEqual(o.Done, want) {
		t.Errorf("done = %v, want %v", o.Done, want)
	}
	for _, name := range want {
		src, _ := util.ReadFile(f.fs, f.baseline.Path(name))
		dst, _ := util.ReadFile(f.fs, out.Path(name))
		if !bytes.Equal(src, dst) {
			t.Errorf("%s differs from baseline", name)
		}
	}
}

func TestFanOutReplacesAndPrunes(t *testing.T) {
	f := newFixture(t, "a.ldoc", "b.ldoc")
	writeDoc(t, f.fs, "out/logo1/a.ldoc", stickerTemplate())
	writeDoc(t, f.fs, "out/logo1/stale.ldoc", baselineDoc("stale.ldoc"))
	if err := util.WriteFile(f.fs, "out/logo1/notes.txt", []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := FanOut(context.Background(), f.baseline, "out/logo1", nil)
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	got, _ := out.List()
	if want := []string{"a.ldoc", "b.ldoc"}; !reflect.DeepEqual(got, want) {
		t.Errorf("members = %v, want %v", got, want)
	}
	if names := layerNames(readDoc(t, f.fs, "out/logo1/a.ldoc")); !reflect.DeepEqual(names, []string{"Background"}) {
		t.Errorf("a.ldoc was not replaced: %v", names)
	}
	if !out.Contains("notes.txt") {
		t.Error("non-document files must be left alone")
	}
}

func TestFanOutEmptyBaseline(t *testing.T) {
	f := newFixture(t)
	out, o, err := FanOut(context.Background(), f.baseline, "out/label", nil)
	if err != nil {
		t.Fatalf("FanOut: %v", err)
	}
	if o.Count() != 0 {
		t.Errorf("count = %d, want 0", o.Count())
	}
	if got, _ := out.List(); len(got) != 0 {
		t.Errorf("members = %v, want none", got)
	}
}

func TestFanOutCanceled(t *testing.T) {
	f := newFixture(t, "a.ldoc")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := FanOut(ctx, f.baseline, "out/label", nil); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}
