package storage

import (
	"bytes"
	"strings"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	src := NewMemoryStore("a")
	src.Set("r1", raw(`{"type":"rect","left":10}`))
	src.Set("r2", raw(`{"type":"circle","radius":5}`))

	var buf bytes.Buffer
	if err := Save(&buf, src); err != nil {
		t.Fatalf("save: %v", err)
	}

	dst := NewMemoryStore("b")
	dst.Set("old", raw(`{"type":"line"}`))
	if err := Load(&buf, dst); err != nil {
		t.Fatalf("load: %v", err)
	}

	if _, ok := dst.Get("old"); ok {
		t.Fatal("pre-existing entry survived load")
	}
	if v, ok := dst.Get("r1"); !ok || string(v) != `{"type":"rect","left":10}` {
		t.Fatalf("r1 = %s", v)
	}
	if _, ok := dst.Get("r2"); !ok {
		t.Fatal("r2 missing after load")
	}
}

func TestLoadIsOneUndoStep(t *testing.T) {
	dst := NewMemoryStore("a")
	dst.Set("old", raw(`1`))

	var buf bytes.Buffer
	src := NewMemoryStore("b")
	src.Set("n1", raw(`1`))
	src.Set("n2", raw(`2`))
	if err := Save(&buf, src); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := Load(&buf, dst); err != nil {
		t.Fatalf("load: %v", err)
	}

	if !dst.Undo() {
		t.Fatal("undo refused")
	}
	if _, ok := dst.Get("n1"); ok {
		t.Fatal("loaded entry survived a single undo")
	}
	if v, ok := dst.Get("old"); !ok || string(v) != `1` {
		t.Fatalf("old entry not restored by undo: %s", v)
	}
}

func TestLoadMalformedLeavesStoreUntouched(t *testing.T) {
	dst := NewMemoryStore("a")
	dst.Set("keep", raw(`1`))

	if err := Load(strings.NewReader(`{not json`), dst); err == nil {
		t.Fatal("malformed input accepted")
	}
	if v, ok := dst.Get("keep"); !ok || string(v) != `1` {
		t.Fatalf("store modified by failed load: %s", v)
	}
	if len(dst.Entries()) != 1 {
		t.Fatal("entry count changed by failed load")
	}
}
