package scene

import "testing"

func addRect(t *testing.T, s *Scene) *Object {
	t.Helper()
	o := New(KindRect, Point{})
	s.Add(o)
	s.AssignZ(o, false)
	return o
}

func addPaintStroke(t *testing.T, s *Scene) *Object {
	t.Helper()
	o := New(KindPath, Point{})
	s.Add(o)
	s.CompletePaint(o)
	return o
}

func TestAssignZOrdinarySequence(t *testing.T) {
	s := NewScene()
	for i := 0; i < 3; i++ {
		o := addRect(t, s)
		if o.ZIndex != i {
			t.Fatalf("object %d got z %d", i, o.ZIndex)
		}
	}
}

func TestAssignZPaintBand(t *testing.T) {
	s := NewScene()
	rect := addRect(t, s)
	first := addPaintStroke(t, s)
	second := addPaintStroke(t, s)

	if first.ZIndex != BasePaintZ {
		t.Fatalf("first stroke z %d, want %d", first.ZIndex, BasePaintZ)
	}
	if second.ZIndex <= first.ZIndex {
		t.Fatalf("stroke order lost: %d then %d", first.ZIndex, second.ZIndex)
	}
	for _, p := range []*Object{first, second} {
		if p.ZIndex >= rect.ZIndex {
			t.Fatalf("paint z %d not below ordinary z %d", p.ZIndex, rect.ZIndex)
		}
	}
}

func TestReorderIdempotent(t *testing.T) {
	s := NewScene()
	// Insert out of order.
	zs := []int{5, -1000, 2, 0, -999, 3}
	for _, z := range zs {
		o := New(KindRect, Point{})
		o.ZIndex = z
		s.Add(o)
	}
	s.Reorder()
	first := ids(s)
	s.Reorder()
	second := ids(s)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second reorder moved objects: %v vs %v", first, second)
		}
	}
	// And the result is actually ascending.
	prev := s.Objects()[0].ZIndex
	for _, o := range s.Objects()[1:] {
		if o.ZIndex < prev {
			t.Fatalf("not sorted: %d after %d", o.ZIndex, prev)
		}
		prev = o.ZIndex
	}
}

func TestReorderStableOnTies(t *testing.T) {
	s := NewScene()
	a := New(KindRect, Point{})
	b := New(KindRect, Point{})
	s.Add(a)
	s.Add(b)
	// Both z 0: relative order must hold.
	s.Reorder()
	objs := s.Objects()
	if objs[0] != a || objs[1] != b {
		t.Fatal("tie broke pre-existing order")
	}
}

func TestMaxPaintZ(t *testing.T) {
	s := NewScene()
	if got := s.MaxPaintZ(nil); got != BasePaintZ {
		t.Fatalf("empty scene MaxPaintZ %d, want %d", got, BasePaintZ)
	}
	addRect(t, s)
	if got := s.MaxPaintZ(nil); got != BasePaintZ {
		t.Fatalf("ordinary objects counted: got %d", got)
	}
	first := addPaintStroke(t, s)
	second := addPaintStroke(t, s)
	if got := s.MaxPaintZ(nil); got != second.ZIndex {
		t.Fatalf("MaxPaintZ %d, want %d", got, second.ZIndex)
	}
	if got := s.MaxPaintZ(second); got != first.ZIndex {
		t.Fatalf("MaxPaintZ excluding top %d, want %d", got, first.ZIndex)
	}
}

func ids(s *Scene) []string {
	var out []string
	for _, o := range s.Objects() {
		out = append(out, o.StorageKey())
	}
	return out
}
