package scene

import "testing"

func TestNewAssignsUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		o := New(KindRect, Point{X: 1, Y: 2})
		if o == nil {
			t.Fatal("expected object")
		}
		if o.ID == "" {
			t.Fatal("expected non-empty id")
		}
		if seen[o.ID] {
			t.Fatalf("id %q reused", o.ID)
		}
		seen[o.ID] = true
	}
}

func TestNewDefaults(t *testing.T) {
	origin := Point{X: 10, Y: 20}

	r := New(KindRect, origin)
	if r.Left != 10 || r.Top != 20 {
		t.Fatalf("rect at (%v,%v), want (10,20)", r.Left, r.Top)
	}
	if r.Width != 10 || r.Height != 10 {
		t.Fatalf("rect size %vx%v, want 10x10", r.Width, r.Height)
	}
	if !r.Pending {
		t.Fatal("new objects should be pending until first sync")
	}

	c := New(KindCircle, origin)
	if c.Radius != 5 {
		t.Fatalf("circle radius %v, want 5", c.Radius)
	}

	l := New(KindLine, origin)
	if len(l.Points) != 2 || l.Points[0] != origin || l.Points[1] != origin {
		t.Fatalf("line points %v, want both at origin", l.Points)
	}

	txt := New(KindText, origin)
	if txt.Text == "" || txt.FontSize == 0 {
		t.Fatalf("text defaults missing: %+v", txt)
	}

	p := New(KindPath, origin)
	if len(p.Points) != 1 {
		t.Fatalf("path points %v, want single origin", p.Points)
	}
}

func TestNewUnknownKindReturnsNil(t *testing.T) {
	if o := New(Kind("hexagon"), Point{}); o != nil {
		t.Fatalf("expected nil for unknown kind, got %+v", o)
	}
}
