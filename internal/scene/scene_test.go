package scene

import "testing"

func TestHitTestReturnsTopmost(t *testing.T) {
	s := NewScene()
	bottom := New(KindRect, Point{X: 0, Y: 0})
	bottom.Width, bottom.Height = 100, 100
	top := New(KindRect, Point{X: 10, Y: 10})
	top.Width, top.Height = 50, 50
	s.Add(bottom)
	s.Add(top)

	if got := s.HitTest(Point{X: 20, Y: 20}); got != top {
		t.Fatalf("hit %v, want top rect", got)
	}
	if got := s.HitTest(Point{X: 90, Y: 90}); got != bottom {
		t.Fatalf("hit %v, want bottom rect", got)
	}
	if got := s.HitTest(Point{X: 500, Y: 500}); got != nil {
		t.Fatalf("hit %v on empty canvas", got)
	}
}

func TestHitTestNegativeDimensions(t *testing.T) {
	s := NewScene()
	// Dragged left/up: width and height are negative.
	r := New(KindRect, Point{X: 100, Y: 100})
	r.Width, r.Height = -40, -30
	s.Add(r)
	if got := s.HitTest(Point{X: 80, Y: 85}); got != r {
		t.Fatal("negative-size rect not hit-testable")
	}
}

func TestRemoveClearsActive(t *testing.T) {
	s := NewScene()
	r := New(KindRect, Point{})
	s.Add(r)
	s.SetActive(r)
	s.RemoveByKey(r.StorageKey())
	if s.Active() != nil {
		t.Fatal("active survived removal")
	}
	if s.Has(r) {
		t.Fatal("removed object still in scene")
	}
}

func TestRekey(t *testing.T) {
	s := NewScene()
	o := New(KindPath, Point{})
	s.Add(o)
	old := o.StorageKey()
	o.StorageID = "stroke-1"
	s.Rekey(old, o)

	if s.ByKey(old) != nil {
		t.Fatal("old key still resolves")
	}
	if s.ByKey("stroke-1") != o {
		t.Fatal("new key does not resolve")
	}
}

func TestSnapshotReturnsClones(t *testing.T) {
	s := NewScene()
	r := New(KindRect, Point{X: 1, Y: 2})
	r.Points = []Point{{X: 3, Y: 4}}
	s.Add(r)

	snap := s.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("snapshot has %d objects, want 1", len(snap))
	}
	if snap[0] == r {
		t.Fatal("snapshot shares the live object pointer")
	}
	snap[0].Left = 99
	snap[0].Points[0].X = 99
	if r.Left == 99 || r.Points[0].X == 99 {
		t.Fatal("mutating a snapshot reached the live scene")
	}
}

func TestActiveCloneDetached(t *testing.T) {
	s := NewScene()
	if s.ActiveClone() != nil {
		t.Fatal("clone of empty selection")
	}
	r := New(KindRect, Point{X: 5, Y: 5})
	s.Add(r)
	s.SetActive(r)

	c := s.ActiveClone()
	if c == nil || c == r {
		t.Fatal("active clone missing or shared")
	}
	c.Left = 77
	if r.Left == 77 {
		t.Fatal("mutating the clone reached the selection")
	}
}

func TestUpdateWritesVisibleToReaders(t *testing.T) {
	s := NewScene()
	r := New(KindRect, Point{})
	s.Add(r)
	s.Update(func() { r.Left = 42 })
	if got := s.Snapshot()[0].Left; got != 42 {
		t.Fatalf("snapshot saw %v after update, want 42", got)
	}
	seen := 0.0
	s.ForEach(func(o *Object) { seen = o.Left })
	if seen != 42 {
		t.Fatalf("ForEach saw %v after update, want 42", seen)
	}
}

func TestCloneIsDeep(t *testing.T) {
	o := New(KindLine, Point{X: 1, Y: 1})
	c := o.Clone()
	c.Points[0].X = 99
	if o.Points[0].X == 99 {
		t.Fatal("clone shares point storage")
	}
}

func TestCopyMutableFromKeepsIdentity(t *testing.T) {
	local := New(KindRect, Point{X: 1, Y: 2})
	remote := New(KindRect, Point{X: 50, Y: 60})
	remote.Fill = "#ff0000"
	remote.ZIndex = 7
	remote.PremadeName = "House"

	id, sid := local.ID, local.StorageID
	local.CopyMutableFrom(remote)

	if local.ID != id || local.StorageID != sid {
		t.Fatal("identity fields were overwritten")
	}
	if local.Left != 50 || local.Fill != "#ff0000" || local.ZIndex != 7 {
		t.Fatalf("mutable fields not copied: %+v", local)
	}
	if local.PremadeName != "House" {
		t.Fatal("premade name not restored")
	}
}
