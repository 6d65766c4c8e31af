package assets

import (
	"errors"
	"image"
	"testing"
	"time"

	"github.com/SLorant/Carta-sub000/internal/scene"
)

// stubLoader serves a fixed image, an error, or blocks until released.
type stubLoader struct {
	img   image.Image
	err   error
	block chan struct{}
}

func (l *stubLoader) Load(string) (image.Image, error) {
	if l.block != nil {
		<-l.block
	}
	return l.img, l.err
}

func waitPlaced(t *testing.T, ch chan *scene.Object) *scene.Object {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("placement never completed")
		return nil
	}
}

// waitIdle polls until the single-flight guard has cleared.
func waitIdle(t *testing.T, p *Placer, sc *scene.Scene) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Place("probe", "probe.png", scene.Point{}, sc, nil) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("guard never cleared")
}

func TestPlaceScalesAndCenters(t *testing.T) {
	// 200x100 natural size: longest edge scales to the footprint.
	p := NewPlacer(&stubLoader{img: image.NewRGBA(image.Rect(0, 0, 200, 100))})
	sc := scene.NewScene()
	placed := make(chan *scene.Object, 1)

	if !p.Place("House", "house.png", scene.Point{X: 300, Y: 200}, sc, func(o *scene.Object) {
		placed <- o
	}) {
		t.Fatal("place refused with no load in flight")
	}
	o := waitPlaced(t, placed)

	if o.Width != 120 || o.Height != 60 {
		t.Fatalf("scaled to %vx%v, want 120x60", o.Width, o.Height)
	}
	if o.Left != 300-60 || o.Top != 200-30 {
		t.Fatalf("placed at %v,%v, want centered on the click", o.Left, o.Top)
	}
	if o.Kind != scene.KindImage || o.PremadeName != "House" || o.Src != "house.png" {
		t.Fatalf("object fields wrong: %+v", o)
	}
	if o.ID == "" {
		t.Fatal("placed object has no id")
	}
	if !o.Pending {
		t.Fatal("stamp must stay pending until its first sync, or a reconcile drops it")
	}
	if !sc.Has(o) {
		t.Fatal("placed object not added to scene")
	}
}

func TestPlaceTallImageScalesByHeight(t *testing.T) {
	p := NewPlacer(&stubLoader{img: image.NewRGBA(image.Rect(0, 0, 50, 100))})
	sc := scene.NewScene()
	placed := make(chan *scene.Object, 1)
	p.Place("", "tall.png", scene.Point{}, sc, func(o *scene.Object) { placed <- o })
	o := waitPlaced(t, placed)
	if o.Width != 60 || o.Height != 120 {
		t.Fatalf("scaled to %vx%v, want 60x120", o.Width, o.Height)
	}
}

func TestPlaceSingleFlight(t *testing.T) {
	loader := &stubLoader{img: image.NewRGBA(image.Rect(0, 0, 10, 10)), block: make(chan struct{})}
	p := NewPlacer(loader)
	sc := scene.NewScene()
	placed := make(chan *scene.Object, 2)

	if !p.Place("", "a.png", scene.Point{}, sc, func(o *scene.Object) { placed <- o }) {
		t.Fatal("first place refused")
	}
	// Rapid second click while the first load is still resolving.
	if p.Place("", "b.png", scene.Point{}, sc, func(o *scene.Object) { placed <- o }) {
		t.Fatal("second place accepted while one was in flight")
	}

	close(loader.block)
	waitPlaced(t, placed)
	if sc.Len() != 1 {
		t.Fatalf("%d objects placed, want 1", sc.Len())
	}
}

func TestPlaceFailureLeavesSceneUntouched(t *testing.T) {
	loader := &stubLoader{err: errors.New("boom")}
	p := NewPlacer(loader)
	sc := scene.NewScene()

	called := false
	p.Place("", "broken.png", scene.Point{}, sc, func(*scene.Object) { called = true })

	// The guard clears even on failure, so the next attempt is accepted.
	// The probe goes into its own scene so the original stays inspectable.
	loader.err = nil
	loader.img = image.NewRGBA(image.Rect(0, 0, 10, 10))
	waitIdle(t, p, scene.NewScene())

	if called {
		t.Fatal("placed callback ran for a failed load")
	}
	if sc.Len() != 0 {
		t.Fatalf("failed load left %d objects in the scene", sc.Len())
	}
}

func TestPlaceTimeoutClearsGuard(t *testing.T) {
	loader := &stubLoader{block: make(chan struct{})}
	defer close(loader.block)
	p := NewPlacer(loader)
	p.SetTimeout(10 * time.Millisecond)
	sc := scene.NewScene()

	if !p.Place("", "stuck.png", scene.Point{}, sc, nil) {
		t.Fatal("place refused")
	}
	waitIdle(t, p, sc)
}

func TestArmDisarm(t *testing.T) {
	p := NewPlacer(&stubLoader{img: image.NewRGBA(image.Rect(0, 0, 10, 10))})
	if p.Armed() {
		t.Fatal("armed before Arm")
	}
	p.Arm("House", "house.png")
	if !p.Armed() {
		t.Fatal("not armed after Arm")
	}
	p.Disarm()
	if p.Armed() {
		t.Fatal("still armed after Disarm")
	}
	if p.PlaceArmed(scene.Point{}, scene.NewScene(), nil) {
		t.Fatal("disarmed placer accepted a click")
	}
}
