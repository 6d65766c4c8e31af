// Package assets handles premade-asset stamping: an armed asset waits for
// the next canvas click, the image loads asynchronously, and the result is
// placed centered on the click point at a fixed footprint.
package assets

import (
	"image"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/SLorant/Carta-sub000/internal/scene"
)

const (
	// DefaultFootprint is the longest edge, in scene units, an asset is
	// scaled to when stamped.
	DefaultFootprint = 120.0
	// LoadTimeout force-clears the in-flight guard if a load never
	// resolves, so the tool cannot get stuck armed-but-dead.
	LoadTimeout = 5 * time.Second
)

// Loader resolves an asset source to decoded pixels. Failures must come
// back as errors, never panics.
type Loader interface {
	Load(src string) (image.Image, error)
}

// Placer owns the armed-asset state and the single-flight placement guard.
type Placer struct {
	mu       sync.Mutex
	loader   Loader
	timeout  time.Duration
	inFlight bool
	name     string
	src      string
}

func NewPlacer(loader Loader) *Placer {
	return &Placer{loader: loader, timeout: LoadTimeout}
}

// SetTimeout overrides the guard timeout.
func (p *Placer) SetTimeout(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.timeout = d
}

// Arm selects a premade asset; the next canvas click places it.
func (p *Placer) Arm(name, src string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = name
	p.src = src
}

// Disarm clears the armed asset.
func (p *Placer) Disarm() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.name = ""
	p.src = ""
}

// Armed reports whether an asset is waiting for a click.
func (p *Placer) Armed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src != ""
}

// PlaceArmed stamps the armed asset at the click point. See Place.
func (p *Placer) PlaceArmed(click scene.Point, sc *scene.Scene, placed func(*scene.Object)) bool {
	p.mu.Lock()
	name, src := p.name, p.src
	p.mu.Unlock()
	if src == "" {
		return false
	}
	return p.Place(name, src, click, sc, placed)
}

// Place loads src asynchronously and, on success, adds an image object
// centered on the click point, z-assigned and reordered, then hands it to
// placed (typically the storage sync). Only one load-and-place may be in
// flight; rapid repeated clicks are dropped until it resolves. On load
// failure the scene is left unchanged and the guard still clears.
func (p *Placer) Place(name, src string, click scene.Point, sc *scene.Scene, placed func(*scene.Object)) bool {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		log.Printf("[assets] placement already in flight, ignoring click")
		return false
	}
	p.inFlight = true
	timeout := p.timeout
	p.mu.Unlock()

	guard := time.AfterFunc(timeout, func() {
		log.Printf("[assets] load of %q timed out, clearing guard", src)
		p.clear()
	})

	go func() {
		defer guard.Stop()
		defer p.clear()

		img, err := p.loader.Load(src)
		if err != nil {
			log.Printf("[assets] load of %q failed: %v", src, err)
			return
		}

		w, h := footprint(img.Bounds())
		// Pending until the placed callback runs the first storage write;
		// a reconcile in that window must not treat the stamp as an orphan.
		obj := &scene.Object{
			ID:          uuid.NewString(),
			Kind:        scene.KindImage,
			Src:         src,
			PremadeName: name,
			Left:        click.X - w/2,
			Top:         click.Y - h/2,
			Width:       w,
			Height:      h,
			Opacity:     1,
			Pending:     true,
		}
		sc.Add(obj)
		sc.AssignZ(obj, false)
		sc.Reorder()
		if placed != nil {
			placed(obj)
		}
	}()
	return true
}

func (p *Placer) clear() {
	p.mu.Lock()
	p.inFlight = false
	p.mu.Unlock()
}

// footprint scales natural dimensions so the longest edge matches
// DefaultFootprint, preserving aspect ratio.
func footprint(b image.Rectangle) (w, h float64) {
	nw, nh := float64(b.Dx()), float64(b.Dy())
	if nw <= 0 || nh <= 0 {
		return DefaultFootprint, DefaultFootprint
	}
	if nw >= nh {
		return DefaultFootprint, DefaultFootprint * nh / nw
	}
	return DefaultFootprint * nw / nh, DefaultFootprint
}
