// Package viewport owns the zoom/pan state of one canvas session and the
// screen<->scene coordinate transform. Cursor broadcasting, comment-anchor
// placement and gesture hit-testing all go through the same two formulas,
// otherwise positions drift apart between users:
//
//	screen = scene*zoom + pan
//	scene  = (screen - pan) / zoom
package viewport

import (
	"sync"

	"github.com/SLorant/Carta-sub000/internal/scene"
)

const (
	MinZoom = 0.2
	MaxZoom = 10.0
	// WheelMaxZoom caps the wheel-zoom path; the explicit zoom buttons can
	// still go all the way to MaxZoom.
	WheelMaxZoom = 1.0
	ZoomStep     = 0.05
)

// Viewport is created on canvas mount and lives for the session. It is
// never written to the replicated map.
type Viewport struct {
	mu     sync.RWMutex
	zoom   float64
	panX   float64
	panY   float64
	width  float64
	height float64
}

func New() *Viewport {
	return &Viewport{zoom: 1}
}

func (v *Viewport) Zoom() float64 {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.zoom
}

func (v *Viewport) Pan() (x, y float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.panX, v.panY
}

// Resize records the current render-surface dimensions. Idempotent; call
// it again whenever the window changes size.
func (v *Viewport) Resize(width, height float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.width = width
	v.height = height
}

// Size returns the last recorded render-surface dimensions.
func (v *Viewport) Size() (w, h float64) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.width, v.height
}

// PanBy shifts the pan offset by a screen-space delta.
func (v *Viewport) PanBy(dx, dy float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.panX += dx
	v.panY += dy
}

// ZoomAtPoint clamps newZoom into [MinZoom, MaxZoom] and re-centers the
// pan so the scene point under the given screen point stays put. This is
// what makes zoom feel anchored under the cursor.
func (v *Viewport) ZoomAtPoint(p scene.Point, newZoom float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.zoomAtLocked(p, clamp(newZoom, MinZoom, MaxZoom))
}

func (v *Viewport) zoomAtLocked(p scene.Point, newZoom float64) {
	// Scene point currently under p.
	sx := (p.X - v.panX) / v.zoom
	sy := (p.Y - v.panY) / v.zoom
	v.zoom = newZoom
	v.panX = p.X - sx*newZoom
	v.panY = p.Y - sy*newZoom
}

// WheelZoom applies one wheel notch anchored at the cursor. The wheel path
// is capped at WheelMaxZoom.
func (v *Viewport) WheelZoom(cursor scene.Point, notches float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	target := clamp(v.zoom+notches*ZoomStep, MinZoom, WheelMaxZoom)
	v.zoomAtLocked(cursor, target)
}

// ZoomIn steps the zoom up, anchored at the surface center.
func (v *Viewport) ZoomIn() {
	v.stepZoom(ZoomStep)
}

// ZoomOut steps the zoom down, anchored at the surface center.
func (v *Viewport) ZoomOut() {
	v.stepZoom(-ZoomStep)
}

func (v *Viewport) stepZoom(delta float64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	center := scene.Point{X: v.width / 2, Y: v.height / 2}
	v.zoomAtLocked(center, clamp(v.zoom+delta, MinZoom, MaxZoom))
}

// Reset restores zoom 1.0 anchored at the surface center.
func (v *Viewport) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	center := scene.Point{X: v.width / 2, Y: v.height / 2}
	v.zoomAtLocked(center, 1)
}

// ToScreen converts a scene-space point to screen space.
func (v *Viewport) ToScreen(p scene.Point) scene.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return scene.Point{X: p.X*v.zoom + v.panX, Y: p.Y*v.zoom + v.panY}
}

// ToScene converts a screen-space point to scene space.
func (v *Viewport) ToScene(p scene.Point) scene.Point {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return scene.Point{X: (p.X - v.panX) / v.zoom, Y: (p.Y - v.panY) / v.zoom}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
