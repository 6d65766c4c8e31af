// Package gesture interprets pointer events into canvas actions: select,
// pan, draw a freeform stroke, stretch a new shape, place an image, or
// stamp a premade asset. All gesture state lives on the Handler rather
// than in package globals, so one handler serves exactly one session.
package gesture

import (
	"math"
	"sync"

	"github.com/SLorant/Carta-sub000/internal/assets"
	"github.com/SLorant/Carta-sub000/internal/brush"
	"github.com/SLorant/Carta-sub000/internal/scene"
	"github.com/SLorant/Carta-sub000/internal/syncer"
	"github.com/SLorant/Carta-sub000/internal/viewport"
)

// Tool is the currently armed editing tool.
type Tool string

const (
	ToolSelect   Tool = "select"
	ToolRect     Tool = "rect"
	ToolCircle   Tool = "circle"
	ToolTriangle Tool = "triangle"
	ToolLine     Tool = "line"
	ToolText     Tool = "text"
	ToolFreeform Tool = "freeform"
	ToolPaint    Tool = "paint"
	ToolPremade  Tool = "premade"
)

// shapeKind maps shape-drawing tools to the factory kind they create.
func shapeKind(t Tool) (scene.Kind, bool) {
	switch t {
	case ToolRect:
		return scene.KindRect, true
	case ToolCircle:
		return scene.KindCircle, true
	case ToolTriangle:
		return scene.KindTriangle, true
	case ToolLine:
		return scene.KindLine, true
	case ToolText:
		return scene.KindText, true
	}
	return "", false
}

// Button identifies the pressed mouse button.
type Button int

const (
	ButtonLeft Button = iota
	ButtonMiddle
	ButtonRight
)

// Handler is the per-session gesture state machine. Pointer positions
// arrive in screen space; the viewport converts them before anything is
// hit-tested or mutated.
type Handler struct {
	mu sync.Mutex

	sc     *scene.Scene
	view   *viewport.Viewport
	brush  *brush.Brush
	placer *assets.Placer
	sync   *syncer.Syncer

	tool    Tool
	drawing bool
	panning bool
	moving  bool
	lastPan scene.Point // screen space
	origin  scene.Point // scene space, gesture start
	grab    scene.Point // offset into the dragged object
	shape   *scene.Object
	stroke  *scene.Object

	// preparedSrc holds a deferred image upload waiting for its
	// placement click.
	preparedSrc string

	// OnChange fires after any gesture step that altered what should be
	// on screen. The UI hangs its refresh off it; nil is fine.
	OnChange func()
}

func NewHandler(sc *scene.Scene, view *viewport.Viewport, b *brush.Brush, placer *assets.Placer, sy *syncer.Syncer) *Handler {
	return &Handler{
		sc:     sc,
		view:   view,
		brush:  b,
		placer: placer,
		sync:   sy,
		tool:   ToolSelect,
	}
}

// Tool returns the currently armed tool.
func (h *Handler) Tool() Tool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tool
}

// SetTool arms a tool. Switching cancels any in-progress shape gesture
// without a storage write; an abandoned shape is never persisted.
func (h *Handler) SetTool(t Tool) {
	h.mu.Lock()
	if h.drawing {
		h.drawing = false
		if h.shape != nil {
			h.sc.Remove(h.shape)
			h.shape = nil
		}
		if h.stroke != nil {
			h.sc.Remove(h.stroke)
			h.stroke = nil
		}
	}
	h.moving = false
	h.tool = t
	if t != ToolPremade {
		h.placer.Disarm()
	}
	h.mu.Unlock()
	h.sc.ClearActive()
	h.changed()
}

// Painting reports whether the session is in freeform/paint drawing mode.
func (h *Handler) Painting() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tool == ToolPaint || h.tool == ToolFreeform
}

// UpdateBrush applies brush settings, but only while the session is
// actually in freeform/paint mode (checked, not assumed).
func (h *Handler) UpdateBrush(s brush.Settings) {
	if !h.Painting() {
		return
	}
	h.brush.Configure(s)
}

// PrepareImage stores a deferred image source; the next click on empty
// canvas places it and reverts the tool to select.
func (h *Handler) PrepareImage(src string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.preparedSrc = src
}

// MouseDown starts a gesture at the given screen position.
func (h *Handler) MouseDown(p scene.Point, btn Button) {
	h.mu.Lock()

	if btn == ButtonMiddle {
		// Panning suppresses all other interpretation until release.
		h.panning = true
		h.lastPan = p
		h.mu.Unlock()
		return
	}
	if btn != ButtonLeft {
		h.mu.Unlock()
		return
	}

	sp := h.view.ToScene(p)

	if h.tool == ToolPaint || h.tool == ToolFreeform {
		h.drawing = true
		stroke := scene.New(scene.KindPath, sp)
		stroke.Stroke = h.brush.Color()
		stroke.StrokeWidth = h.brush.Width()
		stroke.Opacity = 1
		h.stroke = stroke
		h.sc.Add(stroke)
		h.mu.Unlock()
		h.changed()
		return
	}

	// Select-over-create: a selectable target under the cursor always
	// wins, whatever tool is armed.
	if target := h.sc.HitTest(sp); target != nil {
		if target.Selectable() {
			h.shape = nil
			h.preparedSrc = ""
			h.moving = true
			h.origin = sp
			h.sc.Update(func() {
				h.grab = scene.Point{X: sp.X - target.Left, Y: sp.Y - target.Top}
			})
			h.mu.Unlock()
			h.sc.SetActive(target)
			h.changed()
			return
		}
		h.sc.DeselectIfColorLayer(target)
		// Paint-layer members are not real targets; fall through.
	}

	if h.tool == ToolPremade && h.placer.Armed() {
		h.mu.Unlock()
		h.placer.PlaceArmed(sp, h.sc, func(o *scene.Object) {
			h.sync.SyncOne(o)
			h.changed()
		})
		return
	}

	if h.preparedSrc != "" {
		src := h.preparedSrc
		h.preparedSrc = ""
		h.tool = ToolSelect
		h.mu.Unlock()
		h.placer.Place("", src, sp, h.sc, func(o *scene.Object) {
			h.sync.SyncOne(o)
			h.changed()
		})
		return
	}

	if kind, ok := shapeKind(h.tool); ok {
		obj := scene.New(kind, sp)
		if obj == nil {
			h.mu.Unlock()
			return
		}
		h.sc.Add(obj)
		h.sc.AssignZ(obj, false)
		h.drawing = true
		h.shape = obj
		h.origin = sp
		h.mu.Unlock()
		h.sc.SetActive(obj)
		h.changed()
		return
	}

	// No tool, no target: discard the selection.
	h.mu.Unlock()
	h.sc.ClearActive()
	h.changed()
}

// MouseMove advances the in-flight gesture, if any.
func (h *Handler) MouseMove(p scene.Point) {
	h.mu.Lock()

	if h.panning {
		dx, dy := p.X-h.lastPan.X, p.Y-h.lastPan.Y
		h.lastPan = p
		h.mu.Unlock()
		h.view.PanBy(dx, dy)
		h.changed()
		return
	}

	sp := h.view.ToScene(p)

	if h.drawing && h.stroke != nil {
		stroke := h.stroke
		h.sc.Update(func() {
			stroke.Points = append(stroke.Points, sp)
		})
		h.mu.Unlock()
		h.changed()
		return
	}

	if h.drawing && h.shape != nil {
		h.sc.Update(func() { h.stretch(h.shape, sp) })
		h.mu.Unlock()
		h.changed()
		return
	}

	if h.moving {
		if active := h.sc.Active(); active != nil {
			h.sc.Update(func() { h.translate(active, sp) })
			h.mu.Unlock()
			h.changed()
			return
		}
		h.moving = false
	}
	h.mu.Unlock()
}

// stretch resizes an in-progress shape toward the pointer. Widths and
// heights may go negative on drag-left/up. Circle growth tracks the
// horizontal drag distance only.
func (h *Handler) stretch(o *scene.Object, sp scene.Point) {
	switch o.Kind {
	case scene.KindRect, scene.KindTriangle, scene.KindImage:
		o.Width = sp.X - h.origin.X
		o.Height = sp.Y - h.origin.Y
	case scene.KindCircle:
		o.Radius = math.Abs(sp.X-h.origin.X) / 2
	case scene.KindLine:
		if len(o.Points) >= 2 {
			o.Points[1] = sp
		}
	}
}

// translate moves an object (and its anchor points) so the grab offset
// stays under the pointer. No storage write happens here; the drag flushes
// once on release.
func (h *Handler) translate(o *scene.Object, sp scene.Point) {
	newLeft := sp.X - h.grab.X
	newTop := sp.Y - h.grab.Y
	dx, dy := newLeft-o.Left, newTop-o.Top
	o.Left = newLeft
	o.Top = newTop
	for i := range o.Points {
		o.Points[i].X += dx
		o.Points[i].Y += dy
	}
}

// MouseUp completes the gesture. A freshly drawn shape or stroke syncs to
// storage exactly once here; a moved existing object syncs once and stays
// selected.
func (h *Handler) MouseUp(p scene.Point, btn Button) {
	h.mu.Lock()

	if btn == ButtonMiddle {
		h.panning = false
		h.mu.Unlock()
		return
	}

	if h.drawing {
		h.drawing = false

		if stroke := h.stroke; stroke != nil {
			h.stroke = nil
			paint := h.tool == ToolPaint
			h.mu.Unlock()
			if paint {
				h.sc.CompletePaint(stroke)
			} else {
				h.sc.AssignZ(stroke, false)
				h.sc.Reorder()
			}
			h.sync.SyncOne(stroke)
			h.changed()
			return
		}

		if shape := h.shape; shape != nil {
			h.shape = nil
			h.mu.Unlock()
			h.sc.Reorder()
			h.sync.SyncOne(shape)
			h.sc.ClearActive()
			h.changed()
			return
		}
		h.mu.Unlock()
		return
	}

	if h.moving {
		h.moving = false
		h.mu.Unlock()
		if active := h.sc.Active(); active != nil {
			h.sync.SyncOne(active)
		}
		h.changed()
		return
	}
	h.mu.Unlock()
}

// DeleteSelection removes the active object locally and from storage.
func (h *Handler) DeleteSelection() {
	active := h.sc.Active()
	if active == nil {
		return
	}
	key := active.StorageKey()
	h.sc.RemoveByKey(key)
	h.sync.DeleteOne(key)
	h.changed()
}

func (h *Handler) changed() {
	if h.OnChange != nil {
		h.OnChange()
	}
}
