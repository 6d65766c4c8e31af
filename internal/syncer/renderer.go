package syncer

import (
	"log"
	"sync/atomic"

	"github.com/SLorant/Carta-sub000/internal/storage"
)

// Renderer drives a full render pass: reconcile the snapshot, re-sort the
// z order, then redraw. Remote snapshots can arrive faster than a pass
// completes, so overlapping requests are dropped; eventual consistency
// guarantees a later snapshot triggers another pass.
type Renderer struct {
	syncer *Syncer
	busy   atomic.Bool
	redraw func()
}

// NewRenderer wires the renderer to its syncer and redraw hook. A nil
// redraw is tolerated so the engine can run before (or without) a render
// surface.
func NewRenderer(s *Syncer, redraw func()) *Renderer {
	return &Renderer{syncer: s, redraw: redraw}
}

// SetRedraw installs the redraw hook once the render surface exists.
func (r *Renderer) SetRedraw(fn func()) {
	r.redraw = fn
}

// Render runs one guarded reconcile+redraw pass for the given snapshot.
func (r *Renderer) Render(snap storage.Snapshot) {
	if !r.busy.CompareAndSwap(false, true) {
		log.Printf("[render] pass already in flight, dropping")
		return
	}
	defer r.busy.Store(false)

	r.syncer.Reconcile(snap)
	if r.redraw != nil {
		r.redraw()
	}
}
