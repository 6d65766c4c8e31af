package scene

import "sync"

// Scene holds the live objects of one canvas session in render order,
// along with the transient active-object reference. All access is guarded
// so that the gesture handler and the network goroutines can share it.
type Scene struct {
	mu      sync.RWMutex
	objects []*Object
	byKey   map[string]*Object
	active  *Object
}

func NewScene() *Scene {
	return &Scene{byKey: make(map[string]*Object)}
}

// Add appends an object to the top of the render order.
func (s *Scene) Add(o *Object) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(s.objects, o)
	s.byKey[o.StorageKey()] = o
}

// Remove takes an object out of the scene. Removing the active selection
// clears it.
func (s *Scene) Remove(o *Object) {
	if o == nil {
		return
	}
	s.RemoveByKey(o.StorageKey())
}

// RemoveByKey removes the object stored under the given storage key.
func (s *Scene) RemoveByKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.byKey[key]
	if !ok {
		return
	}
	delete(s.byKey, key)
	for i, other := range s.objects {
		if other == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			break
		}
	}
	if s.active == o {
		s.active = nil
	}
}

// Rekey refreshes the storage-key index entry for an object whose storage
// id was assigned after it was added (paint strokes get theirs late).
func (s *Scene) Rekey(oldKey string, o *Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.byKey[oldKey] == o {
		delete(s.byKey, oldKey)
	}
	s.byKey[o.StorageKey()] = o
}

// ByKey returns the object stored under key, or nil.
func (s *Scene) ByKey(key string) *Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byKey[key]
}

// Objects returns a copy of the render-ordered object list. The pointers
// are live: goroutines that only observe the scene (the render surface,
// exporters) must use Snapshot instead, and field writes to listed objects
// must go through Update.
func (s *Scene) Objects() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Object, len(s.objects))
	copy(out, s.objects)
	return out
}

// ForEach runs fn for every object in render order while holding the read
// lock, so fn sees consistent field values even during concurrent Updates.
func (s *Scene) ForEach(fn func(*Object)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.objects {
		fn(o)
	}
}

// Update runs fn under the scene write lock. Every field write to an
// object that has been added to the scene goes through here; the scene is
// shared between the gesture thread and the network goroutines, and the
// lock is what keeps their reads and writes from interleaving.
func (s *Scene) Update(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// Snapshot returns deep clones of the objects in render order. Readers on
// other goroutines work from these copies, so a reconcile rewriting the
// live objects cannot race what they are drawing.
func (s *Scene) Snapshot() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Object, len(s.objects))
	for i, o := range s.objects {
		out[i] = o.Clone()
	}
	return out
}

// ActiveClone returns a copy of the active selection, or nil.
func (s *Scene) ActiveClone() *Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.active == nil {
		return nil
	}
	return s.active.Clone()
}

// Len returns the number of live objects.
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// HitTest returns the topmost object containing p, or nil. The render
// order is walked back to front so overlapping objects resolve to the one
// painted last.
func (s *Scene) HitTest(p Point) *Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.objects) - 1; i >= 0; i-- {
		if s.objects[i].Contains(p) {
			return s.objects[i]
		}
	}
	return nil
}

// Active returns the current active-object reference, or nil. The
// reference is advisory: callers must not trust it across asynchronous
// boundaries without re-validating it is still in the scene.
func (s *Scene) Active() *Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// SetActive marks o as the active selection. Paint-layer members are
// refused; selecting them is always a no-op.
func (s *Scene) SetActive(o *Object) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o != nil && !o.Selectable() {
		return
	}
	s.active = o
}

// ClearActive drops the active selection.
func (s *Scene) ClearActive() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = nil
}

// Has reports whether o is currently part of the scene. Used to
// re-validate a possibly-stale active reference after a reconcile.
func (s *Scene) Has(o *Object) bool {
	if o == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byKey[o.StorageKey()] == o
}
