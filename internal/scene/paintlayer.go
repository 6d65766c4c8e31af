package scene

import "github.com/google/uuid"

// The paint layer groups freeform strokes drawn with the paint tool under
// the shared "color-layer" object id. Each stroke keeps its own storage id
// so it replicates as an individual map entry, but the shared id makes the
// whole group non-interactive and confines it to the negative z band.

// IsColorLayerMember reports whether o is a paint-layer stroke.
func IsColorLayerMember(o *Object) bool {
	return o != nil && o.IsPaintLayer()
}

// CompletePaint turns a just-finished freeform path into a paint-layer
// member: it takes the reserved object id, gets a fresh storage id, is
// pushed into the paint z band, and the scene is re-sorted so it drops
// beneath ordinary content. Returns the storage key to sync under.
func (s *Scene) CompletePaint(o *Object) string {
	if o == nil {
		return ""
	}
	s.mu.Lock()
	oldKey := o.StorageKey()
	o.ID = ColorLayerID
	if o.StorageID == "" {
		o.StorageID = uuid.NewString()
	}
	s.mu.Unlock()
	s.Rekey(oldKey, o)
	s.AssignZ(o, true)
	s.Reorder()
	s.DeselectIfColorLayer(o)
	return o.StorageKey()
}

// DeselectIfColorLayer drops the active selection if it points at a
// paint-layer member. A generic hit-test may briefly target one; it must
// never stay selected.
func (s *Scene) DeselectIfColorLayer(o *Object) {
	if !IsColorLayerMember(o) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == o {
		s.active = nil
	}
}
