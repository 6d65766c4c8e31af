package scene

import "sort"

// AssignZ gives o its z-index. Ordinary objects stack from 0 upward in
// creation order; paint-layer strokes stack from BasePaintZ upward so they
// stay below every ordinary object while keeping stroke-over-stroke order.
// The object is expected to already be in the scene when this is called.
func (s *Scene) AssignZ(o *Object, paintLayer bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, other := range s.objects {
		if other.IsPaintLayer() == paintLayer {
			count++
		}
	}
	if count == 0 {
		count = 1
	}
	if paintLayer {
		o.ZIndex = BasePaintZ + count - 1
	} else {
		o.ZIndex = count - 1
	}
}

// Reorder stable-sorts the render list by z-index ascending. Ties keep
// their existing relative order, so calling it twice moves nothing.
func (s *Scene) Reorder() {
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(s.objects, func(i, j int) bool {
		return s.objects[i].ZIndex < s.objects[j].ZIndex
	})
}

// MaxPaintZ returns the highest z-index among paint-layer strokes,
// skipping exclude, or BasePaintZ when no stroke exists yet. New strokes
// are appended one above the result.
func (s *Scene) MaxPaintZ(exclude *Object) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	max := BasePaintZ
	found := false
	for _, o := range s.objects {
		if o == exclude || !o.IsPaintLayer() {
			continue
		}
		if !found || o.ZIndex > max {
			max = o.ZIndex
			found = true
		}
	}
	return max
}
