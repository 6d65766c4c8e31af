// Package syncer is the bidirectional bridge between the local scene and
// the replicated scene map: local mutations go out as serialized map
// entries, remote snapshots come back in through Reconcile.
package syncer

import (
	"encoding/json"
	"log"

	"github.com/SLorant/Carta-sub000/internal/scene"
	"github.com/SLorant/Carta-sub000/internal/storage"
)

type Syncer struct {
	store storage.Store
	sc    *scene.Scene
}

func New(store storage.Store, sc *scene.Scene) *Syncer {
	return &Syncer{store: store, sc: sc}
}

// Scene returns the scene this syncer reconciles into.
func (s *Syncer) Scene() *scene.Scene {
	return s.sc
}

// SyncOne serializes one object and writes it under its storage key.
// Objects without identity are skipped silently. Serialization happens
// under the scene lock so a concurrent reconcile cannot rewrite the fields
// mid-marshal.
func (s *Syncer) SyncOne(o *scene.Object) {
	if o == nil || o.StorageKey() == "" {
		return
	}
	var data []byte
	var err error
	s.sc.Update(func() {
		o.Pending = false
		data, err = json.Marshal(o)
	})
	if err != nil {
		log.Printf("[sync] marshal %q failed: %v", o.StorageKey(), err)
		return
	}
	s.store.Set(o.StorageKey(), data)
}

// SyncMany writes several objects as one mutation group, so a multi-object
// drag lands as a single replicated transaction and one undo step.
func (s *Syncer) SyncMany(objs []*scene.Object) {
	s.store.Mutate(func(tx *storage.Tx) {
		s.sc.Update(func() {
			for _, o := range objs {
				if o == nil || o.StorageKey() == "" {
					continue
				}
				data, err := json.Marshal(o)
				if err != nil {
					log.Printf("[sync] marshal %q failed: %v", o.StorageKey(), err)
					continue
				}
				o.Pending = false
				tx.Set(o.StorageKey(), data)
			}
		})
	})
}

// DeleteOne removes the entry stored under key.
func (s *Syncer) DeleteOne(key string) {
	if key == "" {
		return
	}
	s.store.Delete(key)
}

// DeleteAll removes every current entry as one group, so clearing the
// board is a single undo step.
func (s *Syncer) DeleteAll() {
	entries := s.store.Entries()
	if len(entries) == 0 {
		return
	}
	s.store.Mutate(func(tx *storage.Tx) {
		for _, e := range entries {
			tx.Delete(e.Key)
		}
	})
}

// Reconcile merges a full snapshot of the replicated map into the local
// scene: locals missing remotely are removed, remote entries update or
// instantiate locals, and the render order is re-sorted. The one exception
// is the active selection, whose mutable fields are left alone so a remote
// echo never fights a live edit.
func (s *Syncer) Reconcile(snap storage.Snapshot) {
	remoteKeys := snap.Keys()
	active := s.sc.Active()

	// Drop locals deleted remotely. Objects still pending their first
	// storage write are kept; they simply have not been synced yet.
	var orphans []string
	s.sc.ForEach(func(o *scene.Object) {
		if _, ok := remoteKeys[o.StorageKey()]; ok {
			return
		}
		if o.Pending {
			return
		}
		orphans = append(orphans, o.StorageKey())
	})
	for _, key := range orphans {
		s.sc.RemoveByKey(key)
	}

	for _, entry := range snap {
		remote := &scene.Object{}
		if err := json.Unmarshal(entry.Value, remote); err != nil {
			log.Printf("[sync] skipping malformed entry %q: %v", entry.Key, err)
			continue
		}
		local := s.sc.ByKey(entry.Key)
		if local != nil {
			s.sc.Update(func() {
				if local != active {
					local.CopyMutableFrom(remote)
					return
				}
				// The live edit keeps its geometry; bookkeeping fields
				// are still restored.
				local.ZIndex = remote.ZIndex
				if remote.PremadeName != "" {
					local.PremadeName = remote.PremadeName
				}
			})
			continue
		}

		obj := remote
		if obj.ID == "" {
			obj.ID = entry.Key
		}
		if obj.StorageKey() != entry.Key {
			obj.StorageID = entry.Key
		}
		s.sc.Add(obj)
		if obj.IsPaintLayer() {
			// A stroke whose z landed outside the reserved band is given
			// its band position back, keeping stroke order.
			if top := s.sc.MaxPaintZ(obj); obj.ZIndex > top || obj.ZIndex < scene.BasePaintZ {
				s.sc.AssignZ(obj, true)
			}
		}
	}

	// Re-validate the selection: it may reference an object a remote
	// deletion just removed.
	if active != nil && !s.sc.Has(active) {
		s.sc.ClearActive()
	}

	s.sc.Reorder()
}
