package gesture

import (
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"github.com/SLorant/Carta-sub000/internal/scene"
)

// pasteOffset nudges pasted clones so they do not land exactly on their
// source.
const pasteOffset = 10.0

// CopySelection serializes the active object to a transient clipboard
// payload. Returns "" when nothing is selected.
func (h *Handler) CopySelection() string {
	active := h.sc.Active()
	if active == nil {
		return ""
	}
	data, err := json.Marshal([]*scene.Object{active})
	if err != nil {
		log.Printf("[gesture] copy failed: %v", err)
		return ""
	}
	return string(data)
}

// Paste inserts the objects from a clipboard payload as fresh clones,
// offset slightly, and syncs them to storage as one mutation group. A
// payload that fails to parse aborts the whole paste; nothing is partially
// inserted. Paint-layer members are skipped, the paint layer is not a
// paste target.
func (h *Handler) Paste(payload string) {
	if payload == "" {
		return
	}
	var objs []*scene.Object
	if err := json.Unmarshal([]byte(payload), &objs); err != nil {
		log.Printf("[gesture] discarding malformed paste payload: %v", err)
		return
	}

	var added []*scene.Object
	for _, src := range objs {
		if src == nil || src.IsPaintLayer() {
			continue
		}
		clone := src.Clone()
		clone.ID = uuid.NewString()
		clone.StorageID = ""
		clone.Left += pasteOffset
		clone.Top += pasteOffset
		for i := range clone.Points {
			clone.Points[i].X += pasteOffset
			clone.Points[i].Y += pasteOffset
		}
		clone.Pending = true
		h.sc.Add(clone)
		h.sc.AssignZ(clone, false)
		added = append(added, clone)
	}
	if len(added) == 0 {
		return
	}
	h.sc.Reorder()
	h.sync.SyncMany(added)
	if len(added) == 1 {
		h.sc.SetActive(added[0])
	}
	h.changed()
}
