package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
)

type fileEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

// Save writes the full replicated map to w as JSON.
func Save(w io.Writer, s Store) error {
	entries := s.Entries()
	out := make([]fileEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, fileEntry{Key: e.Key, Value: e.Value})
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal board: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write board: %w", err)
	}
	log.Printf("[store] saved %d entries", len(out))
	return nil
}

// Load replaces the map contents with a previously saved board, committed
// as one mutation group so the whole load is a single undo step. A file
// that fails to parse aborts the load; nothing is partially inserted.
func Load(r io.Reader, s Store) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read board: %w", err)
	}
	var in []fileEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse board: %w", err)
	}

	current := s.Entries()
	s.Mutate(func(tx *Tx) {
		loaded := make(map[string]struct{}, len(in))
		for _, e := range in {
			tx.Set(e.Key, e.Value)
			loaded[e.Key] = struct{}{}
		}
		for _, e := range current {
			if _, ok := loaded[e.Key]; !ok {
				tx.Delete(e.Key)
			}
		}
	})
	log.Printf("[store] loaded %d entries", len(in))
	return nil
}
