// Package storage implements the replicated scene map: an ordered
// key->value map shared by every session of a board. Conflict resolution
// is last-writer-wins per key on a logical clock, with the actor id as the
// deterministic tie-break. Undo and redo operate on whole mutation groups,
// so a multi-object drag reverts as one step.
package storage

import "encoding/json"

// Op is one replicated key write or removal. Ops travel between sessions
// exactly as committed, so remote stores can replay them through the same
// last-writer-wins rule.
type Op struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value,omitempty"`
	Delete    bool            `json:"delete,omitempty"`
	Timestamp int64           `json:"timestamp"`
	Actor     string          `json:"actor"`
}

// Entry is one live key of the map as seen in a snapshot.
type Entry struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
	Actor     string          `json:"actor"`
}

// Snapshot is the full map contents in insertion order. Subscribers get a
// fresh one on every committed change, local or remote.
type Snapshot []Entry

// Value returns the payload stored under key, if present.
func (s Snapshot) Value(key string) (json.RawMessage, bool) {
	for _, e := range s {
		if e.Key == key {
			return e.Value, true
		}
	}
	return nil, false
}

// Keys returns the set of keys present in the snapshot.
func (s Snapshot) Keys() map[string]struct{} {
	keys := make(map[string]struct{}, len(s))
	for _, e := range s {
		keys[e.Key] = struct{}{}
	}
	return keys
}

// Tx stages the writes of one mutation group. Everything staged through
// one Mutate call commits, replicates and undoes together.
type Tx struct {
	staged []stagedOp
}

type stagedOp struct {
	key    string
	value  json.RawMessage
	delete bool
}

// Set stages a key write.
func (t *Tx) Set(key string, value json.RawMessage) {
	t.staged = append(t.staged, stagedOp{key: key, value: value})
}

// Delete stages a key removal.
func (t *Tx) Delete(key string) {
	t.staged = append(t.staged, stagedOp{key: key, delete: true})
}

// Store is the contract the sync engine needs from the replicated map.
type Store interface {
	Get(key string) (json.RawMessage, bool)
	Set(key string, value json.RawMessage)
	Delete(key string)
	Entries() Snapshot
	// Mutate batches every write staged by fn into one atomic group.
	Mutate(fn func(*Tx))
	// Subscribe registers fn to receive the full snapshot after every
	// committed change. The returned function cancels the subscription.
	Subscribe(fn func(Snapshot)) func()
	Undo() bool
	Redo() bool
}
