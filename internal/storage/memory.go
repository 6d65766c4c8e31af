package storage

import (
	"encoding/json"
	"log"
	"sync"
)

// record is the stored state of one live key.
type record struct {
	value     json.RawMessage
	timestamp int64
	actor     string
}

// mark remembers when a key was deleted so a stale concurrent write from
// another session cannot resurrect it.
type mark struct {
	timestamp int64
	actor     string
}

// change is one reversible step of a committed group.
type change struct {
	key    string
	before *record
	after  *record
}

// MemoryStore is the in-process implementation of the replicated map used
// by every session. The network layer feeds it remote ops through
// ApplyRemote and forwards local commits through OnCommit.
type MemoryStore struct {
	mu      sync.RWMutex
	actor   string
	clock   int64
	records map[string]*record
	order   []string
	deleted map[string]mark

	undo [][]change
	redo [][]change

	subs    map[int]func(Snapshot)
	nextSub int

	// OnCommit, when set, receives every locally committed op group
	// (including undo/redo inversions) for broadcast to other sessions.
	OnCommit func([]Op)
}

func NewMemoryStore(actor string) *MemoryStore {
	return &MemoryStore{
		actor:   actor,
		records: make(map[string]*record),
		deleted: make(map[string]mark),
		subs:    make(map[int]func(Snapshot)),
	}
}

// Actor returns the session's actor id.
func (m *MemoryStore) Actor() string {
	return m.actor
}

func (m *MemoryStore) Get(key string) (json.RawMessage, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	if !ok {
		return nil, false
	}
	return rec.value, true
}

func (m *MemoryStore) Set(key string, value json.RawMessage) {
	m.Mutate(func(tx *Tx) { tx.Set(key, value) })
}

func (m *MemoryStore) Delete(key string) {
	m.Mutate(func(tx *Tx) { tx.Delete(key) })
}

func (m *MemoryStore) Entries() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *MemoryStore) snapshotLocked() Snapshot {
	snap := make(Snapshot, 0, len(m.order))
	for _, key := range m.order {
		rec, ok := m.records[key]
		if !ok {
			continue
		}
		snap = append(snap, Entry{
			Key:       key,
			Value:     rec.value,
			Timestamp: rec.timestamp,
			Actor:     rec.actor,
		})
	}
	return snap
}

// Mutate commits every write staged by fn as one group: one replicated
// broadcast, one undo step.
func (m *MemoryStore) Mutate(fn func(*Tx)) {
	tx := &Tx{}
	fn(tx)
	if len(tx.staged) == 0 {
		return
	}

	m.mu.Lock()
	group := make([]change, 0, len(tx.staged))
	ops := make([]Op, 0, len(tx.staged))
	for _, st := range tx.staged {
		m.clock++
		op := Op{
			Key:       st.key,
			Value:     st.value,
			Delete:    st.delete,
			Timestamp: m.clock,
			Actor:     m.actor,
		}
		group = append(group, m.applyLocked(op))
		ops = append(ops, op)
	}
	m.undo = append(m.undo, group)
	m.redo = nil
	snap := m.snapshotLocked()
	subs := m.subsLocked()
	commit := m.OnCommit
	m.mu.Unlock()

	m.notify(subs, snap)
	if commit != nil {
		commit(ops)
	}
}

// applyLocked performs one op unconditionally and returns the reversible
// change. Local commits always win locally; conflict resolution only
// matters for remote ops.
func (m *MemoryStore) applyLocked(op Op) change {
	ch := change{key: op.Key}
	if rec, ok := m.records[op.Key]; ok {
		before := *rec
		ch.before = &before
	}
	if op.Delete {
		m.removeLocked(op.Key)
		m.deleted[op.Key] = mark{timestamp: op.Timestamp, actor: op.Actor}
	} else {
		m.setLocked(op.Key, &record{value: op.Value, timestamp: op.Timestamp, actor: op.Actor})
		delete(m.deleted, op.Key)
	}
	if rec, ok := m.records[op.Key]; ok {
		after := *rec
		ch.after = &after
	}
	return ch
}

func (m *MemoryStore) setLocked(key string, rec *record) {
	if _, ok := m.records[key]; !ok {
		m.order = append(m.order, key)
	}
	m.records[key] = rec
}

func (m *MemoryStore) removeLocked(key string) {
	if _, ok := m.records[key]; !ok {
		return
	}
	delete(m.records, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// ApplyRemote merges ops received from another session. Each op lands
// only if it is newer than what the key currently holds: timestamp first,
// actor id as the tie-break. Remote ops never enter the local undo stack.
func (m *MemoryStore) ApplyRemote(ops []Op) {
	if len(ops) == 0 {
		return
	}
	m.mu.Lock()
	applied := 0
	for _, op := range ops {
		if op.Timestamp > m.clock {
			m.clock = op.Timestamp
		}
		if !m.remoteWinsLocked(op) {
			log.Printf("[store] ignoring stale remote op for %q from %s", op.Key, op.Actor)
			continue
		}
		if op.Delete {
			m.removeLocked(op.Key)
			m.deleted[op.Key] = mark{timestamp: op.Timestamp, actor: op.Actor}
		} else {
			m.setLocked(op.Key, &record{value: op.Value, timestamp: op.Timestamp, actor: op.Actor})
			delete(m.deleted, op.Key)
		}
		applied++
	}
	snap := m.snapshotLocked()
	subs := m.subsLocked()
	m.mu.Unlock()

	if applied > 0 {
		m.notify(subs, snap)
	}
}

func (m *MemoryStore) remoteWinsLocked(op Op) bool {
	if rec, ok := m.records[op.Key]; ok {
		return newer(op.Timestamp, op.Actor, rec.timestamp, rec.actor)
	}
	if d, ok := m.deleted[op.Key]; ok {
		return newer(op.Timestamp, op.Actor, d.timestamp, d.actor)
	}
	return true
}

// newer implements the LWW comparison: higher timestamp wins, equal
// timestamps fall back to the lexicographically higher actor id.
func newer(ts int64, actor string, curTS int64, curActor string) bool {
	if ts != curTS {
		return ts > curTS
	}
	return actor > curActor
}

// Undo reverts the most recent local mutation group. The inversion is
// committed as a fresh group so it replicates like any other edit.
func (m *MemoryStore) Undo() bool {
	return m.shift(&m.undo, &m.redo, func(ch change) *record { return ch.before })
}

// Redo re-applies the most recently undone group.
func (m *MemoryStore) Redo() bool {
	return m.shift(&m.redo, &m.undo, func(ch change) *record { return ch.after })
}

func (m *MemoryStore) shift(from, to *[][]change, target func(change) *record) bool {
	m.mu.Lock()
	if len(*from) == 0 {
		m.mu.Unlock()
		return false
	}
	group := (*from)[len(*from)-1]
	*from = (*from)[:len(*from)-1]

	ops := make([]Op, 0, len(group))
	for i := len(group) - 1; i >= 0; i-- {
		ch := group[i]
		m.clock++
		op := Op{Key: ch.key, Timestamp: m.clock, Actor: m.actor}
		if rec := target(ch); rec != nil {
			op.Value = rec.value
			m.setLocked(ch.key, &record{value: rec.value, timestamp: op.Timestamp, actor: m.actor})
			delete(m.deleted, ch.key)
		} else {
			op.Delete = true
			m.removeLocked(ch.key)
			m.deleted[ch.key] = mark{timestamp: op.Timestamp, actor: m.actor}
		}
		ops = append(ops, op)
	}
	*to = append(*to, group)
	snap := m.snapshotLocked()
	subs := m.subsLocked()
	commit := m.OnCommit
	m.mu.Unlock()

	m.notify(subs, snap)
	if commit != nil {
		commit(ops)
	}
	return true
}

func (m *MemoryStore) Subscribe(fn func(Snapshot)) func() {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

func (m *MemoryStore) subsLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		out = append(out, fn)
	}
	return out
}

func (m *MemoryStore) notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
