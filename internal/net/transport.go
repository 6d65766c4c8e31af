// Package net moves replicated-map mutation groups between sessions: the
// host runs a websocket hub that relays op groups, joiners dial in and
// replay them through the same last-writer-wins merge.
package net

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/SLorant/Carta-sub000/internal/storage"
)

// Message is one websocket frame. A joining peer first receives the whole
// current map as one "ops" frame, then incremental groups as they commit.
type Message struct {
	Type string       `json:"type"`
	Ops  []storage.Op `json:"ops,omitempty"`
}

const msgOps = "ops"

// peer is one connected session. Writes are serialized per connection.
type peer struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *peer) send(msg Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.conn.WriteJSON(msg)
}

// Hub is run by the hosting session. It owns the authoritative fan-out:
// local commits broadcast to everyone, a client's ops are applied locally
// and relayed to the other clients.
type Hub struct {
	store    *storage.MemoryStore
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	peers map[*peer]bool
}

func NewHub(store *storage.MemoryStore) *Hub {
	h := &Hub{
		store: store,
		peers: make(map[*peer]bool),
	}
	store.OnCommit = func(ops []storage.Op) {
		h.broadcast(Message{Type: msgOps, Ops: ops}, nil)
	}
	return h
}

// Run serves the hub on addr until the listener fails.
func (h *Hub) Run(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.handleWS)
	log.Printf("[net] hub listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (h *Hub) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[net] upgrade failed: %v", err)
		return
	}
	p := &peer{conn: conn}

	h.mu.Lock()
	h.peers[p] = true
	h.mu.Unlock()
	log.Printf("[net] peer connected from %s", conn.RemoteAddr())

	// Bring the newcomer up to date with the full current map.
	if err := p.send(Message{Type: msgOps, Ops: snapshotOps(h.store.Entries())}); err != nil {
		log.Printf("[net] initial sync to %s failed: %v", conn.RemoteAddr(), err)
	}

	go h.readLoop(p)
}

func (h *Hub) readLoop(p *peer) {
	defer func() {
		h.mu.Lock()
		delete(h.peers, p)
		h.mu.Unlock()
		p.conn.Close()
		log.Printf("[net] peer %s disconnected", p.conn.RemoteAddr())
	}()

	for {
		var msg Message
		if err := p.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type != msgOps {
			continue
		}
		h.store.ApplyRemote(msg.Ops)
		h.broadcast(msg, p)
	}
}

func (h *Hub) broadcast(msg Message, exclude *peer) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		if p == exclude {
			continue
		}
		if err := p.send(msg); err != nil {
			log.Printf("[net] send to %s failed: %v", p.conn.RemoteAddr(), err)
		}
	}
}

// Client is a joining session's connection to the host hub.
type Client struct {
	peer  *peer
	store *storage.MemoryStore
}

// Join dials the host, wires local commits to the wire, and starts
// replaying incoming ops into the store.
func Join(hostAddr string, store *storage.MemoryStore) (*Client, error) {
	url := fmt.Sprintf("ws://%s/ws", hostAddr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	c := &Client{peer: &peer{conn: conn}, store: store}

	store.OnCommit = func(ops []storage.Op) {
		if err := c.peer.send(Message{Type: msgOps, Ops: ops}); err != nil {
			log.Printf("[net] send to host failed: %v", err)
		}
	}

	go c.readLoop()
	log.Printf("[net] joined host at %s", hostAddr)
	return c, nil
}

func (c *Client) readLoop() {
	defer c.peer.conn.Close()
	for {
		var msg Message
		if err := c.peer.conn.ReadJSON(&msg); err != nil {
			log.Printf("[net] disconnected from host: %v", err)
			return
		}
		if msg.Type == msgOps {
			c.store.ApplyRemote(msg.Ops)
		}
	}
}

// Close tears the client connection down.
func (c *Client) Close() error {
	return c.peer.conn.Close()
}

func snapshotOps(snap storage.Snapshot) []storage.Op {
	ops := make([]storage.Op, 0, len(snap))
	for _, e := range snap {
		ops = append(ops, storage.Op{
			Key:       e.Key,
			Value:     e.Value,
			Timestamp: e.Timestamp,
			Actor:     e.Actor,
		})
	}
	return ops
}
