package net

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SLorant/Carta-sub000/internal/storage"
)

func startHub(t *testing.T, store *storage.MemoryStore) string {
	t.Helper()
	hub := NewHub(store)
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.handleWS)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

// waitFor polls until the store holds want under key.
func waitFor(t *testing.T, store *storage.MemoryStore, key, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if v, ok := store.Get(key); ok && string(v) == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	v, _ := store.Get(key)
	t.Fatalf("store never converged: %s = %s, want %s", key, v, want)
}

func TestJoinReceivesFullSnapshot(t *testing.T) {
	hostStore := storage.NewMemoryStore("host")
	hostStore.Set("r1", json.RawMessage(`{"type":"rect"}`))
	hostStore.Set("r2", json.RawMessage(`{"type":"circle"}`))
	addr := startHub(t, hostStore)

	clientStore := storage.NewMemoryStore("client")
	c, err := Join(addr, clientStore)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	defer c.Close()

	waitFor(t, clientStore, "r1", `{"type":"rect"}`)
	waitFor(t, clientStore, "r2", `{"type":"circle"}`)
}

func TestClientCommitReachesHost(t *testing.T) {
	hostStore := storage.NewMemoryStore("host")
	addr := startHub(t, hostStore)

	clientStore := storage.NewMemoryStore("client")
	c, err := Join(addr, clientStore)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	defer c.Close()

	clientStore.Set("r1", json.RawMessage(`{"left":5}`))
	waitFor(t, hostStore, "r1", `{"left":5}`)
}

func TestHostCommitReachesClient(t *testing.T) {
	hostStore := storage.NewMemoryStore("host")
	addr := startHub(t, hostStore)

	clientStore := storage.NewMemoryStore("client")
	c, err := Join(addr, clientStore)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	defer c.Close()

	hostStore.Set("r1", json.RawMessage(`{"left":9}`))
	waitFor(t, clientStore, "r1", `{"left":9}`)
}

func TestHubRelaysBetweenClients(t *testing.T) {
	hostStore := storage.NewMemoryStore("host")
	addr := startHub(t, hostStore)

	storeA := storage.NewMemoryStore("client-a")
	a, err := Join(addr, storeA)
	if err != nil {
		t.Fatalf("join a: %v", err)
	}
	defer a.Close()

	storeB := storage.NewMemoryStore("client-b")
	b, err := Join(addr, storeB)
	if err != nil {
		t.Fatalf("join b: %v", err)
	}
	defer b.Close()

	storeA.Set("r1", json.RawMessage(`{"fill":"#ff0000"}`))

	waitFor(t, hostStore, "r1", `{"fill":"#ff0000"}`)
	waitFor(t, storeB, "r1", `{"fill":"#ff0000"}`)
}

func TestDeleteReplicates(t *testing.T) {
	hostStore := storage.NewMemoryStore("host")
	addr := startHub(t, hostStore)

	clientStore := storage.NewMemoryStore("client")
	c, err := Join(addr, clientStore)
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	defer c.Close()

	hostStore.Set("r1", json.RawMessage(`1`))
	waitFor(t, clientStore, "r1", `1`)

	hostStore.Delete("r1")
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, ok := clientStore.Get("r1"); !ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("delete never reached the client")
}
