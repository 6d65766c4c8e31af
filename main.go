package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"fyne.io/fyne/v2"
	"github.com/google/uuid"

	"github.com/SLorant/Carta-sub000/internal/assets"
	"github.com/SLorant/Carta-sub000/internal/brush"
	"github.com/SLorant/Carta-sub000/internal/gesture"
	boardnet "github.com/SLorant/Carta-sub000/internal/net"
	"github.com/SLorant/Carta-sub000/internal/scene"
	"github.com/SLorant/Carta-sub000/internal/storage"
	"github.com/SLorant/Carta-sub000/internal/syncer"
	"github.com/SLorant/Carta-sub000/internal/ui"
	"github.com/SLorant/Carta-sub000/internal/viewport"
)

// defaultPremades are the bundled stamp assets, resolved relative to the
// working directory.
var defaultPremades = map[string]string{
	"House":    "premades/house.png",
	"Tree":     "premades/tree.png",
	"Mountain": "premades/mountain.png",
	"Castle":   "premades/castle.png",
}

func main() {
	join := flag.String("join", "", "host address (host:port) of a board to join; empty hosts a new board")
	port := flag.Int("port", 8888, "port to host on")
	discover := flag.Bool("discover", false, "browse the LAN for a hosted board and join the first one found")
	flag.Parse()

	store := storage.NewMemoryStore(uuid.NewString())
	sc := scene.NewScene()
	view := viewport.New()
	br := brush.New()
	loader := assets.NewHTTPLoader()
	placer := assets.NewPlacer(loader)
	sy := syncer.New(store, sc)
	handler := gesture.NewHandler(sc, view, br, placer, sy)
	renderer := syncer.NewRenderer(sy, nil)
	store.Subscribe(renderer.Render)

	addr := *join
	if *discover && addr == "" {
		addr = browseForBoard()
	}

	var status string
	if addr != "" {
		client, err := boardnet.Join(addr, store)
		if err != nil {
			log.Fatalf("could not join board at %s: %v", addr, err)
		}
		defer client.Close()
		status = "Joined board at " + addr
	} else {
		hub := boardnet.NewHub(store)
		go func() {
			if err := hub.Run(fmt.Sprintf(":%d", *port)); err != nil {
				log.Printf("hub stopped: %v", err)
			}
		}()
		if server, err := boardnet.Advertise(*port); err != nil {
			log.Printf("mDNS advertise failed: %v", err)
		} else {
			defer server.Shutdown()
		}
		ip, _ := boardnet.OutgoingIP()
		status = fmt.Sprintf("Hosting board at %s:%d", ip, *port)
	}
	log.Println(status)

	ui.RunApp("Carta", status, func(win fyne.Window) (*ui.BoardWidget, fyne.CanvasObject) {
		board := ui.NewBoardWidget(sc, view, handler, loader)
		renderer.SetRedraw(func() { fyne.Do(board.Refresh) })
		toolbar := ui.NewToolbar(ui.Controls{
			Window:   win,
			Board:    board,
			Scene:    sc,
			Handler:  handler,
			Brush:    br,
			Store:    store,
			Syncer:   sy,
			View:     view,
			Placer:   placer,
			Premades: defaultPremades,
		})
		return board, toolbar
	})
}

// browseForBoard waits briefly for an mDNS answer and returns the first
// advertised board, or "" when none shows up.
func browseForBoard() string {
	found := make(chan string, 1)
	go func() {
		if err := boardnet.Browse(func(addr string) {
			select {
			case found <- addr:
			default:
			}
		}); err != nil {
			log.Printf("mDNS browse failed: %v", err)
		}
	}()
	select {
	case addr := <-found:
		return addr
	case <-time.After(3 * time.Second):
		log.Println("no hosted board found on the LAN")
		return ""
	}
}
