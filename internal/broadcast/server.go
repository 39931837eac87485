// Package broadcast streams per-bar pipeline.Snapshots to connected
// websocket clients: a newly connected client first replays history from
// the ring buffer as individual small MsgPack messages, then is registered
// for live ticks — the same streaming-history-then-live-ticks protocol the
// teacher's broadcaster uses, re-targeted from trade/orderbook snapshots to
// indicator snapshots.
package broadcast

import (
	"log"
	"net/http"

	"backline/internal/pipeline"
	"backline/internal/state"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Broadcaster receives snapshots from the pipeline driver and fans them
// out to connected websocket clients.
type Broadcaster struct {
	input  <-chan pipeline.Snapshot
	buffer *state.RingBuffer
}

// NewBroadcaster wires a snapshot source (typically a barbus.Bus
// subscription) to a history buffer used to hydrate new clients.
func NewBroadcaster(input <-chan pipeline.Snapshot, buffer *state.RingBuffer) *Broadcaster {
	return &Broadcaster{input: input, buffer: buffer}
}

// Start launches the fan-out loop and the websocket HTTP server, blocking
// until ListenAndServe returns.
func (b *Broadcaster) Start(addr string) error {
	hub := newHub(b.buffer)
	go hub.run(b.input)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r)
	})

	log.Printf("broadcast: listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

// Hub maintains connected clients and fans MsgPack-encoded snapshots out
// to all of them.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	buffer     *state.RingBuffer
}

func newHub(buffer *state.RingBuffer) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		buffer:     buffer,
	}
}

func (h *Hub) run(input <-chan pipeline.Snapshot) {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			log.Printf("broadcast: client connected (%d total)", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				log.Printf("broadcast: client disconnected (%d total)", len(h.clients))
			}
		case snap := <-input:
			msg := snap.AppendMsgPack(make([]byte, 0, 128))
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client: drop this tick rather than block the hub.
				}
			}
		}
	}
}

// Client wraps one connected websocket with its own outbound queue.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func serveWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println(err)
		return
	}
	client := &Client{hub: hub, conn: conn, send: make(chan []byte, 4096)}

	if hub.buffer != nil {
		snapshots := hub.buffer.GetAll()
		if len(snapshots) > 0 {
			n := uint32(len(snapshots))
			header := []byte{0xce, byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
			if err := conn.WriteMessage(websocket.BinaryMessage, header); err != nil {
				log.Printf("broadcast: failed to send history header: %v", err)
				conn.Close()
				return
			}
			for i, snap := range snapshots {
				msg := snap.AppendMsgPack(make([]byte, 0, 128))
				if err := conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
					log.Printf("broadcast: history stream interrupted after %d of %d snapshots: %v", i, n, err)
					conn.Close()
					return
				}
			}
			log.Printf("broadcast: streamed %d history snapshots to new client", len(snapshots))
		}
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		message, ok := <-c.send
		if !ok {
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
		w, err := c.conn.NextWriter(websocket.BinaryMessage)
		if err != nil {
			return
		}
		w.Write(message)
		if err := w.Close(); err != nil {
			return
		}
	}
}
