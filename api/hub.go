package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maze-raiders/mp-client/game/message"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum frame size allowed from a peer.
	maxFrameSize = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Local development server, any origin is fine.
		return true
	},
}

// peer is one connected multiplayer socket.
type peer struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan message.Message
	gameID   string
	playerID string
}

// relay is a frame travelling through the hub, tagged with its origin. A nil
// from means the frame was produced by the server itself and goes to every
// peer of the game.
type relay struct {
	from  *peer
	frame message.Message
}

// Hub maintains the per-game socket registries and relays frames between
// the peers of a game.
type Hub struct {
	games map[string]map[*peer]bool

	relay      chan relay
	register   chan *peer
	unregister chan *peer
}

// NewHub creates an empty hub. Call Run on its own goroutine before serving
// connections.
func NewHub() *Hub {
	return &Hub{
		games:      make(map[string]map[*peer]bool),
		relay:      make(chan relay, 16),
		register:   make(chan *peer),
		unregister: make(chan *peer),
	}
}

// Run drives the hub's event loop.
func (h *Hub) Run() {
	for {
		select {
		case p := <-h.register:
			h.addPeer(p)

		case p := <-h.unregister:
			h.removePeer(p)

		case r := <-h.relay:
			h.deliver(r)
		}
	}
}

// ServeWS upgrades the request and registers the peer for its game.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID, playerID string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("api: websocket upgrade failed: %v", err)
		return
	}

	p := &peer{
		hub:      h,
		conn:     conn,
		send:     make(chan message.Message, 64),
		gameID:   gameID,
		playerID: playerID,
	}

	h.register <- p

	go p.writePump()
	go p.readPump()
}

// Broadcast sends a server-originated frame to every peer of the game.
func (h *Hub) Broadcast(gameID string, frame message.Message) {
	frame.GameID = gameID
	h.relay <- relay{frame: frame}
}

// addPeer registers p and announces the join to the peers already connected.
func (h *Hub) addPeer(p *peer) {
	if h.games[p.gameID] == nil {
		h.games[p.gameID] = make(map[*peer]bool)
	}
	h.games[p.gameID][p] = true

	log.Printf("api: player %s connected to game %s (%d peers)",
		p.playerID, p.gameID, len(h.games[p.gameID]))

	h.deliver(relay{
		from: p,
		frame: message.Message{
			Kind:     message.PlayerJoined,
			Note:     "player " + p.playerID + " joined",
			GameID:   p.gameID,
			PlayerID: p.playerID,
		},
	})
}

// removePeer unregisters p and announces the departure to the remaining
// peers.
func (h *Hub) removePeer(p *peer) {
	peers, ok := h.games[p.gameID]
	if !ok || !peers[p] {
		return
	}
	delete(peers, p)
	close(p.send)
	if len(peers) == 0 {
		delete(h.games, p.gameID)
	}

	log.Printf("api: player %s disconnected from game %s (%d peers left)",
		p.playerID, p.gameID, len(peers))

	h.deliver(relay{
		from: p,
		frame: message.Message{
			Kind:     message.PlayerRemoved,
			Note:     "player " + p.playerID + " left",
			GameID:   p.gameID,
			PlayerID: p.playerID,
		},
	})
}

// deliver fans a frame out to the peers of its game, skipping the sender.
func (h *Hub) deliver(r relay) {
	for p := range h.games[r.frame.GameID] {
		if p == r.from {
			continue
		}
		select {
		case p.send <- r.frame:
		default:
			// Peer is too slow to keep up, drop it.
			h.removePeer(p)
		}
	}
}

// readPump forwards frames from the peer into the hub until the connection
// dies.
func (p *peer) readPump() {
	defer func() {
		p.hub.unregister <- p
		p.conn.Close()
	}()

	p.conn.SetReadLimit(maxFrameSize)
	p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var frame message.Message
		if err := p.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Printf("api: read error from %s: %v", p.playerID, err)
			}
			return
		}

		// Frames are relayed within the peer's own game regardless of what
		// the sender claims.
		frame.GameID = p.gameID
		p.hub.relay <- relay{from: p, frame: frame}
	}
}

// writePump drains the send channel onto the connection and keeps the peer
// alive with pings.
func (p *peer) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-p.send:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				p.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := p.conn.WriteJSON(frame); err != nil {
				return
			}

		case <-ticker.C:
			p.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := p.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
