package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maze-raiders/mp-client/game/message"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next frame or pong from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// FrameHandler consumes one decoded frame. Handlers are invoked sequentially
// by the socket's reader goroutine.
type FrameHandler func(msg message.Message)

// ErrorHandler is notified once when the connection fails while the socket is
// still supposed to be open. It is never called after Close.
type ErrorHandler func(err error)

// Socket is one live multiplayer connection.
type Socket struct {
	conn *websocket.Conn

	onFrame FrameHandler
	onError ErrorHandler

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

// Dial opens the multiplayer socket for the given game and player and starts
// the reader goroutine. url must be the full socket endpoint, e.g.
// "ws://host:8080/multiplayer/{gameId}/{playerId}".
func Dial(ctx context.Context, url string, onFrame FrameHandler, onError ErrorHandler) (*Socket, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial %s: status %d: %w", url, resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	s := &Socket{
		conn:    conn,
		onFrame: onFrame,
		onError: onError,
		done:    make(chan struct{}),
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	go s.readLoop()
	go s.pingLoop()

	return s, nil
}

// Send writes one frame to the peer. It fails when the socket has already
// been closed or the underlying write fails.
func (s *Socket) Send(msg message.Message) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("send %s: socket closed", msg.Kind)
	}
	s.mu.Unlock()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send %s: %w", msg.Kind, err)
	}
	return nil
}

// Close shuts the connection down. It is safe to call any number of times
// and from any goroutine; only the first call has an effect. After Close
// returns, the error callback will not fire.
func (s *Socket) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	// Best-effort close handshake before dropping the connection.
	s.writeMu.Lock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()

	s.conn.Close()
}

// Closed reports whether Close has been called.
func (s *Socket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// readLoop decodes frames and delivers them to the frame handler until the
// connection dies or the socket is closed.
func (s *Socket) readLoop() {
	defer s.conn.Close()

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.Closed() {
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("websocket: read error: %v", err)
			}
			if s.onError != nil {
				s.onError(err)
			}
			return
		}

		var msg message.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			// A garbled frame is not fatal to the connection.
			log.Printf("websocket: dropping undecodable frame: %v", err)
			continue
		}

		if s.onFrame != nil {
			s.onFrame(msg)
		}
	}
}

// pingLoop keeps the connection alive until the socket is closed.
func (s *Socket) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.writeMu.Lock()
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := s.conn.WriteMessage(websocket.PingMessage, nil)
			s.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
