package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/maze-raiders/mp-client/game/config"
	"github.com/maze-raiders/mp-client/game/event"
	"github.com/maze-raiders/mp-client/game/message"
	"github.com/maze-raiders/mp-client/transport/rest"
	"github.com/maze-raiders/mp-client/transport/websocket"
)

// ErrInvalidState reports an operation invoked without its required
// precondition: an active player, game, or socket.
var ErrInvalidState = errors.New("invalid session state")

// State describes where the manager is in its lifecycle.
type State int

const (
	// Idle: no player, no game, no socket.
	Idle State = iota
	// PlayerCreated: a player record exists but no game is active.
	PlayerCreated
	// Hosting: this client created the active game.
	Hosting
	// Joined: this client joined another player's game.
	Joined
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlayerCreated:
		return "player-created"
	case Hosting:
		return "hosting"
	case Joined:
		return "joined"
	}
	return "unknown"
}

// Event is the payload delivered to subscribers. Game is non-nil only for
// the frame kinds that trigger a snapshot re-fetch (PLAYER_JOINED,
// PLAYER_REMOVED, GAME_STARTED).
type Event struct {
	Message message.Message
	Game    *message.Game
}

// Callback consumes one session event.
type Callback func(ev Event)

// Manager orchestrates one client's multiplayer session: REST calls, socket
// lifecycle, frame dispatch, and the local session snapshot.
type Manager struct {
	rest *rest.Client
	cfg  *config.Config
	bus  *event.Emitter

	mu         sync.Mutex
	player     *message.Player
	game       *message.Game
	sock       *websocket.Socket
	isHost     bool
	gameToJoin *message.Game
	level      int
	generation uint64
}

// NewManager creates a session manager talking to the given lobby. The
// manager starts in Idle with no player registered.
func NewManager(client *rest.Client, cfg *config.Config) *Manager {
	return &Manager{
		rest: client,
		cfg:  cfg,
		bus:  event.NewEmitter(),
	}
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.game != nil && m.isHost:
		return Hosting
	case m.game != nil:
		return Joined
	case m.player != nil:
		return PlayerCreated
	default:
		return Idle
	}
}

// CurrentGame returns the local mirror of the active game, or nil.
func (m *Manager) CurrentGame() *message.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.game
}

// CurrentPlayer returns the registered player record, or nil.
func (m *Manager) CurrentPlayer() *message.Player {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.player
}

// IsHost reports whether this client created the active game.
func (m *Manager) IsHost() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isHost
}

// SelectLevel records the level index used for the next CreateGame.
func (m *Manager) SelectLevel(levelIndex int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.level = levelIndex
}

// SelectedLevel returns the level index recorded for the next CreateGame.
func (m *Manager) SelectedLevel() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

// SelectGameToJoin records which open game the next JoinGame call targets.
func (m *Manager) SelectGameToJoin(game *message.Game) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gameToJoin = game
}

// GameToJoin returns the pending join selection, or nil.
func (m *Manager) GameToJoin() *message.Game {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameToJoin
}

// CreatePlayer registers the local player with the server. It is idempotent:
// once a player record exists it is returned without a network call.
func (m *Manager) CreatePlayer(ctx context.Context) (*message.Player, error) {
	m.mu.Lock()
	if m.player != nil {
		p := m.player
		m.mu.Unlock()
		return p, nil
	}
	m.mu.Unlock()

	player, err := m.rest.CreatePlayer(ctx, message.Player{Name: m.cfg.PlayerName})
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.player = player
	m.mu.Unlock()

	log.Printf("session: registered player %s (%s)", player.Name, player.ID)
	return player, nil
}

// CreateGame opens a new game at the given level with this client as host.
// Any previously active game is torn down first; from an idle session the
// event bus and its registrations are left untouched. On failure no partial
// game or socket state is retained.
func (m *Manager) CreateGame(ctx context.Context, levelIndex int) (*message.Game, error) {
	m.closeIfActive(ctx)

	player, err := m.CreatePlayer(ctx)
	if err != nil {
		return nil, err
	}

	game, err := m.rest.CreateGame(ctx, levelIndex, player)
	if err != nil {
		return nil, err
	}

	if err := m.openSocket(ctx, game, player); err != nil {
		// The server-side game exists but we cannot hear from it; give it
		// back rather than keep a gameless socket or a socketless game.
		if cerr := m.rest.CloseGame(ctx, game.ID, player.ID); cerr != nil {
			log.Printf("session: abandoning unreachable game %s: %v", game.ID, cerr)
		}
		return nil, err
	}

	m.mu.Lock()
	m.game = game
	m.level = levelIndex
	m.isHost = true
	m.mu.Unlock()

	log.Printf("session: hosting game %s (level %d)", game.ID, levelIndex)
	return game, nil
}

// JoinGame joins the game previously recorded with SelectGameToJoin as a
// guest. Without a pending selection it is a no-op and performs no network
// calls. The selection is consumed by the attempt, successful or not.
func (m *Manager) JoinGame(ctx context.Context) (*message.Game, error) {
	m.mu.Lock()
	target := m.gameToJoin
	m.mu.Unlock()
	if target == nil {
		return nil, nil
	}

	m.closeIfActive(ctx)

	m.mu.Lock()
	m.gameToJoin = nil
	m.mu.Unlock()

	player, err := m.CreatePlayer(ctx)
	if err != nil {
		return nil, err
	}

	game, err := m.rest.JoinGame(ctx, target.ID, player.ID)
	if err != nil {
		return nil, err
	}

	if err := m.openSocket(ctx, game, player); err != nil {
		if cerr := m.rest.CloseGame(ctx, game.ID, player.ID); cerr != nil {
			log.Printf("session: abandoning unreachable game %s: %v", game.ID, cerr)
		}
		return nil, err
	}

	m.mu.Lock()
	m.game = game
	m.isHost = false
	m.mu.Unlock()

	log.Printf("session: joined game %s as %s", game.ID, player.ID)
	return game, nil
}

// StartGame tells the server the game no longer accepts players, then
// broadcasts GAME_STARTED over the socket so guests transition without
// waiting for a server round trip. Calling it as a guest is a no-op.
func (m *Manager) StartGame(ctx context.Context) error {
	m.mu.Lock()
	if !m.isHost || m.game == nil {
		m.mu.Unlock()
		return nil
	}
	gameID := m.game.ID
	m.mu.Unlock()

	if err := m.rest.StartGame(ctx, gameID); err != nil {
		return err
	}

	started, err := m.NewGameStarted()
	if err != nil {
		return err
	}
	return m.SendAction(started)
}

// SendAction transmits one frame over the open socket.
func (m *Manager) SendAction(msg message.Message) error {
	m.mu.Lock()
	sock := m.sock
	m.mu.Unlock()

	// A socket mid-teardown (closed but not yet cleared) is as gone as no
	// socket at all.
	if sock == nil || sock.Closed() {
		return fmt.Errorf("%w: no open socket", ErrInvalidState)
	}
	return sock.Send(msg)
}

// ListOpenGames fetches the games currently accepting players. It never
// mutates local session state.
func (m *Manager) ListOpenGames(ctx context.Context) ([]*message.Game, error) {
	return m.rest.ListOpenGames(ctx)
}

// CloseActiveGame tears the session down: closes the socket, notifies the
// server of the departure (best effort), clears the game record and host
// flag, and resets the event bus. It is safe to call repeatedly and from
// any state, including Idle. The player record survives so the next game
// can reuse it.
func (m *Manager) CloseActiveGame(ctx context.Context) {
	m.teardown(ctx)
	m.bus.Reset()
}

// closeIfActive tears down only when a game or socket exists. CreateGame and
// JoinGame use it so that callbacks registered before the first game are not
// wiped by the bus reset.
func (m *Manager) closeIfActive(ctx context.Context) {
	m.mu.Lock()
	active := m.game != nil || m.sock != nil
	m.mu.Unlock()

	if active {
		m.CloseActiveGame(ctx)
	}
}

// teardown performs everything CloseActiveGame does except the event bus
// reset, so the CLOSE_GAME frame path can still reach its subscribers.
func (m *Manager) teardown(ctx context.Context) {
	m.mu.Lock()
	sock := m.sock
	game := m.game
	player := m.player
	m.sock = nil
	m.game = nil
	m.isHost = false
	m.generation++
	m.mu.Unlock()

	if sock != nil {
		sock.Close()
	}

	if game != nil && player != nil {
		log.Printf("session: closing game %s (player %s)", game.ID, player.ID)
		// Best effort: local teardown must complete even when the server is
		// unreachable or the game is already gone.
		if err := m.rest.CloseGame(ctx, game.ID, player.ID); err != nil {
			log.Printf("session: departure notification failed: %v", err)
		}
	}
}

// Reset returns the manager fully to Idle, dropping the player record as
// well as any active game.
func (m *Manager) Reset(ctx context.Context) {
	m.CloseActiveGame(ctx)
	m.mu.Lock()
	m.player = nil
	m.gameToJoin = nil
	m.mu.Unlock()
}

// openSocket dials the multiplayer socket for game/player and wires frame
// and error delivery. Callers must not hold m.mu.
func (m *Manager) openSocket(ctx context.Context, game *message.Game, player *message.Player) error {
	m.mu.Lock()
	old := m.sock
	m.mu.Unlock()
	if old != nil {
		old.Close()
	}

	sock, err := websocket.Dial(ctx, m.cfg.SocketURL(game.ID, player.ID), m.handleFrame, m.handleSocketError)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.sock = sock
	m.mu.Unlock()
	return nil
}

// handleSocketError surfaces socket transport failures as ERROR events
// rather than call failures; subscribers decide whether to retry or abandon.
func (m *Manager) handleSocketError(err error) {
	m.bus.Emit(string(message.Error), Event{
		Message: message.Message{Kind: message.Error, Note: err.Error()},
	})
}
