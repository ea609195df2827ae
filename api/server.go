package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/maze-raiders/mp-client/game/message"
)

// Server is the in-memory lobby server.
type Server struct {
	hub    *Hub
	router *mux.Router

	mu      sync.Mutex
	players map[string]*message.Player
	games   map[string]*message.Game
}

// NewServer creates a lobby server backed by the given hub.
func NewServer(hub *Hub) *Server {
	s := &Server{
		hub:     hub,
		router:  mux.NewRouter(),
		players: make(map[string]*message.Player),
		games:   make(map[string]*message.Game),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures the REST and socket routes.
func (s *Server) setupRoutes() {
	mp := s.router.PathPrefix("/mp-game").Subrouter()

	mp.HandleFunc("/player", s.handleCreatePlayer).Methods("POST")
	mp.HandleFunc("/new", s.handleCreateGame).Methods("POST")
	mp.HandleFunc("/join/{gameId}/{playerId}", s.handleJoinGame).Methods("PUT")
	mp.HandleFunc("/open", s.handleListOpenGames).Methods("GET")
	mp.HandleFunc("/close/{gameId}/{playerId}", s.handleCloseGame).Methods("PUT")
	mp.HandleFunc("/start/{gameId}", s.handleStartGame).Methods("PUT")
	mp.HandleFunc("/{gameId}", s.handleGetGame).Methods("GET")

	s.router.HandleFunc("/multiplayer/{gameId}/{playerId}", s.handleSocket)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// Handlers

func (s *Server) handleCreatePlayer(w http.ResponseWriter, r *http.Request) {
	var template message.Player
	if err := json.NewDecoder(r.Body).Decode(&template); err != nil {
		respondError(w, http.StatusBadRequest, "invalid player template")
		return
	}
	if template.Name == "" {
		template.Name = "anonymous"
	}

	player := &message.Player{
		ID:   uuid.NewString(),
		Name: template.Name,
	}

	s.mu.Lock()
	s.players[player.ID] = player
	s.mu.Unlock()

	log.Printf("api: new player %s (%s)", player.Name, player.ID)
	respondJSON(w, http.StatusOK, player)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Game struct {
			Level int `json:"level"`
		} `json:"game"`
		Host *message.Player `json:"host"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Host == nil {
		respondError(w, http.StatusBadRequest, "invalid game request")
		return
	}

	game := &message.Game{
		ID:          uuid.NewString(),
		Level:       req.Game.Level,
		Player1:     req.Host,
		Open:        true,
		TimeStarted: time.Now(),
	}

	s.mu.Lock()
	s.games[game.ID] = game
	s.mu.Unlock()

	log.Printf("api: new game %s hosted by %s (level %d)", game.ID, req.Host.ID, game.Level)
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleJoinGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, playerID := vars["gameId"], vars["playerId"]

	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[gameID]
	if !ok {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}
	player, ok := s.players[playerID]
	if !ok {
		respondError(w, http.StatusNotFound, "player not found")
		return
	}
	if !game.Open || game.Closed {
		respondError(w, http.StatusConflict, "game is not open")
		return
	}

	switch {
	case game.Player2 == nil:
		game.Player2 = player
	case game.Player3 == nil:
		game.Player3 = player
	case game.Player4 == nil:
		game.Player4 = player
	default:
		respondError(w, http.StatusConflict, "game is full")
		return
	}

	log.Printf("api: player %s joined game %s", playerID, gameID)
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleListOpenGames(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	open := make([]*message.Game, 0)
	for _, g := range s.games {
		if g.Open && !g.Running && !g.Closed {
			open = append(open, g)
		}
	}
	s.mu.Unlock()

	// Newest first, the order a lobby list wants.
	sort.Slice(open, func(i, j int) bool {
		return open[i].TimeStarted.After(open[j].TimeStarted)
	})

	respondJSON(w, http.StatusOK, open)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	s.mu.Lock()
	game, ok := s.games[gameID]
	s.mu.Unlock()

	if !ok {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}
	respondJSON(w, http.StatusOK, game)
}

func (s *Server) handleStartGame(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameId"]

	s.mu.Lock()
	game, ok := s.games[gameID]
	if ok {
		game.Running = true
		game.Open = false
	}
	s.mu.Unlock()

	if !ok {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}

	log.Printf("api: game %s started", gameID)
	w.WriteHeader(http.StatusNoContent)
}

// handleCloseGame removes the player from the game. When the host leaves the
// whole game closes and the remaining peers are told so over the socket.
func (s *Server) handleCloseGame(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, playerID := vars["gameId"], vars["playerId"]

	s.mu.Lock()
	game, ok := s.games[gameID]
	if !ok {
		s.mu.Unlock()
		// Closing an already-gone game is fine; the client is tearing down.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	hostLeft := game.Player1 != nil && game.Player1.ID == playerID
	if hostLeft {
		game.Closed = true
		game.Open = false
		delete(s.games, gameID)
	} else {
		switch {
		case game.Player2 != nil && game.Player2.ID == playerID:
			game.Player2 = nil
		case game.Player3 != nil && game.Player3.ID == playerID:
			game.Player3 = nil
		case game.Player4 != nil && game.Player4.ID == playerID:
			game.Player4 = nil
		}
	}
	s.mu.Unlock()

	if hostLeft {
		log.Printf("api: host closed game %s", gameID)
		s.hub.Broadcast(gameID, message.Message{
			Kind:     message.CloseGame,
			Note:     "host closed the game",
			PlayerID: playerID,
		})
	} else {
		log.Printf("api: player %s left game %s", playerID, gameID)
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, playerID := vars["gameId"], vars["playerId"]

	s.mu.Lock()
	_, ok := s.games[gameID]
	s.mu.Unlock()
	if !ok {
		respondError(w, http.StatusNotFound, "game not found")
		return
	}

	s.hub.ServeWS(w, r, gameID, playerID)
}
