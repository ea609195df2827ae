package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/maze-raiders/mp-client/game/message"
	"github.com/maze-raiders/mp-client/transport/rest"
)

func newTestServer(t *testing.T) (*httptest.Server, *rest.Client) {
	t.Helper()
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(NewServer(hub))
	t.Cleanup(server.Close)
	return server, rest.NewClient(server.URL)
}

// dialSocket opens a raw multiplayer socket for the given game and player.
func dialSocket(t *testing.T, server *httptest.Server, gameID, playerID string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/multiplayer/" + gameID + "/" + playerID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readFrame reads the next frame with a deadline.
func readFrame(t *testing.T, conn *websocket.Conn) message.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var frame message.Message
	if err := conn.ReadJSON(&frame); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return frame
}

func TestLobbyLifecycle(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	host, err := client.CreatePlayer(ctx, message.Player{Name: "host"})
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}
	if host.ID == "" || host.Name != "host" {
		t.Fatalf("player = %+v", host)
	}

	game, err := client.CreateGame(ctx, 3, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if game.ID == "" || !game.Open || game.Level != 3 {
		t.Fatalf("game = %+v", game)
	}
	if game.Host() == nil || game.Host().ID != host.ID {
		t.Errorf("host slot = %+v", game.Host())
	}

	open, err := client.ListOpenGames(ctx)
	if err != nil {
		t.Fatalf("ListOpenGames failed: %v", err)
	}
	if len(open) != 1 || open[0].ID != game.ID {
		t.Errorf("open games = %+v", open)
	}

	guest, err := client.CreatePlayer(ctx, message.Player{Name: "guest"})
	if err != nil {
		t.Fatalf("guest CreatePlayer failed: %v", err)
	}
	joined, err := client.JoinGame(ctx, game.ID, guest.ID)
	if err != nil {
		t.Fatalf("JoinGame failed: %v", err)
	}
	if joined.Player2 == nil || joined.Player2.ID != guest.ID {
		t.Errorf("guest not in slot two: %+v", joined)
	}

	if err := client.StartGame(ctx, game.ID); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	started, err := client.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if started.Status() != message.StatusStarted {
		t.Errorf("status = %v, want started", started.Status())
	}

	// Started games leave the lobby list.
	open, err = client.ListOpenGames(ctx)
	if err != nil {
		t.Fatalf("ListOpenGames failed: %v", err)
	}
	if len(open) != 0 {
		t.Errorf("open games after start = %+v", open)
	}
}

func TestListOpenGamesNewestFirst(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	host, err := client.CreatePlayer(ctx, message.Player{Name: "host"})
	if err != nil {
		t.Fatalf("CreatePlayer failed: %v", err)
	}

	older, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	newer, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	open, err := client.ListOpenGames(ctx)
	if err != nil {
		t.Fatalf("ListOpenGames failed: %v", err)
	}
	if len(open) != 2 || open[0].ID != newer.ID || open[1].ID != older.ID {
		t.Errorf("open games = %+v, want newest first", open)
	}
}

func TestJoinGameConflicts(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	host, _ := client.CreatePlayer(ctx, message.Player{Name: "host"})
	game, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	// Fill the three guest slots.
	for i := 0; i < 3; i++ {
		guest, _ := client.CreatePlayer(ctx, message.Player{Name: "guest"})
		if _, err := client.JoinGame(ctx, game.ID, guest.ID); err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
	}

	late, _ := client.CreatePlayer(ctx, message.Player{Name: "late"})
	_, err = client.JoinGame(ctx, game.ID, late.ID)
	var netErr *rest.NetworkError
	if !errors.As(err, &netErr) || netErr.Status != http.StatusConflict {
		t.Errorf("joining a full game = %v, want 409", err)
	}

	// A started game rejects joins too.
	second, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if err := client.StartGame(ctx, second.ID); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	_, err = client.JoinGame(ctx, second.ID, late.ID)
	if !errors.As(err, &netErr) || netErr.Status != http.StatusConflict {
		t.Errorf("joining a started game = %v, want 409", err)
	}

	// Unknown ids are not found.
	_, err = client.JoinGame(ctx, "no-such-game", late.ID)
	if !errors.As(err, &netErr) || netErr.Status != http.StatusNotFound {
		t.Errorf("joining an unknown game = %v, want 404", err)
	}
}

func TestCloseGame(t *testing.T) {
	_, client := newTestServer(t)
	ctx := context.Background()

	host, _ := client.CreatePlayer(ctx, message.Player{Name: "host"})
	guest, _ := client.CreatePlayer(ctx, message.Player{Name: "guest"})
	game, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if _, err := client.JoinGame(ctx, game.ID, guest.ID); err != nil {
		t.Fatalf("JoinGame failed: %v", err)
	}

	// A guest leaving only clears their slot.
	if err := client.CloseGame(ctx, game.ID, guest.ID); err != nil {
		t.Fatalf("guest CloseGame failed: %v", err)
	}
	remaining, err := client.GetGame(ctx, game.ID)
	if err != nil {
		t.Fatalf("GetGame failed: %v", err)
	}
	if remaining.Player2 != nil {
		t.Errorf("guest slot not cleared: %+v", remaining.Player2)
	}

	// The host leaving removes the game entirely.
	if err := client.CloseGame(ctx, game.ID, host.ID); err != nil {
		t.Fatalf("host CloseGame failed: %v", err)
	}
	_, err = client.GetGame(ctx, game.ID)
	var netErr *rest.NetworkError
	if !errors.As(err, &netErr) || netErr.Status != http.StatusNotFound {
		t.Errorf("GetGame after host close = %v, want 404", err)
	}

	// Closing a game that is already gone stays quiet; clients tearing down
	// must not see an error.
	if err := client.CloseGame(ctx, game.ID, host.ID); err != nil {
		t.Errorf("closing a removed game = %v, want nil", err)
	}
}

func TestHubRelaysFramesBetweenPeers(t *testing.T) {
	server, client := newTestServer(t)
	ctx := context.Background()

	host, _ := client.CreatePlayer(ctx, message.Player{Name: "host"})
	guest, _ := client.CreatePlayer(ctx, message.Player{Name: "guest"})
	game, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if _, err := client.JoinGame(ctx, game.ID, guest.ID); err != nil {
		t.Fatalf("JoinGame failed: %v", err)
	}

	hostConn := dialSocket(t, server, game.ID, host.ID)
	guestConn := dialSocket(t, server, game.ID, guest.ID)

	// The guest connecting is announced to the host.
	frame := readFrame(t, hostConn)
	if frame.Kind != message.PlayerJoined || frame.PlayerID != guest.ID {
		t.Fatalf("announce frame = %+v", frame)
	}

	// A frame from the host reaches the guest but not the host itself, and
	// is pinned to the sender's game no matter what it claims.
	update := message.New(message.GameUpdate, "some-other-game", host.ID)
	update.Score = 1200
	if err := hostConn.WriteJSON(update); err != nil {
		t.Fatalf("write frame: %v", err)
	}

	frame = readFrame(t, guestConn)
	if frame.Kind != message.GameUpdate || frame.Score != 1200 {
		t.Errorf("relayed frame = %+v", frame)
	}
	if frame.GameID != game.ID {
		t.Errorf("relayed frame GameID = %q, want %q", frame.GameID, game.ID)
	}
}

func TestGuestDisconnectIsAnnounced(t *testing.T) {
	server, client := newTestServer(t)
	ctx := context.Background()

	host, _ := client.CreatePlayer(ctx, message.Player{Name: "host"})
	guest, _ := client.CreatePlayer(ctx, message.Player{Name: "guest"})
	game, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if _, err := client.JoinGame(ctx, game.ID, guest.ID); err != nil {
		t.Fatalf("JoinGame failed: %v", err)
	}

	hostConn := dialSocket(t, server, game.ID, host.ID)
	guestConn := dialSocket(t, server, game.ID, guest.ID)

	if frame := readFrame(t, hostConn); frame.Kind != message.PlayerJoined {
		t.Fatalf("announce frame = %+v", frame)
	}

	guestConn.Close()

	frame := readFrame(t, hostConn)
	if frame.Kind != message.PlayerRemoved || frame.PlayerID != guest.ID {
		t.Errorf("departure frame = %+v", frame)
	}
}

func TestHostCloseBroadcastsCloseGame(t *testing.T) {
	server, client := newTestServer(t)
	ctx := context.Background()

	host, _ := client.CreatePlayer(ctx, message.Player{Name: "host"})
	guest, _ := client.CreatePlayer(ctx, message.Player{Name: "guest"})
	game, err := client.CreateGame(ctx, 0, host)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}
	if _, err := client.JoinGame(ctx, game.ID, guest.ID); err != nil {
		t.Fatalf("JoinGame failed: %v", err)
	}

	guestConn := dialSocket(t, server, game.ID, guest.ID)

	if err := client.CloseGame(ctx, game.ID, host.ID); err != nil {
		t.Fatalf("host CloseGame failed: %v", err)
	}

	frame := readFrame(t, guestConn)
	if frame.Kind != message.CloseGame {
		t.Errorf("frame = %+v, want CLOSE_GAME", frame)
	}
	if frame.GameID != game.ID || frame.PlayerID != host.ID {
		t.Errorf("frame ids = (%q, %q)", frame.GameID, frame.PlayerID)
	}
}

func TestSocketRejectsUnknownGame(t *testing.T) {
	server, _ := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/multiplayer/no-such-game/p1"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		conn.Close()
		t.Fatal("socket for an unknown game was accepted")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("handshake response = %+v, want 404", resp)
	}
}
