// Command lobby is a terminal client for the Maze Raiders multiplayer lobby.
//
// It drives the same session layer the game itself uses: list open games,
// host a new one, or join one and watch session events scroll by until the
// game closes or the process is interrupted.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/maze-raiders/mp-client/game/config"
	"github.com/maze-raiders/mp-client/game/session"
	"github.com/maze-raiders/mp-client/transport/rest"
)

func main() {
	serverFlag := &cli.StringFlag{
		Name:  "server",
		Usage: "lobby base URL (overrides MP_SERVER_URL)",
	}
	nameFlag := &cli.StringFlag{
		Name:  "name",
		Usage: "player display name (overrides MP_PLAYER_NAME)",
	}

	cmd := &cli.Command{
		Name:  "lobby",
		Usage: "Maze Raiders multiplayer lobby client",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "list games currently accepting players",
				Flags: []cli.Flag{serverFlag, nameFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					mgr, err := newManager(cmd)
					if err != nil {
						return err
					}

					games, err := mgr.ListOpenGames(ctx)
					if err != nil {
						return err
					}
					if len(games) == 0 {
						fmt.Println("No open games.")
						return nil
					}
					for _, g := range games {
						hostName := "?"
						if h := g.Host(); h != nil {
							hostName = h.Name
						}
						fmt.Printf("%s  level=%d  host=%s  players=%d\n",
							g.ID, g.Level, hostName, len(g.Players()))
					}
					return nil
				},
			},
			{
				Name:  "host",
				Usage: "create a game and wait for players",
				Flags: []cli.Flag{
					serverFlag, nameFlag,
					&cli.IntFlag{
						Name:  "level",
						Usage: "level index to play",
					},
					&cli.BoolFlag{
						Name:  "autostart",
						Usage: "start the game as soon as the first player joins",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					mgr, err := newManager(cmd)
					if err != nil {
						return err
					}

					game, err := mgr.CreateGame(ctx, int(cmd.Int("level")))
					if err != nil {
						return err
					}
					fmt.Printf("Hosting game %s (level %d). Waiting for players...\n", game.ID, game.Level)

					autostart := cmd.Bool("autostart")
					mgr.SetOnJoinCallback(func(ev session.Event) {
						fmt.Printf("-> %s joined (%d players)\n", ev.Message.PlayerID, len(ev.Game.Players()))
						if autostart {
							if err := mgr.StartGame(ctx); err != nil {
								log.Printf("start failed: %v", err)
							}
						}
					})

					watchSession(ctx, mgr)
					return nil
				},
			},
			{
				Name:      "join",
				Usage:     "join an open game (the newest one when no id is given)",
				ArgsUsage: "[gameId]",
				Flags:     []cli.Flag{serverFlag, nameFlag},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					mgr, err := newManager(cmd)
					if err != nil {
						return err
					}

					games, err := mgr.ListOpenGames(ctx)
					if err != nil {
						return err
					}

					wanted := cmd.Args().First()
					for _, g := range games {
						if wanted == "" || g.ID == wanted {
							mgr.SelectGameToJoin(g)
							break
						}
					}

					game, err := mgr.JoinGame(ctx)
					if err != nil {
						return err
					}
					if game == nil {
						return fmt.Errorf("no open game to join")
					}
					fmt.Printf("Joined game %s (level %d).\n", game.ID, game.Level)

					watchSession(ctx, mgr)
					return nil
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newManager builds a session manager from env config and flag overrides.
func newManager(cmd *cli.Command) (*session.Manager, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if s := cmd.String("server"); s != "" {
		cfg.ServerURL = s
	}
	if n := cmd.String("name"); n != "" {
		cfg.PlayerName = n
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return session.NewManager(rest.NewClient(cfg.ServerURL), cfg), nil
}

// watchSession prints session events until the game closes or the process is
// interrupted, then tears the session down.
func watchSession(ctx context.Context, mgr *session.Manager) {
	done := make(chan struct{})
	var once sync.Once
	finish := func() { once.Do(func() { close(done) }) }

	mgr.SetOnLeaveCallback(func(ev session.Event) {
		fmt.Printf("<- %s left (%d players)\n", ev.Message.PlayerID, len(ev.Game.Players()))
	})
	mgr.SetOnGameStartedCallback(func(ev session.Event) {
		fmt.Println("Game started!")
	})
	mgr.SetOnBroadcastCallback(func(ev session.Event) {
		fmt.Printf("[chat] %s\n", ev.Message.Note)
	})
	mgr.SetOnGameOverCallback(func(ev session.Event) {
		fmt.Println("Game over.")
	})
	mgr.SetOnErrorCallback(func(ev session.Event) {
		fmt.Printf("Connection error: %s\n", ev.Message.Note)
		finish()
	})
	mgr.SetOnGameCloseCallback(func(ev session.Event) {
		fmt.Println("Game closed by host.")
		finish()
	})

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		fmt.Println("Leaving game...")
	case <-done:
	case <-ctx.Done():
	}

	mgr.CloseActiveGame(context.Background())
}
