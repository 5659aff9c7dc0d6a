package cli

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	transport "trivia-service/internal/transport/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the trivia server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := resolvePort(portFlag, cfg)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	feed := app.NewLeaderboardFeed()
	games := app.NewGameService(b.games, app.WithQuestionSource(b.cache), app.WithFeed(feed))
	players := app.NewPlayerService(b.games, b.players, feed)
	sweeper := app.NewRetentionSweeper(games, cfg.RetentionHorizon(), cfg.RetentionInterval())

	wsHandler := transport.NewWSHandler(games, players, feed, log.Default())
	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     transport.NewRouter(wsHandler),
		ReadTimeout: 15 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("starting trivia service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Printf("retention sweeper: horizon %s, every %s", sweeper.Horizon(), cfg.RetentionInterval())
		return sweeper.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// resolvePort prefers the flag (which defaults to $PORT), then server.port.
func resolvePort(flag string, cfg config.Config) string {
	if flag != "" {
		return flag
	}
	if cfg.Server.Port != "" {
		return cfg.Server.Port
	}
	return "8080"
}
