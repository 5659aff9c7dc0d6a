package cli

import (
	"context"
	"fmt"
	"log"

	"trivia-service/internal/app"
	"trivia-service/internal/config"

	"github.com/spf13/cobra"
)

// NewSweepCmd runs a single retention pass and exits. Useful from cron when
// the server runs with several replicas.
func NewSweepCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete games older than the retention horizon once",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSweep(cmd.Context(), *configPath)
		},
	}
}

func runSweep(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.Close()

	games := app.NewGameService(b.games, app.WithQuestionSource(b.cache))
	sweeper := app.NewRetentionSweeper(games, cfg.RetentionHorizon(), cfg.RetentionInterval())
	report := sweeper.SweepOnce(ctx)
	log.Printf("sweep done: scanned=%d deleted=%d failed=%d", report.Scanned, report.Deleted, report.Failed)
	if report.Failed > 0 {
		return fmt.Errorf("%d games could not be deleted", report.Failed)
	}
	return nil
}
