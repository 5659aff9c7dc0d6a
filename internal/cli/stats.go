package cli

import (
	"context"
	"encoding/json"
	"io"

	"trivia-service/internal/app"
	"trivia-service/internal/config"
	"trivia-service/internal/domain"

	"github.com/spf13/cobra"
)

type statsReport struct {
	Today     domain.TodayStats `json:"today"`
	Analytics domain.Analytics  `json:"analytics"`
	Visitors  int64             `json:"visitors"`
}

// NewStatsCmd prints the operator dashboard figures as JSON.
func NewStatsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print game, player and visitor statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			b, err := openBackend(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer b.Close()
			return writeStats(cmd.Context(), cmd.OutOrStdout(), app.NewStatsService(b.games, b.players, b.visitors))
		},
	}
}

func writeStats(ctx context.Context, w io.Writer, stats *app.StatsService) error {
	today, err := stats.Today(ctx)
	if err != nil {
		return err
	}
	analytics, err := stats.Analytics(ctx)
	if err != nil {
		return err
	}
	visitors, err := stats.VisitorCount(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(statsReport{Today: today, Analytics: analytics, Visitors: visitors})
}
