package app

import (
	"context"
	"math"
	"time"

	"trivia-service/internal/domain"
)

// StatsService answers the aggregate questions asked by the home page and the
// operator dashboard.
type StatsService struct {
	games    GameRepository
	players  PlayerRepository
	visitors VisitorCounter
	now      func() time.Time
}

func NewStatsService(games GameRepository, players PlayerRepository, visitors VisitorCounter) *StatsService {
	return &StatsService{games: games, players: players, visitors: visitors, now: time.Now}
}

// NewStatsServiceWithClock is test-only; "today" is computed in the clock's location.
func NewStatsServiceWithClock(games GameRepository, players PlayerRepository, visitors VisitorCounter, now func() time.Time) *StatsService {
	return &StatsService{games: games, players: players, visitors: visitors, now: now}
}

func (s *StatsService) IncrementVisitors(ctx context.Context) (int64, error) {
	return s.visitors.IncrementVisitors(ctx)
}

func (s *StatsService) VisitorCount(ctx context.Context) (int64, error) {
	return s.visitors.VisitorCount(ctx)
}

// WinnersCount is the number of games with at least one completed player.
func (s *StatsService) WinnersCount(ctx context.Context) (int, error) {
	winners, err := s.winners(ctx, nil)
	return len(winners), err
}

func (s *StatsService) Today(ctx context.Context) (domain.TodayStats, error) {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return domain.TodayStats{}, err
	}
	players, err := s.players.ListPlayers(ctx)
	if err != nil {
		return domain.TodayStats{}, err
	}
	return domain.TodayStats{
		GamesPlayedToday: s.countToday(games),
		TotalPlayers:     len(players),
	}, nil
}

func (s *StatsService) Analytics(ctx context.Context) (domain.Analytics, error) {
	games, err := s.games.ListGames(ctx)
	if err != nil {
		return domain.Analytics{}, err
	}
	players, err := s.players.ListPlayers(ctx)
	if err != nil {
		return domain.Analytics{}, err
	}
	winners, err := s.winners(ctx, games)
	if err != nil {
		return domain.Analytics{}, err
	}

	out := domain.Analytics{
		TotalGames:       len(games),
		GamesPlayedToday: s.countToday(games),
		TotalPlayers:     len(players),
		CompletedGames:   len(winners),
		WinnersCount:     len(winners),
		Winners:          winners,
	}
	if len(games) > 0 {
		out.AveragePlayersPerGame = math.Round(float64(len(players))/float64(len(games))*10) / 10
	}
	return out, nil
}

// winners picks the top completed player of every game that has one.
func (s *StatsService) winners(ctx context.Context, games []domain.Game) ([]domain.Winner, error) {
	if games == nil {
		var err error
		if games, err = s.games.ListGames(ctx); err != nil {
			return nil, err
		}
	}
	winners := make([]domain.Winner, 0)
	for _, g := range games {
		players, err := s.players.ListPlayersByGame(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range players {
			if !p.Completed() {
				continue
			}
			winners = append(winners, domain.Winner{
				Name:        p.Name,
				Phone:       p.Phone,
				Score:       p.Score,
				GameName:    g.Name,
				GameCode:    g.Code,
				CompletedAt: *p.CompletedAt,
			})
			break
		}
	}
	return winners, nil
}

func (s *StatsService) countToday(games []domain.Game) int {
	now := s.now()
	y, m, d := now.Date()
	count := 0
	for _, g := range games {
		gy, gm, gd := g.CreatedAt.In(now.Location()).Date()
		if gy == y && gm == m && gd == d {
			count++
		}
	}
	return count
}
