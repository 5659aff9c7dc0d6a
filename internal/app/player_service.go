package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"trivia-service/internal/domain"
	"trivia-service/internal/metrics"

	"github.com/google/uuid"
)

// PlayerService contains registration, answering, completion and leaderboard use cases.
type PlayerService struct {
	games   GameRepository
	players PlayerRepository
	feed    *LeaderboardFeed
	now     func() time.Time
}

func NewPlayerService(games GameRepository, players PlayerRepository, feed *LeaderboardFeed) *PlayerService {
	return NewPlayerServiceWithClock(games, players, feed, time.Now)
}

// NewPlayerServiceWithClock is test-only for deterministic timestamps.
func NewPlayerServiceWithClock(games GameRepository, players PlayerRepository, feed *LeaderboardFeed, now func() time.Time) *PlayerService {
	return &PlayerService{games: games, players: players, feed: feed, now: now}
}

// FindExistingPlayer looks up the (name, phone, game) triple, with the name
// normalised the same way CreatePlayer stores it.
func (s *PlayerService) FindExistingPlayer(ctx context.Context, name, phone, gameID string) (domain.Player, error) {
	return s.players.FindPlayer(ctx, domain.NormalizeName(name), phone, gameID)
}

// CreatePlayer registers a player or returns the one already registered under
// the same triple. Calling it repeatedly never duplicates a player or resets
// progress; the Registration flags tell the caller whether to resume play or
// show results.
func (s *PlayerService) CreatePlayer(ctx context.Context, name, phone, gameID string) (domain.Registration, error) {
	name, err := domain.ValidatePlayer(name, phone, gameID)
	if err != nil {
		return domain.Registration{}, err
	}
	if _, err := s.games.GetGame(ctx, gameID); err != nil {
		return domain.Registration{}, err
	}

	if reg, found, err := s.existing(ctx, name, phone, gameID); err != nil || found {
		if found {
			metrics.Registrations.WithLabelValues("returning").Inc()
		}
		return reg, err
	}

	player := domain.Player{
		ID:     uuid.NewString(),
		Name:   name,
		Phone:  phone,
		GameID: gameID,
	}
	err = s.players.InsertPlayer(ctx, player)
	if errors.Is(err, domain.ErrDuplicatePlayer) {
		// A concurrent registration won the insert; serve its row.
		reg, found, err := s.existing(ctx, name, phone, gameID)
		if err == nil && !found {
			err = fmt.Errorf("create player: %w", domain.ErrPlayerNotFound)
		}
		return reg, err
	}
	if err != nil {
		return domain.Registration{}, fmt.Errorf("create player: %w", err)
	}

	metrics.Registrations.WithLabelValues("new").Inc()
	s.publish(ctx, gameID)
	return domain.Registration{Player: player}, nil
}

func (s *PlayerService) existing(ctx context.Context, name, phone, gameID string) (domain.Registration, bool, error) {
	player, err := s.players.FindPlayer(ctx, name, phone, gameID)
	if errors.Is(err, domain.ErrPlayerNotFound) {
		return domain.Registration{}, false, nil
	}
	if err != nil {
		return domain.Registration{}, false, fmt.Errorf("find player: %w", err)
	}
	return domain.Registration{
		Player:       player,
		IsExisting:   true,
		HasCompleted: player.Completed(),
	}, true, nil
}

func (s *PlayerService) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	return s.players.GetPlayer(ctx, id)
}

// CreatePlayerAnswer scores and stores one answer. The second submission for
// the same question returns the first record with AlreadyAnswered set.
func (s *PlayerService) CreatePlayerAnswer(ctx context.Context, playerID string, sub domain.AnswerSubmission) (domain.AnswerResult, error) {
	player, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if player.Completed() {
		return domain.AnswerResult{}, domain.ErrPlayerCompleted
	}
	question, err := s.games.GetQuestion(ctx, sub.QuestionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if question.GameID != player.GameID {
		return domain.AnswerResult{}, domain.ErrQuestionNotFound
	}
	if err := domain.ValidateSubmission(sub, question); err != nil {
		return domain.AnswerResult{}, err
	}

	answer := domain.PlayerAnswer{
		ID:             uuid.NewString(),
		PlayerID:       playerID,
		QuestionID:     sub.QuestionID,
		SelectedAnswer: sub.SelectedAnswer,
		IsCorrect:      sub.IsCorrect,
		TimeSpent:      sub.TimeSpent,
		Points:         Score(sub.IsCorrect, sub.TimeSpent),
	}
	err = s.players.InsertAnswer(ctx, answer)
	if errors.Is(err, domain.ErrAnswerExists) {
		prior, err := s.players.FindAnswer(ctx, playerID, sub.QuestionID)
		if err != nil {
			return domain.AnswerResult{}, fmt.Errorf("load prior answer: %w", err)
		}
		metrics.Answers.WithLabelValues("duplicate").Inc()
		return domain.AnswerResult{Answer: prior, AlreadyAnswered: true}, nil
	}
	if err != nil {
		return domain.AnswerResult{}, fmt.Errorf("store answer: %w", err)
	}

	// Running totals are recomputed from the stored answers, so a lost update
	// is repaired by the next answer or by completion.
	if err := s.refreshTotals(ctx, playerID); err != nil {
		return domain.AnswerResult{}, err
	}
	metrics.Answers.WithLabelValues(answerOutcome(answer)).Inc()
	s.publish(ctx, player.GameID)
	return domain.AnswerResult{Answer: answer}, nil
}

func answerOutcome(a domain.PlayerAnswer) string {
	switch {
	case a.SelectedAnswer == domain.NoAnswer:
		return "skipped"
	case a.IsCorrect:
		return "correct"
	default:
		return "incorrect"
	}
}

func (s *PlayerService) refreshTotals(ctx context.Context, playerID string) error {
	answers, err := s.players.ListAnswers(ctx, playerID)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}
	if err := s.players.UpdatePlayerScore(ctx, playerID, Aggregate(answers)); err != nil {
		return fmt.Errorf("update running totals: %w", err)
	}
	return nil
}

func (s *PlayerService) GetPlayerAnswers(ctx context.Context, playerID string) ([]domain.PlayerAnswer, error) {
	return s.players.ListAnswers(ctx, playerID)
}

// UpdatePlayerScore overwrites the player's aggregate fields.
func (s *PlayerService) UpdatePlayerScore(ctx context.Context, playerID string, totals domain.PlayerTotals) error {
	if err := s.players.UpdatePlayerScore(ctx, playerID, totals); err != nil {
		return err
	}
	if player, err := s.players.GetPlayer(ctx, playerID); err == nil {
		s.publish(ctx, player.GameID)
	}
	return nil
}

// CompletePlayer aggregates the player's answers and marks the player as
// finished in a single store update. Repeating it recomputes the same totals
// and keeps the first completion time.
func (s *PlayerService) CompletePlayer(ctx context.Context, playerID string) (domain.Player, error) {
	if _, err := s.players.GetPlayer(ctx, playerID); err != nil {
		return domain.Player{}, err
	}
	answers, err := s.players.ListAnswers(ctx, playerID)
	if err != nil {
		return domain.Player{}, fmt.Errorf("list answers: %w", err)
	}
	if err := s.players.CompletePlayer(ctx, playerID, Aggregate(answers), s.now().UTC()); err != nil {
		return domain.Player{}, err
	}

	player, err := s.players.GetPlayer(ctx, playerID)
	if err != nil {
		return domain.Player{}, err
	}
	metrics.Completions.Inc()
	s.publish(ctx, player.GameID)
	return player, nil
}

// Aggregate sums points, counts correct answers and averages time spent,
// rounded to whole seconds. No answers give an average of zero.
func Aggregate(answers []domain.PlayerAnswer) domain.PlayerTotals {
	var totals domain.PlayerTotals
	var elapsed float64
	for _, a := range answers {
		totals.Score += a.Points
		if a.IsCorrect {
			totals.CorrectAnswers++
		}
		elapsed += a.TimeSpent
	}
	totals.TotalAnswers = len(answers)
	if totals.TotalAnswers > 0 {
		totals.AverageTime = int(math.Round(elapsed / float64(totals.TotalAnswers)))
	}
	return totals
}

// GetPlayersByGame returns the leaderboard order: score descending, ties in
// registration order.
func (s *PlayerService) GetPlayersByGame(ctx context.Context, gameID string) ([]domain.Player, error) {
	return s.players.ListPlayersByGame(ctx, gameID)
}

// Leaderboard returns the snapshot published to live subscribers.
func (s *PlayerService) Leaderboard(ctx context.Context, gameID string) (domain.Leaderboard, error) {
	players, err := s.players.ListPlayersByGame(ctx, gameID)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	entries := make([]domain.LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = domain.LeaderboardEntry{
			PlayerID:  p.ID,
			Name:      p.Name,
			Score:     p.Score,
			Completed: p.Completed(),
		}
	}
	return domain.Leaderboard{GameID: gameID, Entries: entries, UpdatedAt: s.now().UTC()}, nil
}

func (s *PlayerService) GetAllPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.players.ListPlayers(ctx)
}

// publish is best effort; a failed snapshot only delays live viewers.
func (s *PlayerService) publish(ctx context.Context, gameID string) {
	if s.feed == nil || s.feed.Subscribers(gameID) == 0 {
		return
	}
	if lb, err := s.Leaderboard(ctx, gameID); err == nil {
		s.feed.Publish(lb)
	}
}
