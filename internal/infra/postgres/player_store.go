package postgres

import (
	"context"
	"fmt"
	"time"

	"trivia-service/internal/domain"
)

func (s *Store) FindPlayer(ctx context.Context, name, phone, gameID string) (domain.Player, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx,
		`SELECT `+playerColumns+` FROM players WHERE game_id = $1 AND name = $2 AND phone = $3`,
		gameID, name, phone))
	if err != nil {
		return domain.Player{}, notFound(err, domain.ErrPlayerNotFound)
	}
	return p, nil
}

func (s *Store) InsertPlayer(ctx context.Context, player domain.Player) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO players (id, name, phone, game_id) VALUES ($1, $2, $3, $4)`,
		player.ID, player.Name, player.Phone, player.GameID)
	if code, constraint, ok := constraintError(err); ok {
		switch {
		case code == uniqueViolation && constraint == "players_identity_key":
			return domain.ErrDuplicatePlayer
		case code == foreignKeyViolation:
			return domain.ErrGameNotFound
		}
	}
	if err != nil {
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	p, err := scanPlayer(s.pool.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id))
	if err != nil {
		return domain.Player{}, notFound(err, domain.ErrPlayerNotFound)
	}
	return p, nil
}

func (s *Store) ListPlayersByGame(ctx context.Context, gameID string) ([]domain.Player, error) {
	return s.listPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE game_id = $1 ORDER BY score DESC, seq`, gameID)
}

func (s *Store) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.listPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY seq`)
}

func (s *Store) listPlayers(ctx context.Context, query string, args ...interface{}) ([]domain.Player, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	players := make([]domain.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) UpdatePlayerScore(ctx context.Context, playerID string, totals domain.PlayerTotals) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE players SET score = $2, correct_answers = $3, total_answers = $4, average_time = $5 WHERE id = $1`,
		playerID, totals.Score, totals.CorrectAnswers, totals.TotalAnswers, totals.AverageTime)
	if err != nil {
		return fmt.Errorf("update player score: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (s *Store) CompletePlayer(ctx context.Context, playerID string, totals domain.PlayerTotals, at time.Time) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE players
		 SET score = $2, correct_answers = $3, total_answers = $4, average_time = $5,
		     completed_at = COALESCE(completed_at, $6)
		 WHERE id = $1`,
		playerID, totals.Score, totals.CorrectAnswers, totals.TotalAnswers, totals.AverageTime, at)
	if err != nil {
		return fmt.Errorf("complete player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPlayerNotFound
	}
	return nil
}

func (s *Store) InsertAnswer(ctx context.Context, answer domain.PlayerAnswer) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO player_answers (`+answerColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		answer.ID, answer.PlayerID, answer.QuestionID, answer.SelectedAnswer, answer.IsCorrect, answer.TimeSpent, answer.Points)
	if code, constraint, ok := constraintError(err); ok {
		switch {
		case code == uniqueViolation && constraint == "player_answers_once_key":
			return domain.ErrAnswerExists
		case code == foreignKeyViolation && constraint == "player_answers_player_fkey":
			return domain.ErrPlayerNotFound
		case code == foreignKeyViolation:
			return domain.ErrQuestionNotFound
		}
	}
	if err != nil {
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (s *Store) FindAnswer(ctx context.Context, playerID, questionID string) (domain.PlayerAnswer, error) {
	a, err := scanAnswer(s.pool.QueryRow(ctx,
		`SELECT `+answerColumns+` FROM player_answers WHERE player_id = $1 AND question_id = $2`,
		playerID, questionID))
	if err != nil {
		return domain.PlayerAnswer{}, notFound(err, domain.ErrQuestionNotFound)
	}
	return a, nil
}

func (s *Store) ListAnswers(ctx context.Context, playerID string) ([]domain.PlayerAnswer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+answerColumns+` FROM player_answers WHERE player_id = $1 ORDER BY seq`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	answers := make([]domain.PlayerAnswer, 0)
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}
