package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trivia-service/internal/domain"
)

func (s *Store) FindPlayer(ctx context.Context, name, phone, gameID string) (domain.Player, error) {
	p, err := scanPlayer(s.db.QueryRowContext(ctx,
		`SELECT `+playerColumns+` FROM players WHERE game_id = ? AND name = ? AND phone = ?`,
		gameID, name, phone))
	if err != nil {
		return domain.Player{}, notFound(err, domain.ErrPlayerNotFound)
	}
	return p, nil
}

func (s *Store) InsertPlayer(ctx context.Context, player domain.Player) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO players (id, name, phone, game_id) VALUES (?, ?, ?, ?)`,
		player.ID, player.Name, player.Phone, player.GameID)
	switch {
	case uniqueOn(err, "players.game_id"):
		return domain.ErrDuplicatePlayer
	case isForeignKey(err):
		return domain.ErrGameNotFound
	case err != nil:
		return fmt.Errorf("insert player: %w", err)
	}
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, id string) (domain.Player, error) {
	p, err := scanPlayer(s.db.QueryRowContext(ctx, `SELECT `+playerColumns+` FROM players WHERE id = ?`, id))
	if err != nil {
		return domain.Player{}, notFound(err, domain.ErrPlayerNotFound)
	}
	return p, nil
}

// ListPlayersByGame breaks score ties by rowid, which follows insertion order.
func (s *Store) ListPlayersByGame(ctx context.Context, gameID string) ([]domain.Player, error) {
	return s.listPlayers(ctx, `SELECT `+playerColumns+` FROM players WHERE game_id = ? ORDER BY score DESC, rowid`, gameID)
}

func (s *Store) ListPlayers(ctx context.Context) ([]domain.Player, error) {
	return s.listPlayers(ctx, `SELECT `+playerColumns+` FROM players ORDER BY rowid`)
}

func (s *Store) listPlayers(ctx context.Context, query string, args ...any) ([]domain.Player, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
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
	res, err := s.db.ExecContext(ctx,
		`UPDATE players SET score = ?, correct_answers = ?, total_answers = ?, average_time = ? WHERE id = ?`,
		totals.Score, totals.CorrectAnswers, totals.TotalAnswers, totals.AverageTime, playerID)
	if err != nil {
		return fmt.Errorf("update player score: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrPlayerNotFound)
}

func (s *Store) CompletePlayer(ctx context.Context, playerID string, totals domain.PlayerTotals, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE players
		 SET score = ?, correct_answers = ?, total_answers = ?, average_time = ?,
		     completed_at_unix_nano = COALESCE(completed_at_unix_nano, ?)
		 WHERE id = ?`,
		totals.Score, totals.CorrectAnswers, totals.TotalAnswers, totals.AverageTime, at.UnixNano(), playerID)
	if err != nil {
		return fmt.Errorf("complete player: %w", err)
	}
	return affectedOrNotFound(res, domain.ErrPlayerNotFound)
}

func (s *Store) InsertAnswer(ctx context.Context, answer domain.PlayerAnswer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO player_answers (`+answerColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		answer.ID, answer.PlayerID, answer.QuestionID, answer.SelectedAnswer, answer.IsCorrect, answer.TimeSpent, answer.Points)
	switch {
	case uniqueOn(err, "player_answers.player_id"):
		return domain.ErrAnswerExists
	case isForeignKey(err):
		// SQLite does not name the failing key; look the player up to tell them apart.
		if _, perr := s.GetPlayer(ctx, answer.PlayerID); errors.Is(perr, domain.ErrPlayerNotFound) {
			return domain.ErrPlayerNotFound
		}
		return domain.ErrQuestionNotFound
	case err != nil:
		return fmt.Errorf("insert answer: %w", err)
	}
	return nil
}

func (s *Store) FindAnswer(ctx context.Context, playerID, questionID string) (domain.PlayerAnswer, error) {
	a, err := scanAnswer(s.db.QueryRowContext(ctx,
		`SELECT `+answerColumns+` FROM player_answers WHERE player_id = ? AND question_id = ?`,
		playerID, questionID))
	if err != nil {
		return domain.PlayerAnswer{}, notFound(err, domain.ErrQuestionNotFound)
	}
	return a, nil
}

func (s *Store) ListAnswers(ctx context.Context, playerID string) ([]domain.PlayerAnswer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+answerColumns+` FROM player_answers WHERE player_id = ? ORDER BY rowid`, playerID)
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

func affectedOrNotFound(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}
