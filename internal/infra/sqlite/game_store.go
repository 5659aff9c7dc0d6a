package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"trivia-service/internal/domain"
)

func (s *Store) CreateGame(ctx context.Context, game domain.Game, questions []domain.Question) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO games (`+gameColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
			game.ID, game.Code, game.Name, game.QuestionDurationSeconds, game.CreatedAt.UnixNano(), game.IsActive)
		if uniqueOn(err, "games.code") {
			return domain.ErrCodeTaken
		}
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO questions (`+questionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, q := range questions {
			options, err := encodeOptions(q.Options)
			if err != nil {
				return err
			}
			if _, err := stmt.ExecContext(ctx, q.ID, game.ID, q.Text, q.Image, options, q.CorrectAnswer, q.Order); err != nil {
				return fmt.Errorf("insert question %d: %w", q.Order, err)
			}
		}
		return nil
	})
}

func (s *Store) GetGame(ctx context.Context, id string) (domain.Game, error) {
	g, err := scanGame(s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id))
	if err != nil {
		return domain.Game{}, notFound(err, domain.ErrGameNotFound)
	}
	return g, nil
}

func (s *Store) GetGameByCode(ctx context.Context, code string) (domain.Game, error) {
	g, err := scanGame(s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE code = ?`, code))
	if err != nil {
		return domain.Game{}, notFound(err, domain.ErrGameNotFound)
	}
	return g, nil
}

func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE code = ?)`, code).Scan(&exists)
	return exists, err
}

func (s *Store) ListGames(ctx context.Context) ([]domain.Game, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at_unix_nano DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	games := make([]domain.Game, 0)
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func (s *Store) ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE game_id = ? ORDER BY position`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	q, err := scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id))
	if err != nil {
		return domain.Question{}, notFound(err, domain.ErrQuestionNotFound)
	}
	return q, nil
}

func (s *Store) DeleteGame(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, query := range []string{
			`DELETE FROM player_answers WHERE player_id IN (SELECT id FROM players WHERE game_id = ?)`,
			`DELETE FROM players WHERE game_id = ?`,
			`DELETE FROM questions WHERE game_id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, query, id); err != nil {
				return fmt.Errorf("cascade delete: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return domain.ErrGameNotFound
		}
		return nil
	})
}
