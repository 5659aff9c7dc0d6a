package postgres

import (
	"context"
	"fmt"

	"trivia-service/internal/domain"

	"github.com/jackc/pgx/v4"
)

// CreateGame writes the game and its questions in one transaction, so the game
// is invisible to other readers until every question is stored.
func (s *Store) CreateGame(ctx context.Context, game domain.Game, questions []domain.Question) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO games (`+gameColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			game.ID, game.Code, game.Name, game.QuestionDurationSeconds, game.CreatedAt, game.IsActive)
		if code, constraint, ok := constraintError(err); ok && code == uniqueViolation && constraint == "games_code_key" {
			return domain.ErrCodeTaken
		}
		if err != nil {
			return fmt.Errorf("insert game: %w", err)
		}

		for _, q := range questions {
			options, err := encodeOptions(q.Options)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO questions (`+questionColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				q.ID, game.ID, q.Text, q.Image, options, q.CorrectAnswer, q.Order); err != nil {
				return fmt.Errorf("insert question %d: %w", q.Order, err)
			}
		}
		return nil
	})
}

func (s *Store) GetGame(ctx context.Context, id string) (domain.Game, error) {
	g, err := scanGame(s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id))
	if err != nil {
		return domain.Game{}, notFound(err, domain.ErrGameNotFound)
	}
	return g, nil
}

func (s *Store) GetGameByCode(ctx context.Context, code string) (domain.Game, error) {
	g, err := scanGame(s.pool.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE code = $1`, code))
	if err != nil {
		return domain.Game{}, notFound(err, domain.ErrGameNotFound)
	}
	return g, nil
}

func (s *Store) CodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE code = $1)`, code).Scan(&exists)
	return exists, err
}

func (s *Store) ListGames(ctx context.Context) ([]domain.Game, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+gameColumns+` FROM games ORDER BY created_at DESC, id`)
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
	rows, err := s.pool.Query(ctx, `SELECT `+questionColumns+` FROM questions WHERE game_id = $1 ORDER BY position`, gameID)
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
	q, err := scanQuestion(s.pool.QueryRow(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
	if err != nil {
		return domain.Question{}, notFound(err, domain.ErrQuestionNotFound)
	}
	return q, nil
}

// DeleteGame removes the game's dependents in foreign key order inside one
// transaction.
func (s *Store) DeleteGame(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		steps := []struct {
			what  string
			query string
		}{
			{"answers", `DELETE FROM player_answers WHERE player_id IN (SELECT id FROM players WHERE game_id = $1)`},
			{"players", `DELETE FROM players WHERE game_id = $1`},
			{"questions", `DELETE FROM questions WHERE game_id = $1`},
		}
		for _, step := range steps {
			if _, err := tx.Exec(ctx, step.query, id); err != nil {
				return fmt.Errorf("delete %s: %w", step.what, err)
			}
		}

		tag, err := tx.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrGameNotFound
		}
		return nil
	})
}
