package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"trivia-service/internal/domain"
)

type scanner interface {
	Scan(dest ...any) error
}

const (
	gameColumns     = `id, code, name, question_duration, created_at_unix_nano, is_active`
	questionColumns = `id, game_id, text, image, options_json, correct_answer, position`
	playerColumns   = `id, name, phone, game_id, score, correct_answers, total_answers, average_time, completed_at_unix_nano`
	answerColumns   = `id, player_id, question_id, selected_answer, is_correct, time_spent, points`
)

func scanGame(row scanner) (domain.Game, error) {
	var (
		g         domain.Game
		createdAt int64
	)
	if err := row.Scan(&g.ID, &g.Code, &g.Name, &g.QuestionDurationSeconds, &createdAt, &g.IsActive); err != nil {
		return g, err
	}
	g.CreatedAt = fromUnixNano(createdAt)
	return g, nil
}

func scanQuestion(row scanner) (domain.Question, error) {
	var (
		q       domain.Question
		options string
	)
	if err := row.Scan(&q.ID, &q.GameID, &q.Text, &q.Image, &options, &q.CorrectAnswer, &q.Order); err != nil {
		return q, err
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return q, fmt.Errorf("unmarshal options of question %s: %w", q.ID, err)
	}
	return q, nil
}

func encodeOptions(options []domain.Option) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("marshal options: %w", err)
	}
	return string(data), nil
}

func scanPlayer(row scanner) (domain.Player, error) {
	var (
		p           domain.Player
		completedAt sql.NullInt64
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.GameID, &p.Score, &p.CorrectAnswers, &p.TotalAnswers, &p.AverageTime, &completedAt); err != nil {
		return p, err
	}
	if completedAt.Valid {
		at := fromUnixNano(completedAt.Int64)
		p.CompletedAt = &at
	}
	return p, nil
}

func scanAnswer(row scanner) (domain.PlayerAnswer, error) {
	var a domain.PlayerAnswer
	err := row.Scan(&a.ID, &a.PlayerID, &a.QuestionID, &a.SelectedAnswer, &a.IsCorrect, &a.TimeSpent, &a.Points)
	return a, err
}

func fromUnixNano(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
