package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"trivia-service/internal/domain"
)

// scanner is satisfied by pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

const (
	gameColumns     = `id, code, name, question_duration, created_at, is_active`
	questionColumns = `id, game_id, text, image, options, correct_answer, position`
	playerColumns   = `id, name, phone, game_id, score, correct_answers, total_answers, average_time, completed_at`
	answerColumns   = `id, player_id, question_id, selected_answer, is_correct, time_spent, points`
)

func scanGame(row scanner) (domain.Game, error) {
	var g domain.Game
	err := row.Scan(&g.ID, &g.Code, &g.Name, &g.QuestionDurationSeconds, &g.CreatedAt, &g.IsActive)
	g.CreatedAt = g.CreatedAt.UTC()
	return g, err
}

func scanQuestion(row scanner) (domain.Question, error) {
	var (
		q       domain.Question
		options []byte
	)
	if err := row.Scan(&q.ID, &q.GameID, &q.Text, &q.Image, &options, &q.CorrectAnswer, &q.Order); err != nil {
		return q, err
	}
	if err := json.Unmarshal(options, &q.Options); err != nil {
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
		completedAt *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.GameID, &p.Score, &p.CorrectAnswers, &p.TotalAnswers, &p.AverageTime, &completedAt)
	if completedAt != nil {
		at := completedAt.UTC()
		p.CompletedAt = &at
	}
	return p, err
}

func scanAnswer(row scanner) (domain.PlayerAnswer, error) {
	var a domain.PlayerAnswer
	err := row.Scan(&a.ID, &a.PlayerID, &a.QuestionID, &a.SelectedAnswer, &a.IsCorrect, &a.TimeSpent, &a.Points)
	return a, err
}
