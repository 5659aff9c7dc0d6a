package app

import (
	"context"
	"time"

	"trivia-service/internal/domain"
)

// GameRepository abstracts how games and their questions are stored (in-memory, Postgres, SQLite).
type GameRepository interface {
	// CreateGame persists the game with its questions; readers never observe a
	// game without its full question set. Returns domain.ErrCodeTaken on a code clash.
	CreateGame(ctx context.Context, game domain.Game, questions []domain.Question) error
	GetGame(ctx context.Context, id string) (domain.Game, error)
	GetGameByCode(ctx context.Context, code string) (domain.Game, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	// ListGames returns every game, newest first.
	ListGames(ctx context.Context) ([]domain.Game, error)
	// ListQuestions returns the canonical questions ordered by Order.
	ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error)
	GetQuestion(ctx context.Context, id string) (domain.Question, error)
	// DeleteGame removes answers, players, questions and the game, in that order.
	DeleteGame(ctx context.Context, id string) error
}

// PlayerRepository abstracts how players and their answers are stored.
type PlayerRepository interface {
	FindPlayer(ctx context.Context, name, phone, gameID string) (domain.Player, error)
	// InsertPlayer returns domain.ErrDuplicatePlayer if the triple already exists.
	InsertPlayer(ctx context.Context, player domain.Player) error
	GetPlayer(ctx context.Context, id string) (domain.Player, error)
	// ListPlayersByGame orders by score descending, ties in registration order.
	ListPlayersByGame(ctx context.Context, gameID string) ([]domain.Player, error)
	ListPlayers(ctx context.Context) ([]domain.Player, error)
	UpdatePlayerScore(ctx context.Context, playerID string, totals domain.PlayerTotals) error
	// CompletePlayer writes totals and completion time in one update. An
	// existing completion time is kept.
	CompletePlayer(ctx context.Context, playerID string, totals domain.PlayerTotals, at time.Time) error
	// InsertAnswer returns domain.ErrAnswerExists if the question was already answered.
	InsertAnswer(ctx context.Context, answer domain.PlayerAnswer) error
	FindAnswer(ctx context.Context, playerID, questionID string) (domain.PlayerAnswer, error)
	ListAnswers(ctx context.Context, playerID string) ([]domain.PlayerAnswer, error)
}

// VisitorCounter is a singleton counter that must increment atomically.
type VisitorCounter interface {
	IncrementVisitors(ctx context.Context) (int64, error)
	VisitorCount(ctx context.Context) (int64, error)
}

// QuestionSource loads canonical questions for a game. GameRepository
// satisfies it; caches wrap it.
type QuestionSource interface {
	ListQuestions(ctx context.Context, gameID string) ([]domain.Question, error)
}

// QuestionCache is a QuestionSource that can drop a game's entry.
type QuestionCache interface {
	QuestionSource
	Forget(ctx context.Context, gameID string) error
}
