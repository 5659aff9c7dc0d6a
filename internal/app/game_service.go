package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"trivia-service/internal/domain"
	"trivia-service/internal/metrics"

	"github.com/google/uuid"
)

const maxCreateAttempts = 3

// GameService contains the game use cases: creation, lookup and play views.
type GameService struct {
	games      GameRepository
	questions  QuestionSource
	codes      *CodeGenerator
	randomizer *Randomizer
	feed       *LeaderboardFeed
	now        func() time.Time
}

// GameOption customises a GameService.
type GameOption func(*GameService)

// WithQuestionSource serves play views from a cache instead of the repository.
func WithQuestionSource(src QuestionSource) GameOption {
	return func(s *GameService) { s.questions = src }
}

// WithRandomizer replaces the default randomizer, e.g. with a seeded one in tests.
func WithRandomizer(r *Randomizer) GameOption {
	return func(s *GameService) { s.randomizer = r }
}

// WithGameClock is test-only for deterministic timestamps.
func WithGameClock(now func() time.Time) GameOption {
	return func(s *GameService) { s.now = now }
}

// WithFeed closes live subscriptions when a game is deleted.
func WithFeed(feed *LeaderboardFeed) GameOption {
	return func(s *GameService) { s.feed = feed }
}

func NewGameService(games GameRepository, opts ...GameOption) *GameService {
	s := &GameService{
		games:      games,
		questions:  games,
		codes:      NewCodeGenerator(),
		randomizer: NewRandomizer(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateGame validates the draft, picks a unique join code and stores the game
// with its questions (Order is the 1-based draft position).
func (s *GameService) CreateGame(ctx context.Context, draft domain.GameDraft) (domain.Game, error) {
	draft, err := domain.ValidateGameDraft(draft)
	if err != nil {
		return domain.Game{}, err
	}

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		code, err := s.codes.GenerateUnique(ctx, s.games.CodeExists)
		if err != nil {
			return domain.Game{}, err
		}
		game := domain.Game{
			ID:                      uuid.NewString(),
			Code:                    code,
			Name:                    draft.Name,
			QuestionDurationSeconds: draft.QuestionDurationSeconds,
			CreatedAt:               s.now().UTC(),
			IsActive:                true,
		}
		err = s.games.CreateGame(ctx, game, buildQuestions(game.ID, draft.Questions))
		if errors.Is(err, domain.ErrCodeTaken) {
			continue
		}
		if err != nil {
			return domain.Game{}, fmt.Errorf("create game: %w", err)
		}
		metrics.GamesCreated.Inc()
		return game, nil
	}
	return domain.Game{}, fmt.Errorf("create game: %w", domain.ErrCodeTaken)
}

func buildQuestions(gameID string, drafts []domain.QuestionDraft) []domain.Question {
	questions := make([]domain.Question, len(drafts))
	for i, d := range drafts {
		options := make([]domain.Option, len(d.Options))
		copy(options, d.Options)
		questions[i] = domain.Question{
			ID:            uuid.NewString(),
			GameID:        gameID,
			Text:          d.Text,
			Image:         d.Image,
			Options:       options,
			CorrectAnswer: d.CorrectAnswer,
			Order:         i + 1,
		}
	}
	return questions
}

func (s *GameService) GetGame(ctx context.Context, id string) (domain.Game, error) {
	return s.games.GetGame(ctx, id)
}

// GetGameByCode accepts codes in any case and with surrounding whitespace.
func (s *GameService) GetGameByCode(ctx context.Context, code string) (domain.Game, error) {
	return s.games.GetGameByCode(ctx, domain.NormalizeCode(code))
}

func (s *GameService) GetAllGames(ctx context.Context) ([]domain.Game, error) {
	return s.games.ListGames(ctx)
}

// GetGameQuestions returns a freshly randomized view of the game's questions.
// An unknown game yields an empty list.
func (s *GameService) GetGameQuestions(ctx context.Context, gameID string) ([]domain.Question, error) {
	questions, err := s.questions.ListQuestions(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.randomizer.Randomize(questions), nil
}

// DeleteGame cascades through answers, players and questions, then drops any
// cached questions and live subscriptions for the game.
func (s *GameService) DeleteGame(ctx context.Context, id string) error {
	if err := s.games.DeleteGame(ctx, id); err != nil {
		return err
	}
	if cache, ok := s.questions.(QuestionCache); ok {
		if err := cache.Forget(ctx, id); err != nil {
			return fmt.Errorf("forget cached questions: %w", err)
		}
	}
	if s.feed != nil {
		s.feed.CloseGame(id)
	}
	return nil
}
