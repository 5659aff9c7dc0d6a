package memory

import (
	"context"
	"sort"
	"sync"

	"trivia-service/internal/domain"
)

// Store is an in-memory implementation of app.GameRepository and
// app.PlayerRepository. One lock guards all tables so cascades and
// check-then-insert sequences are atomic.
type Store struct {
	mu sync.RWMutex

	games       map[string]domain.Game
	codes       map[string]string // code -> game id
	questions   map[string]domain.Question
	gameQs      map[string][]string // game id -> question ids in order
	players     map[string]*playerRow
	gamePlayers map[string][]string // game id -> player ids in registration order
	answers     map[string]domain.PlayerAnswer
	playerAns   map[string][]string // player id -> answer ids in submission order

	seq uint64
}

type playerRow struct {
	player domain.Player
	seq    uint64
}

func NewStore() *Store {
	return &Store{
		games:       make(map[string]domain.Game),
		codes:       make(map[string]string),
		questions:   make(map[string]domain.Question),
		gameQs:      make(map[string][]string),
		players:     make(map[string]*playerRow),
		gamePlayers: make(map[string][]string),
		answers:     make(map[string]domain.PlayerAnswer),
		playerAns:   make(map[string][]string),
	}
}

func (s *Store) CreateGame(_ context.Context, game domain.Game, questions []domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.codes[game.Code]; taken {
		return domain.ErrCodeTaken
	}
	s.games[game.ID] = game
	s.codes[game.Code] = game.ID
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		s.questions[q.ID] = cloneQuestion(q)
		ids = append(ids, q.ID)
	}
	s.gameQs[game.ID] = ids
	return nil
}

func (s *Store) GetGame(_ context.Context, id string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return game, nil
}

func (s *Store) GetGameByCode(_ context.Context, code string) (domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return domain.Game{}, domain.ErrGameNotFound
	}
	return s.games[id], nil
}

func (s *Store) CodeExists(_ context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[code]
	return ok, nil
}

func (s *Store) ListGames(_ context.Context) ([]domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := make([]domain.Game, 0, len(s.games))
	for _, g := range s.games {
		games = append(games, g)
	}
	sort.Slice(games, func(i, j int) bool {
		if !games[i].CreatedAt.Equal(games[j].CreatedAt) {
			return games[i].CreatedAt.After(games[j].CreatedAt)
		}
		return games[i].ID < games[j].ID
	})
	return games, nil
}

func (s *Store) ListQuestions(_ context.Context, gameID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.gameQs[gameID]
	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		questions = append(questions, cloneQuestion(s.questions[id]))
	}
	return questions, nil
}

func (s *Store) GetQuestion(_ context.Context, id string) (domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return cloneQuestion(q), nil
}

func (s *Store) DeleteGame(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	game, ok := s.games[id]
	if !ok {
		return domain.ErrGameNotFound
	}
	for _, playerID := range s.gamePlayers[id] {
		for _, answerID := range s.playerAns[playerID] {
			delete(s.answers, answerID)
		}
		delete(s.playerAns, playerID)
	}
	for _, playerID := range s.gamePlayers[id] {
		delete(s.players, playerID)
	}
	delete(s.gamePlayers, id)
	for _, questionID := range s.gameQs[id] {
		delete(s.questions, questionID)
	}
	delete(s.gameQs, id)
	delete(s.codes, game.Code)
	delete(s.games, id)
	return nil
}

func cloneQuestion(q domain.Question) domain.Question {
	options := make([]domain.Option, len(q.Options))
	copy(options, q.Options)
	q.Options = options
	return q
}
