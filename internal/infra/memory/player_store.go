package memory

import (
	"context"
	"sort"
	"time"

	"trivia-service/internal/domain"
)

func (s *Store) FindPlayer(_ context.Context, name, phone, gameID string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if row := s.findLocked(name, phone, gameID); row != nil {
		return clonePlayer(row.player), nil
	}
	return domain.Player{}, domain.ErrPlayerNotFound
}

func (s *Store) findLocked(name, phone, gameID string) *playerRow {
	for _, id := range s.gamePlayers[gameID] {
		row := s.players[id]
		if row.player.Name == name && row.player.Phone == phone {
			return row
		}
	}
	return nil
}

func (s *Store) InsertPlayer(_ context.Context, player domain.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[player.GameID]; !ok {
		return domain.ErrGameNotFound
	}
	if s.findLocked(player.Name, player.Phone, player.GameID) != nil {
		return domain.ErrDuplicatePlayer
	}
	s.seq++
	s.players[player.ID] = &playerRow{player: clonePlayer(player), seq: s.seq}
	s.gamePlayers[player.GameID] = append(s.gamePlayers[player.GameID], player.ID)
	return nil
}

func (s *Store) GetPlayer(_ context.Context, id string) (domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.players[id]
	if !ok {
		return domain.Player{}, domain.ErrPlayerNotFound
	}
	return clonePlayer(row.player), nil
}

func (s *Store) ListPlayersByGame(_ context.Context, gameID string) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.gamePlayers[gameID]
	players := make([]domain.Player, 0, len(ids))
	for _, id := range ids {
		players = append(players, clonePlayer(s.players[id].player))
	}
	// gamePlayers is in registration order, so a stable sort keeps ties in that order.
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})
	return players, nil
}

func (s *Store) ListPlayers(_ context.Context) ([]domain.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]*playerRow, 0, len(s.players))
	for _, row := range s.players {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	players := make([]domain.Player, len(rows))
	for i, row := range rows {
		players[i] = clonePlayer(row.player)
	}
	return players, nil
}

func (s *Store) UpdatePlayerScore(_ context.Context, playerID string, totals domain.PlayerTotals) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	applyTotals(&row.player, totals)
	return nil
}

func (s *Store) CompletePlayer(_ context.Context, playerID string, totals domain.PlayerTotals, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.players[playerID]
	if !ok {
		return domain.ErrPlayerNotFound
	}
	applyTotals(&row.player, totals)
	if row.player.CompletedAt == nil {
		row.player.CompletedAt = &at
	}
	return nil
}

func (s *Store) InsertAnswer(_ context.Context, answer domain.PlayerAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[answer.PlayerID]; !ok {
		return domain.ErrPlayerNotFound
	}
	if _, ok := s.questions[answer.QuestionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	for _, id := range s.playerAns[answer.PlayerID] {
		if s.answers[id].QuestionID == answer.QuestionID {
			return domain.ErrAnswerExists
		}
	}
	s.answers[answer.ID] = answer
	s.playerAns[answer.PlayerID] = append(s.playerAns[answer.PlayerID], answer.ID)
	return nil
}

func (s *Store) FindAnswer(_ context.Context, playerID, questionID string) (domain.PlayerAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, id := range s.playerAns[playerID] {
		if a := s.answers[id]; a.QuestionID == questionID {
			return a, nil
		}
	}
	return domain.PlayerAnswer{}, domain.ErrQuestionNotFound
}

func (s *Store) ListAnswers(_ context.Context, playerID string) ([]domain.PlayerAnswer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.playerAns[playerID]
	answers := make([]domain.PlayerAnswer, 0, len(ids))
	for _, id := range ids {
		answers = append(answers, s.answers[id])
	}
	return answers, nil
}

func applyTotals(p *domain.Player, totals domain.PlayerTotals) {
	p.Score = totals.Score
	p.CorrectAnswers = totals.CorrectAnswers
	p.TotalAnswers = totals.TotalAnswers
	p.AverageTime = totals.AverageTime
}

func clonePlayer(p domain.Player) domain.Player {
	if p.CompletedAt != nil {
		at := *p.CompletedAt
		p.CompletedAt = &at
	}
	return p
}
