package app

import (
	"sync"

	"trivia-service/internal/domain"
)

// LeaderboardFeed fans leaderboard snapshots out to subscribers per game.
type LeaderboardFeed struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Leaderboard]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{subscribers: make(map[string]map[chan domain.Leaderboard]struct{})}
}

// Subscribe returns a channel of snapshots for gameID. The caller must invoke
// the returned cancel function to avoid leaks.
func (f *LeaderboardFeed) Subscribe(gameID string) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	f.mu.Lock()
	subs, ok := f.subscribers[gameID]
	if !ok {
		subs = make(map[chan domain.Leaderboard]struct{})
		f.subscribers[gameID] = subs
	}
	subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		subs := f.subscribers[gameID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(f.subscribers, gameID)
		}
	}
	return ch, cancel
}

// Publish delivers lb to every subscriber of its game without blocking.
// A subscriber whose buffer is full loses its oldest pending snapshot.
func (f *LeaderboardFeed) Publish(lb domain.Leaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[lb.GameID] {
		select {
		case ch <- lb:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

// Subscribers reports how many subscribers a game has.
func (f *LeaderboardFeed) Subscribers(gameID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subscribers[gameID])
}

// CloseGame closes every subscription of a deleted game.
func (f *LeaderboardFeed) CloseGame(gameID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subscribers[gameID] {
		close(ch)
	}
	delete(f.subscribers, gameID)
}
