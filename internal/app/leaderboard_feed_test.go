package app_test

import (
	"testing"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
)

func TestFeedDropsStaleSnapshotsForSlowSubscribers(t *testing.T) {
	feed := app.NewLeaderboardFeed()
	ch, cancel := feed.Subscribe("g1")
	defer cancel()

	for score := 1; score <= 20; score++ {
		feed.Publish(domain.Leaderboard{GameID: "g1", Entries: []domain.LeaderboardEntry{{Score: score}}})
	}

	var last domain.Leaderboard
	for len(ch) > 0 {
		last = <-ch
	}
	if last.Entries[0].Score != 20 {
		t.Fatalf("expected latest snapshot last, got %+v", last)
	}
}

func TestFeedIsolatesGames(t *testing.T) {
	feed := app.NewLeaderboardFeed()
	ch1, cancel1 := feed.Subscribe("g1")
	ch2, cancel2 := feed.Subscribe("g2")
	defer cancel2()

	feed.Publish(domain.Leaderboard{GameID: "g1"})
	if len(ch1) != 1 || len(ch2) != 0 {
		t.Fatalf("expected only g1 subscriber notified")
	}

	cancel1()
	cancel1()
	if feed.Subscribers("g1") != 0 {
		t.Fatalf("expected g1 unsubscribed")
	}
	if _, ok := <-ch1; !ok {
		t.Fatalf("expected buffered snapshot before close")
	}
	if _, ok := <-ch1; ok {
		t.Fatalf("expected channel closed")
	}
}
