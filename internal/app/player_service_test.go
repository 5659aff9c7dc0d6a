package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

type fixture struct {
	store   *memory.Store
	games   *app.GameService
	players *app.PlayerService
	feed    *app.LeaderboardFeed
	game    domain.Game
	qs      []domain.Question
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		feed:  app.NewLeaderboardFeed(),
		now:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.games = app.NewGameService(f.store, app.WithFeed(f.feed), app.WithGameClock(clock))
	f.players = app.NewPlayerServiceWithClock(f.store, f.store, f.feed, clock)

	game, err := f.games.CreateGame(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	f.game = game
	f.qs, _ = f.store.ListQuestions(context.Background(), game.ID)
	return f
}

func TestFindExistingPlayerMatchesCreatePlayerNormalisation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	reg, err := f.players.CreatePlayer(ctx, " Sara ", "0512345678", f.game.ID)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	again, err := f.players.CreatePlayer(ctx, " Sara ", "0512345678", f.game.ID)
	if err != nil || !again.IsExisting || again.Player.ID != reg.Player.ID {
		t.Fatalf("expected existing registration, got %+v %v", again, err)
	}

	found, err := f.players.FindExistingPlayer(ctx, " Sara ", "0512345678", f.game.ID)
	if err != nil {
		t.Fatalf("find with padded name: %v", err)
	}
	if found.ID != reg.Player.ID || found.Name != "Sara" {
		t.Fatalf("unexpected player %+v", found)
	}
}

func TestCreatePlayerIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	first, err := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if first.IsExisting || first.HasCompleted {
		t.Fatalf("expected fresh registration, got %+v", first)
	}

	second, err := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)
	if err != nil {
		t.Fatalf("register again: %v", err)
	}
	if second.Player.ID != first.Player.ID || !second.IsExisting || second.HasCompleted {
		t.Fatalf("expected resumed registration of %s, got %+v", first.Player.ID, second)
	}

	all, _ := f.players.GetPlayersByGame(ctx, f.game.ID)
	if len(all) != 1 {
		t.Fatalf("expected one stored player, got %d", len(all))
	}

	if _, err := f.players.CreatePlayerAnswer(ctx, first.Player.ID, domain.AnswerSubmission{
		QuestionID: f.qs[0].ID, SelectedAnswer: 1, IsCorrect: true, TimeSpent: 5,
	}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	completed, err := f.players.CompletePlayer(ctx, first.Player.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	third, err := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)
	if err != nil {
		t.Fatalf("register after completion: %v", err)
	}
	if !third.HasCompleted || !third.IsExisting || third.Player.Score != completed.Score || third.Player.Score != 1375 {
		t.Fatalf("expected completed registration keeping score, got %+v", third)
	}
}

func TestCreatePlayerConcurrentJoinsYieldOnePlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var wg sync.WaitGroup
	ids := make(chan string, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reg, err := f.players.CreatePlayer(ctx, "Omar", "0598765432", f.game.ID)
			if err != nil {
				t.Errorf("register: %v", err)
				return
			}
			ids <- reg.Player.ID
		}()
	}
	wg.Wait()
	close(ids)

	var first string
	for id := range ids {
		if first == "" {
			first = id
		}
		if id != first {
			t.Fatalf("expected one player id, got %s and %s", first, id)
		}
	}
	all, _ := f.players.GetAllPlayers(ctx)
	if len(all) != 1 {
		t.Fatalf("expected one stored player, got %d", len(all))
	}
}

func TestCreatePlayerErrors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.players.CreatePlayer(ctx, "Sara", "12345", f.game.ID); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.players.CreatePlayer(ctx, "Sara", "0512345678", "missing"); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected game not found, got %v", err)
	}
}

func TestCompletePlayerAggregates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg, _ := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)
	id := reg.Player.ID

	if reg.Player.CompletedAt != nil {
		t.Fatalf("expected not completed")
	}
	res, err := f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: f.qs[0].ID, SelectedAnswer: 1, IsCorrect: true, TimeSpent: 5})
	if err != nil || res.Answer.Points != 1375 {
		t.Fatalf("expected 1375 points, got %+v %v", res, err)
	}
	res, err = f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: f.qs[1].ID, SelectedAnswer: domain.NoAnswer, TimeSpent: 20})
	if err != nil || res.Answer.Points != 0 {
		t.Fatalf("expected 0 points, got %+v %v", res, err)
	}

	player, err := f.players.CompletePlayer(ctx, id)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if player.Score != 1375 || player.CorrectAnswers != 1 || player.TotalAnswers != 2 || player.AverageTime != 13 {
		t.Fatalf("unexpected totals %+v", player)
	}
	if player.CompletedAt == nil || !player.CompletedAt.Equal(f.now) {
		t.Fatalf("expected completion at %v, got %v", f.now, player.CompletedAt)
	}

	f.now = f.now.Add(time.Minute)
	again, err := f.players.CompletePlayer(ctx, id)
	if err != nil {
		t.Fatalf("complete again: %v", err)
	}
	if again.Score != 1375 || !again.CompletedAt.Equal(*player.CompletedAt) {
		t.Fatalf("expected idempotent completion, got %+v", again)
	}
}

func TestCompletePlayerWithoutAnswers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg, _ := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)

	player, err := f.players.CompletePlayer(ctx, reg.Player.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if player.AverageTime != 0 || player.TotalAnswers != 0 || !player.Completed() {
		t.Fatalf("unexpected player %+v", player)
	}

	if _, err := f.players.CompletePlayer(ctx, "missing"); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
}

func TestCreatePlayerAnswerRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg, _ := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)
	id := reg.Player.ID

	first, err := f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: f.qs[0].ID, SelectedAnswer: 1, IsCorrect: true, TimeSpent: 2})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	repeat, err := f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: f.qs[0].ID, SelectedAnswer: 0, IsCorrect: true, TimeSpent: 0})
	if err != nil {
		t.Fatalf("repeat answer: %v", err)
	}
	if !repeat.AlreadyAnswered || repeat.Answer.ID != first.Answer.ID || repeat.Answer.Points != 1450 {
		t.Fatalf("expected first answer back, got %+v", repeat)
	}
	answers, _ := f.players.GetPlayerAnswers(ctx, id)
	if len(answers) != 1 {
		t.Fatalf("expected one stored answer, got %d", len(answers))
	}

	if _, err := f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: f.qs[1].ID, SelectedAnswer: 9}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := f.players.CreatePlayerAnswer(ctx, "missing", domain.AnswerSubmission{QuestionID: f.qs[1].ID}); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected player not found, got %v", err)
	}
	if _, err := f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: "missing"}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected question not found, got %v", err)
	}

	other, _ := f.games.CreateGame(ctx, sampleDraft())
	otherQs, _ := f.store.ListQuestions(ctx, other.ID)
	if _, err := f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: otherQs[0].ID, SelectedAnswer: 0}); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected foreign question rejected, got %v", err)
	}

	if _, err := f.players.CompletePlayer(ctx, id); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if _, err := f.players.CreatePlayerAnswer(ctx, id, domain.AnswerSubmission{QuestionID: f.qs[2].ID, SelectedAnswer: 0, IsCorrect: true}); !errors.Is(err, domain.ErrPlayerCompleted) {
		t.Fatalf("expected completed player rejected, got %v", err)
	}
}

func TestCreatePlayerAnswerUpdatesRunningTotals(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg, _ := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)

	_, _ = f.players.CreatePlayerAnswer(ctx, reg.Player.ID, domain.AnswerSubmission{QuestionID: f.qs[0].ID, SelectedAnswer: 1, IsCorrect: true, TimeSpent: 4})
	player, _ := f.players.GetPlayer(ctx, reg.Player.ID)
	if player.Score != 1400 || player.TotalAnswers != 1 || player.Completed() {
		t.Fatalf("unexpected running totals %+v", player)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	names := []string{"Ann", "Ben", "Cid", "Dan"}
	phones := []string{"0500000001", "0500000002", "0500000003", "0500000004"}
	scores := []int{1000, 1500, 1000, 1200}
	for i := range names {
		reg, err := f.players.CreatePlayer(ctx, names[i], phones[i], f.game.ID)
		if err != nil {
			t.Fatalf("register %s: %v", names[i], err)
		}
		if err := f.players.UpdatePlayerScore(ctx, reg.Player.ID, domain.PlayerTotals{Score: scores[i]}); err != nil {
			t.Fatalf("update score: %v", err)
		}
	}

	players, err := f.players.GetPlayersByGame(ctx, f.game.ID)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	want := []string{"Ben", "Dan", "Ann", "Cid"}
	for i, p := range players {
		if p.Name != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], p.Name)
		}
	}

	empty, err := f.players.GetPlayersByGame(ctx, "missing")
	if err != nil || len(empty) != 0 {
		t.Fatalf("expected empty leaderboard, got %v %v", empty, err)
	}
}

func TestLeaderboardFeedReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	updates, cancel := f.feed.Subscribe(f.game.ID)
	defer cancel()

	reg, _ := f.players.CreatePlayer(ctx, "Sara", "0512345678", f.game.ID)
	lb := <-updates
	if len(lb.Entries) != 1 || lb.Entries[0].PlayerID != reg.Player.ID {
		t.Fatalf("unexpected snapshot after join: %+v", lb)
	}

	_, _ = f.players.CreatePlayerAnswer(ctx, reg.Player.ID, domain.AnswerSubmission{QuestionID: f.qs[0].ID, SelectedAnswer: 1, IsCorrect: true, TimeSpent: 0})
	lb = <-updates
	if lb.Entries[0].Score != 1500 || lb.Entries[0].Completed {
		t.Fatalf("unexpected snapshot after answer: %+v", lb)
	}

	_, _ = f.players.CompletePlayer(ctx, reg.Player.ID)
	lb = <-updates
	if !lb.Entries[0].Completed {
		t.Fatalf("expected completed entry, got %+v", lb)
	}

	if err := f.games.DeleteGame(ctx, f.game.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := <-updates; ok {
		t.Fatalf("expected feed closed after delete")
	}
}
