package app_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"
)

const horizon = 72 * time.Hour

func TestSweepRetentionBoundary(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore()

	oldGame := createGameAt(t, store, now.Add(-horizon-time.Second))
	freshGame := createGameAt(t, store, now.Add(-horizon+time.Second))

	players := app.NewPlayerService(store, store, nil)
	oldReg, _ := players.CreatePlayer(ctx, "Sara", "0512345678", oldGame.ID)
	freshReg, _ := players.CreatePlayer(ctx, "Omar", "0598765432", freshGame.ID)
	freshQs, _ := store.ListQuestions(ctx, freshGame.ID)
	_, _ = players.CreatePlayerAnswer(ctx, freshReg.Player.ID, domain.AnswerSubmission{QuestionID: freshQs[0].ID, SelectedAnswer: 1, IsCorrect: true, TimeSpent: 1})

	sweeper := app.NewRetentionSweeper(app.NewGameService(store), horizon, time.Hour,
		app.WithSweeperClock(func() time.Time { return now }),
		app.WithSweeperLogger(log.New(io.Discard, "", 0)),
	)
	report := sweeper.SweepOnce(ctx)
	if report.Scanned != 2 || report.Deleted != 1 || report.Failed != 0 {
		t.Fatalf("unexpected report %+v", report)
	}

	if _, err := store.GetGame(ctx, oldGame.ID); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected old game swept, got %v", err)
	}
	if _, err := store.GetPlayer(ctx, oldReg.Player.ID); !errors.Is(err, domain.ErrPlayerNotFound) {
		t.Fatalf("expected old player swept, got %v", err)
	}
	if _, err := store.GetGame(ctx, freshGame.ID); err != nil {
		t.Fatalf("expected fresh game kept, got %v", err)
	}
	if answers, _ := store.ListAnswers(ctx, freshReg.Player.ID); len(answers) != 1 {
		t.Fatalf("expected fresh answers kept, got %d", len(answers))
	}
}

func TestSweepContinuesAfterFailure(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := memory.NewStore()
	g1 := createGameAt(t, store, now.Add(-100*time.Hour))
	g2 := createGameAt(t, store, now.Add(-100*time.Hour))

	var buf bytes.Buffer
	target := &flakyTarget{GameService: app.NewGameService(store), fail: g1.ID, panicOn: ""}
	sweeper := app.NewRetentionSweeper(target, horizon, time.Hour, app.WithSweeperLogger(log.New(&buf, "", 0)))

	report := sweeper.SweepOnce(ctx)
	if report.Deleted != 1 || report.Failed != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if _, err := store.GetGame(ctx, g2.ID); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected second game swept despite first failing")
	}
	if !strings.Contains(buf.String(), g1.ID) {
		t.Fatalf("expected failure logged, got %q", buf.String())
	}

	g3 := createGameAt(t, store, now.Add(-100*time.Hour))
	target.fail, target.panicOn = "", g1.ID
	report = sweeper.SweepOnce(ctx)
	if report.Failed != 1 || report.Deleted != 1 {
		t.Fatalf("expected panic isolated, got %+v", report)
	}
	if _, err := store.GetGame(ctx, g3.ID); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected third game swept after panic")
	}
}

func TestSweepListFailureIsSwallowed(t *testing.T) {
	target := &flakyTarget{GameService: app.NewGameService(memory.NewStore()), listErr: errors.New("db down")}
	sweeper := app.NewRetentionSweeper(target, horizon, time.Hour, app.WithSweeperLogger(log.New(io.Discard, "", 0)))
	if report := sweeper.SweepOnce(context.Background()); report.Failed != 1 {
		t.Fatalf("expected list failure reported, got %+v", report)
	}
}

func TestSweeperStartSweepsImmediatelyAndStops(t *testing.T) {
	store := memory.NewStore()
	old := createGameAt(t, store, time.Now().Add(-100*time.Hour))

	target := &flakyTarget{GameService: app.NewGameService(store)}
	sweeper := app.NewRetentionSweeper(target, horizon, time.Hour, app.WithSweeperLogger(log.New(io.Discard, "", 0)))
	sweeper.Start(context.Background())
	sweeper.Start(context.Background())

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := store.GetGame(context.Background(), old.ID); errors.Is(err, domain.ErrGameNotFound) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected startup sweep")
		}
		time.Sleep(10 * time.Millisecond)
	}
	sweeper.Stop()
	sweeper.Stop()

	if n := target.listCalls(); n != 1 {
		t.Fatalf("expected one sweep, got %d", n)
	}
}

func createGameAt(t *testing.T, store *memory.Store, at time.Time) domain.Game {
	t.Helper()
	service := app.NewGameService(store, app.WithGameClock(func() time.Time { return at }))
	game, err := service.CreateGame(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	return game
}

type flakyTarget struct {
	*app.GameService
	fail    string
	panicOn string
	listErr error

	mu    sync.Mutex
	lists int
}

func (f *flakyTarget) GetAllGames(ctx context.Context) ([]domain.Game, error) {
	f.mu.Lock()
	f.lists++
	f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.GameService.GetAllGames(ctx)
}

func (f *flakyTarget) DeleteGame(ctx context.Context, id string) error {
	if id == f.panicOn {
		panic("storage driver bug")
	}
	if id == f.fail {
		return errors.New("delete failed")
	}
	return f.GameService.DeleteGame(ctx, id)
}

func (f *flakyTarget) listCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lists
}
