package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/infra/memory"

	"github.com/gorilla/websocket"
)

type fixture struct {
	games   *app.GameService
	players *app.PlayerService
	feed    *app.LeaderboardFeed
	server  *httptest.Server
	game    domain.Game
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	feed := app.NewLeaderboardFeed()
	games := app.NewGameService(store, app.WithFeed(feed))
	players := app.NewPlayerService(store, store, feed)

	game, err := games.CreateGame(context.Background(), domain.GameDraft{
		Name: "Friday quiz",
		Questions: []domain.QuestionDraft{
			{Text: "What is 2 + 2?", Options: []domain.Option{{Text: "3"}, {Text: "4"}}, CorrectAnswer: 1},
		},
	})
	if err != nil {
		t.Fatalf("create game: %v", err)
	}

	handler := NewWSHandler(games, players, feed, log.New(io.Discard, "", 0))
	server := httptest.NewServer(NewRouter(handler))
	t.Cleanup(server.Close)
	return &fixture{games: games, players: players, feed: feed, server: server, game: game}
}

func (f *fixture) dial(t *testing.T, gameID string) *websocket.Conn {
	t.Helper()
	u := "ws" + f.server.URL[len("http"):] + "/ws?gameId=" + gameID
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestWebSocketStreamsLeaderboard(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, f.game.ID)

	typ, lb := readLeaderboard(t, conn)
	if typ != "leaderboard" || len(lb.Entries) != 0 {
		t.Fatalf("expected empty initial leaderboard, got %s %+v", typ, lb)
	}
	waitForSubscriber(t, f.feed, f.game.ID)

	reg, err := f.players.CreatePlayer(context.Background(), "Sara", "0512345678", f.game.ID)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	typ, lb = readLeaderboard(t, conn)
	if typ != "leaderboard" || len(lb.Entries) != 1 || lb.Entries[0].PlayerID != reg.Player.ID {
		t.Fatalf("expected registration snapshot, got %s %+v", typ, lb)
	}

	questions, _ := f.games.GetGameQuestions(context.Background(), f.game.ID)
	q := questions[0]
	if _, err := f.players.CreatePlayerAnswer(context.Background(), reg.Player.ID, domain.AnswerSubmission{
		QuestionID:     q.ID,
		SelectedAnswer: q.CorrectAnswer,
		IsCorrect:      true,
		TimeSpent:      0,
	}); err != nil {
		t.Fatalf("answer: %v", err)
	}
	_, lb = readLeaderboard(t, conn)
	if lb.Entries[0].Score != 1500 {
		t.Fatalf("expected score 1500, got %+v", lb.Entries[0])
	}
}

func TestWebSocketRefreshAndUnknownMessage(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, f.game.ID)
	_, _ = readLeaderboard(t, conn)

	if err := conn.WriteJSON(map[string]string{"type": "refresh"}); err != nil {
		t.Fatalf("write refresh: %v", err)
	}
	if typ, _ := readLeaderboard(t, conn); typ != "leaderboard" {
		t.Fatalf("expected leaderboard after refresh, got %s", typ)
	}

	if err := conn.WriteJSON(map[string]string{"type": "answer"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if typ, _ := readLeaderboard(t, conn); typ != "error" {
		t.Fatalf("expected error for unsupported type, got %s", typ)
	}
}

func TestWebSocketClosedOnGameDelete(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, f.game.ID)
	_, _ = readLeaderboard(t, conn)
	waitForSubscriber(t, f.feed, f.game.ID)

	if err := f.games.DeleteGame(context.Background(), f.game.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if typ, _ := readLeaderboard(t, conn); typ != "closed" {
		t.Fatalf("expected closed, got %s", typ)
	}
}

func TestWebSocketRejectsUnknownGame(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/ws?gameId=missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	resp, err = http.Get(f.server.URL + "/ws")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body["status"] != "ok" {
		t.Fatalf("unexpected health body %v %v", body, err)
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) (string, domain.Leaderboard) {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	return msg.Type, msg.Payload
}

// The initial snapshot is sent after Subscribe, but this keeps the test
// independent of that ordering.
func waitForSubscriber(t *testing.T, feed *app.LeaderboardFeed, gameID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for feed.Subscribers(gameID) == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no subscriber registered")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	resp, err := http.Get(f.server.URL + "/metrics")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "trivia_games_created_total") {
		t.Fatalf("metrics output missing game counter")
	}
}
