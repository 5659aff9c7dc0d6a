package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"trivia-service/internal/app"
	"trivia-service/internal/domain"
	"trivia-service/internal/metrics"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// GameLookup resolves the game a viewer wants to watch.
type GameLookup interface {
	GetGame(ctx context.Context, id string) (domain.Game, error)
}

// LeaderboardSource builds the current snapshot for a game.
type LeaderboardSource interface {
	Leaderboard(ctx context.Context, gameID string) (domain.Leaderboard, error)
}

type WSHandler struct {
	games    GameLookup
	boards   LeaderboardSource
	feed     *app.LeaderboardFeed
	logger   *log.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(games GameLookup, boards LeaderboardSource, feed *app.LeaderboardFeed, logger *log.Logger) *WSHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &WSHandler{
		games:  games,
		boards: boards,
		feed:   feed,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type string `json:"type"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type closedPayload struct {
	GameID string `json:"gameId"`
}

// ServeWS upgrades the request and streams leaderboard snapshots for one game.
// Clients may send {"type":"refresh"} to get the current snapshot on demand.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	gameID := r.URL.Query().Get("gameId")
	if gameID == "" {
		http.Error(w, "missing gameId", http.StatusBadRequest)
		return
	}
	if _, err := h.games.GetGame(r.Context(), gameID); err != nil {
		if errors.Is(err, domain.ErrGameNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		h.logger.Printf("ws lookup game %s: %v", gameID, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	metrics.LiveViewers.Inc()
	defer metrics.LiveViewers.Dec()

	// Subscribe before the first snapshot so no update falls in between.
	updates, cancel := h.feed.Subscribe(gameID)
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		done := false
		// Keep draining after a failure or close frame so senders never block.
		for msg := range send {
			if done {
				continue
			}
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Printf("ws write error: %v", err)
				done = true
				continue
			}
			if msg.Type == "closed" {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game closed"))
				done = true
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					// Game deleted; tell the viewer and hang up.
					select {
					case send <- outboundMessage[any]{Type: "closed", Payload: closedPayload{GameID: gameID}}:
					case <-closeSignals:
					}
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "leaderboard", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	send <- h.snapshot(r.Context(), gameID)

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "refresh":
			send <- h.snapshot(r.Context(), gameID)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) snapshot(ctx context.Context, gameID string) outboundMessage[any] {
	lb, err := h.boards.Leaderboard(ctx, gameID)
	if err != nil {
		h.logger.Printf("ws leaderboard %s: %v", gameID, err)
		return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "leaderboard unavailable"}}
	}
	return outboundMessage[any]{Type: "leaderboard", Payload: lb}
}

// Health reports liveness for load balancers.
func Health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// NewRouter mounts the health check, Prometheus metrics and the live leaderboard feed.
func NewRouter(ws *WSHandler) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", Health)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/ws", ws.ServeWS)
	return mux
}
