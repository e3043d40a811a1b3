package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"wordclash/internal/game"
	"wordclash/internal/models"
	"wordclash/internal/service"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// GameHandler serves the running game API
type GameHandler struct {
	games    *service.GameService
	upgrader websocket.Upgrader
}

// NewGameHandler creates a game handler. allowOrigin decides which browser
// origins may open a snapshot stream; nil allows all.
func NewGameHandler(games *service.GameService, allowOrigin func(r *http.Request) bool) *GameHandler {
	return &GameHandler{
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				if r.Header.Get("Origin") == "" || allowOrigin == nil {
					return true
				}
				return allowOrigin(r)
			},
		},
	}
}

type gameResponse struct {
	GameID   string        `json:"gameId"`
	Snapshot game.Snapshot `json:"snapshot"`
}

type actionRequest struct {
	Kind   string `json:"kind"`
	ItemID string `json:"itemId"`
}

// Start begins a game from the posted configuration
func (h *GameHandler) Start(w http.ResponseWriter, r *http.Request) {
	var cfg models.GameConfig
	if err := decodeJSON(r, &cfg); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid game configuration", "decode game config", err)
		return
	}

	id, snap, err := h.games.Start(r.Context(), cfg)
	if err != nil {
		respondWithServiceError(w, "Failed to start game", err)
		return
	}
	respondJSON(w, http.StatusCreated, gameResponse{GameID: id, Snapshot: snap})
}

// Replay begins a game over a stored session's question sequence
func (h *GameHandler) Replay(w http.ResponseWriter, r *http.Request) {
	id, snap, err := h.games.Replay(r.Context(), r.PathValue("sessionId"))
	if err != nil {
		respondWithServiceError(w, "Failed to start replay", err)
		return
	}
	respondJSON(w, http.StatusCreated, gameResponse{GameID: id, Snapshot: snap})
}

// Get returns the current snapshot of a game
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	snap, err := h.games.Snapshot(gameID)
	if err != nil {
		respondWithServiceError(w, "Failed to load game", err)
		return
	}
	respondJSON(w, http.StatusOK, gameResponse{GameID: gameID, Snapshot: snap})
}

// Act applies a click on a question or option
func (h *GameHandler) Act(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid action", "decode action", err)
		return
	}
	kind, err := game.ParseActionKind(req.Kind)
	if err != nil {
		respondWithServiceError(w, "Invalid action", err)
		return
	}

	gameID := r.PathValue("gameId")
	snap, err := h.games.Act(gameID, game.Action{Kind: kind, ItemID: req.ItemID})
	if err != nil {
		respondWithServiceError(w, "Failed to apply action", err)
		return
	}
	respondJSON(w, http.StatusOK, gameResponse{GameID: gameID, Snapshot: snap})
}

// Exit ends a game early and returns the final snapshot with the session log
func (h *GameHandler) Exit(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	snap, err := h.games.Exit(gameID)
	if err != nil {
		respondWithServiceError(w, "Failed to exit game", err)
		return
	}
	respondJSON(w, http.StatusOK, gameResponse{GameID: gameID, Snapshot: snap})
}

// Stream pushes every snapshot of a game over a websocket until the game ends
// or the client goes away.
func (h *GameHandler) Stream(w http.ResponseWriter, r *http.Request) {
	gameID := r.PathValue("gameId")
	updates, cancel, err := h.games.Subscribe(gameID)
	if err != nil {
		respondWithServiceError(w, "Failed to subscribe", err)
		return
	}
	defer cancel()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).WithField("game_id", gameID).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, stop := context.WithCancel(r.Context())
	defer stop()
	go readPump(conn, stop)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game finished"))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(snap); err != nil {
				log.WithError(err).WithField("game_id", gameID).Debug("Websocket write failed")
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readPump drains client frames so pongs and close frames are processed
func readPump(conn *websocket.Conn, stop context.CancelFunc) {
	defer stop()
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) {
				log.WithError(err).Debug("Websocket read ended")
			}
			return
		}
	}
}
