package game

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const pingInterval = 25 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		c.closeSocket()
	})
}

// closeSocket ends the connection without touching the send channel, which
// may still be referenced by a session.
func (c *ClientConn) closeSocket() {
	if c.ws != nil {
		_ = c.ws.Close()
	}
}

// handleWS plays a game over a WebSocket: /ws/{gameID}[?token=...]
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if !validGameID(gameID) {
		http.Error(w, "invalid game id", http.StatusBadRequest)
		return
	}

	playerID, err := s.identify(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	sess, found, err := s.games.GetOrLoad(r.Context(), gameID)
	if err != nil {
		s.log.Error("load game", "game_id", gameID, "err", err)
		http.Error(w, "storage error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, "game not found", http.StatusNotFound)
		return
	}
	if !sess.CanAccess(playerID) {
		http.Error(w, ErrNotOwner.Error(), http.StatusForbidden)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	ws.SetReadLimit(maxRequestBytes)
	cc := newClientConn(ws)
	if err := sess.Attach(playerID, cc); err != nil {
		_ = ws.WriteJSON(Envelope{
			Type:    msgError,
			Payload: mustJSON(ErrorPayload{Code: "forbidden", Message: err.Error()}),
		})
		cc.Close()
		return
	}

	go writeLoop(cc)

	sess.SendState()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.SendError("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case msgSubmitGuess:
			var p SubmitGuessPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil {
				sess.SendError("bad_input", "invalid payload")
				continue
			}
			guess, err := ParseGuess(p.Guess)
			if err == nil {
				_, err = sess.SubmitGuess(guess)
			}
			if err != nil {
				_, code := errorCode(err)
				sess.SendError(code, err.Error())
			}

		case msgNewGame:
			next, err := s.games.Start(r.Context(), playerID)
			if err != nil {
				s.log.Error("start game", "err", err)
				sess.SendError("internal", "failed to start game")
				continue
			}
			sess.Detach(cc)
			_ = next.Attach(playerID, cc)
			sess = next
			sess.send(Envelope{Type: msgGameStarted, Payload: mustJSON(GameStartedPayload{GameID: sess.ID()})})
			sess.SendState()

		default:
			sess.SendError("unknown_type", "unknown message type")
		}
	}

	sess.Detach(cc)
	cc.Close()
}

func writeLoop(cc *ClientConn) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-cc.send:
			if !ok {
				return
			}
			_ = cc.ws.WriteMessage(websocket.TextMessage, msg)
		case <-ticker.C:
			_ = cc.ws.WriteMessage(websocket.PingMessage, []byte{})
		}
	}
}
