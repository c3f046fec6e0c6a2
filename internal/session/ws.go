package session

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"example.com/bnc-solver/internal/game"
	"example.com/bnc-solver/internal/solver"
	"github.com/gorilla/websocket"
)

const (
	authTimeout  = 10 * time.Second
	pingInterval = 25 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	closeOnce sync.Once
}

func newClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{ws: ws, send: make(chan []byte, 64)}
}

// Close must only be called after the conn is detached from its session.
func (c *ClientConn) Close() {
	c.closeOnce.Do(func() {
		close(c.send)
		if c.ws != nil {
			_ = c.ws.Close()
		}
	})
}

// handleWS attaches a client to /ws/{sessionId}. The session token comes in
// an Authorization: Bearer header, or else as the first message
// {"type":"auth","payload":{"token":"..."}}.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromWSPath(r.URL.Path)
	if !ok {
		http.Error(w, "bad session id", http.StatusBadRequest)
		return
	}

	headerToken := bearerToken(r)
	if headerToken != "" {
		if err := s.tokens.VerifySession(headerToken, sessionID); err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
	}

	sess, ok := s.sessions.Get(sessionID)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	if headerToken == "" {
		if err := s.authFirstMessage(ws, sessionID); err != nil {
			_ = ws.WriteJSON(Envelope{Type: TypeError, Payload: mustJSON(ErrorPayload{Code: "unauthorized", Message: err.Error()})})
			_ = ws.Close()
			return
		}
	}

	cc := newClientConn(ws)
	if err := sess.Attach(cc); err != nil {
		_ = ws.WriteJSON(Envelope{Type: TypeError, Payload: mustJSON(ErrorPayload{Code: "session_busy", Message: err.Error()})})
		cc.Close()
		return
	}
	log := s.log.With("session", sessionID)
	log.Debug("client attached")

	go writeLoop(cc)

	sess.SendState()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(data, &env); err != nil {
			sess.SendErrorTo("bad_json", "invalid json")
			continue
		}

		switch env.Type {
		case TypeFeedback:
			var p FeedbackPayload
			if err := json.Unmarshal(env.Payload, &p); err != nil || p.Bulls == nil || p.Cows == nil {
				sess.SendErrorTo("bad_input", "payload needs bulls and cows")
				continue
			}
			if err := sess.SubmitFeedback(*p.Bulls, *p.Cows); err != nil {
				code, msg := feedbackErrorCode(err)
				sess.SendErrorTo(code, msg)
			}

		case TypeRestart:
			if err := sess.Restart(); err != nil {
				sess.SendErrorTo("internal", err.Error())
			}

		case TypeAuth:
			// already authenticated

		default:
			sess.SendErrorTo("unknown_type", "unknown message type")
		}
	}

	sess.Detach(cc)
	cc.Close()
	log.Debug("client detached")
}

func (s *Server) authFirstMessage(ws *websocket.Conn, sessionID string) error {
	_ = ws.SetReadDeadline(time.Now().Add(authTimeout))
	defer ws.SetReadDeadline(time.Time{})

	var env Envelope
	if err := ws.ReadJSON(&env); err != nil {
		return errors.New("expected auth message")
	}
	if env.Type != TypeAuth {
		return errors.New("first message must be auth")
	}
	var p AuthPayload
	if err := json.Unmarshal(env.Payload, &p); err != nil || p.Token == "" {
		return errors.New("auth payload needs a token")
	}
	if err := s.tokens.VerifySession(p.Token, sessionID); err != nil {
		return errors.New("invalid token")
	}
	return nil
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

func feedbackErrorCode(err error) (string, string) {
	switch {
	case errors.Is(err, game.ErrInvalidFeedback):
		return "bad_input", err.Error()
	case errors.Is(err, solver.ErrNoConsistentSecret):
		return "no_consistent_secret", "feedback contradicts an earlier round; answer this guess again"
	case errors.Is(err, solver.ErrRoundLimit):
		return "round_limit", err.Error()
	case errors.Is(err, ErrNotGuessing):
		return "not_guessing", err.Error()
	default:
		return "internal", err.Error()
	}
}
