package session

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// TokenAuthority issues and checks the per-session bearer tokens.
type TokenAuthority interface {
	Sign(sessionID string, ttl time.Duration) (string, error)
	VerifySession(token, sessionID string) error
}

type Server struct {
	sessions *Service
	tokens   TokenAuthority
	tokenTTL time.Duration
	log      *slog.Logger
}

func NewServer(sessions *Service, tokens TokenAuthority, tokenTTL time.Duration, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{
		sessions: sessions,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		log:      log,
	}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/session", s.handleCreateSession)
	mux.HandleFunc("/ws/", s.handleWS)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "use POST")
		return
	}

	sess, err := s.sessions.Create(r.Context())
	if err != nil {
		s.log.Error("create session", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to create session")
		return
	}

	token, err := s.tokens.Sign(sess.ID(), s.tokenTTL)
	if err != nil {
		s.sessions.Delete(sess.ID())
		s.log.Error("sign session token", "err", err)
		writeError(w, http.StatusInternalServerError, "internal", "failed to sign token")
		return
	}

	writeJSON(w, http.StatusOK, CreateSessionResponse{
		SessionID: sess.ID(),
		Token:     token,
	})
}

var sessionIDPattern = regexp.MustCompile(`^[a-z0-9]{1,64}$`)

// sessionIDFromWSPath extracts {id} from /ws/{id}.
func sessionIDFromWSPath(path string) (string, bool) {
	id, ok := strings.CutPrefix(path, "/ws/")
	if !ok || !sessionIDPattern.MatchString(id) {
		return "", false
	}
	return id, true
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(h, "Bearer ")
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, errCode, msg string) {
	writeJSON(w, code, ErrorPayload{Code: errCode, Message: msg})
}
