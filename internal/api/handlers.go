package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gorilla/websocket"
	"github.com/servihub/servihub/internal/server"
)

const handshakeTimeout = 10 * time.Second

func (s *App) health(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		errResp := NewServiceUnavailableError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

// serveWs authenticates and admits a new realtime connection. The
// claimed user id and bearer token arrive as handshake query
// parameters; credentials presented later in-band are never accepted.
// Every failure is reported as a plain authorization error so the far
// side cannot distinguish why admission was refused.
func (s *App) serveWs(w http.ResponseWriter, r *http.Request) {
	userId := r.URL.Query().Get("userId")
	token := r.URL.Query().Get("token")
	if userId == "" || token == "" {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	claimedId, err := s.verifyToken(token)
	if err != nil || claimedId != userId {
		s.log.Printf("handshake rejected for user %q: %v", userId, err)
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetUserById(userId)
	if err != nil {
		s.log.Printf("handshake rejected, user lookup %q: %v", userId, err)
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	upgrader := websocket.Upgrader{
		HandshakeTimeout: handshakeTimeout,
		CheckOrigin: func(r *http.Request) bool {
			// only allow connections from allowed origins
			origin := r.Header.Get("Origin")
			if origin == "" {
				// if no origin header, allow the request
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(user, conn, s.hub, s.log)
	if err := s.hub.Register(client); err != nil {
		s.log.Println("register connection:", err)
		conn.Close()
		return
	}

	go client.Write()
	go client.Read()
}
