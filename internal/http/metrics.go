package httpapi

import (
	"net/http"
	"strconv"

	"multisite-backend-go/internal/services"

	"github.com/gorilla/websocket"
)

type MetricsHistoryResponse struct {
	Items []services.MetricSample `json:"items"`
}

func (s *Server) MetricsHistory(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if !user.SuperAdmin {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	limit := parseInt(r.URL.Query().Get("limit"), 120)
	if limit > 500 {
		limit = 500
	}
	WriteJSON(w, http.StatusOK, MetricsHistoryResponse{Items: s.MetricsHub.History(limit)})
}

func (s *Server) MetricsSocket(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("token")
	if query == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	identity, err := s.resolveToken(query)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if !identity.SuperAdmin {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	s.MetricsHub.Add(conn)
	defer func() {
		s.MetricsHub.Remove(conn)
		_ = conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
