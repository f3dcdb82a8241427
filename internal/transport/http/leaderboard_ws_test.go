package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"quizhunt-service/internal/domain"

	"github.com/gorilla/websocket"
)

func TestLeaderboardWebSocketStreamsUpdates(t *testing.T) {
	s := newTestServer(t)
	society := s.token(t, "soc-1", domain.RoleSociety)
	player := s.token(t, "player-x", domain.RolePlayer)
	eventID := s.seedEvent(t, society)

	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/events/" + eventID + "/leaderboard/live?token=" + society
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	initial := readLeaderboard(t, conn)
	if len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial leaderboard, got %+v", initial.Entries)
	}

	play := "/api/events/" + eventID + "/play"
	s.do(t, http.MethodGet, play, player, nil, nil)
	s.do(t, http.MethodPost, play, player, map[string]string{"answer": "4"}, nil)

	// The start and the answer each publish; drain until the answer shows up.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		lb := readLeaderboard(t, conn)
		if len(lb.Entries) == 1 && lb.Entries[0].Score == 10 {
			return
		}
	}
	t.Fatal("leaderboard update with score 10 never arrived")
}

func TestLeaderboardWebSocketRejectsAnonymous(t *testing.T) {
	s := newTestServer(t)
	society := s.token(t, "soc-1", domain.RoleSociety)
	eventID := s.seedEvent(t, society)

	u := "ws" + strings.TrimPrefix(s.URL, "http") + "/api/events/" + eventID + "/leaderboard/live"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatal("expected handshake to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %+v", resp)
	}
}

func readLeaderboard(t *testing.T, conn *websocket.Conn) domain.Leaderboard {
	t.Helper()
	var msg struct {
		Type    string             `json:"type"`
		Payload domain.Leaderboard `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if msg.Type != "leaderboard" {
		t.Fatalf("expected leaderboard message, got %s", msg.Type)
	}
	return msg.Payload
}
