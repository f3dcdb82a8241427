package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quizhunt-service/internal/app"
	"quizhunt-service/internal/auth"
	"quizhunt-service/internal/domain"
	"quizhunt-service/internal/infra/memory"
)

type testServer struct {
	*httptest.Server
	tokens *auth.Tokens
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewCatalogStore()
	ledger := memory.NewScoreLedger()
	store.CascadeTo(ledger)
	cache := memory.NewQuestionCache(store, time.Minute)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	catalog := app.NewCatalogService(store, store, store, cache, app.WithCatalogLogger(logger))
	play := app.NewPlayService(store, cache, ledger, app.WithPlayLogger(logger))
	tokens := auth.NewTokens("test-secret", time.Hour)

	srv := httptest.NewServer(NewRouter(NewHandler(catalog, play, tokens, logger), nil))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, tokens: tokens}
}

func (s *testServer) token(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	tok, err := s.tokens.Sign(domain.Principal{ID: id, Role: role})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

// do sends body as JSON and decodes the response into out when non-nil.
func (s *testServer) do(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

// seedEvent creates an event with two questions as soc-1 and returns its id.
func (s *testServer) seedEvent(t *testing.T, societyToken string) string {
	t.Helper()
	start := time.Date(2026, time.March, 1, 18, 0, 0, 0, time.UTC)
	var event domain.Event
	status := s.do(t, http.MethodPost, "/api/manage/events", societyToken, map[string]any{
		"title":     "Quiz1",
		"startTime": start,
		"endTime":   start.Add(2 * time.Hour),
	}, &event)
	if status != http.StatusCreated {
		t.Fatalf("create event: status %d", status)
	}
	questions := []map[string]any{
		{"level": 0, "prompt": "2+2", "answer": "4", "correctScore": 10, "incorrectScore": -2},
		{"level": 1, "prompt": "capital of France", "answer": "Paris", "correctScore": 10, "incorrectScore": -5},
	}
	for _, q := range questions {
		if status := s.do(t, http.MethodPost, "/api/manage/events/"+event.ID+"/questions", societyToken, q, nil); status != http.StatusCreated {
			t.Fatalf("create question: status %d", status)
		}
	}
	return event.ID
}

func TestPlayOverHTTP(t *testing.T) {
	s := newTestServer(t)
	society := s.token(t, "soc-1", domain.RoleSociety)
	playerX := s.token(t, "player-x", domain.RolePlayer)
	playerY := s.token(t, "player-y", domain.RolePlayer)
	eventID := s.seedEvent(t, society)
	play := "/api/events/" + eventID + "/play"

	var q domain.PlayQuestion
	if status := s.do(t, http.MethodGet, play, playerX, nil, &q); status != http.StatusOK {
		t.Fatalf("current question: status %d", status)
	}
	if q.Prompt != "2+2" {
		t.Fatalf("unexpected question %+v", q)
	}

	var res domain.AnswerResult
	s.do(t, http.MethodPost, play, playerX, map[string]string{"answer": "4"}, &res)
	if res.Outcome != domain.OutcomeCorrect || res.Level != 1 || res.Score != 10 {
		t.Fatalf("expected Correct at (1,10), got %+v", res)
	}
	s.do(t, http.MethodPost, play, playerX, map[string]string{"answer": "Paris"}, &res)
	if res.Level != 2 || res.Score != 20 {
		t.Fatalf("expected (2,20), got %+v", res)
	}
	if status := s.do(t, http.MethodGet, play, playerX, nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 once complete, got %d", status)
	}

	if status := s.do(t, http.MethodPost, play, playerY, map[string]string{"answer": "4"}, nil); status != http.StatusNotFound {
		t.Fatalf("expected 404 before start, got %d", status)
	}
	s.do(t, http.MethodGet, play, playerY, nil, nil)
	s.do(t, http.MethodPost, play, playerY, map[string]string{"answer": "5"}, &res)
	if res.Outcome != domain.OutcomeIncorrect || res.Score != -2 || res.Level != 0 {
		t.Fatalf("expected Incorrect at (0,-2), got %+v", res)
	}

	var lb domain.Leaderboard
	if status := s.do(t, http.MethodGet, "/api/events/"+eventID+"/leaderboard", society, nil, &lb); status != http.StatusOK {
		t.Fatalf("leaderboard: status %d", status)
	}
	if len(lb.Entries) != 2 || lb.Entries[0].PlayerID != "player-x" || lb.Entries[1].Score != -2 {
		t.Fatalf("unexpected leaderboard %+v", lb.Entries)
	}

	var scores []domain.Score
	s.do(t, http.MethodGet, "/api/scores", playerY, nil, &scores)
	if len(scores) != 1 || scores[0].PlayerID != "player-y" {
		t.Fatalf("unexpected scores %+v", scores)
	}
	if status := s.do(t, http.MethodGet, "/api/scores/"+scores[0].ID, playerX, nil, nil); status != http.StatusForbidden {
		t.Fatalf("expected 403 reading another player's score, got %d", status)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	s := newTestServer(t)
	society := s.token(t, "soc-1", domain.RoleSociety)
	player := s.token(t, "player-x", domain.RolePlayer)
	eventID := s.seedEvent(t, society)
	play := "/api/events/" + eventID + "/play"
	s.do(t, http.MethodGet, play, player, nil, nil)

	if status := s.do(t, http.MethodPost, play, player, map[string]string{}, nil); status != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing answer, got %d", status)
	}

	var res domain.AnswerResult
	if status := s.do(t, http.MethodPost, play, player, map[string]string{"answer": ""}, &res); status != http.StatusOK {
		t.Fatalf("expected empty answer to be judged, got %d", status)
	}
	if res.Outcome != domain.OutcomeIncorrect {
		t.Fatalf("expected Incorrect, got %+v", res)
	}
}

func TestAuthorizationStatuses(t *testing.T) {
	s := newTestServer(t)
	society := s.token(t, "soc-1", domain.RoleSociety)
	other := s.token(t, "soc-2", domain.RoleSociety)
	player := s.token(t, "player-x", domain.RolePlayer)
	eventID := s.seedEvent(t, society)

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous play", http.MethodGet, "/api/events/" + eventID + "/play", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/events", "not-a-jwt", http.StatusUnauthorized},
		{"society plays", http.MethodGet, "/api/events/" + eventID + "/play", society, http.StatusForbidden},
		{"player manages", http.MethodGet, "/api/manage/events", player, http.StatusForbidden},
		{"foreign society", http.MethodDelete, "/api/manage/events/" + eventID, other, http.StatusForbidden},
		{"unknown event", http.MethodGet, "/api/events/missing", player, http.StatusNotFound},
		{"unknown window", http.MethodGet, "/api/events/someday", player, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := s.do(t, tc.method, tc.path, tc.token, nil, nil); got != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, got)
			}
		})
	}
}

func TestCatalogOverHTTP(t *testing.T) {
	s := newTestServer(t)
	society := s.token(t, "soc-1", domain.RoleSociety)
	player := s.token(t, "player-x", domain.RolePlayer)
	eventID := s.seedEvent(t, society)

	if status := s.do(t, http.MethodPost, "/api/manage/events/"+eventID+"/questions", society,
		map[string]any{"level": 1, "prompt": "again", "answer": "x"}, nil); status != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate level, got %d", status)
	}

	var rule domain.Rule
	if status := s.do(t, http.MethodPost, "/api/manage/events/"+eventID+"/rules", society,
		map[string]string{"content": "No phones"}, &rule); status != http.StatusCreated {
		t.Fatalf("create rule: status %d", status)
	}

	var detail domain.EventDetail
	if status := s.do(t, http.MethodGet, "/api/events/"+eventID, player, nil, &detail); status != http.StatusOK {
		t.Fatalf("event detail: status %d", status)
	}
	if detail.QuestionCount != 2 || len(detail.Rules) != 1 {
		t.Fatalf("unexpected detail %+v", detail)
	}

	var questions []domain.Question
	s.do(t, http.MethodGet, "/api/manage/events/"+eventID+"/questions", society, nil, &questions)
	if len(questions) != 2 || questions[0].Answer != "4" {
		t.Fatalf("society should see answers, got %+v", questions)
	}

	if status := s.do(t, http.MethodDelete, "/api/manage/events/"+eventID, society, nil, nil); status != http.StatusNoContent {
		t.Fatalf("delete event: status %d", status)
	}
	if status := s.do(t, http.MethodGet, "/api/manage/rules/"+rule.ID, society, nil, nil); status != http.StatusNotFound {
		t.Fatalf("expected rules to go with the event, got %d", status)
	}

	var events []domain.Event
	s.do(t, http.MethodGet, "/api/events/future", player, nil, &events)
	if len(events) != 0 {
		t.Fatalf("expected no events, got %+v", events)
	}
}
