package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/games/snake/bot"
	"github.com/vovakirdan/snake-arena/internal/spectator"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

type testEnv struct {
	srv   *Server
	store *storage.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("storage.Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	tokens, err := account.NewTokenIssuer("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenIssuer() failed: %v", err)
	}

	hub := spectator.NewHub(spectator.DefaultConfig(), bot.Greedy{}, nil, 1)

	srv := New(Deps{
		Accounts: account.NewService(store, account.WithCost(bcrypt.MinCost)),
		Tokens:   tokens,
		Scores:   store,
		Live:     hub,
	})
	return &testEnv{srv: srv, store: store}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) signup(t *testing.T, username string) authRes {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/signup", signupReq{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res authRes
	decode(t, rec, &res)
	return res
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/health", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestNotFoundIsJSON(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/nope", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	var body errorBody
	decode(t, rec, &body)
	if body.Error != "not_found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestSignupSetsCookieAndToken(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/signup", signupReq{
		Username: "newbie",
		Email:    "Newbie@Example.com",
		Password: "password123",
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res authRes
	decode(t, rec, &res)
	if res.Token == "" {
		t.Error("expected a token")
	}
	if res.User.Email != "newbie@example.com" {
		t.Errorf("email = %q, expected lowercased", res.User.Email)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak the password hash")
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "snake_token" && c.Value == res.Token && c.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Error("expected an HttpOnly snake_token cookie")
	}
}

func TestSignupErrors(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "taken")

	tests := []struct {
		name   string
		body   any
		status int
		code   string
	}{
		{"duplicate", signupReq{"taken", "other@example.com", "password123"}, http.StatusConflict, "user_exists"},
		{"short password", signupReq{"fresh", "fresh@example.com", "short"}, http.StatusBadRequest, "invalid_password"},
		{"bad username", signupReq{"a", "a@example.com", "password123"}, http.StatusBadRequest, "invalid_username"},
		{"password over 72 bytes", signupReq{"longpw", "long@example.com", strings.Repeat("a", 80)}, http.StatusBadRequest, "invalid_password"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := e.do(t, http.MethodPost, "/auth/signup", tc.body, "")
			if rec.Code != tc.status {
				t.Fatalf("status = %d, expected %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			var body errorBody
			decode(t, rec, &body)
			if body.Error != tc.code {
				t.Errorf("error = %q, expected %q", body.Error, tc.code)
			}
		})
	}

	t.Run("bad json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader("{"))
		rec := httptest.NewRecorder()
		e.srv.Router().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	e.signup(t, "player1")

	rec := e.do(t, http.MethodPost, "/auth/login", loginReq{Email: "player1@example.com", Password: "password123"}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res authRes
	decode(t, rec, &res)
	if res.User.Username != "player1" || res.Token == "" {
		t.Errorf("unexpected login response: %+v", res)
	}

	rec = e.do(t, http.MethodPost, "/auth/login", loginReq{Email: "player1@example.com", Password: "wrong-password"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", rec.Code)
	}
}

func TestMe(t *testing.T) {
	e := newTestEnv(t)
	res := e.signup(t, "whoami")

	rec := e.do(t, http.MethodGet, "/auth/me", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/auth/me", nil, "garbage")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodGet, "/auth/me", nil, res.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var u storage.User
	decode(t, rec, &u)
	if u.ID != res.User.ID {
		t.Errorf("me = %+v, expected %+v", u, res.User)
	}

	// Cookie works as well as the bearer header.
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: "snake_token", Value: res.Token})
	cookieRec := httptest.NewRecorder()
	e.srv.Router().ServeHTTP(cookieRec, req)
	if cookieRec.Code != http.StatusOK {
		t.Errorf("cookie auth status = %d", cookieRec.Code)
	}
}

func TestLogoutClearsCookie(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodPost, "/auth/logout", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge >= 0 {
		t.Errorf("expected an expired cookie, got %+v", cookies)
	}
}

func TestSubmitScore(t *testing.T) {
	e := newTestEnv(t)
	res := e.signup(t, "scorer")

	rec := e.do(t, http.MethodPost, "/leaderboard", map[string]any{"score": 50, "mode": "walls"}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d", rec.Code)
	}

	rec = e.do(t, http.MethodPost, "/leaderboard", map[string]any{"score": 50, "mode": "walls"}, res.Token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var entry storage.Entry
	decode(t, rec, &entry)
	if entry.Username != "scorer" || entry.Score != 50 || entry.Mode != "walls" {
		t.Errorf("unexpected entry: %+v", entry)
	}

	bad := []map[string]any{
		{"score": -1, "mode": "walls"},
		{"mode": "walls"},
		{"score": 10, "mode": "diagonal"},
	}
	for _, body := range bad {
		rec := e.do(t, http.MethodPost, "/leaderboard", body, res.Token)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %v: status = %d, expected 400", body, rec.Code)
		}
	}
}

func TestLeaderboardQuery(t *testing.T) {
	e := newTestEnv(t)
	res := e.signup(t, "ranked")
	for _, s := range []struct {
		score int
		mode  string
	}{{10, "walls"}, {30, "pass-through"}, {20, "walls"}} {
		rec := e.do(t, http.MethodPost, "/leaderboard", map[string]any{"score": s.score, "mode": s.mode}, res.Token)
		if rec.Code != http.StatusCreated {
			t.Fatalf("submit status = %d", rec.Code)
		}
	}

	var all []storage.Entry
	rec := e.do(t, http.MethodGet, "/leaderboard", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	decode(t, rec, &all)
	if len(all) != 3 || all[0].Score != 30 || all[2].Score != 10 {
		t.Errorf("unexpected order: %+v", all)
	}

	var walls []storage.Entry
	decode(t, e.do(t, http.MethodGet, "/leaderboard?mode=walls&limit=1", nil, ""), &walls)
	if len(walls) != 1 || walls[0].Score != 20 {
		t.Errorf("walls top = %+v", walls)
	}

	for _, q := range []string{"?mode=diagonal", "?limit=0", "?limit=abc"} {
		if rec := e.do(t, http.MethodGet, "/leaderboard"+q, nil, ""); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, expected 400", q, rec.Code)
		}
	}
}

func TestLeaderboardEmptyIsArray(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/leaderboard", nil, "")
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %q, expected []", got)
	}
}

func TestSpectatorActive(t *testing.T) {
	e := newTestEnv(t)
	rec := e.do(t, http.MethodGet, "/spectator/active", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var players []spectator.ActivePlayer
	decode(t, rec, &players)
	if len(players) != len(spectator.DefaultConfig().Bots) {
		t.Errorf("got %d players", len(players))
	}
	for _, p := range players {
		if len(p.GameState.Snake.Body) == 0 {
			t.Errorf("player %s has no snake", p.Username)
		}
	}
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	e := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
