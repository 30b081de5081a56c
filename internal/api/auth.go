package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/vovakirdan/snake-arena/internal/account"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

type signupReq struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authRes struct {
	User  storage.User `json:"user"`
	Token string       `json:"token"`
}

type ctxUserKey struct{}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "request body must be JSON")
		return
	}

	u, err := s.deps.Accounts.Signup(r.Context(), req.Username, req.Email, req.Password)
	var ve *account.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, "invalid_"+ve.Field, ve.Error())
		return
	case errors.Is(err, account.ErrUserExists):
		writeError(w, http.StatusConflict, "user_exists", "username or email already registered")
		return
	case err != nil:
		s.log.Error("signup failed", "err", err)
		writeError(w, http.StatusInternalServerError, "signup_failed", "could not create account")
		return
	}

	s.respondWithToken(w, http.StatusCreated, u)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "request body must be JSON")
		return
	}

	u, err := s.deps.Accounts.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, account.ErrInvalidCredentials) {
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid credentials")
		return
	}
	if err != nil {
		s.log.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "login_failed", "could not log in")
		return
	}

	s.respondWithToken(w, http.StatusOK, u)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successful logout"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r.Context())
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) respondWithToken(w http.ResponseWriter, status int, u storage.User) {
	token, exp, err := s.deps.Tokens.Issue(u)
	if err != nil {
		s.log.Error("token issue failed", "user", u.Username, "err", err)
		writeError(w, http.StatusInternalServerError, "token_failed", "could not issue token")
		return
	}
	s.setAuthCookie(w, token, exp)
	writeJSON(w, status, authRes{User: u, Token: token})
}

// requireAuth rejects requests without a valid token for an existing user.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := s.bearerOrCookie(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "not_logged_in", "Not logged in")
			return
		}
		id, err := s.deps.Tokens.Parse(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid token")
			return
		}
		// Ensure user still exists
		u, err := s.deps.Accounts.UserByID(r.Context(), id.UserID)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid_token", "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxUserKey{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func currentUser(ctx context.Context) (storage.User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(storage.User)
	return u, ok
}

func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.deps.CookieName); err == nil {
		return c.Value
	}
	return ""
}

func (s *Server) setAuthCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.deps.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  exp,
	})
}

func (s *Server) clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.deps.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.deps.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
