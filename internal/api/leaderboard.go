package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/vovakirdan/snake-arena/internal/games/snake"
	"github.com/vovakirdan/snake-arena/internal/storage"
)

const maxLeaderboardLimit = 100

type submitScoreReq struct {
	Score *int   `json:"score"`
	Mode  string `json:"mode"`
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var mode snake.Mode
	if raw := q.Get("mode"); raw != "" {
		m, err := snake.ParseMode(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_mode", "mode must be walls or pass-through")
			return
		}
		mode = m
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}

	entries, err := s.deps.Scores.Leaderboard(r.Context(), mode, limit)
	if err != nil {
		s.log.Error("leaderboard query failed", "mode", mode, "err", err)
		writeError(w, http.StatusInternalServerError, "leaderboard_failed", "could not load leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	u, _ := currentUser(r.Context())

	var req submitScoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", "request body must be JSON")
		return
	}
	if req.Score == nil || *req.Score < 0 {
		writeError(w, http.StatusBadRequest, "invalid_score", "score must be a non-negative integer")
		return
	}
	mode, err := snake.ParseMode(req.Mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_mode", "mode must be walls or pass-through")
		return
	}

	entry, err := s.deps.Scores.SubmitScore(r.Context(), storage.Submission{
		UserID:   u.ID,
		Username: u.Username,
		Score:    *req.Score,
		Mode:     mode,
	})
	if errors.Is(err, storage.ErrInvalid) {
		writeError(w, http.StatusBadRequest, "invalid_score", err.Error())
		return
	}
	if err != nil {
		s.log.Error("score submission failed", "user", u.Username, "err", err)
		writeError(w, http.StatusInternalServerError, "submit_failed", "could not save score")
		return
	}

	s.log.Info("score submitted", "user", u.Username, "score", entry.Score, "mode", entry.Mode)
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleActive(w http.ResponseWriter, r *http.Request) {
	if s.deps.Live == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Live.Active())
}
