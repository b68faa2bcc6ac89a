// internal/httpserver/routes_game.go
//
// The two game endpoints. All session state rides in the signed token; the
// handlers here only translate between HTTP and the engine, plus a
// best-effort result row for logged-in players when a session ends.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/nkralj/quizserver/internal/game"
	"github.com/nkralj/quizserver/internal/store"
)

type startReq struct {
	QuizID *int64 `json:"quiz_id"`
}

type startRes struct {
	Success  bool       `json:"success"`
	Question game.Posed `json:"question"`
	State    string     `json:"state"`
	Lives    int        `json:"lives"`
	Score    int        `json:"score"`
}

// handleQuizStart begins a session, optionally scoped via JSON body or
// ?quiz_id= query param.
func (s *Server) handleQuizStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req) // body is optional
	}
	if req.QuizID == nil {
		if v := r.URL.Query().Get("quiz_id"); v != "" {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, gameError("Invalid quiz_id"))
				return
			}
			req.QuizID = &id
		}
	}

	round, err := s.engine.Start(r.Context(), req.QuizID)
	if errors.Is(err, game.ErrNoQuestions) {
		writeJSON(w, http.StatusNotFound, gameError("No questions available"))
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("start session")
		writeJSON(w, http.StatusInternalServerError, gameError("Internal error"))
		return
	}

	log.Debug().Str("session", round.SessionID).Msg("session started")
	writeJSON(w, http.StatusOK, startRes{
		Success:  true,
		Question: round.Question,
		State:    round.Token,
		Lives:    round.Lives,
		Score:    round.Score,
	})
}

type answerReq struct {
	State  string `json:"state"`
	Answer any    `json:"answer"`
}

type answerRes struct {
	Success  bool         `json:"success"`
	Question game.Posed   `json:"question"`
	State    string       `json:"state"`
	Lives    int          `json:"lives"`
	Score    int          `json:"score"`
	Last     game.Summary `json:"last"`
}

type gameOverRes struct {
	Success    bool         `json:"success"`
	GameOver   bool         `json:"game_over"`
	FinalScore int          `json:"final_score"`
	Lives      int          `json:"lives"`
	Reason     game.Reason  `json:"reason"`
	Last       game.Summary `json:"last"`
}

// handleQuizAnswer judges one answer and either advances the session or
// reports game over.
func (s *Server) handleQuizAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.State == "" {
		writeJSON(w, http.StatusBadRequest, gameError("Invalid state"))
		return
	}

	out, err := s.engine.Answer(r.Context(), req.State, req.Answer)
	if errors.Is(err, game.ErrInvalidState) {
		writeJSON(w, http.StatusBadRequest, gameError("Invalid state"))
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("apply answer")
		writeJSON(w, http.StatusInternalServerError, gameError("Internal error"))
		return
	}

	if out.GameOver {
		s.persistResult(r, out)
		writeJSON(w, http.StatusOK, gameOverRes{
			Success:    true,
			GameOver:   true,
			FinalScore: out.Score,
			Lives:      out.Lives,
			Reason:     out.Reason,
			Last:       out.Last,
		})
		return
	}

	writeJSON(w, http.StatusOK, answerRes{
		Success:  true,
		Question: out.Next.Question,
		State:    out.Next.Token,
		Lives:    out.Lives,
		Score:    out.Score,
		Last:     out.Last,
	})
}

// persistResult records a finished session for logged-in players.
// Best effort: failures are logged, never surfaced to the client.
func (s *Server) persistResult(r *http.Request, out *game.Outcome) {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	if me == nil {
		return
	}
	elapsed := int64(out.ElapsedSeconds)
	res := &store.Result{
		UserID:    me.ID,
		QuizID:    out.QuizID,
		Score:     int64(out.Score),
		TimeTaken: &elapsed,
	}
	if err := s.store.Results.Create(r.Context(), res); err != nil {
		log.Warn().Err(err).
			Int64("user", me.ID).
			Str("session", out.SessionID).
			Msg("persist result")
	}
}

func gameError(msg string) map[string]any {
	return map[string]any{"success": false, "error": msg}
}
