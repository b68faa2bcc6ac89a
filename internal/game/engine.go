// internal/game/engine.go
//
// Session engine for the quiz game.
// Responsibilities:
//   - Start sessions: pick a first question, mint the initial signed state.
//   - Apply answers: timeout check, scoring, life loss, history tracking.
//   - Advance or end sessions: next unseen question, or game over on
//     exhausted lives / exhausted questions.
//
// The engine is stateless across calls: all mutable session state lives in
// the signed token the client carries (see internal/token).

package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/nkralj/quizserver/internal/token"
)

const (
	// DefaultLives a session starts with.
	DefaultLives = 3
	// DefaultTimeLimit per question.
	DefaultTimeLimit = 30 * time.Second
)

// Reason explains why a session ended.
type Reason string

const (
	ReasonNoLives   Reason = "no_lives"
	ReasonCompleted Reason = "completed"
)

var (
	// ErrNoQuestions means a session could not start: nothing to serve.
	ErrNoQuestions = errors.New("no questions available")
	// ErrInvalidState means the client-supplied token failed verification.
	ErrInvalidState = errors.New("invalid state")
)

// Config tunes an Engine. Zero values fall back to defaults; Now and Pick
// exist so tests can pin the clock and the random pick.
type Config struct {
	Secret    []byte
	Lives     int
	TimeLimit time.Duration
	Now       func() time.Time
	Pick      func(int) int
}

// Engine runs the session protocol against a question Source.
type Engine struct {
	src       Source
	secret    []byte
	lives     int
	timeLimit time.Duration
	now       func() time.Time
	pick      func(int) int
}

// NewEngine constructs an Engine, filling in defaults for any unset Config
// field.
func NewEngine(src Source, cfg Config) *Engine {
	e := &Engine{
		src:       src,
		secret:    cfg.Secret,
		lives:     cfg.Lives,
		timeLimit: cfg.TimeLimit,
		now:       cfg.Now,
		pick:      cfg.Pick,
	}
	if e.lives <= 0 {
		e.lives = DefaultLives
	}
	if e.timeLimit <= 0 {
		e.timeLimit = DefaultTimeLimit
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.pick == nil {
		e.pick = rand.Intn
	}
	return e
}

// Round is what an active session hands back to the client: the posed
// question plus the token that must accompany the next answer.
type Round struct {
	SessionID string
	Question  Posed
	Token     string
	Lives     int
	Score     int
}

// Summary describes how the last answer was judged, for client display.
type Summary struct {
	Correct         bool   `json:"correct"`
	CorrectOptionID int64  `json:"correct_option_id"`
	AnswerGiven     string `json:"answer_given"`
	TimedOut        bool   `json:"timeout"`
}

// Outcome is the result of one answer: either the session continues (Next is
// set) or it ended (GameOver with a Reason).
type Outcome struct {
	SessionID string
	QuizID    *int64
	Lives     int
	Score     int
	Last      Summary
	GameOver  bool
	Reason    Reason
	// ElapsedSeconds is the whole-session duration, meaningful on game over.
	ElapsedSeconds int
	// Next is nil once the session is over; no further token is issued.
	Next *Round
}

// Start begins a session, optionally scoped to one quiz.
// Returns ErrNoQuestions when there is nothing to serve; the session never
// began and no token is issued.
func (e *Engine) Start(ctx context.Context, quizID *int64) (*Round, error) {
	q, err := selectNext(ctx, e.src, quizID, nil, e.pick)
	if err != nil {
		return nil, fmt.Errorf("select first question: %w", err)
	}
	if q == nil {
		return nil, ErrNoQuestions
	}

	scope := quizID
	if scope == nil {
		// An unscoped start locks to the first question's quiz, so later
		// selections stay within one quiz when the content is organized
		// that way.
		scope = q.QuizID
	}

	now := e.now().UnixMilli()
	st := State{
		SessionID:                 uuid.NewString(),
		QuizID:                    scope,
		Lives:                     e.lives,
		Score:                     0,
		CurrentQuestionID:         q.ID,
		CurrentQuestionDifficulty: q.Difficulty,
		QuestionStartTime:         now,
		StartedAt:                 now,
		History:                   []int64{},
	}
	return e.round(ctx, st, *q)
}

// Answer applies a submitted answer to the state carried by tok.
// Returns ErrInvalidState when the token is forged, tampered, or malformed.
func (e *Engine) Answer(ctx context.Context, tok string, answer any) (*Outcome, error) {
	var st State
	ok, err := token.Verify(tok, e.secret, &st)
	if err != nil {
		// Authentic MAC over unparseable bytes: our bug, not the client's.
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if !ok {
		return nil, ErrInvalidState
	}

	correctID, err := e.correctOption(ctx, st.CurrentQuestionID)
	if err != nil {
		return nil, err
	}

	now := e.now()
	timedOut := now.UnixMilli()-st.QuestionStartTime > e.timeLimit.Milliseconds()
	given := canonicalID(answer)
	correct := false
	if timedOut {
		// A late answer never scores, correct or not.
		st.Lives--
	} else if given == strconv.FormatInt(correctID, 10) {
		correct = true
		st.Score += st.CurrentQuestionDifficulty
	} else {
		st.Lives--
	}

	last := Summary{
		Correct:         correct,
		CorrectOptionID: correctID,
		AnswerGiven:     given,
		TimedOut:        timedOut,
	}
	out := &Outcome{
		SessionID: st.SessionID,
		QuizID:    st.QuizID,
		Lives:     st.Lives,
		Score:     st.Score,
		Last:      last,
	}

	if st.Lives <= 0 {
		out.GameOver = true
		out.Reason = ReasonNoLives
		out.ElapsedSeconds = elapsedSeconds(st.StartedAt, now)
		return out, nil
	}

	if n := len(st.History); n == 0 || st.History[n-1] != st.CurrentQuestionID {
		st.History = append(st.History, st.CurrentQuestionID)
	}

	next, err := selectNext(ctx, e.src, st.QuizID, st.History, e.pick)
	if err != nil {
		return nil, fmt.Errorf("select next question: %w", err)
	}
	if next == nil {
		out.GameOver = true
		out.Reason = ReasonCompleted
		out.ElapsedSeconds = elapsedSeconds(st.StartedAt, now)
		return out, nil
	}

	st.CurrentQuestionID = next.ID
	st.CurrentQuestionDifficulty = next.Difficulty
	st.QuestionStartTime = now.UnixMilli()
	round, err := e.round(ctx, st, *next)
	if err != nil {
		return nil, err
	}
	out.Next = round
	return out, nil
}

// round fetches q's options, signs st, and packages the client-facing reply.
func (e *Engine) round(ctx context.Context, st State, q Question) (*Round, error) {
	opts, err := e.src.Options(ctx, q.ID)
	if err != nil {
		return nil, fmt.Errorf("load options for question %d: %w", q.ID, err)
	}
	tok, err := token.Sign(st, e.secret)
	if err != nil {
		return nil, fmt.Errorf("sign state: %w", err)
	}
	return &Round{
		SessionID: st.SessionID,
		Question:  pose(q, opts),
		Token:     tok,
		Lives:     st.Lives,
		Score:     st.Score,
	}, nil
}

// correctOption scans a question's options for the one flagged correct.
func (e *Engine) correctOption(ctx context.Context, questionID int64) (int64, error) {
	opts, err := e.src.Options(ctx, questionID)
	if err != nil {
		return 0, fmt.Errorf("load options for question %d: %w", questionID, err)
	}
	for _, o := range opts {
		if o.Correct {
			return o.ID, nil
		}
	}
	return 0, fmt.Errorf("question %d has no correct option", questionID)
}

func elapsedSeconds(startedAtMillis int64, now time.Time) int {
	s := (now.UnixMilli() - startedAtMillis) / 1000
	if s < 0 {
		return 0
	}
	return int(s)
}

// canonicalID renders a submitted answer id as a canonical string, so that
// "7", 7, and 7.0 from the JSON transport all compare equal to option id 7.
func canonicalID(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1<<53 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}
