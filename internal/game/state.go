// internal/game/state.go
//
// Types for the stateless quiz session.
// Defines:
//   - State: the signed, client-held record of one play-through.
//   - Question/Option: the engine's read-only view of quiz content.
//   - Posed: the client-facing question shape with correctness withheld.

package game

// State is everything the server knows about a session. It is never stored
// server-side: it round-trips through the client inside a signed token, so
// every field must survive JSON serialization exactly.
type State struct {
	// SessionID correlates log lines and results across requests. It carries
	// no authority; the MAC on the enclosing token is what makes the state
	// trustworthy.
	SessionID string `json:"session_id"`

	// QuizID scopes question selection. Nil means unscoped. Immutable once
	// set at session start.
	QuizID *int64 `json:"quiz_id,omitempty"`

	Lives int `json:"lives"`
	Score int `json:"score"`

	CurrentQuestionID         int64 `json:"current_question_id"`
	CurrentQuestionDifficulty int   `json:"current_question_difficulty"`

	// QuestionStartTime is epoch milliseconds when the current question was
	// issued; the answer deadline is measured against it.
	QuestionStartTime int64 `json:"question_start_time"`

	// StartedAt is epoch milliseconds when the session began, used to report
	// total time taken once the session ends.
	StartedAt int64 `json:"started_at"`

	// History holds the ids of questions already answered, one per advance,
	// no duplicates. The current question is never in it.
	History []int64 `json:"history"`
}

// Question is the engine's view of a stored question.
type Question struct {
	ID         int64
	QuizID     *int64
	Text       string
	Difficulty int
}

// Option is one possible answer to a question.
type Option struct {
	ID      int64
	Text    string
	Correct bool
}

// Posed is a question as transmitted to the client: options included,
// correctness flags stripped.
type Posed struct {
	ID         int64         `json:"id"`
	QuizID     *int64        `json:"quiz_id,omitempty"`
	Text       string        `json:"text"`
	Difficulty int           `json:"difficulty"`
	Options    []PosedOption `json:"options"`
}

// PosedOption carries only what the client may see about an option.
type PosedOption struct {
	ID   int64  `json:"id"`
	Text string `json:"option"`
}

func pose(q Question, opts []Option) Posed {
	p := Posed{ID: q.ID, QuizID: q.QuizID, Text: q.Text, Difficulty: q.Difficulty}
	p.Options = make([]PosedOption, 0, len(opts))
	for _, o := range opts {
		p.Options = append(p.Options, PosedOption{ID: o.ID, Text: o.Text})
	}
	return p
}
