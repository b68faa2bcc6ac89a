// internal/game/selector.go
//
// Picks the next question for a session: uniform random over the unseen
// candidates, scoped to a quiz when the session has one.

package game

import "context"

// Source supplies quiz content to the engine. Implementations may be backed
// by SQL (internal/store), or by fixtures in tests.
type Source interface {
	// Questions returns all questions, or only those belonging to quizID
	// when it is non-nil.
	Questions(ctx context.Context, quizID *int64) ([]Question, error)

	// Options returns the options of one question.
	Options(ctx context.Context, questionID int64) ([]Option, error)
}

// selectNext returns one unseen question chosen uniformly at random, or nil
// when every candidate has been seen (quiz exhausted — a normal terminal
// condition, not an error). pick(n) must return a value in [0,n).
func selectNext(ctx context.Context, src Source, quizID *int64, seen []int64, pick func(int) int) (*Question, error) {
	candidates, err := src.Questions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	exclude := make(map[int64]struct{}, len(seen))
	for _, id := range seen {
		exclude[id] = struct{}{}
	}

	unseen := candidates[:0:0]
	for _, q := range candidates {
		if _, ok := exclude[q.ID]; !ok {
			unseen = append(unseen, q)
		}
	}
	if len(unseen) == 0 {
		return nil, nil
	}
	q := unseen[pick(len(unseen))]
	return &q, nil
}
