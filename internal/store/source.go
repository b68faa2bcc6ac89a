// internal/store/source.go
//
// Adapts the relational store to the game engine's Source interface.

package store

import (
	"context"

	"github.com/nkralj/quizserver/internal/game"
)

// Source serves quiz content to the game engine from the database.
type Source struct {
	store *Store
}

// GameSource returns the store as a game.Source.
func (s *Store) GameSource() *Source { return &Source{store: s} }

// Questions returns all questions, or the scoped quiz's questions when
// quizID is non-nil.
func (s *Source) Questions(ctx context.Context, quizID *int64) ([]game.Question, error) {
	var rows []*Question
	var err error
	if quizID == nil {
		rows, err = s.store.Questions.List(ctx, "")
	} else {
		rows, err = s.store.Questions.List(ctx, "quiz_id = ?", *quizID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]game.Question, 0, len(rows))
	for _, q := range rows {
		difficulty := int(q.Difficulty)
		if difficulty <= 0 {
			difficulty = 1
		}
		out = append(out, game.Question{
			ID:         q.Row.ID,
			QuizID:     q.QuizID,
			Text:       q.Text,
			Difficulty: difficulty,
		})
	}
	return out, nil
}

// Options returns a question's options.
func (s *Source) Options(ctx context.Context, questionID int64) ([]game.Option, error) {
	rows, err := s.store.Options.List(ctx, "question_id = ?", questionID)
	if err != nil {
		return nil, err
	}
	out := make([]game.Option, 0, len(rows))
	for _, o := range rows {
		out = append(out, game.Option{ID: o.Row.ID, Text: o.Text, Correct: o.Correct})
	}
	return out, nil
}
