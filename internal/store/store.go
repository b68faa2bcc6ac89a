// internal/store/store.go
//
// Store bundles a repository per entity over one database handle.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Store is the relational access layer for the quiz backend.
type Store struct {
	DB         *sql.DB
	Users      *Repo[*User]
	Categories *Repo[*Category]
	Quizzes    *Repo[*Quiz]
	Questions  *Repo[*Question]
	Options    *Repo[*Option]
	Results    *Repo[*Result]
}

// New wires a Store over db.
func New(db *sql.DB) *Store {
	return &Store{
		DB:         db,
		Users:      NewRepo(db, func() *User { return &User{} }),
		Categories: NewRepo(db, func() *Category { return &Category{} }),
		Quizzes:    NewRepo(db, func() *Quiz { return &Quiz{} }),
		Questions:  NewRepo(db, func() *Question { return &Question{} }),
		Options:    NewRepo(db, func() *Option { return &Option{} }),
		Results:    NewRepo(db, func() *Result { return &Result{} }),
	}
}

// UserByEmail loads a user by email. The bool reports whether it exists.
func (s *Store) UserByEmail(ctx context.Context, email string) (*User, bool, error) {
	users, err := s.Users.List(ctx, "lower(email) = lower(?)", email)
	if err != nil {
		return nil, false, err
	}
	if len(users) == 0 {
		return nil, false, nil
	}
	return users[0], true, nil
}

// TotalScore sums every result score recorded for a user.
func (s *Store) TotalScore(ctx context.Context, userID int64) (int64, error) {
	var total int64
	err := s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(score), 0) FROM results WHERE user_id = ?`, userID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total score for user %d: %w", userID, err)
	}
	return total, nil
}
