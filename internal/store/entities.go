// internal/store/entities.go
//
// Table-backed entities. Each one maps a table via the Record interface;
// the generic Repo does the rest.

package store

// User is a registered player. Password holds the bcrypt hash and never
// leaves the server.
type User struct {
	Row
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"-"`
	IsAdmin  bool   `json:"is_admin"`
}

func (u *User) Table() string     { return "users" }
func (u *User) Columns() []string { return []string{"email", "name", "password", "is_admin"} }
func (u *User) Values() []any     { return []any{u.Email, u.Name, u.Password, u.IsAdmin} }
func (u *User) Dest() []any       { return []any{&u.Email, &u.Name, &u.Password, &u.IsAdmin} }

// Category groups questions thematically.
type Category struct {
	Row
	Name string `json:"name"`
}

func (c *Category) Table() string     { return "categories" }
func (c *Category) Columns() []string { return []string{"name"} }
func (c *Category) Values() []any     { return []any{c.Name} }
func (c *Category) Dest() []any       { return []any{&c.Name} }

// Quiz is a named question set.
type Quiz struct {
	Row
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	ScoreNeeded *int64  `json:"score_needed,omitempty"`
	MaxTime     *int64  `json:"max_time,omitempty"`
}

func (q *Quiz) Table() string { return "quizzes" }
func (q *Quiz) Columns() []string {
	return []string{"name", "description", "score_needed", "max_time"}
}
func (q *Quiz) Values() []any { return []any{q.Name, q.Description, q.ScoreNeeded, q.MaxTime} }
func (q *Quiz) Dest() []any   { return []any{&q.Name, &q.Description, &q.ScoreNeeded, &q.MaxTime} }

// Question belongs to at most one quiz and one category. Difficulty is the
// score a correct answer earns.
type Question struct {
	Row
	QuizID          *int64  `json:"quiz_id,omitempty"`
	CategoryID      *int64  `json:"category_id,omitempty"`
	Text            string  `json:"text"`
	Country         *string `json:"country,omitempty"`
	Difficulty      int64   `json:"difficulty"`
	ScoreMultiplier int64   `json:"score_multiplier"`
}

func (q *Question) Table() string { return "questions" }
func (q *Question) Columns() []string {
	return []string{"quiz_id", "category_id", "text", "country", "difficulty", "score_multiplier"}
}
func (q *Question) Values() []any {
	return []any{q.QuizID, q.CategoryID, q.Text, q.Country, q.Difficulty, q.ScoreMultiplier}
}
func (q *Question) Dest() []any {
	return []any{&q.QuizID, &q.CategoryID, &q.Text, &q.Country, &q.Difficulty, &q.ScoreMultiplier}
}

// Option is one possible answer to a question.
type Option struct {
	Row
	QuestionID int64  `json:"question_id"`
	Text       string `json:"option"`
	Correct    bool   `json:"correct"`
}

func (o *Option) Table() string     { return "options" }
func (o *Option) Columns() []string { return []string{"question_id", "option", "correct"} }
func (o *Option) Values() []any     { return []any{o.QuestionID, o.Text, o.Correct} }
func (o *Option) Dest() []any       { return []any{&o.QuestionID, &o.Text, &o.Correct} }

// Result records one finished session's score for a user.
type Result struct {
	Row
	UserID    int64  `json:"user_id"`
	QuizID    *int64 `json:"quiz_id,omitempty"`
	Score     int64  `json:"score"`
	TimeTaken *int64 `json:"time_taken,omitempty"`
}

func (r *Result) Table() string     { return "results" }
func (r *Result) Columns() []string { return []string{"user_id", "quiz_id", "score", "time_taken"} }
func (r *Result) Values() []any     { return []any{r.UserID, r.QuizID, r.Score, r.TimeTaken} }
func (r *Result) Dest() []any       { return []any{&r.UserID, &r.QuizID, &r.Score, &r.TimeTaken} }
