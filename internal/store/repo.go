// internal/store/repo.go
//
// One generic repository instead of one hand-written CRUD type per table.
// An entity describes its table name, column list, and bindings; Repo
// supplies load-by-id, load-by-predicate, create, update, and delete on top
// of that description.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingID is returned by Update/Delete when the record was never saved.
var ErrMissingID = errors.New("record id required")

// Row carries the key and timestamp columns every table shares.
// Embed it in each entity.
type Row struct {
	ID         int64  `json:"id"`
	CreateDate string `json:"create_date"`
	UpdateDate string `json:"update_date"`
}

func (r *Row) row() *Row { return r }

// Record is implemented by every table-backed entity.
type Record interface {
	// Table is the SQL table name.
	Table() string
	// Columns lists the entity's data columns, excluding id and timestamps.
	Columns() []string
	// Values returns the current column values, in Columns order.
	Values() []any
	// Dest returns scan destinations for the data columns, in Columns order.
	Dest() []any

	row() *Row
}

// SetID assigns a record's primary key, for callers outside this package
// binding a decoded body to a path id.
func SetID(rec Record, id int64) { rec.row().ID = id }

// Repo provides CRUD over one entity type.
type Repo[R Record] struct {
	db      *sql.DB
	factory func() R
}

// NewRepo binds a repository to db. factory allocates a fresh entity for
// scanning.
func NewRepo[R Record](db *sql.DB, factory func() R) *Repo[R] {
	return &Repo[R]{db: db, factory: factory}
}

// New allocates an empty entity; callers use it to decode request bodies.
func (r *Repo[R]) New() R { return r.factory() }

// Get loads one record by primary key. The bool reports whether it exists.
func (r *Repo[R]) Get(ctx context.Context, id int64) (R, bool, error) {
	rec := r.factory()
	q := r.selectClause(rec) + " WHERE id = ?"
	err := r.db.QueryRowContext(ctx, q, id).Scan(scanDest(rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		var zero R
		return zero, false, nil
	}
	if err != nil {
		var zero R
		return zero, false, fmt.Errorf("load %s %d: %w", rec.Table(), id, err)
	}
	return rec, true, nil
}

// List returns the records matching the predicate, or all rows when where
// is empty. where is a SQL fragment with ? placeholders, e.g. "quiz_id = ?".
func (r *Repo[R]) List(ctx context.Context, where string, args ...any) ([]R, error) {
	probe := r.factory()
	q := r.selectClause(probe)
	if where != "" {
		q += " WHERE " + where
	}
	q += " ORDER BY id"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", probe.Table(), err)
	}
	defer rows.Close()

	out := []R{}
	for rows.Next() {
		rec := r.factory()
		if err := rows.Scan(scanDest(rec)...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", probe.Table(), err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Create inserts rec and fills in its id and timestamps.
func (r *Repo[R]) Create(ctx context.Context, rec R) error {
	now := time.Now().UTC().Format(time.RFC3339)
	m := rec.row()
	m.CreateDate, m.UpdateDate = now, now

	cols := append(append([]string{}, rec.Columns()...), "create_date", "update_date")
	args := append(append([]any{}, rec.Values()...), m.CreateDate, m.UpdateDate)
	q := "INSERT INTO " + rec.Table() + " (" + strings.Join(cols, ", ") + ") VALUES (" +
		placeholders(len(cols)) + ")"

	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.Table(), err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert %s: %w", rec.Table(), err)
	}
	m.ID = id
	return nil
}

// Update rewrites every data column of rec and bumps update_date.
func (r *Repo[R]) Update(ctx context.Context, rec R) error {
	m := rec.row()
	if m.ID == 0 {
		return ErrMissingID
	}
	m.UpdateDate = time.Now().UTC().Format(time.RFC3339)

	sets := make([]string, 0, len(rec.Columns())+1)
	for _, c := range rec.Columns() {
		sets = append(sets, c+" = ?")
	}
	sets = append(sets, "update_date = ?")
	args := append(append([]any{}, rec.Values()...), m.UpdateDate, m.ID)

	q := "UPDATE " + rec.Table() + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("update %s %d: %w", rec.Table(), m.ID, err)
	}
	return nil
}

// Delete removes the record with the given id. The bool reports whether a
// row was actually deleted.
func (r *Repo[R]) Delete(ctx context.Context, id int64) (bool, error) {
	if id == 0 {
		return false, ErrMissingID
	}
	probe := r.factory()
	res, err := r.db.ExecContext(ctx, "DELETE FROM "+probe.Table()+" WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete %s %d: %w", probe.Table(), id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo[R]) selectClause(rec R) string {
	cols := append([]string{"id"}, rec.Columns()...)
	cols = append(cols, "create_date", "update_date")
	return "SELECT " + strings.Join(cols, ", ") + " FROM " + rec.Table()
}

func scanDest(rec Record) []any {
	m := rec.row()
	dest := append([]any{&m.ID}, rec.Dest()...)
	return append(dest, &m.CreateDate, &m.UpdateDate)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
