// internal/httpserver/routes_entities.go
//
// CRUD endpoints per entity. One generic handler set serves every table
// through the store's generic repository; reads are public, mutations are
// admin-gated. Users get their own handlers (password handling, self-or-admin
// access).

package httpserver

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nkralj/quizserver/internal/store"
)

// entityRoutes binds a repository to an HTTP path, with optional list
// filters (query param name -> column) and a pre-write hook.
type entityRoutes[R store.Record] struct {
	repo    *store.Repo[R]
	filters map[string]string
	// beforeWrite runs on decoded input before Create/Update; return a
	// client-facing message to reject.
	beforeWrite func(rec R) error
}

// mountEntityRoutes registers CRUD routes for every entity.
func (s *Server) mountEntityRoutes() {
	mountEntity(s, "/categories", entityRoutes[*store.Category]{
		repo: s.store.Categories,
	})
	mountEntity(s, "/quizzes", entityRoutes[*store.Quiz]{
		repo: s.store.Quizzes,
	})
	mountEntity(s, "/questions", entityRoutes[*store.Question]{
		repo:    s.store.Questions,
		filters: map[string]string{"quiz_id": "quiz_id", "category_id": "category_id"},
	})
	mountEntity(s, "/options", entityRoutes[*store.Option]{
		repo:    s.store.Options,
		filters: map[string]string{"question_id": "question_id"},
	})
	mountEntity(s, "/results", entityRoutes[*store.Result]{
		repo:    s.store.Results,
		filters: map[string]string{"user_id": "user_id", "quiz_id": "quiz_id"},
	})
	s.mountUserRoutes()
}

func mountEntity[R store.Record](s *Server, path string, er entityRoutes[R]) {
	s.r.Route(path, func(r chi.Router) {
		r.Get("/", handleEntityList(er))
		r.Get("/{id}", handleEntityGet(er))

		admin := r.With(s.requireAdmin())
		admin.Post("/", handleEntityCreate(er))
		admin.Put("/{id}", handleEntityUpdate(er))
		admin.Delete("/{id}", handleEntityDelete(er))
	})
}

func handleEntityList[R store.Record](er entityRoutes[R]) http.HandlerFunc {
	// Stable filter order keeps generated SQL deterministic.
	params := make([]string, 0, len(er.filters))
	for p := range er.filters {
		params = append(params, p)
	}
	sort.Strings(params)

	return func(w http.ResponseWriter, r *http.Request) {
		where := ""
		var args []any
		for _, p := range params {
			v := r.URL.Query().Get(p)
			if v == "" {
				continue
			}
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				http.Error(w, `{"error":"invalid `+p+`"}`, http.StatusBadRequest)
				return
			}
			if where != "" {
				where += " AND "
			}
			where += er.filters[p] + " = ?"
			args = append(args, id)
		}

		rows, err := er.repo.List(r.Context(), where, args...)
		if err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rows)
	}
}

func handleEntityGet[R store.Record](er entityRoutes[R]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		rec, found, err := er.repo.Get(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleEntityCreate[R store.Record](er entityRoutes[R]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := er.repo.New()
		if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
			http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
			return
		}
		if er.beforeWrite != nil {
			if err := er.beforeWrite(rec); err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
				return
			}
		}
		if err := er.repo.Create(r.Context(), rec); err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// handleEntityUpdate replaces the record's data columns wholesale (PUT
// semantics): absent body fields become their zero values.
func handleEntityUpdate[R store.Record](er entityRoutes[R]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		_, found, err := er.repo.Get(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		if !found {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}

		rec := er.repo.New()
		if err := json.NewDecoder(r.Body).Decode(rec); err != nil {
			http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
			return
		}
		if er.beforeWrite != nil {
			if err := er.beforeWrite(rec); err != nil {
				http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
				return
			}
		}
		store.SetID(rec, id)
		if err := er.repo.Update(r.Context(), rec); err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

func handleEntityDelete[R store.Record](er entityRoutes[R]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		deleted, err := er.repo.Delete(r.Context(), id)
		if err != nil {
			http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
			return
		}
		if !deleted {
			http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	}
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.Error(w, `{"error":"invalid_id"}`, http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
