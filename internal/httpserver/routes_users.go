// internal/httpserver/routes_users.go
//
// User CRUD. Unlike the other entities, users carry a password (hashed on
// write, never serialized) and an access rule of their own: a user may read
// and update themselves, admins may do anything.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nkralj/quizserver/internal/store"
)

type userWriteReq struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

func (s *Server) mountUserRoutes() {
	s.r.Route("/users", func(r chi.Router) {
		admin := r.With(s.requireAdmin())
		admin.Get("/", s.handleUserList)
		admin.Post("/", s.handleUserCreate)
		admin.Delete("/{id}", s.handleUserDelete)

		auth := r.With(s.requireAuth())
		auth.Get("/{id}", s.handleUserGet)
		auth.Put("/{id}", s.handleUserUpdate)
		auth.Get("/{id}/score", s.handleUserScore)
	})
}

// selfOrAdmin authorizes access to the user resource at id.
func selfOrAdmin(r *http.Request, id int64) bool {
	me, _ := r.Context().Value(ctxUserKey{}).(*authUser)
	return me != nil && (me.IsAdmin || me.ID == id)
}

func (s *Server) handleUserList(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.Users.List(r.Context(), "")
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !selfOrAdmin(r, id) {
		http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		return
	}
	u, found, err := s.store.Users.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUserCreate(w http.ResponseWriter, r *http.Request) {
	var body userWriteReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	if err := validateSignup(body.Email, body.Name, body.Password); err != nil {
		http.Error(w, `{"error":"`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}
	if _, exists, err := s.store.UserByEmail(r.Context(), body.Email); err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	} else if exists {
		http.Error(w, `{"error":"Email taken"}`, http.StatusConflict)
		return
	}
	hash, err := hashPassword(body.Password)
	if err != nil {
		http.Error(w, `{"error":"hash_failed"}`, http.StatusInternalServerError)
		return
	}
	u := &store.User{Email: body.Email, Name: body.Name, Password: hash, IsAdmin: body.IsAdmin}
	if err := s.store.Users.Create(r.Context(), u); err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !selfOrAdmin(r, id) {
		http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		return
	}
	u, found, err := s.store.Users.Get(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	var body userWriteReq
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"error":"invalid_json"}`, http.StatusBadRequest)
		return
	}
	if body.Email != "" {
		u.Email = body.Email
	}
	if body.Name != "" {
		u.Name = body.Name
	}
	if body.Password != "" {
		hash, err := hashPassword(body.Password)
		if err != nil {
			http.Error(w, `{"error":"hash_failed"}`, http.StatusInternalServerError)
			return
		}
		u.Password = hash
	}
	// Only admins may grant or revoke the admin flag.
	if me, _ := r.Context().Value(ctxUserKey{}).(*authUser); me != nil && me.IsAdmin {
		u.IsAdmin = body.IsAdmin
	}

	if err := s.store.Users.Update(r.Context(), u); err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := s.store.Users.Delete(r.Context(), id)
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

// handleUserScore sums the user's persisted results.
func (s *Server) handleUserScore(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if !selfOrAdmin(r, id) {
		http.Error(w, `{"error":"Forbidden"}`, http.StatusForbidden)
		return
	}
	total, err := s.store.TotalScore(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"user_id": id, "total_score": total})
}
