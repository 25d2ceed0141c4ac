package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/Mehdichaaki/dashbord/internal/dashboard"

	"github.com/go-chi/chi/v5"
)

// fakeAPI serves the subset of the records API the dashboard calls.
type fakeAPI struct {
	mu       sync.Mutex
	users    []dashboard.User
	entries  map[string][]dashboard.Entry
	auth     []string
	fwd      []string
	deleted  []string
	updated  map[string]dashboard.UserForm
	password string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()

	api := &fakeAPI{
		users: []dashboard.User{
			{ID: "u1", Name: "Ana Lopez", Email: "ana@example.com", PhoneNumber: "555-0101", Grade: "A", Year: "2024"},
			{ID: "u2", Name: "Ben Okafor", Email: "ben@example.com", PhoneNumber: "555-0102", Grade: "B", Year: "2023"},
		},
		entries: map[string][]dashboard.Entry{
			"u1": {{ID: "e1", UserID: "u1", Subject: "Math", Grade: "A", Attendance: 95, Comments: "steady"}},
		},
		updated:  map[string]dashboard.UserForm{},
		password: "Secret1!",
	}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/users", api.listUsers)
		r.Post("/users/register", api.register)
		r.Post("/users/login", api.login)
		r.Put("/users/{id}", api.updateUser)
		r.Delete("/users/{id}", api.deleteUser)
		r.Get("/users/{id}/table", api.listEntries)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return api, srv
}

func (f *fakeAPI) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
}

func (f *fakeAPI) lastForwardedFor() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.fwd) == 0 {
		return ""
	}
	return f.fwd[len(f.fwd)-1]
}

func (f *fakeAPI) lastAuth() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.auth) == 0 {
		return ""
	}
	return f.auth[len(f.auth)-1]
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeAPI) listUsers(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, f.users)
}

func (f *fakeAPI) register(w http.ResponseWriter, r *http.Request) {
	var form dashboard.UserForm
	_ = json.NewDecoder(r.Body).Decode(&form)

	if len(form.Password) < 8 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "validation failed",
			"fields": map[string]string{"password": "password must be at least 8 characters"},
		})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == form.Email {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email address is already in use"})
			return
		}
	}
	u := dashboard.User{ID: "u3", Name: form.Name, Email: form.Email, PhoneNumber: form.PhoneNumber, Grade: form.Grade, Year: form.Year}
	f.users = append(f.users, u)
	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": "user registered successfully", "user": u})
}

func (f *fakeAPI) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	f.mu.Lock()
	f.fwd = append(f.fwd, r.Header.Get("X-Forwarded-For"))
	f.mu.Unlock()

	if body.Email != "ana@example.com" || body.Password != f.password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": "tok-ana",
		"user":  map[string]string{"id": "u1", "name": "Ana Lopez", "email": "ana@example.com"},
	})
}

func (f *fakeAPI) updateUser(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	if r.Header.Get("Authorization") != "Bearer tok-ana" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	var form dashboard.UserForm
	_ = json.NewDecoder(r.Body).Decode(&form)

	f.mu.Lock()
	defer f.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i := range f.users {
		if f.users[i].ID == id {
			f.updated[id] = form
			f.users[i].Name = form.Name
			writeJSON(w, http.StatusOK, f.users[i])
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
}

func (f *fakeAPI) deleteUser(w http.ResponseWriter, r *http.Request) {
	f.record(r)
	if r.Header.Get("Authorization") != "Bearer tok-ana" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	id := chi.URLParam(r, "id")
	for i := range f.users {
		if f.users[i].ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			f.deleted = append(f.deleted, id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "user not found"})
}

func (f *fakeAPI) listEntries(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := f.entries[chi.URLParam(r, "id")]
	if entries == nil {
		entries = []dashboard.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}
