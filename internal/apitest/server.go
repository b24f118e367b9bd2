// Package apitest is a mock implementation of the touchpoint REST API backed by
// SQLite. It exists for tests (via httptest) and for offline use through
// cmd/ohara-mockapi.
package apitest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"ohara-cli/internal/model"

	"github.com/rs/zerolog"
)

// Server routes the REST API onto a Store.
type Server struct {
	store *Store
	mux   *http.ServeMux
	log   zerolog.Logger

	// Fail, when set, short-circuits matching requests ("GET /metadata") with the given status.
	failMu sync.Mutex
	fail   map[string]int

	reqMu    sync.Mutex
	requests []string
}

func NewServer(st *Store, log zerolog.Logger) *Server {
	s := &Server{
		store: st,
		mux:   http.NewServeMux(),
		log:   log,
		fail:  map[string]int{},
	}
	s.setup()
	return s
}

func (s *Server) Store() *Store { return s.store }

func (s *Server) setup() {
	s.mux.HandleFunc("GET /api/touchpoints", s.listTouchpoints)
	s.mux.HandleFunc("POST /api/touchpoints", s.createTouchpoint)
	s.mux.HandleFunc("PUT /api/touchpoints/{id}", s.updateTouchpoint)
	s.mux.HandleFunc("DELETE /api/touchpoints/{id}", s.deleteTouchpoint)

	s.mux.HandleFunc("GET /api/metadata", s.getMetadata)
	s.mux.HandleFunc("POST /api/metadata/categories", s.addCategory)
	s.mux.HandleFunc("DELETE /api/metadata/categories/{name}", s.removeCategory)
	s.mux.HandleFunc("POST /api/metadata/tags", s.addTag)
	s.mux.HandleFunc("DELETE /api/metadata/tags/{name}", s.removeTag)

	s.mux.HandleFunc("GET /api/reports", s.listReports)
	s.mux.HandleFunc("GET /api/reports/{filename}", s.getReport)
	s.mux.HandleFunc("POST /api/reports", s.createReport)
}

// FailNext makes every request matching "METHOD /path" (path without the /api
// prefix) answer with status until cleared with status 0.
func (s *Server) FailNext(route string, status int) {
	s.failMu.Lock()
	defer s.failMu.Unlock()
	if status == 0 {
		delete(s.fail, route)
		return
	}
	s.fail[route] = status
}

// Requests returns the "METHOD /path" of every request served so far.
func (s *Server) Requests() []string {
	s.reqMu.Lock()
	defer s.reqMu.Unlock()
	return append([]string(nil), s.requests...)
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.reqMu.Lock()
	defer s.reqMu.Unlock()
	s.requests = nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	route := r.Method + " " + trimAPIPrefix(r.URL.Path)
	s.reqMu.Lock()
	s.requests = append(s.requests, route)
	s.reqMu.Unlock()

	s.log.Info().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")

	s.failMu.Lock()
	status, failing := s.fail[route]
	s.failMu.Unlock()
	if failing {
		writeError(w, status, "injected failure")
		return
	}
	s.mux.ServeHTTP(w, r)
}

func trimAPIPrefix(p string) string {
	if len(p) >= 4 && p[:4] == "/api" {
		return p[4:]
	}
	return p
}

// NewTestServer starts an httptest server over an in-memory store seeded with the
// default vocabulary. The returned base URL includes the /api prefix.
func NewTestServer(t testing.TB) (*Server, string) {
	t.Helper()
	return newTestServer(t, true)
}

// NewBareTestServer is NewTestServer with an empty vocabulary.
func NewBareTestServer(t testing.TB) (*Server, string) {
	t.Helper()
	return newTestServer(t, false)
}

func newTestServer(t testing.TB, seed bool) (*Server, string) {
	t.Helper()
	st, err := OpenStore(context.Background(), ":memory:", seed)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	srv := NewServer(st, zerolog.Nop())
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		ts.Close()
		_ = st.Close()
	})
	return srv, ts.URL + "/api"
}

func (s *Server) listTouchpoints(w http.ResponseWriter, r *http.Request) {
	tps, err := s.store.ListTouchpoints(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tps)
}

func (s *Server) createTouchpoint(w http.ResponseWriter, r *http.Request) {
	var in model.TouchpointInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	tp, err := s.store.CreateTouchpoint(r.Context(), in)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, tp)
}

func (s *Server) updateTouchpoint(w http.ResponseWriter, r *http.Request) {
	var in model.TouchpointInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	tp, err := s.store.UpdateTouchpoint(r.Context(), r.PathValue("id"), in)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tp)
}

func (s *Server) deleteTouchpoint(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteTouchpoint(r.Context(), r.PathValue("id")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getMetadata(w http.ResponseWriter, r *http.Request) {
	md, err := s.store.GetMetadata(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, md)
}

type namePayload struct {
	Name string `json:"name"`
}

func (s *Server) addCategory(w http.ResponseWriter, r *http.Request) {
	s.addName(w, r, s.store.AddCategory)
}

func (s *Server) addTag(w http.ResponseWriter, r *http.Request) {
	s.addName(w, r, s.store.AddTag)
}

func (s *Server) addName(w http.ResponseWriter, r *http.Request, add func(context.Context, string) error) {
	var p namePayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := add(r.Context(), p.Name); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": p.Name})
}

func (s *Server) removeCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveCategory(r.Context(), r.PathValue("name")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) removeTag(w http.ResponseWriter, r *http.Request) {
	if err := s.store.RemoveTag(r.Context(), r.PathValue("name")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listReports(w http.ResponseWriter, r *http.Request) {
	names, err := s.store.ListReports(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

func (s *Server) getReport(w http.ResponseWriter, r *http.Request) {
	content, err := s.store.GetReport(r.Context(), r.PathValue("filename"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	_, _ = w.Write([]byte(content))
}

type reportPayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

func (s *Server) createReport(w http.ResponseWriter, r *http.Request) {
	var p reportPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := s.store.PutReport(r.Context(), p.Filename, p.Content); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"filename": p.Filename})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrInvalidFilename):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error().Err(err).Msg("store error")
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
