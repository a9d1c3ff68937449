package inspect

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type stackResponse struct {
	Owner string  `json:"owner"`
	Keys  []Entry `json:"keys"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler returns the inspector routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/owners", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Owners())
	})
	r.Get("/owners/{id}/stack", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		keys, ok := s.Snapshot(id)
		if !ok {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown owner " + id})
			return
		}
		writeJSON(w, http.StatusOK, stackResponse{Owner: id, Keys: keys})
	})
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		s.hub.serve(w, r, s.messages)
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
