// Package rest serves read-only collection snapshots to local UI
// surfaces. All state flows out as copies; mutation intents go through the
// syncer's exported operations, never through this API.
package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/driftwave/client/pkg/syncer"
)

func Router(core *syncer.Core) *chi.Mux {
	r := chi.NewRouter()

	// CORS middleware
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"OPTIONS", "GET"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"ok":        true,
			"localOnly": core.LocalOnly(),
			"alias":     core.Alias(),
		})
	})

	r.Get("/posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.Posts())
	})
	r.Get("/anon_posts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.AnonPosts())
	})
	r.Get("/messages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.Messages(r.URL.Query().Get("groupId")))
	})
	r.Get("/groups", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.Groups())
	})
	r.Get("/profiles", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.Profiles())
	})
	r.Get("/profiles/{alias}", func(w http.ResponseWriter, r *http.Request) {
		profile, ok := core.Profile(chi.URLParam(r, "alias"))
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]any{"error": "profile not found"})
			return
		}
		writeJSON(w, profile)
	})
	r.Get("/settings", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.Settings())
	})
	r.Get("/stories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.Stories())
	})
	r.Get("/channels", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, core.Channels())
	})

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
