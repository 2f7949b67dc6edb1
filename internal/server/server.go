// Package server exposes the pipelines over HTTP. Authentication proper
// lives in front of this service; handlers trust the X-User-ID header.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/roleplay"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
	"github.com/Muhsiinn/Jonas-AI/internal/writing"
)

// Services bundles the pipeline services the server fronts.
type Services struct {
	Lesson   *lesson.Service
	Roleplay *roleplay.Service
	Writing  *writing.Service
}

// Repos bundles the persistence the handlers touch directly.
type Repos struct {
	Situations store.SituationRepo
	Lessons    store.LessonRepo
	Writings   store.WritingRepo
}

// Server is the HTTP front for the daily learning pipelines.
type Server struct {
	services Services
	repos    Repos
	router   chi.Router

	// now is injectable so tests can pin the day.
	now func() time.Time
}

// New wires the router and returns a ready server.
func New(services Services, repos Repos) *Server {
	s := &Server{
		services: services,
		repos:    repos,
		now:      time.Now,
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireUser)

		r.Post("/situation", s.handlePutSituation)

		r.Get("/lesson", s.handleLessonStream)
		r.Post("/lesson/evaluate", s.handleLessonEvaluate)

		r.Get("/roleplay/goal", s.handleRoleplayGoal)
		r.Post("/roleplay/chat", s.handleRoleplayChat)
		r.Post("/roleplay/finish", s.handleRoleplayFinish)

		r.Get("/writing/goal", s.handleWritingGoal)
		r.Post("/writing/evaluate", s.handleWritingEvaluate)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	s.router = r
	return s
}

// Handler returns the root http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// day returns the storage key for "today".
func (s *Server) day() string {
	return s.now().Format("2006-01-02")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
