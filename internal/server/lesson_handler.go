package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Muhsiinn/Jonas-AI/internal/lesson"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
)

type putSituationRequest struct {
	Situation string         `json:"situation"`
	Profile   lesson.Profile `json:"profile"`
}

// handlePutSituation stores today's situation and the learner profile it
// will be rendered with.
func (s *Server) handlePutSituation(w http.ResponseWriter, r *http.Request) {
	var req putSituationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Situation == "" {
		writeError(w, http.StatusBadRequest, "situation is required")
		return
	}

	encoded, err := json.Marshal(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode situation")
		return
	}
	err = s.repos.Situations.Put(r.Context(), store.Situation{
		UserID:    userFrom(r),
		Day:       s.day(),
		Situation: string(encoded),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store situation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleLessonStream generates today's lesson as an SSE stream. An already
// generated lesson short-circuits to a single complete event.
func (s *Server) handleLessonStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)
	day := s.day()

	sse, err := newSSEWriter(w)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	if existing, err := s.repos.Lessons.Get(ctx, userID, day); err == nil {
		var content lesson.Content
		if err := json.Unmarshal(existing.Content, &content); err != nil {
			sse.send(lesson.Event{Type: "error", Message: "stored lesson is corrupt"})
			return
		}
		sse.send(lesson.Event{Type: "complete", Data: &content})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		sse.send(lesson.Event{Type: "error", Message: "load lesson failed"})
		return
	}

	sit, err := s.repos.Situations.Get(ctx, userID, day)
	if errors.Is(err, store.ErrNotFound) {
		sse.send(lesson.Event{Type: "error", Message: "no daily situation found"})
		return
	}
	if err != nil {
		sse.send(lesson.Event{Type: "error", Message: "load situation failed"})
		return
	}

	var seed putSituationRequest
	if err := json.Unmarshal([]byte(sit.Situation), &seed); err != nil {
		// Rows written before profiles were stored alongside.
		seed = putSituationRequest{Situation: sit.Situation}
	}

	content, err := s.services.Lesson.GenerateStream(ctx, seed.Profile, seed.Situation, func(e lesson.Event) {
		sse.send(e)
	})
	if err != nil {
		slog.Error("lesson generation failed", "user", userID, "error", err)
		sse.send(lesson.Event{Type: "error", Message: fmt.Sprintf("lesson generation failed: %v", err)})
		return
	}

	encoded, err := json.Marshal(content)
	if err != nil {
		slog.Error("encode lesson failed", "user", userID, "error", err)
		return
	}
	if err := s.repos.Lessons.Put(ctx, store.Lesson{UserID: userID, Day: day, Content: encoded}); err != nil {
		slog.Error("store lesson failed", "user", userID, "error", err)
	}
}

type lessonEvaluateRequest struct {
	Answers []lesson.Answer `json:"answers"`
}

func (s *Server) handleLessonEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)
	day := s.day()

	var req lessonEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rec, err := s.repos.Lessons.Get(ctx, userID, day)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no lesson found for today")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load lesson failed")
		return
	}
	if len(rec.Evaluation) > 0 {
		writeError(w, http.StatusBadRequest, "lesson already evaluated")
		return
	}

	var content lesson.Content
	if err := json.Unmarshal(rec.Content, &content); err != nil {
		writeError(w, http.StatusInternalServerError, "stored lesson is corrupt")
		return
	}

	eval, err := s.services.Lesson.Evaluate(ctx, &content, req.Answers)
	if err != nil {
		slog.Error("lesson evaluation failed", "user", userID, "error", err)
		writeError(w, http.StatusBadGateway, "evaluation failed")
		return
	}

	encoded, err := json.Marshal(eval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode evaluation")
		return
	}
	if err := s.repos.Lessons.SetEvaluation(ctx, userID, day, encoded); err != nil {
		writeError(w, http.StatusInternalServerError, "store evaluation")
		return
	}

	writeJSON(w, http.StatusOK, eval)
}
