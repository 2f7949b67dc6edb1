package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Muhsiinn/Jonas-AI/internal/store"
	"github.com/Muhsiinn/Jonas-AI/internal/writing"
)

// handleWritingGoal returns today's writing exercise, generating and
// persisting it on first request.
func (s *Server) handleWritingGoal(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)
	day := s.day()

	if existing, err := s.repos.Writings.Get(ctx, userID, day); err == nil {
		var vocabs []writing.VocabItem
		if err := json.Unmarshal(existing.Vocabs, &vocabs); err != nil {
			writeError(w, http.StatusInternalServerError, "stored exercise is corrupt")
			return
		}
		writeJSON(w, http.StatusOK, writing.Exercise{Goal: existing.Goal, Vocabs: vocabs})
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, "load writing exercise failed")
		return
	}

	sit, err := s.repos.Situations.Get(ctx, userID, day)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no daily situation found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load situation failed")
		return
	}

	var seed putSituationRequest
	if err := json.Unmarshal([]byte(sit.Situation), &seed); err != nil {
		seed = putSituationRequest{Situation: sit.Situation}
	}

	exercise, err := s.services.Writing.Generate(ctx, seed.Situation)
	if err != nil {
		slog.Error("writing generation failed", "user", userID, "error", err)
		writeError(w, http.StatusBadGateway, "writing generation failed")
		return
	}

	vocabs, err := json.Marshal(exercise.Vocabs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode vocabulary")
		return
	}
	err = s.repos.Writings.Put(ctx, store.Writing{
		UserID: userID,
		Day:    day,
		Goal:   exercise.Goal,
		Vocabs: vocabs,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store writing exercise")
		return
	}

	writeJSON(w, http.StatusOK, exercise)
}

type writingEvaluateRequest struct {
	UserInput string `json:"user_input"`
}

type writingEvaluateResponse struct {
	Goal       string              `json:"goal"`
	Evaluation *writing.Evaluation `json:"evaluation"`
}

func (s *Server) handleWritingEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := userFrom(r)
	day := s.day()

	var req writingEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserInput == "" {
		writeError(w, http.StatusBadRequest, "user_input is required")
		return
	}

	rec, err := s.repos.Writings.Get(ctx, userID, day)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no writing goal found for today")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "load writing exercise failed")
		return
	}

	eval, err := s.services.Writing.Evaluate(ctx, rec.Goal, req.UserInput)
	if err != nil {
		slog.Error("writing evaluation failed", "user", userID, "error", err)
		writeError(w, http.StatusBadGateway, "evaluation failed")
		return
	}

	encoded, err := json.Marshal(eval)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "encode evaluation")
		return
	}
	if err := s.repos.Writings.SetEvaluation(ctx, userID, day, encoded); err != nil {
		writeError(w, http.StatusInternalServerError, "store evaluation")
		return
	}

	writeJSON(w, http.StatusOK, writingEvaluateResponse{Goal: rec.Goal, Evaluation: eval})
}
