package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Muhsiinn/Jonas-AI/internal/roleplay"
)

func (s *Server) handleRoleplayGoal(w http.ResponseWriter, r *http.Request) {
	scenario, err := s.services.Roleplay.GenerateGoal(r.Context(), userFrom(r), s.day())
	if errors.Is(err, roleplay.ErrNoLesson) {
		writeError(w, http.StatusNotFound, "no lesson found for today")
		return
	}
	if err != nil {
		slog.Error("roleplay goal failed", "user", userFrom(r), "error", err)
		writeError(w, http.StatusBadGateway, "goal generation failed")
		return
	}
	writeJSON(w, http.StatusOK, scenario)
}

type roleplayChatRequest struct {
	UserInput string `json:"user_input"`
}

func (s *Server) handleRoleplayChat(w http.ResponseWriter, r *http.Request) {
	var req roleplayChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserInput == "" {
		writeError(w, http.StatusBadRequest, "user_input is required")
		return
	}

	result, err := s.services.Roleplay.Chat(r.Context(), userFrom(r), s.day(), req.UserInput)
	if errors.Is(err, roleplay.ErrNoSession) {
		writeError(w, http.StatusNotFound, "no roleplay goal found for today")
		return
	}
	if errors.Is(err, roleplay.ErrNoLesson) {
		writeError(w, http.StatusNotFound, "no lesson found for today")
		return
	}
	if err != nil {
		slog.Error("roleplay chat failed", "user", userFrom(r), "error", err)
		writeError(w, http.StatusBadGateway, "chat failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRoleplayFinish(w http.ResponseWriter, r *http.Request) {
	result, err := s.services.Roleplay.Finish(r.Context(), userFrom(r), s.day())
	if errors.Is(err, roleplay.ErrNoSession) {
		writeError(w, http.StatusNotFound, "no roleplay goal found for today")
		return
	}
	if err != nil {
		slog.Error("roleplay finish failed", "user", userFrom(r), "error", err)
		writeError(w, http.StatusBadGateway, "evaluation failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
