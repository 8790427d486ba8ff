package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/claude/nutrical/internal/catalog"
	"github.com/claude/nutrical/internal/workout"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.workout.Exercises(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, exercises)
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	e, err := s.workout.Exercise(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workout.View())
}

func (s *Server) handleCamera(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workout.View().Camera)
}

type selectRequest struct {
	ExerciseID string `json:"exercise_id"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ExerciseID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "exercise_id is required"})
		return
	}

	v, err := s.workout.Select(r.Context(), req.ExerciseID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Info("session selected", "exercise", req.ExerciseID, "user", userInfoFromContext(r).Login)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	v, err := s.workout.Start()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workout.Pause())
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workout.Reset())
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.workout.Clear())
}

type linksResponse struct {
	FundingURL string `json:"funding_url,omitempty"`
	SourceURL  string `json:"source_url,omitempty"`
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, linksResponse{
		FundingURL: s.links.FundingURL,
		SourceURL:  s.links.SourceURL,
	})
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	var target string
	switch chi.URLParam(r, "target") {
	case "funding":
		target = s.links.FundingURL
	case "source":
		target = s.links.SourceURL
	}
	if target == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "link not configured"})
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// writeError maps domain errors to status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workout.ErrNoExercise), errors.Is(err, workout.ErrCameraUnavailable):
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
