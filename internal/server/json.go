package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/playperu/bollyquiz/internal/game"
	"github.com/playperu/bollyquiz/internal/questions"
)

// setupPath is where the presentation layer sends the host after a broken
// navigation: unknown game, missing payload, no questions.
const setupPath = "/setup"

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error    string   `json:"error"`
	Details  []string `json:"details,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeRedirect(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg, Redirect: setupPath})
}

// writeValidation reports every joined validation problem.
func writeValidation(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:    "invalid game setup",
		Details:  errorList(err),
		Redirect: setupPath,
	})
}

func errorList(err error) []string {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []string
		for _, e := range joined.Unwrap() {
			out = append(out, errorList(e)...)
		}
		return out
	}
	return []string{err.Error()}
}

// writeGameError maps engine and provider errors onto HTTP statuses. A
// rejected transition leaves the game untouched, so it is a conflict rather
// than a failure.
func writeGameError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, game.ErrClosed):
		writeRedirect(w, http.StatusNotFound, "game not found")
	case errors.Is(err, questions.ErrProviderFailed):
		writeRedirect(w, http.StatusServiceUnavailable, "questions are unavailable, try again")
	case errors.Is(err, questions.ErrNoQuestions), errors.Is(err, game.ErrNoQuestions):
		writeRedirect(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrTeamIndex),
		errors.Is(err, game.ErrOptionIndex),
		errors.Is(err, game.ErrWrongVariant):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, game.ErrNotRevealed),
		errors.Is(err, game.ErrCelebrating),
		errors.Is(err, game.ErrAlreadyScored),
		errors.Is(err, game.ErrInvalidTransition),
		errors.Is(err, game.ErrGameComplete),
		errors.Is(err, game.ErrGameNotComplete):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
