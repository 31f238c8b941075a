package server

import (
	"net/http"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
	"github.com/playperu/bollyquiz/internal/game"
)

// WinnerRequest is the Play→Winner payload for a game played elsewhere.
type WinnerRequest struct {
	Teams  []bollyquiz.Team `json:"teams"`
	Scores []int            `json:"scores"`
}

// handleGameWinner resolves the winner of a completed game and discards it.
func handleGameWinner(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := sessionFrom(r).Result()
		if err != nil {
			writeGameError(w, err)
			return
		}
		if err := games.Remove(gameIDFrom(r), reasonCompleted); err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func handleWinner() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req WinnerRequest
		if err := readJSON(r, &req); err != nil {
			writeRedirect(w, http.StatusBadRequest, "missing or malformed winner payload")
			return
		}
		if len(req.Teams) == 0 || len(req.Teams) != len(req.Scores) {
			writeRedirect(w, http.StatusBadRequest, "winner payload needs one score per team")
			return
		}
		writeJSON(w, http.StatusOK, game.NewResult(req.Teams, req.Scores))
	}
}
