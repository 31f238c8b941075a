package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/playperu/bollyquiz/internal/bollyquiz"
	"github.com/playperu/bollyquiz/internal/game"
	"github.com/playperu/bollyquiz/internal/metrics"
	"github.com/playperu/bollyquiz/internal/setup"
)

// QuestionProvider supplies the questions for a new game and the categories
// offered on the setup screen.
type QuestionProvider interface {
	Provide(ctx context.Context, categories []string, limit int) ([]bollyquiz.Question, error)
	Categories(ctx context.Context) ([]string, error)
}

// StartGameRequest is the Setup→Play payload.
type StartGameRequest struct {
	Teams         []bollyquiz.Team `json:"teams"`
	QuestionCount int              `json:"questionCount"`
	Categories    []string         `json:"categories,omitempty"`
}

func (r StartGameRequest) config() setup.SessionConfig {
	return setup.SessionConfig{Teams: r.Teams, QuestionCount: r.QuestionCount, Categories: r.Categories}
}

type GameResponse struct {
	ID    string     `json:"id"`
	State game.State `json:"state"`
}

type AnswerRequest struct {
	Team *int `json:"team"`
}

type CheckRequest struct {
	Option *int `json:"option"`
}

type CheckResponse struct {
	Correct bool       `json:"correct"`
	State   game.State `json:"state"`
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
	// Filtered is true when a game needs at least one category selected.
	Filtered bool `json:"filtered"`
}

type ValidateResponse struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func handleCategories(provider QuestionProvider, filtered bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cats, err := provider.Categories(r.Context())
		if err != nil {
			writeGameError(w, err)
			return
		}
		if cats == nil {
			cats = []string{}
		}
		writeJSON(w, http.StatusOK, CategoriesResponse{Categories: cats, Filtered: filtered})
	}
}

func handleValidateSetup(filtered bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartGameRequest
		if err := readJSON(r, &req); err != nil {
			writeRedirect(w, http.StatusBadRequest, "missing or malformed setup payload")
			return
		}

		if err := req.config().Validate(filtered); err != nil {
			writeJSON(w, http.StatusOK, ValidateResponse{Valid: false, Errors: errorList(err)})
			return
		}
		writeJSON(w, http.StatusOK, ValidateResponse{Valid: true})
	}
}

func handleStartGame(logger *slog.Logger, opts Options, games *Registry, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req StartGameRequest
		if err := readJSON(r, &req); err != nil {
			writeRedirect(w, http.StatusBadRequest, "missing or malformed setup payload")
			return
		}

		cfg := req.config()
		if err := cfg.Validate(opts.Filtered); err != nil {
			writeValidation(w, err)
			return
		}
		cfg = cfg.Normalized()
		if !opts.Filtered {
			// Unfiltered banks, such as multiple choice, carry no categories.
			cfg.Categories = nil
		}

		qs, err := opts.Provider.Provide(r.Context(), cfg.Categories, cfg.QuestionCount)
		if err != nil {
			logger.Warn("no questions for new game", "categories", cfg.Categories, "error", err)
			writeGameError(w, err)
			return
		}

		id, s, err := games.Create(func(id string) (*game.Session, error) {
			return game.New(cfg, qs,
				game.WithCelebrationDelay(opts.CelebrationDelay),
				game.WithNotifier(broker.Notifier(id)),
				game.WithLogger(logger.With("game_id", id)),
			)
		})
		if err != nil {
			logger.Error("creating game", "error", err)
			writeGameError(w, err)
			return
		}

		w.Header().Set("Location", "/api/games/"+id)
		writeJSON(w, http.StatusCreated, GameResponse{ID: id, State: s.Snapshot()})
	}
}

func handleGameState() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, GameResponse{ID: gameIDFrom(r), State: sessionFrom(r).Snapshot()})
	}
}

func handleEndGame(games *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := games.Remove(gameIDFrom(r), reasonAbandoned); err != nil {
			writeGameError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleAction applies a body-less host action such as reveal, advance or
// skip, and answers with the resulting state.
func handleAction(op string, rec *metrics.Recorder, apply func(*game.Session) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s := sessionFrom(r)
		err := apply(s)
		rec.Transition(op, err)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, GameResponse{ID: gameIDFrom(r), State: s.Snapshot()})
	}
}

func handleAnswer(rec *metrics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnswerRequest
		if err := readJSON(r, &req); err != nil || req.Team == nil {
			writeError(w, http.StatusBadRequest, "team is required")
			return
		}

		s := sessionFrom(r)
		err := s.RecordAnswer(*req.Team)
		rec.Transition("answer", err)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, GameResponse{ID: gameIDFrom(r), State: s.Snapshot()})
	}
}

func handleCheckOption(rec *metrics.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CheckRequest
		if err := readJSON(r, &req); err != nil || req.Option == nil {
			writeError(w, http.StatusBadRequest, "option is required")
			return
		}

		s := sessionFrom(r)
		correct, err := s.CheckOption(*req.Option)
		rec.Transition("check", err)
		if err != nil {
			writeGameError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, CheckResponse{Correct: correct, State: s.Snapshot()})
	}
}
