package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/bollyquiz/internal/game"
)

type ctxKey int

const (
	ctxKeyGame ctxKey = iota
	ctxKeyGameID
)

func newStructuredLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				logger.Info("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration_ms", time.Since(start).Milliseconds(),
					"request_id", middleware.GetReqID(r.Context()),
				)
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// gameMiddleware resolves {id} to a live session or answers 404 with a
// redirect to setup.
func gameMiddleware(games *Registry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			s, err := games.Get(id)
			if err != nil {
				writeGameError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyGame, s)
			ctx = context.WithValue(ctx, ctxKeyGameID, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFrom(r *http.Request) *game.Session {
	return r.Context().Value(ctxKeyGame).(*game.Session)
}

func gameIDFrom(r *http.Request) string {
	return r.Context().Value(ctxKeyGameID).(string)
}
