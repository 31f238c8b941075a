package server

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"

	"github.com/playperu/bollyquiz/internal/game"
)

func addRoutes(r chi.Router, logger *slog.Logger, opts Options, games *Registry, broker *Broker) {
	rec := opts.Metrics

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Bollywood Quiz API", "/openapi.json", "/docs"))
	r.Handle("/metrics", rec.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", handleCategories(opts.Provider, opts.Filtered))
		r.Post("/setup/validate", handleValidateSetup(opts.Filtered))
		r.Post("/games", handleStartGame(logger, opts, games, broker))
		r.Post("/winner", handleWinner())

		// Game routes: {id} resolved by gameMiddleware.
		r.Route("/games/{id}", func(r chi.Router) {
			r.Use(gameMiddleware(games))
			r.Get("/", handleGameState())
			r.Delete("/", handleEndGame(games))
			r.Post("/reveal", handleAction("reveal", rec, (*game.Session).Reveal))
			r.Post("/answer", handleAnswer(rec))
			r.Post("/check", handleCheckOption(rec))
			r.Post("/advance", handleAction("advance", rec, (*game.Session).Advance))
			r.Post("/skip", handleAction("skip", rec, (*game.Session).Skip))
			r.Get("/winner", handleGameWinner(games))
			r.Get("/events", handleEvents(broker))
			r.Get("/ws", handleWS(logger, broker))
			r.Get("/qr.png", handleQR(opts.PublicURL))
		})
	})

	if opts.SPADir != "" {
		if info, err := os.Stat(opts.SPADir); err == nil && info.IsDir() {
			logger.Info("serving SPA", "dir", opts.SPADir)
			r.NotFound(handleSPA(opts.SPADir))
		}
	}
}
