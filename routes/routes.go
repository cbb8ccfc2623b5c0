package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/kudzilenett/nhandare-server-sub002/handlers"
)

func SetupRoutes(
	router *chi.Mux,
	tournamentHandler *handlers.TournamentHandler,
	matchHandler *handlers.MatchHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		r.Post("/", tournamentHandler.CreateHandler)
		r.Get("/", tournamentHandler.ListHandler)

		r.Route("/{tournamentID}", func(r chi.Router) {
			r.Get("/", tournamentHandler.GetByIDHandler)
			r.Post("/players", tournamentHandler.RegisterPlayerHandler)
			r.Post("/activate", tournamentHandler.ActivateHandler)
			r.Post("/close", tournamentHandler.CloseHandler)
			r.Get("/bracket", tournamentHandler.GetBracketHandler)
			r.Post("/bracket", tournamentHandler.RegenerateBracketHandler)
			r.Get("/matches", matchHandler.ListByTournamentHandler)
		})
	})

	router.Route("/matches", func(r chi.Router) {
		r.Route("/{matchID}", func(r chi.Router) {
			r.Get("/", matchHandler.GetByIDHandler)
			r.Post("/start", matchHandler.StartHandler)
			r.Post("/complete", matchHandler.CompleteHandler)
		})
	})

	router.Get("/ws/tournaments/{tournamentID}", webSocketHandler.ServeWs)
}
