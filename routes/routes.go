package routes

import (
	"github.com/Dosada05/club-engine/handlers"
	"github.com/Dosada05/club-engine/middleware"
	"github.com/Dosada05/club-engine/models"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Config struct {
	Auth            *middleware.Authenticator
	TerminalPINHash string

	Tournaments   *handlers.TournamentHandler
	Registrations *handlers.RegistrationHandler
	Stats         *handlers.StatsHandler
	WebSocket     *handlers.WebSocketHandler
}

func SetupRoutes(router *chi.Mux, cfg Config) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Terminal-Pin"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты: дашборды и табло в зале читают без токена.
		r.Get("/", cfg.Tournaments.ListHandler)
		r.Get("/{tournamentID}", cfg.Tournaments.GetByIDHandler)
		r.Get("/{tournamentID}/registrations", cfg.Registrations.ListHandler)
		r.Get("/{tournamentID}/stats", cfg.Stats.SnapshotHandler)
		r.Get("/{tournamentID}/seating", cfg.Stats.SeatingHandler)
		r.Get("/{tournamentID}/leaderboard", cfg.Stats.LeaderboardHandler)

		// Администрирование турниров.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin))

			r.Post("/", cfg.Tournaments.CreateHandler)
			r.Patch("/{tournamentID}", cfg.Tournaments.UpdateHandler)
			r.Delete("/{tournamentID}", cfg.Tournaments.DeleteHandler)
		})

		// Команды жизненного цикла — админ либо флорман.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleFloorman))

			r.Post("/{tournamentID}/open-registration", cfg.Tournaments.OpenRegistrationHandler)
			r.Post("/{tournamentID}/check-in", cfg.Tournaments.StartCheckInHandler)
			r.Post("/{tournamentID}/start", cfg.Tournaments.StartHandler)
			r.Post("/{tournamentID}/finish", cfg.Tournaments.FinishHandler)
			r.Post("/{tournamentID}/cancel", cfg.Tournaments.CancelHandler)
			r.Post("/{tournamentID}/rebalance", cfg.Tournaments.RebalanceHandler)

			r.Post("/{tournamentID}/registrations/{playerID}/no-show", cfg.Registrations.MarkNoShowHandler)
			r.Post("/{tournamentID}/registrations/{playerID}/restore", cfg.Registrations.RestoreHandler)
			r.Post("/{tournamentID}/registrations/{playerID}/bonus", cfg.Registrations.AddBonusHandler)
			r.Post("/{tournamentID}/registrations/{playerID}/eliminate", cfg.Registrations.EliminateHandler)
		})

		// Регистрация игроков — любой персонал.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleFloorman, models.RoleCashier))

			r.Post("/{tournamentID}/registrations/{playerID}", cfg.Registrations.RegisterHandler)
		})

		// Денежные операции дополнительно требуют PIN кассового терминала.
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.Authenticate)
			r.Use(middleware.Authorize(models.RoleAdmin, models.RoleFloorman, models.RoleCashier))
			r.Use(middleware.RequireTerminalPIN(cfg.TerminalPINHash))

			r.Post("/{tournamentID}/registrations/{playerID}/payment", cfg.Registrations.ConfirmPaymentHandler)
			r.Post("/{tournamentID}/registrations/{playerID}/late", cfg.Registrations.LateRegisterHandler)
		})
	})

	// Живые обновления для табло: комната — id турнира.
	router.Get("/ws/tournaments/{tournamentID}", cfg.WebSocket.ServeWs)
}
