package api

import (
	"net/http"

	"fintrack-server/src/config"
	"fintrack-server/src/handlers"
	"fintrack-server/src/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRouter(pool *pgxpool.Pool, cfg config.Config) *chi.Mux {
	secret := []byte(cfg.JWTSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", handlers.Register(pool))
		r.Post("/auth/login", handlers.Login(pool, secret))

		// Protected routes
		r.With(middleware.JWTAuthMiddleware(secret)).Group(func(r chi.Router) {
			r.Get("/auth/me", handlers.Me(pool))

			r.Get("/expenses", handlers.GetExpenses(pool))
			r.Post("/expenses", handlers.CreateExpense(pool))
			r.Get("/expenses/export", handlers.ExportExpenses(pool))
			r.Put("/expenses/{id}", handlers.UpdateExpense(pool))
			r.Delete("/expenses/{id}", handlers.DeleteExpense(pool))

			r.Get("/income", handlers.GetIncomes(pool))
			r.Post("/income", handlers.CreateIncome(pool))
			r.Get("/income/export", handlers.ExportIncomes(pool))
			r.Put("/income/{id}", handlers.UpdateIncome(pool))
			r.Delete("/income/{id}", handlers.DeleteIncome(pool))

			r.Get("/summary", handlers.GetSummary(pool))
		})
	})

	return r
}
