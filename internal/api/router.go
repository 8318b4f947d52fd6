package api

import (
	"foodshare/internal/metrics"
	"foodshare/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (s *Server) RegisterRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID(),
		middleware.RequestLogger(s.logger),
		middleware.Metrics(s.metrics),
		middleware.Recoverer(s.logger),
		middleware.CORS(s.opts.AllowedOrigins),
	)

	r.Get("/", s.root)
	r.Get("/healthz", s.healthz)
	if s.opts.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(s.opts.Gatherer))
	}

	r.Post("/jwt", s.issueToken)
	r.Post("/logout", s.logout)

	r.Get("/foods", s.listFoods)
	r.Get("/foodsCount", s.countFoods)
	r.Post("/foods", s.createFood)
	r.Delete("/foods/{id}", s.deleteFood)
	r.Get("/food/{id}", s.getFood)
	r.Put("/food/{id}", s.updateFood)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(s.tokens, s.logger), middleware.OwnerOnly("email"))

		r.Get("/foodRequest", s.listFoodRequests)
		r.Get("/foodRequest/{id}", s.getFoodRequest)
	})
	r.Post("/foodRequest", s.createFoodRequest)
	r.Put("/foodRequest/{id}", s.updateFoodRequest)
	r.Delete("/foodRequest/{id}", s.deleteFoodRequest)

	return r
}
