package indexing

import (
	"net/http"

	"github.com/EmpoweredVote/dtr-indexing/internal/middleware"
	"github.com/go-chi/chi/v5"
)

type RouteOptions struct {
	AdminKeyHash string
	// SubmitLimiter throttles POST /submissions. Nil means no limit.
	SubmitLimiter *middleware.RateLimiter
}

func SetupRoutes(h *Handler, opts RouteOptions) http.Handler {
	r := chi.NewRouter()

	// Public routes
	r.Get("/levels", h.Levels)
	r.Get("/cascade", h.Cascade)
	r.Get("/candidates/{level}", h.Candidates)
	r.Get("/records/count", h.RecordCount)

	r.Group(func(r chi.Router) {
		if opts.SubmitLimiter != nil {
			r.Use(opts.SubmitLimiter.Middleware)
		}
		r.Post("/submissions", h.Submit)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.AdminKeyMiddleware(opts.AdminKeyHash))
		r.Post("/reference/reload", h.ReloadReference)
		r.Get("/records/export", h.ExportRecords)
	})

	return r
}
