package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/vortex/supercompare/internal/httpmw"
	"github.com/vortex/supercompare/internal/service"
)

// NewRouter builds the HTTP router with all routes and middleware.
func NewRouter(logger *slog.Logger, svc *service.CompareService, maxBodyBytes int64) http.Handler {
	rt := chi.NewRouter()
	rt.Use(
		httpmw.RequestID,
		chimiddleware.RealIP,
		chimiddleware.Recoverer,
		chimiddleware.Timeout(60*time.Second),
		httpmw.Logging(logger),
	)

	rt.Get("/health", Health)
	rt.Get("/ready", Health)

	cmp := NewCompareHandler(svc)
	rt.Route("/api/v1/compare", func(r chi.Router) {
		r.Use(chimiddleware.RequestSize(maxBodyBytes))
		r.Post("/", cmp.Compare)
		r.Get("/{id}", cmp.Download)
		r.Get("/{id}/meta", cmp.Meta)
	})

	return rt
}
