// Package httptransport assembles the HTTP surface: public reads, the
// authenticated minting and token routes, the admin surface, and the
// operational endpoints.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	allocationhandler "mintgate/internal/allocation/handler"
	identityhandler "mintgate/internal/identity/handler"
	issuancehandler "mintgate/internal/issuance/handler"
	ownershiphandler "mintgate/internal/ownership/handler"
	"mintgate/internal/platform/middleware"
	"mintgate/internal/transport/http/shared"
)

// Deps carries everything the router mounts.
type Deps struct {
	Logger     *slog.Logger
	Validator  middleware.CallerValidator
	AdminToken string

	Identity   *identityhandler.Handler
	Allocation *allocationhandler.Handler
	Ownership  *ownershiphandler.Handler
	Issuance   *issuancehandler.Handler

	// Health reports readiness of the backing stores. Nil means always ready.
	Health func(ctx context.Context) error
}

// NewRouter wires the full route tree.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(d.Logger))

	// Public reads.
	r.Group(func(r chi.Router) {
		d.Identity.RegisterReads(r)
		d.Allocation.RegisterReads(r)
		d.Ownership.RegisterReads(r)
	})

	// Authenticated participant routes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireCaller(d.Validator, d.Logger))
		d.Issuance.Register(r)
		d.Ownership.Register(r)
	})

	// Owner surface.
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(d.AdminToken, d.Logger))
		d.Identity.RegisterAdmin(r)
		d.Allocation.RegisterAdmin(r)
	})

	r.Get("/healthz", handleHealth(d.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

func handleHealth(health func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
					"status": "unavailable",
					"error":  err.Error(),
				})
				return
			}
		}
		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
