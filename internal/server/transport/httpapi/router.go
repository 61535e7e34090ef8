package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps bundles what the router needs from the hosting layer.
type RouterDeps struct {
	Handler       *Handler
	SessionSecret []byte
	LoginLimiter  *LoginLimiter
	Metrics       prometheus.Gatherer
}

// NewRouter wires the full endpoint tree. Registration, login, and the
// mailed confirmation link are public; everything else needs a session, and
// the management endpoints additionally need the Admin role.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()
	h := deps.Handler

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Post("/api/register", h.Register)
	r.With(deps.LoginLimiter.Middleware).Post("/api/login", h.Login)
	r.Get("/confirm-email", h.ConfirmEmail)
	r.Post("/api/confirm-email", h.ConfirmEmail)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(deps.SessionSecret))

		r.Post("/api/admin-request", h.RequestAdmin)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin)

			r.Get("/api/users", h.ListUsers)
			r.Route("/api/users/{id}", func(r chi.Router) {
				r.Put("/", h.UpdateUser)
				r.Delete("/", h.DeleteUser)
				r.Post("/approve-admin", h.ApproveAdmin)
				r.Post("/reject-admin", h.RejectAdmin)
			})
			r.Get("/api/logs", h.ListLogs)
		})
	})

	return r
}
