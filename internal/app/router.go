package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/skyfalke/backoffice/internal/auth"
	"github.com/skyfalke/backoffice/internal/crm"
	"github.com/skyfalke/backoffice/internal/invoices"
	"github.com/skyfalke/backoffice/internal/notifications"
	"github.com/skyfalke/backoffice/internal/observability"
	"github.com/skyfalke/backoffice/internal/quotations"
	"github.com/skyfalke/backoffice/jobs"
	"github.com/skyfalke/backoffice/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger              *slog.Logger
	Config              *Config
	AuthHandler         *auth.Handler
	AuthMiddleware      auth.Middleware
	QuotationHandler    *quotations.Handler
	InvoiceHandler      *invoices.Handler
	ContactHandler      *crm.Handler
	NotificationHandler *notifications.Handler
	JobHandler          *jobs.Handler
	ReportHandler       *report.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router with Skyfalke defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/auth", params.AuthHandler.MountRoutes)

		api.Group(func(authed chi.Router) {
			authed.Use(params.AuthMiddleware.RequireAuth)

			authed.Route("/quotations", params.QuotationHandler.MountRoutes)
			authed.Route("/invoices", params.InvoiceHandler.MountRoutes)
			authed.Route("/contacts", params.ContactHandler.MountRoutes)
			authed.Route("/notifications", params.NotificationHandler.MountRoutes)
		})
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/reports", params.ReportHandler.MountRoutes)
	}

	return r
}
