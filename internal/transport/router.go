package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Alifast22/formbuilder/internal/config"
	"github.com/Alifast22/formbuilder/internal/observability"
	"github.com/Alifast22/formbuilder/internal/store"
)

// Dependencies collects everything the router needs. All fields are
// required except Metrics, which may be nil when metrics are disabled.
type Dependencies struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   store.Store
	Metrics *observability.Metrics
}

// NewRouter builds the HTTP router with the full middleware pipeline
// and all API routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	r.Use(Recovery(deps.Logger))
	r.Use(RequestID(deps.Logger))
	r.Use(observability.TracingMiddleware)
	if deps.Metrics != nil {
		r.Use(deps.Metrics.MetricsMiddleware)
	}
	r.Use(RequestLogging(deps.Logger))
	r.Use(CORS(deps.Config.Server.CORS))

	r.Get("/health", observability.HandleHealth())
	r.Get("/ready", observability.HandleReady(deps.Store))
	if deps.Config.Observability.Metrics.Enabled {
		r.Get(deps.Config.Observability.Metrics.Path, observability.Handler().ServeHTTP)
	}

	fh := &formHandler{deps: deps}
	sh := &submissionHandler{deps: deps}

	r.Route("/api", func(api chi.Router) {
		api.Route("/forms", func(forms chi.Router) {
			forms.Get("/", fh.list)
			forms.Post("/", fh.create)
			forms.Post("/import", fh.importSchema)

			forms.Route("/{formID}", func(form chi.Router) {
				form.Get("/", fh.get)
				form.Put("/", fh.update)
				form.Delete("/", fh.delete)
				form.Get("/export", fh.export)
				form.Post("/resolve", fh.resolve)
				form.Post("/validate", fh.validate)

				form.Get("/submissions", sh.listByForm)
				form.Post("/submissions", sh.create)
				form.Get("/draft", sh.latestDraft)
			})
		})

		api.Route("/submissions", func(subs chi.Router) {
			subs.Get("/", sh.list)
			subs.Route("/{submissionID}", func(sub chi.Router) {
				sub.Get("/", sh.get)
				sub.Delete("/", sh.delete)
			})
		})
	})

	return r
}
