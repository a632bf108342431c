package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/glorpus-work/schoolyard/pkg/fulfillment"
	"github.com/glorpus-work/schoolyard/pkg/hook"
	"github.com/glorpus-work/schoolyard/pkg/media"
	"github.com/glorpus-work/schoolyard/pkg/payment"
	"github.com/glorpus-work/schoolyard/pkg/store"
	"github.com/glorpus-work/schoolyard/pkg/widget"
)

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Sites        store.SiteStore
	Fulfillment  *fulfillment.Service
	Media        *media.Service
	Payments     *payment.InitiationService
	Widgets      *widget.Registry
	Hooks        hook.HookManager
	UserResolver UserResolver

	// PlatformVersion filters widgets by compatibility.
	PlatformVersion string
}

// NewRouter assembles the platform's HTTP routes.
func NewRouter(deps Deps) http.Handler {
	h := &handlers{deps: deps}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Recoverer)
	r.Use(Logging)
	r.Use(Metrics)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Use(ResolveSite(deps.Sites))
		api.Use(ResolveUser(deps.UserResolver))

		api.Get("/download/{token}", h.download)

		api.Post("/payment/initiate", h.initiatePayment)

		api.Route("/media", func(m chi.Router) {
			m.Get("/", h.listMedia)
			m.Post("/presigned", h.presignedUploadURL)
			m.Get("/{mediaId}", h.getMedia)
			m.Delete("/{mediaId}", h.deleteMedia)
		})

		api.Get("/widgets", h.listWidgets)

		api.Get("/settings", h.getSettings)
		api.Put("/settings", h.updateSettings)
	})

	return r
}

type handlers struct {
	deps Deps
}
