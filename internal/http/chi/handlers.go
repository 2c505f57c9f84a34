package chi

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog"
	"github.com/marcelsud/n8n-gateway/endpoints"
	"github.com/marcelsud/n8n-gateway/gateway"
	"github.com/marcelsud/n8n-gateway/image"
	"github.com/marcelsud/n8n-gateway/metrics"
	"github.com/marcelsud/n8n-gateway/preference"
	"github.com/rs/zerolog"
)

// DefaultMaxUploadBytes caps uploaded files and image payloads
const DefaultMaxUploadBytes = 10 << 20

// Options carries the dependencies of the HTTP API
type Options struct {
	Gateway     gateway.UseCase
	Images      image.UseCase
	Preferences preference.UseCase
	Registry    *endpoints.Registry
	Stats       metrics.Collector
	Metrics     http.Handler // served on /metrics when set

	Logger             zerolog.Logger
	CORSAllowedOrigins []string
	MaxUploadBytes     int64
	PublicBaseURL      string // prefix of returned download URLs; derived from the request when empty
}

// Handlers sets up the gateway API routes and the legacy aliases
func Handlers(ctx context.Context, opts Options) *chi.Mux {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	origins := opts.CORSAllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(httplog.RequestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
		MaxAge:         300,
	}))

	// Liveness of the gateway itself, no upstream calls
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	receive := receiveImage(opts.Gateway, opts.MaxUploadBytes, opts.PublicBaseURL)
	view := serveImage(opts.Images, false)
	download := serveImage(opts.Images, true)

	health := getHealth(opts.Gateway, opts.Registry, false)
	legacyHealth := getHealth(opts.Gateway, opts.Registry, true)

	r.Route("/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/forward/{key}", forward(opts.Gateway, "", opts.MaxUploadBytes))
		r.Method(http.MethodGet, "/health", health)
		r.Method(http.MethodPost, "/health", health)
		r.Method(http.MethodPost, "/images", receive)
		r.Method(http.MethodGet, "/images/{fileName}", view)
		r.Method(http.MethodGet, "/endpoints", getEndpoints(opts.Registry))
		if opts.Stats != nil {
			r.Method(http.MethodGet, "/stats", getStats(opts.Stats))
		}
		r.Method(http.MethodGet, "/preferences/currency", getCurrency(opts.Preferences))
		r.Method(http.MethodPost, "/preferences/currency", postCurrency(opts.Preferences))
	})

	// Paths used by the dashboard, the browser extension and n8n workflows
	r.Method(http.MethodGet, "/webhook-status", legacyHealth)
	r.Method(http.MethodPost, "/webhook-status", legacyHealth)
	r.Method(http.MethodGet, "/download-image/{fileName}", download)
	r.Method(http.MethodGet, "/view-image/{fileName}", view)
	r.Method(http.MethodPost, "/api/receive-image", receive)
	r.Method(http.MethodPost, "/api/generate-image-direct", receive)
	r.Method(http.MethodPost, "/api/receive-generated-image", receive)
	r.Method(http.MethodPost, "/api/save-currency", postCurrency(opts.Preferences))
	if opts.Registry != nil {
		for _, e := range opts.Registry.List() {
			for _, alias := range e.Aliases {
				r.Method(http.MethodPost, alias, forward(opts.Gateway, e.Key, opts.MaxUploadBytes))
			}
		}
	}

	return r
}
