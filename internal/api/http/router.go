package http

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sainath9392/tinylink/internal/models"
	"github.com/sainath9392/tinylink/internal/service"
	httpSwagger "github.com/swaggo/http-swagger"
)

// OwnerHeader carries the opaque identifier of the client that owns links.
const OwnerHeader = "X-User-Id"

// LinkService defines the link operations exposed over HTTP.
type LinkService interface {
	// CreateLink stores a new link under a custom or generated short code.
	CreateLink(ctx context.Context, params service.CreateLinkParams) (*models.Link, error)

	// ListLinks returns the owner's links, newest first.
	ListLinks(ctx context.Context, ownerID string) ([]*models.Link, error)

	// GetLink returns a link with its click statistics.
	GetLink(ctx context.Context, shortCode string) (*models.Link, error)

	// DeleteLink removes a link.
	DeleteLink(ctx context.Context, shortCode string) error

	// ResolveShortCode returns the link to redirect to and counts a click in the background.
	ResolveShortCode(ctx context.Context, shortCode string) (*models.Link, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func getValidate() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return validate
}

// NewRouter initializes and returns a new HTTP router with all routes and middleware configured.
func NewRouter(logger *httplog.Logger, linkSvc LinkService, db Pinger) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"POST", "GET", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Accept", OwnerHeader},
		AllowCredentials: false,
		MaxAge:           84600,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.StripSlashes)
	r.Use(httplog.RequestLogger(logger, []string{"/healthz", "/metrics"}))
	r.Use(middleware.Recoverer)
	r.Use(instrument)

	r.Get("/healthz", handleHealth(db))
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/swagger.yml"),
	))
	r.Get("/docs/swagger.yml", handleSwaggerSpec)

	r.Route("/api/links", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		validate := getValidate()

		r.Post("/", handleCreateLink(linkSvc, validate))
		r.Get("/", handleListLinks(linkSvc))

		r.Route("/{shortCode}", func(r chi.Router) {
			r.Get("/", handleGetLink(linkSvc))
			r.Delete("/", handleDeleteLink(linkSvc))
		})
	})

	r.Get("/{shortCode}", handleRedirect(linkSvc))

	return r
}
