package httpapi

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/text/language"

	"viaqris/internal/http/handlers"
	"viaqris/internal/infra"
	"viaqris/internal/middleware"
)

// Options configures the middleware stack around the handlers.
type Options struct {
	Logger          *infra.Logger
	CORSOrigins     []string
	RateLimitPerMin int
	CountryLookup   middleware.CountryLookup
	// UploadsDir is served read-only under /uploads when set.
	UploadsDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = infra.DiscardLogger()
	}

	r := chi.NewRouter()
	r.NotFound(app.NotFound)
	r.MethodNotAllowed(app.MethodNotAllowed)
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(*logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSOrigins),
		middleware.I18N(language.Indonesian, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	admin := middleware.AdminAuth("Dashboard", app.Admin, http.HandlerFunc(app.Unauthorized))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.RateLimit(opts.RateLimitPerMin, time.Minute, http.HandlerFunc(app.TooManyRequests)))

		r.Route("/v1", func(r chi.Router) {
			r.Get("/transactions", app.ListTransactions)
			r.Post("/transactions", app.CreateTransaction)
			r.With(admin).Patch("/transactions/{key}/status", app.UpdateStatus)
			r.Post("/transactions/{key}/check", app.CheckPayment)
			r.Get("/summary", app.Summary)
			r.Get("/quote", app.Quote)
		})

		r.Get("/config", app.GetSettings)
		r.With(admin).Post("/config", app.SaveSettings)
		r.With(admin).Post("/upload", app.Upload)

		r.Get("/v2", app.LegacyList)
		r.Post("/v2", app.LegacyDispatch)
	})

	if opts.UploadsDir != "" {
		files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(filepath.Clean(opts.UploadsDir))))
		r.Get("/uploads/*", files.ServeHTTP)
	}

	return r
}
