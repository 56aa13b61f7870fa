// Package handlers serves the donation page API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/text/message"

	"viaqris/internal/domain"
	"viaqris/internal/donation"
	"viaqris/internal/infra"
	"viaqris/internal/middleware"
	"viaqris/internal/qris"
	"viaqris/internal/storage"
)

const (
	defaultMaxBody   = 1 << 20
	defaultUploadMax = 15 << 20
)

// Donations is the donation flow used by the handlers.
type Donations interface {
	List(ctx context.Context) (domain.Entries, error)
	Create(ctx context.Context, key string, in domain.Entry) (*donation.CreateResult, error)
	UpdateStatus(ctx context.Context, key string, status domain.Status) (domain.Entry, error)
	CheckPayment(ctx context.Context, key string) (*donation.CheckResult, error)
	Summary(ctx context.Context) (*donation.Summary, error)
	Quote(ctx context.Context, amount int64) (*donation.Quote, error)
}

type App struct {
	Donations      Donations
	Settings       domain.SettingsRepository
	Files          *storage.FileStore
	Admin          middleware.Credentials
	Logger         *infra.Logger
	StoreBackend   string
	UploadMaxBytes int64
	Now            func() time.Time
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// error writes the localized message for key with an optional detail.
func (a *App) error(w http.ResponseWriter, r *http.Request, code int, key string, detail string, args ...any) {
	a.json(w, code, errorResponse{Message: a.printer(r).Sprintf(key, args...), Error: detail})
}

func (a *App) printer(r *http.Request) *message.Printer {
	return message.NewPrinter(middleware.LocaleFromContext(r.Context()), message.Catalog(messages))
}

func (a *App) logger() *infra.Logger {
	if a.Logger == nil {
		return infra.DiscardLogger()
	}
	return a.Logger
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// fail maps domain errors onto HTTP status codes.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, r, http.StatusBadRequest, msgInvalidRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, r, http.StatusNotFound, msgNotFound, err.Error())
	case errors.Is(err, domain.ErrVersionConflict):
		a.error(w, r, http.StatusConflict, msgConflict, err.Error())
	case errors.Is(err, domain.ErrRemoteUnavailable):
		a.logger().Warn().Err(err).Str("path", r.URL.Path).Msg("upstream unavailable")
		a.error(w, r, http.StatusBadGateway, msgUpstream, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, r, http.StatusUnauthorized, msgUnauthorized, "")
	case errors.Is(err, qris.ErrFormat):
		a.logger().Error().Err(err).Msg("static QRIS template rejected")
		a.error(w, r, http.StatusInternalServerError, msgMisconfigured, "")
	case errors.Is(err, context.Canceled):
		a.logger().Debug().Str("path", r.URL.Path).Msg("request canceled")
	default:
		a.logger().Error().Err(err).Str("path", r.URL.Path).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("request failed")
		a.error(w, r, http.StatusInternalServerError, msgInternal, "")
	}
}

// decode reads a JSON body of at most limit bytes into v.
func (a *App) decode(w http.ResponseWriter, r *http.Request, limit int64, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, r, http.StatusRequestEntityTooLarge, msgTooLarge, "")
			return false
		}
		a.error(w, r, http.StatusBadRequest, msgInvalidRequest, "invalid JSON body")
		return false
	}
	return true
}

// Unauthorized answers requests rejected by the admin gate.
func (a *App) Unauthorized(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusUnauthorized, msgUnauthorized, "")
}

// TooManyRequests answers requests rejected by the rate limiter.
func (a *App) TooManyRequests(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusTooManyRequests, msgTooMany, "")
}

func (a *App) NotFound(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusNotFound, msgRouteNotFound, "")
}

func (a *App) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	a.error(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed, "", r.Method)
}
