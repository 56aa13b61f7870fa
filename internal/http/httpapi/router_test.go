package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"viaqris/internal/domain"
	"viaqris/internal/donation"
	"viaqris/internal/http/handlers"
	"viaqris/internal/middleware"
	"viaqris/internal/settings"
	"viaqris/internal/storage"
)

type listOnly struct {
	handlers.Donations
	entries domain.Entries
}

func (l listOnly) List(ctx context.Context) (domain.Entries, error) { return l.entries, nil }

func (l listOnly) Summary(ctx context.Context) (*donation.Summary, error) {
	return &donation.Summary{Total: len(l.entries)}, nil
}

func newTestRouter(t *testing.T, rateLimit int) (http.Handler, string) {
	t.Helper()
	dir := t.TempDir()
	files, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	app := &handlers.App{
		Donations:    listOnly{entries: domain.Entries{"k": {Status: domain.StatusUnpaid}}},
		Settings:     settings.NewStore(files, "", nil),
		Files:        files,
		Admin:        middleware.Credentials{User: "admin", Pass: "rahasia"},
		StoreBackend: "github",
	}
	return NewRouter(app, Options{
		CORSOrigins:     []string{"*"},
		RateLimitPerMin: rateLimit,
		UploadsDir:      filepath.Join(dir, "uploads"),
	}), dir
}

func TestRoutes(t *testing.T) {
	router, _ := newTestRouter(t, 0)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   bool
		want   int
	}{
		{"health", http.MethodGet, "/v1/healthz", "", false, http.StatusOK},
		{"list", http.MethodGet, "/api/v1/transactions", "", false, http.StatusOK},
		{"legacy list", http.MethodGet, "/api/v2", "", false, http.StatusOK},
		{"summary", http.MethodGet, "/api/v1/summary", "", false, http.StatusOK},
		{"public config", http.MethodGet, "/api/config", "", false, http.StatusOK},
		{"config save needs auth", http.MethodPost, "/api/config", `{"brandingName":"x"}`, false, http.StatusUnauthorized},
		{"config save with auth", http.MethodPost, "/api/config", `{"brandingName":"x"}`, true, http.StatusOK},
		{"upload needs auth", http.MethodPost, "/api/upload", `{}`, false, http.StatusUnauthorized},
		{"status needs auth", http.MethodPatch, "/api/v1/transactions/k/status", `{"statusBaru":"Berhasil"}`, false, http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/v1/nope", "", false, http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/v1/transactions", "", false, http.StatusMethodNotAllowed},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
			if tc.auth {
				req.SetBasicAuth("admin", "rahasia")
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d body = %s", rr.Code, tc.want, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content type = %q", ct)
			}
			if rr.Header().Get("X-Request-ID") == "" {
				t.Fatal("request id header missing")
			}
		})
	}
}

func TestUnauthorizedIsLocalized(t *testing.T) {
	router, _ := newTestRouter(t, 0)
	req := httptest.NewRequest(http.MethodPost, "/api/config", strings.NewReader(`{}`))
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var body struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "Authentication required." {
		t.Fatalf("message = %q", body.Message)
	}
	if !strings.HasPrefix(rr.Header().Get("WWW-Authenticate"), `Basic realm="Dashboard"`) {
		t.Fatalf("challenge = %q", rr.Header().Get("WWW-Authenticate"))
	}
}

func TestServesUploads(t *testing.T) {
	router, dir := newTestRouter(t, 0)
	path := filepath.Join(dir, "uploads", "cover", "cover-1.png")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/uploads/cover/cover-1.png", nil))
	if rr.Code != http.StatusOK || rr.Body.String() != "png-bytes" {
		t.Fatalf("status = %d body = %q", rr.Code, rr.Body.String())
	}
}

func TestRateLimitedAPI(t *testing.T) {
	router, _ := newTestRouter(t, 2)
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
		req.RemoteAddr = "198.51.100.7:5555"
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("codes = %v", codes)
	}
}
