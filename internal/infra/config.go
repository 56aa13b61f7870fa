package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	StoreBackendGitHub   = "github"
	StoreBackendPostgres = "postgres"

	DefaultMutationEndpoint = "https://orkut.ftvpn.me/api/mutasi"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv           string
	Port             string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
	CORSOrigins      []string
	GeoIPDBPath      string
	DataDir          string
	PaymentWindow    time.Duration
	UploadMaxBytes   int64

	StaticQRIS string

	StoreBackend  string
	GitHubToken   string
	GitHubAPIURL  string
	RepoOwner     string
	RepoName      string
	Branch        string
	JSONFilePath  string
	DatabaseURL   string
	StoreDocument string

	TelegramBotToken string
	TelegramChatID   string
	TelegramAPIURL   string

	MutationEndpoint string
	MutationUsername string
	MutationToken    string

	AdminUser string
	AdminPass string
}

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		CORSOrigins:      splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		GeoIPDBPath:      getEnv("GEOIP_DB_PATH", ""),
		DataDir:          getEnv("DATA_DIR", "./public"),
		PaymentWindow:    time.Minute * time.Duration(getEnvInt("PAYMENT_WINDOW_MINUTES", 5)),
		UploadMaxBytes:   int64(getEnvInt("UPLOAD_MAX_MB", 15)) << 20,

		StaticQRIS: getEnv("DATA_STATIS_QRIS", ""),

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreBackendGitHub)),
		GitHubToken:   getEnv("GITHUB_TOKEN", ""),
		GitHubAPIURL:  getEnv("GITHUB_API_URL", "https://api.github.com"),
		RepoOwner:     getEnv("REPO_OWNER", ""),
		RepoName:      getEnv("REPO_NAME", ""),
		Branch:        getEnv("BRANCH", ""),
		JSONFilePath:  getEnv("JSON_FILE_PATH", ""),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		StoreDocument: getEnv("STORE_DOCUMENT", "data.json"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", ""),
		TelegramAPIURL:   getEnv("TELEGRAM_API_URL", "https://api.telegram.org"),

		MutationEndpoint: mutationEndpoint(getEnv("MUTASI_ENDPOINT", "")),
		MutationUsername: getEnv("MUTASI_AUTH_USERNAME", ""),
		MutationToken:    getEnv("MUTASI_AUTH_TOKEN", ""),

		AdminUser: getEnv("ADMIN_USER", ""),
		AdminPass: getEnv("ADMIN_PASS", ""),
	}

	if cfg.StaticQRIS == "" {
		return nil, fmt.Errorf("DATA_STATIS_QRIS is required")
	}

	switch cfg.StoreBackend {
	case StoreBackendGitHub:
		var missing []string
		for _, kv := range [][2]string{
			{"GITHUB_TOKEN", cfg.GitHubToken},
			{"REPO_OWNER", cfg.RepoOwner},
			{"REPO_NAME", cfg.RepoName},
			{"BRANCH", cfg.Branch},
			{"JSON_FILE_PATH", cfg.JSONFilePath},
		} {
			if kv[1] == "" {
				missing = append(missing, kv[0])
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("%s required for the github store", strings.Join(missing, ", "))
		}
	case StoreBackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// UploadsDir is the directory served under /uploads.
func (c *Config) UploadsDir() string {
	return filepath.Join(c.DataDir, "uploads")
}

// TelegramEnabled reports whether payment notifications can be sent.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

var (
	inlineComment = regexp.MustCompile(`\s+//.*$`)
	wrappingQuote = regexp.MustCompile("^['\"`]+|['\"`]+$")
	httpURL       = regexp.MustCompile(`^https?://.+`)
)

// normalizeEnv strips values pasted with wrapping quotes or trailing
// " // comment" annotations. URLs keep their scheme separator.
func normalizeEnv(v string) string {
	v = strings.TrimSpace(v)
	v = inlineComment.ReplaceAllString(v, "")
	v = wrappingQuote.ReplaceAllString(strings.TrimSpace(v), "")
	return strings.TrimSpace(v)
}

func mutationEndpoint(v string) string {
	if httpURL.MatchString(v) {
		return v
	}
	return DefaultMutationEndpoint
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		if v = normalizeEnv(v); v != "" {
			return v
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := getEnv(key, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
