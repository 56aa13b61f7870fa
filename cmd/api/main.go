package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"viaqris/internal/domain"
	"viaqris/internal/donation"
	"viaqris/internal/http/handlers"
	httpapi "viaqris/internal/http/httpapi"
	"viaqris/internal/infra"
	"viaqris/internal/infra/geoip"
	"viaqris/internal/middleware"
	"viaqris/internal/providers/mutasi"
	"viaqris/internal/providers/telegram"
	"viaqris/internal/qris"
	"viaqris/internal/settings"
	"viaqris/internal/storage"
	"viaqris/internal/store/github"
	"viaqris/internal/store/postgres"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	if err := qris.Validate(cfg.StaticQRIS); err != nil {
		logger.Fatal().Err(err).Msg("DATA_STATIS_QRIS rejected")
	}

	ctx := context.Background()

	var store domain.TransactionRepository
	switch cfg.StoreBackend {
	case infra.StoreBackendPostgres:
		dbpool, err := infra.NewDBPool(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect database")
		}
		defer dbpool.Close()
		runner := infra.NewSQLRunner(dbpool, logger.With().Str("component", "store").Logger())
		store = postgres.NewStore(runner, cfg.StoreDocument)
	default:
		gh, err := github.NewClient(github.Options{
			Token:   cfg.GitHubToken,
			BaseURL: cfg.GitHubAPIURL,
			Owner:   cfg.RepoOwner,
			Repo:    cfg.RepoName,
			Branch:  cfg.Branch,
			Path:    cfg.JSONFilePath,
			Logger:  &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure github store")
		}
		store = gh
	}

	files, err := storage.NewFileStore(cfg.DataDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to prepare data directory")
	}
	settingsStore := settings.NewStore(files, settings.DefaultKey, &logger)

	var notifier donation.Notifier
	if cfg.TelegramEnabled() {
		tg, err := telegram.NewClient(telegram.Options{
			BotToken: cfg.TelegramBotToken,
			ChatID:   cfg.TelegramChatID,
			BaseURL:  cfg.TelegramAPIURL,
			Logger:   &logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure telegram")
		}
		notifier = tg
	} else {
		logger.Warn().Msg("telegram not configured, payment notifications disabled")
	}

	svc, err := donation.New(donation.Options{
		Store:    store,
		Settings: settingsStore,
		Mutations: mutasi.NewClient(mutasi.Options{
			Endpoint: cfg.MutationEndpoint,
			Username: cfg.MutationUsername,
			Token:    cfg.MutationToken,
			Logger:   &logger,
		}),
		Notifier:      notifier,
		StaticQRIS:    cfg.StaticQRIS,
		PaymentWindow: cfg.PaymentWindow,
		Logger:        &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build donation service")
	}

	resolver, err := geoip.NewResolver(cfg.GeoIPDBPath)
	if err != nil {
		logger.Warn().Err(err).Msg("geoip disabled")
	}
	defer resolver.Close()

	admin := middleware.Credentials{User: cfg.AdminUser, Pass: cfg.AdminPass}
	if !admin.Enabled() {
		logger.Warn().Msg("ADMIN_USER/ADMIN_PASS not set, operator routes are locked")
	}

	app := &handlers.App{
		Donations:      svc,
		Settings:       settingsStore,
		Files:          files,
		Admin:          admin,
		Logger:         &logger,
		StoreBackend:   cfg.StoreBackend,
		UploadMaxBytes: cfg.UploadMaxBytes,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		Logger:          &logger,
		CORSOrigins:     cfg.CORSOrigins,
		RateLimitPerMin: cfg.RateLimitPerMin,
		CountryLookup:   resolver.Lookup(),
		UploadsDir:      cfg.UploadsDir(),
	})

	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Str("addr", server.Addr()).Str("store", cfg.StoreBackend).Msg("API listening")
		if err := server.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	svc.Wait()
	logger.Info().Msg("server stopped")
}
