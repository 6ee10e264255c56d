package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/remasterhq/remaster/modules/auth"
	"github.com/remasterhq/remaster/modules/catalog"
	"github.com/remasterhq/remaster/pkg/config"
	"github.com/remasterhq/remaster/pkg/email"
	"github.com/remasterhq/remaster/pkg/httpserver"
	"github.com/remasterhq/remaster/pkg/logger"
	"github.com/remasterhq/remaster/pkg/pg"
	"github.com/remasterhq/remaster/pkg/redis"
	"github.com/remasterhq/remaster/storage"
)

type appConfig struct {
	Logger logger.Config
	Server httpserver.Config
	PG     pg.Config
	Redis  redis.Config
	Email  email.Config
	Auth   auth.Config
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.NewFromConfig(cfg.Logger, logger.WithService("remaster"))
	logger.SetAsDefault(log)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("server exited", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	pool, err := pg.Connect(ctx, cfg.PG)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, cfg.PG, log); err != nil {
		return err
	}

	redisClient, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	mailer, err := newMailer(cfg.Email, log)
	if err != nil {
		return err
	}

	issuer, err := auth.NewTokenIssuer(cfg.Auth)
	if err != nil {
		return err
	}

	users := storage.NewUserStore(pool)
	otps := auth.NewOTPStore(auth.NewRedisCache(redisClient), cfg.Auth.OTPTTL)
	gate := auth.NewGate(issuer, users, auth.NewGoogleVerifier(cfg.Auth.GoogleClientID), log)
	spotify := auth.NewSpotifyFetcher(cfg.Auth, log)

	authService := auth.NewService(users, issuer, otps, mailer, auth.NewGoogleProfileFetcher(), log)
	authHandlers := auth.NewHandlers(authService, gate, spotify)

	catalogService := catalog.NewService(storage.NewCatalogStore(pool), log)
	catalogHandlers := catalog.NewHandlers(catalogService, gate)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool),
		redis.Healthcheck(redisClient),
	))

	r.Mount("/auth", authHandlers.Router())
	r.Mount("/catalog", catalogHandlers.Router())

	return httpserver.NewFromConfig(cfg.Server, httpserver.WithLogger(log)).Run(ctx, r)
}

// newMailer prefers Postmark and falls back to file-based delivery when
// no server token is configured.
func newMailer(cfg email.Config, log *slog.Logger) (email.Sender, error) {
	if cfg.PostmarkServerToken == "" {
		log.Warn("postmark token not configured, writing emails to disk",
			slog.String("dir", cfg.DevOutputDir))
		return email.NewDevSender(cfg.DevOutputDir), nil
	}
	return email.NewPostmarkClient(cfg)
}
