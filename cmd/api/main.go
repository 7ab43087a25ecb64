package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/LeiBaylon/kolekkita-backend/api/routes"
	"github.com/LeiBaylon/kolekkita-backend/internal/analytics"
	"github.com/LeiBaylon/kolekkita-backend/internal/campaigns"
	"github.com/LeiBaylon/kolekkita-backend/internal/notifications"
	"github.com/LeiBaylon/kolekkita-backend/internal/push"
	"github.com/LeiBaylon/kolekkita-backend/internal/reports"
	"github.com/LeiBaylon/kolekkita-backend/internal/users"
	"github.com/LeiBaylon/kolekkita-backend/internal/verifications"
	"github.com/LeiBaylon/kolekkita-backend/pkg/config"
	"github.com/LeiBaylon/kolekkita-backend/pkg/db"
	"github.com/LeiBaylon/kolekkita-backend/pkg/fcm"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/metrics"
	"github.com/LeiBaylon/kolekkita-backend/pkg/migrate"
	"github.com/LeiBaylon/kolekkita-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	fcmClient, err := fcm.NewClient(
		cfg.FCM.ServerKey,
		fcm.WithBaseURL(cfg.FCM.BaseURL),
		fcm.WithHTTPClient(&http.Client{Timeout: cfg.FCM.Timeout}),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create fcm client", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	notifRepo := notifications.NewRepository(dbClient.DB())

	usersService, err := users.NewService(usersRepo, logg)
	requireService(logg, "users", err)

	notifService, err := notifications.NewService(notifRepo, logg)
	requireService(logg, "notifications", err)

	campaignMetrics := metrics.NewCampaignMetrics(prometheus.DefaultRegisterer)
	campaignsService, err := campaigns.NewService(
		campaigns.NewRepository(dbClient.DB()),
		notifRepo,
		usersRepo,
		campaigns.NewMemoryDedup(cfg.Campaign.DedupWindow),
		campaignMetrics,
		logg,
	)
	requireService(logg, "campaigns", err)

	verificationsService, err := verifications.NewService(verifications.NewRepository(dbClient.DB()), notifRepo, logg)
	requireService(logg, "verifications", err)

	analyticsService, err := analytics.NewService(analytics.NewRepository(dbClient.DB()), logg)
	requireService(logg, "analytics", err)

	reportsService, err := reports.NewService(reports.NewRepository(dbClient.DB()), logg)
	requireService(logg, "reports", err)

	pushService, err := push.NewService(fcmClient, usersRepo, logg)
	requireService(logg, "push", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:        cfg,
			Logger:        logg,
			DB:            dbClient,
			Redis:         redisClient,
			Registry:      prometheus.DefaultGatherer,
			Users:         usersService,
			Notifications: notifService,
			Campaigns:     campaignsService,
			Verifications: verificationsService,
			Analytics:     analyticsService,
			Reports:       reportsService,
			Push:          pushService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func requireService(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "failed to create "+name+" service", err)
	os.Exit(1)
}
