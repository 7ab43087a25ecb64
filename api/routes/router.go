package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/LeiBaylon/kolekkita-backend/api/controllers"
	"github.com/LeiBaylon/kolekkita-backend/api/middleware"
	"github.com/LeiBaylon/kolekkita-backend/internal/analytics"
	"github.com/LeiBaylon/kolekkita-backend/internal/campaigns"
	"github.com/LeiBaylon/kolekkita-backend/internal/notifications"
	"github.com/LeiBaylon/kolekkita-backend/internal/push"
	"github.com/LeiBaylon/kolekkita-backend/internal/reports"
	"github.com/LeiBaylon/kolekkita-backend/internal/users"
	"github.com/LeiBaylon/kolekkita-backend/internal/verifications"
	"github.com/LeiBaylon/kolekkita-backend/pkg/config"
	"github.com/LeiBaylon/kolekkita-backend/pkg/db"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	pkgredis "github.com/LeiBaylon/kolekkita-backend/pkg/redis"
)

// Deps bundles everything the router mounts.
type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	DB            db.Pinger
	Redis         *pkgredis.Client
	Registry      prometheus.Gatherer
	Users         users.Service
	Notifications notifications.Service
	Campaigns     campaigns.Service
	Verifications verifications.Service
	Analytics     analytics.Service
	Reports       reports.Service
	Push          push.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	var redisPinger pkgredis.Pinger
	var idemStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		redisPinger = deps.Redis
		idemStore = deps.Redis
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(deps.Users, cfg.JWT, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.RequireAdmin(logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(deps.Users, logg))
			r.Get("/{userId}", controllers.GetUser(deps.Users, logg))
			r.Patch("/{userId}/active", controllers.SetUserActive(deps.Users, logg))
			r.Post("/{userId}/fcm-token", controllers.RegisterFCMToken(deps.Users, logg))

			r.Route("/{userId}/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListUserNotifications(deps.Notifications, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
			})
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", controllers.SendCampaign(deps.Campaigns, logg))
			r.Get("/", controllers.ListCampaigns(deps.Campaigns, logg))
			r.Get("/{campaignId}", controllers.GetCampaign(deps.Campaigns, logg))
		})

		r.Route("/verifications", func(r chi.Router) {
			r.Post("/", controllers.SubmitVerification(deps.Verifications, logg))
			r.Get("/", controllers.ListVerifications(deps.Verifications, logg))
			r.Get("/status-counts", controllers.VerificationStatusCounts(deps.Verifications, logg))
			r.Get("/{verificationId}", controllers.GetVerification(deps.Verifications, logg))
			r.Post("/{verificationId}/decision", controllers.DecideVerification(deps.Verifications, logg))
		})

		r.Get("/analytics/overview", controllers.AnalyticsOverview(deps.Analytics, logg))

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", controllers.ListReports(deps.Reports, logg))
			r.Post("/", controllers.SubmitReport(deps.Reports, logg))
			r.Post("/resolve", controllers.ResolveReport(deps.Reports, logg))
		})

		r.Route("/push-notifications", func(r chi.Router) {
			r.Post("/send-to-user", controllers.PushToUser(deps.Push, logg))
			r.Post("/send-to-all", controllers.PushBroadcast(deps.Push, logg))
			r.Post("/send-to-multiple", controllers.PushMulticast(deps.Push, logg))
		})
	})

	return r
}
