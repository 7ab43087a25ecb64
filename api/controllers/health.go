package controllers

import (
	"net/http"

	"github.com/LeiBaylon/kolekkita-backend/api/responses"
	"github.com/LeiBaylon/kolekkita-backend/pkg/config"
	"github.com/LeiBaylon/kolekkita-backend/pkg/db"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	pkgredis "github.com/LeiBaylon/kolekkita-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KolekKita-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP pkgredis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-KolekKita-Env", cfg.App.Env)

		checks := map[string]string{}

		if dbP != nil {
			if err := dbP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unavailable"))
				return
			}
			checks["database"] = "ok"
		}
		if redisP != nil {
			if err := redisP.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
			checks["redis"] = "ok"
		}

		checks["status"] = "ready"
		responses.WriteSuccess(w, checks)
	}
}
