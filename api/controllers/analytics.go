package controllers

import (
	"net/http"

	"github.com/LeiBaylon/kolekkita-backend/api/responses"
	"github.com/LeiBaylon/kolekkita-backend/api/validators"
	"github.com/LeiBaylon/kolekkita-backend/internal/analytics"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

const defaultOverviewMonths = 12

// AnalyticsOverview computes the dashboard statistics payload on demand.
func AnalyticsOverview(svc analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		months, err := validators.ParseQueryInt(r, "months", defaultOverviewMonths, 1, 60)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		overview, err := svc.Overview(r.Context(), months)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}
