package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/api/middleware"
	"github.com/LeiBaylon/kolekkita-backend/api/responses"
	"github.com/LeiBaylon/kolekkita-backend/api/validators"
	"github.com/LeiBaylon/kolekkita-backend/internal/campaigns"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

type sendCampaignRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
	Type    string `json:"type" validate:"required"`
}

// SendCampaign fans a notification out to every eligible account. The
// sender is taken from the authenticated admin.
func SendCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendCampaignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sentBy, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "missing sender identity"))
			return
		}

		result, err := svc.Send(r.Context(), campaigns.SendInput{
			Title:      req.Title,
			Message:    req.Message,
			Type:       req.Type,
			SentBy:     sentBy,
			SentByName: middleware.UserNameFromContext(r.Context()),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func ListCampaigns(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := campaigns.ListParams{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if sentBy := strings.TrimSpace(r.URL.Query().Get("sentBy")); sentBy != "" {
			id, err := uuid.Parse(sentBy)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sentBy filter"))
				return
			}
			params.SentBy = &id
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetCampaign(svc campaigns.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "campaignId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}
