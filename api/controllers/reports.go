package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/api/middleware"
	"github.com/LeiBaylon/kolekkita-backend/api/responses"
	"github.com/LeiBaylon/kolekkita-backend/api/validators"
	"github.com/LeiBaylon/kolekkita-backend/internal/reports"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

// ListReports returns the moderation queue: stored reports merged with
// synthesized candidates on the first page.
func ListReports(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.List(r.Context(), reports.ListParams{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type submitReportRequest struct {
	ReportType     string  `json:"report_type" validate:"required,max=100"`
	ReporterID     *string `json:"reporter_id,omitempty" validate:"omitempty,uuid"`
	ReporterName   string  `json:"reporter_name" validate:"required,max=200"`
	ReportedUserID *string `json:"reported_user_id,omitempty" validate:"omitempty,uuid"`
	Description    string  `json:"description" validate:"required,max=2000"`
	Priority       string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
}

func SubmitReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitReportRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := reports.SubmitInput{
			ReportType:   req.ReportType,
			ReporterName: req.ReporterName,
			Description:  req.Description,
			Priority:     req.Priority,
		}

		if req.ReporterID != nil {
			id, err := uuid.Parse(*req.ReporterID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reporter id"))
				return
			}
			input.ReporterID = &id
		}
		if req.ReportedUserID != nil {
			id, err := uuid.Parse(*req.ReportedUserID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid reported user id"))
				return
			}
			input.ReportedUserID = &id
		}

		report, err := svc.Submit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, report)
	}
}

type resolveReportRequest struct {
	ReportID     *string `json:"report_id,omitempty" validate:"omitempty,uuid"`
	CandidateRef string  `json:"candidate_ref,omitempty"`
	ActionTaken  *string `json:"action_taken,omitempty" validate:"omitempty,max=200"`
	ActionNotes  *string `json:"action_notes,omitempty" validate:"omitempty,max=2000"`
}

// ResolveReport closes a stored report or materializes and closes a
// synthesized candidate. Exactly one of report_id and candidate_ref is
// expected.
func ResolveReport(svc reports.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req resolveReportRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolvedBy, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "missing resolver identity"))
			return
		}

		input := reports.ResolveInput{
			CandidateRef: strings.TrimSpace(req.CandidateRef),
			ActionTaken:  req.ActionTaken,
			ActionNotes:  req.ActionNotes,
			ResolvedBy:   resolvedBy,
		}
		if req.ReportID != nil {
			id, err := uuid.Parse(*req.ReportID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid report id"))
				return
			}
			input.ReportID = &id
		}

		report, err := svc.Resolve(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}
