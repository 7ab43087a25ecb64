package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/api/middleware"
	"github.com/LeiBaylon/kolekkita-backend/api/responses"
	"github.com/LeiBaylon/kolekkita-backend/api/validators"
	"github.com/LeiBaylon/kolekkita-backend/internal/verifications"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
	"github.com/LeiBaylon/kolekkita-backend/pkg/pagination"
)

type submitVerificationRequest struct {
	SubmittedBy  string `json:"submitted_by" validate:"required,uuid"`
	ShopName     string `json:"shop_name" validate:"required,max=200"`
	DocumentType string `json:"document_type" validate:"required,max=100"`
	DocumentURL  string `json:"document_url" validate:"required,url"`
}

func SubmitVerification(svc verifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitVerificationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		submittedBy, err := uuid.Parse(req.SubmittedBy)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid submitter id"))
			return
		}

		verification, err := svc.Submit(r.Context(), verifications.SubmitInput{
			SubmittedBy:  submittedBy,
			ShopName:     req.ShopName,
			DocumentType: req.DocumentType,
			DocumentURL:  req.DocumentURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, verification)
	}
}

func ListVerifications(svc verifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 0, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := verifications.ListParams{
			Status: strings.TrimSpace(r.URL.Query().Get("status")),
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		if submittedBy := strings.TrimSpace(r.URL.Query().Get("submittedBy")); submittedBy != "" {
			id, err := uuid.Parse(submittedBy)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid submittedBy filter"))
				return
			}
			params.SubmittedBy = &id
		}

		result, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func GetVerification(svc verifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "verificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		verification, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verification)
	}
}

type decideVerificationRequest struct {
	Decision        string  `json:"decision" validate:"required,oneof=approved rejected"`
	AdminNotes      *string `json:"admin_notes,omitempty"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
}

// DecideVerification records an approve or reject decision. Decisions are
// free transitions; a rejected submission can be approved later.
func DecideVerification(svc verifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathUUID(r, "verificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req decideVerificationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resolvedBy, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "missing reviewer identity"))
			return
		}

		verification, err := svc.Decide(r.Context(), verifications.DecideInput{
			VerificationID:  id,
			Decision:        req.Decision,
			AdminNotes:      req.AdminNotes,
			RejectionReason: req.RejectionReason,
			ResolvedBy:      resolvedBy,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, verification)
	}
}

func VerificationStatusCounts(svc verifications.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.StatusCounts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, counts)
	}
}
