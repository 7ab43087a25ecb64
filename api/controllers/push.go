package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/api/responses"
	"github.com/LeiBaylon/kolekkita-backend/api/validators"
	"github.com/LeiBaylon/kolekkita-backend/internal/push"
	pkgerrors "github.com/LeiBaylon/kolekkita-backend/pkg/errors"
	"github.com/LeiBaylon/kolekkita-backend/pkg/logger"
)

type pushToUserRequest struct {
	UserID string            `json:"user_id" validate:"required,uuid"`
	Title  string            `json:"title" validate:"required,max=200"`
	Body   string            `json:"body" validate:"required,max=2000"`
	Data   map[string]string `json:"data,omitempty"`
}

// PushToUser sends an ad-hoc push message to one account's device.
func PushToUser(svc push.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pushToUserRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
			return
		}

		if err := svc.SendToUser(r.Context(), push.SendToUserInput{
			UserID: userID,
			Title:  req.Title,
			Body:   req.Body,
			Data:   req.Data,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"success": true, "sent_count": 1})
	}
}

type pushBroadcastRequest struct {
	Title          string            `json:"title" validate:"required,max=200"`
	Body           string            `json:"body" validate:"required,max=2000"`
	UserTypeFilter string            `json:"user_type_filter,omitempty"`
	Data           map[string]string `json:"data,omitempty"`
}

// PushBroadcast delivers to every active device, optionally filtered by
// role. Alias role spellings are accepted.
func PushBroadcast(svc push.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pushBroadcastRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.SendToAll(r.Context(), push.BroadcastInput{
			Title:      req.Title,
			Body:       req.Body,
			RoleFilter: req.UserTypeFilter,
			Data:       req.Data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type pushMulticastRequest struct {
	UserIDs []string          `json:"user_ids" validate:"required,min=1,dive,uuid"`
	Title   string            `json:"title" validate:"required,max=200"`
	Body    string            `json:"body" validate:"required,max=2000"`
	Data    map[string]string `json:"data,omitempty"`
}

func PushMulticast(svc push.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req pushMulticastRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ids := make([]uuid.UUID, 0, len(req.UserIDs))
		for _, raw := range req.UserIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id"))
				return
			}
			ids = append(ids, id)
		}

		result, err := svc.SendToMultiple(r.Context(), push.MulticastInput{
			UserIDs: ids,
			Title:   req.Title,
			Body:    req.Body,
			Data:    req.Data,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
