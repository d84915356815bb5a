package controllers

import (
	"context"
	"net/http"

	"github.com/aesthetikoase/checkout-backend/api/responses"
	"github.com/aesthetikoase/checkout-backend/api/validators"
	checkoutsvc "github.com/aesthetikoase/checkout-backend/internal/checkout"
	pkgerrors "github.com/aesthetikoase/checkout-backend/pkg/errors"
	"github.com/aesthetikoase/checkout-backend/pkg/logger"
)

type SessionReader interface {
	RetrieveSession(ctx context.Context, origin, sessionID string) (*checkoutsvc.SessionDetails, error)
}

type sessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// SessionDetails returns buyer-entered data for the success page after the
// provider redirects back with a session id.
func SessionDetails(svc SessionReader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeConfiguration, "session service unavailable"))
			return
		}

		var payload sessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		details, err := svc.RetrieveSession(ctx, requestOrigin(r), payload.SessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, details)
	}
}
