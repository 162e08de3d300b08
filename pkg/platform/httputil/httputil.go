// Package httputil holds the JSON response and request helpers shared by the
// HTTP handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error            string               `json:"error"`
	ErrorDescription string               `json:"error_description,omitempty"`
	Errors           []dErrors.FieldError `json:"errors,omitempty"`
}

// WriteJSON sends body as JSON with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// The status is committed; an encode failure has nowhere to go.
	_ = json.NewEncoder(w).Encode(body)
}

type wireError struct {
	status int
	code   string
}

var wireErrors = map[dErrors.Code]wireError{
	dErrors.CodeNotFound:           {http.StatusNotFound, "not_found"},
	dErrors.CodeBadRequest:         {http.StatusBadRequest, "bad_request"},
	dErrors.CodeInvalidInput:       {http.StatusBadRequest, "bad_request"},
	dErrors.CodeValidation:         {http.StatusBadRequest, "validation_error"},
	dErrors.CodeInvariantViolation: {http.StatusBadRequest, "validation_error"},
	dErrors.CodeUnsupportedType:    {http.StatusUnprocessableEntity, "unsupported_type"},
	dErrors.CodeConflict:           {http.StatusConflict, "conflict"},
	dErrors.CodeUnauthorized:       {http.StatusUnauthorized, "unauthorized"},
	dErrors.CodeForbidden:          {http.StatusForbidden, "forbidden"},
	dErrors.CodeTimeout:            {http.StatusGatewayTimeout, "timeout"},
}

var internalWireError = wireError{http.StatusInternalServerError, "internal_error"}

func lookup(code dErrors.Code) wireError {
	if we, ok := wireErrors[code]; ok {
		return we
	}
	return internalWireError
}

// WriteError renders err. Domain errors carry their message and field errors
// to the client; any other error becomes an opaque 500.
func WriteError(w http.ResponseWriter, err error) {
	var de *dErrors.Error
	if !errors.As(err, &de) {
		WriteJSON(w, internalWireError.status, &ErrorResponse{Error: internalWireError.code})
		return
	}
	we := lookup(de.Code)
	WriteJSON(w, we.status, &ErrorResponse{
		Error:            we.code,
		ErrorDescription: de.Message,
		Errors:           de.Fields,
	})
}

// RequireCaller returns the authenticated caller. Behind the auth middleware a
// missing caller means the route was mounted in the wrong group, so it is
// logged at error level and reported as unauthorized.
func RequireCaller(ctx context.Context, logger *slog.Logger) (*session.Caller, error) {
	if caller := session.FromContext(ctx); caller != nil {
		return caller, nil
	}
	if logger != nil {
		logger.ErrorContext(ctx, "no caller on authenticated route",
			"request_id", requestcontext.RequestID(ctx))
	}
	return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
}
