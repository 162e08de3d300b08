package httputil

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/requestcontext"
)

// DecodeJSON reads exactly one JSON value from the body into T. On failure the
// error response is already written and ok is false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*T, bool) {
	var v T
	if err := decodeOne(r.Body, &v); err != nil {
		ctx := r.Context()
		logger.WarnContext(ctx, "undecodable request body",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		WriteError(w, bodyError(err))
		return nil, false
	}
	return &v, true
}

// DecodeAttrs reads a JSON object into the raw attribute map a changeset
// casts from. A literal null yields an empty map.
func DecodeAttrs(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (map[string]any, bool) {
	attrs, ok := DecodeJSON[map[string]any](w, r, logger)
	switch {
	case !ok:
		return nil, false
	case *attrs == nil:
		return map[string]any{}, true
	default:
		return *attrs, true
	}
}

var errTrailingData = errors.New("unexpected data after JSON value")

func decodeOne(body io.Reader, dst any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errTrailingData
	}
	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return dErrors.New(dErrors.CodeBadRequest, "request body too large")
	case errors.Is(err, io.EOF):
		return dErrors.New(dErrors.CodeBadRequest, "request body is empty")
	default:
		return dErrors.New(dErrors.CodeBadRequest, "invalid request body")
	}
}

// Validatable requests check themselves after decoding.
type Validatable interface {
	Validate() error
}

// Normalizable requests tidy their fields before validation.
type Normalizable interface {
	Normalize()
}

// Prepare normalizes then validates req, writing the error response when
// validation fails. Domain errors keep their code; anything else becomes a
// validation error.
func Prepare(w http.ResponseWriter, r *http.Request, req any, logger *slog.Logger) bool {
	if n, ok := req.(Normalizable); ok {
		n.Normalize()
	}
	v, ok := req.(Validatable)
	if !ok {
		return true
	}
	err := v.Validate()
	if err == nil {
		return true
	}

	ctx := r.Context()
	logger.WarnContext(ctx, "request rejected",
		"error", err,
		"request_id", requestcontext.RequestID(ctx),
	)
	var de *dErrors.Error
	if !errors.As(err, &de) {
		err = dErrors.New(dErrors.CodeValidation, err.Error())
	}
	WriteError(w, err)
	return false
}
