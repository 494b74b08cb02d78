package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/zeedivx/web-starter/internal/apperr"
	"github.com/zeedivx/web-starter/internal/jsonutil"
)

// Request bodies above this size are rejected outright.
const maxBodyBytes = 1 << 20

// errorResponse is the envelope every failed request gets.
type errorResponse struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func (a *API) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	body, err := jsonutil.MarshalFast(v)
	if err != nil {
		a.log.Error("Response encoding failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err),
		)
		http.Error(w, `{"error":"INTERNAL_SERVER_ERROR","message":"Response encoding failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// writeError renders err through the application error envelope. Internal
// and database failures are logged with their cause; the client only ever
// sees the sanitized message.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := apperr.From(err)

	if appErr.Code == apperr.CodeInternal || appErr.Code == apperr.CodeDatabase {
		a.log.Error("Request failed",
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	a.writeJSON(w, r, appErr.HTTPStatus(), errorResponse{
		Error:   string(appErr.Code),
		Message: appErr.Message,
		Details: appErr.Details,
	})
}

// decodeJSON reads the request body into dst, capping its size.
func decodeJSON(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return apperr.BadRequest("Could not read request body")
	}
	if len(body) > maxBodyBytes {
		return apperr.BadRequest("Request body too large")
	}
	if len(body) == 0 {
		return apperr.BadRequest("Request body is empty")
	}
	if err := jsonutil.UnmarshalFast(body, dst); err != nil {
		return apperr.BadRequest("Invalid JSON body")
	}
	return nil
}

// checkValid runs struct validation and converts failures into a
// VALIDATION_ERROR with per-field details.
func (a *API) checkValid(v any) error {
	err := a.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation("Request validation failed", nil)
	}

	details := make(map[string]any, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = validationMessage(fe)
	}
	return apperr.Validation("Request validation failed", details)
}
