// Package httputil holds the JSON response helpers shared by all handlers.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	dErrors "medledger/pkg/domain-errors"
)

const maxBodyBytes = 16 << 20

type errorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope.
// Internal errors never leak their description.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	body := errorBody{Error: string(code)}
	if code != dErrors.CodeInternal {
		body.ErrorDescription = dErrors.MessageOf(err)
	}
	WriteJSON(w, StatusFor(code), body)
}

// StatusFor maps a domain code to an HTTP status.
func StatusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeBadRequest, dErrors.CodeInvalidInput:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusUnauthorized
	case dErrors.CodeForbidden:
		return http.StatusForbidden
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeAlreadyRegistered, dErrors.CodeIdentityMismatch, dErrors.CodeIdentityConflict:
		return http.StatusConflict
	case dErrors.CodeExternalDependencyFailure:
		return http.StatusBadGateway
	case dErrors.CodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// DecodeJSON decodes the request body into T, writing a 400 and returning
// false on failure.
func DecodeJSON[T any](ctx context.Context, w http.ResponseWriter, r *http.Request, logger *slog.Logger, requestID string) (*T, bool) {
	var req T
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		msg := "invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "request body is required"
		}
		logger.WarnContext(ctx, "failed to decode request",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.New(dErrors.CodeBadRequest, msg))
		return nil, false
	}
	return &req, true
}

// WriteServiceError logs a failed service call and writes its error. Internal
// errors log at error level, client errors at warn.
func WriteServiceError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, requestID string, err error, msg string) {
	level := slog.LevelWarn
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		level = slog.LevelError
	}
	logger.Log(ctx, level, msg,
		"request_id", requestID,
		"error", err,
	)
	WriteError(w, err)
}
