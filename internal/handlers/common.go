// Package handlers exposes the services over HTTP.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Raghvendrath3/conceptForge/internal/middleware"
	"github.com/Raghvendrath3/conceptForge/pkg/api"
	"github.com/Raghvendrath3/conceptForge/pkg/auth"
	appErrors "github.com/Raghvendrath3/conceptForge/pkg/errors"
	"github.com/Raghvendrath3/conceptForge/pkg/validation"
)

const maxBodyBytes = 1 << 20

// MessageResponse is returned by endpoints that have nothing else to say.
type MessageResponse struct {
	Message string `json:"message"`
}

// requireOwner returns the authenticated owner or writes a 401.
func requireOwner(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Authentication required")
		return "", false
	}
	return user.UserID, true
}

// decodeJSON reads the body into dst and runs struct validation. It writes
// the 400 itself and reports whether the handler should continue.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "Invalid request body"
		if errors.Is(err, io.EOF) {
			msg = "Request body is required"
		}
		api.ErrorWithCode(w, http.StatusBadRequest, msg, string(appErrors.ErrorTypeValidation))
		return false
	}
	if err := validation.ValidateStruct(dst); err != nil {
		writeAppError(w, appErrors.GetAppError(err))
		return false
	}
	return true
}

// handleServiceError converts service errors to HTTP responses. Client
// errors carry the service message; anything else is logged and hidden.
func handleServiceError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr := appErrors.GetAppError(err)
	if appErr == nil {
		appErr = &appErrors.AppError{Type: appErrors.ErrorTypeInternal, Message: "unexpected error", Err: err}
	}

	fields := []zap.Field{
		zap.String("request_id", middleware.GetRequestIDFromRequest(r)),
		zap.String("type", string(appErr.Type)),
		zap.Error(err),
	}
	switch appErr.Type {
	case appErrors.ErrorTypeInternal:
		logger.Error("request failed", fields...)
		api.ErrorWithCode(w, http.StatusInternalServerError, "An internal error occurred", string(appErr.Type))
		return
	case appErrors.ErrorTypeUnavailable:
		logger.Warn("dependency unavailable", fields...)
		api.ErrorWithCode(w, http.StatusServiceUnavailable, "Service temporarily unavailable", string(appErr.Type))
		return
	}
	logger.Debug("request rejected", fields...)
	writeAppError(w, appErr)
}

func writeAppError(w http.ResponseWriter, appErr *appErrors.AppError) {
	code := appErr.Code
	if code == "" {
		code = string(appErr.Type)
	}
	api.ErrorWithCode(w, appErr.HTTPStatus(), appErr.Message, code)
}

// orEmpty keeps list responses as [] rather than null.
func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
