package handler

import (
	"errors"
	"net/http"

	"github.com/dtroode/modulehub/internal/logger"
	"github.com/dtroode/modulehub/internal/model"
)

// statusFor maps service errors to a status code and a client-safe message.
func statusFor(err error) (int, string) {
	var inputErr *model.InputError
	var maxErr *http.MaxBytesError

	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge, "Request body too large"
	case errors.Is(err, model.ErrDuplicateUser):
		return http.StatusBadRequest, "User with given email already exists"
	case errors.As(err, &inputErr):
		return http.StatusBadRequest, inputErr.Msg
	case errors.Is(err, model.ErrInvalidInput):
		return http.StatusBadRequest, "Invalid input"
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid email or password."
	case errors.Is(err, model.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "Entity not found"
	case errors.Is(err, model.ErrConflict):
		return http.StatusConflict, "Entity already exists"
	case errors.Is(err, model.ErrPartialSignup):
		return http.StatusInternalServerError, "Signup could not be completed"
	case errors.Is(err, model.ErrStorageUnavailable):
		return http.StatusServiceUnavailable, "Content storage is not configured"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// handleError writes the client-safe response for err. Client errors are
// logged with their full cause, which is never sent to the client.
func handleError(w http.ResponseWriter, lg *logger.Logger, err error) {
	status, msg := statusFor(err)
	if status < http.StatusInternalServerError {
		lg.Debug("HTTP handler: request rejected",
			"status", status,
			"error", err.Error())
	}
	writeError(w, status, msg)
}
