package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"

	"registration-system/status"
)

// toAPIError maps domain errors onto the HTTP taxonomy. Anything
// unrecognized becomes a generic 500; the detail stays in server logs.
func toAPIError(err error) error {
	switch {
	case errors.Is(err, status.ErrEventNotFound),
		errors.Is(err, status.ErrCustomerNotFound),
		errors.Is(err, status.ErrUserNotFound):
		return apis.NewNotFoundError(err.Error(), nil)

	case errors.Is(err, status.ErrAlreadyVerified),
		errors.Is(err, status.ErrAlreadyDeleted),
		errors.Is(err, status.ErrEventMismatch),
		errors.Is(err, status.ErrCapacityReached):
		return apis.NewApiError(http.StatusConflict, err.Error(), nil)

	case errors.Is(err, status.ErrInvalidInput),
		errors.Is(err, status.ErrUserExists):
		return apis.NewBadRequestError(err.Error(), nil)

	case errors.Is(err, status.ErrInvalidCredentials):
		return apis.NewUnauthorizedError(err.Error(), nil)

	default:
		return apis.NewInternalServerError("Something went wrong", err)
	}
}
