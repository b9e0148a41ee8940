// Package errors provides error handling and HTTP status code mapping.
package errors

import (
	"errors"
	"net/http"

	"github.com/remiblancher/kms-csr/internal/api/dto"
	"github.com/remiblancher/kms-csr/internal/csr"
	"github.com/remiblancher/kms-csr/internal/remote"
)

// Error codes for API responses.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidName        = "INVALID_NAME"
	CodeUnsupportedKeySpec = "UNSUPPORTED_KEY_SPEC"
	CodeRemoteError        = "REMOTE_AUTHORITY_ERROR"
	CodeSigningError       = "SIGNING_ERROR"
	CodeInternal           = "INTERNAL_ERROR"
)

// MapError maps an internal error to an HTTP status code and APIError.
func MapError(err error) (int, *dto.APIError) {
	if err == nil {
		return http.StatusOK, nil
	}

	var nameErr *csr.InvalidNameError
	if errors.As(err, &nameErr) {
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeInvalidName,
			Message: nameErr.Error(),
			Details: map[string]string{"field": nameErr.Field},
		}
	}

	switch {
	case errors.Is(err, csr.ErrUnsupportedKeySpec):
		return http.StatusBadRequest, &dto.APIError{
			Code:    CodeUnsupportedKeySpec,
			Message: err.Error(),
		}
	case errors.Is(err, remote.ErrRemoteCall):
		return http.StatusBadGateway, &dto.APIError{
			Code:    CodeRemoteError,
			Message: err.Error(),
		}
	case errors.Is(err, csr.ErrSigning):
		return http.StatusBadGateway, &dto.APIError{
			Code:    CodeSigningError,
			Message: err.Error(),
		}
	}

	// Check for BuildError with stage context
	var buildErr *csr.BuildError
	if errors.As(err, &buildErr) {
		return http.StatusInternalServerError, &dto.APIError{
			Code:    CodeInternal,
			Message: buildErr.Error(),
			Details: map[string]string{"stage": buildErr.Stage},
		}
	}

	return http.StatusInternalServerError, &dto.APIError{
		Code:    CodeInternal,
		Message: "An internal error occurred",
	}
}

// NewBadRequest creates a bad request error.
func NewBadRequest(message string) *dto.APIError {
	return &dto.APIError{
		Code:    CodeInvalidRequest,
		Message: message,
	}
}
