// Package server provides the HTTP API for the onboarding plan generator.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/collector"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/llm"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/schemas"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/validation"
)

// ErrBadRequest indicates a request body or parameter that could not be used
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return fmt.Sprintf("bad request: %s", e.Message)
}

// ErrNotFound indicates a named resource does not exist
type ErrNotFound struct {
	Resource string
	Name     string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.Name)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		badRequest  *ErrBadRequest
		notFound    *ErrNotFound
		invalid     *collector.ValidationError
		schemaErr   *schemas.ValidationError
		rejected    *validation.RejectedError
		oracleError *llm.Error
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &schemaErr), errors.As(err, &rejected):
		return http.StatusUnprocessableEntity
	case errors.As(err, &oracleError):
		switch oracleError.Kind {
		case llm.KindAuthInvalid:
			return http.StatusUnauthorized
		case llm.KindRateLimited:
			return http.StatusTooManyRequests
		case llm.KindTimeout:
			return http.StatusGatewayTimeout
		default:
			return http.StatusBadGateway
		}
	default:
		return http.StatusInternalServerError
	}
}
